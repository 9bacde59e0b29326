package run

import (
	"context"
	"time"

	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/clearway/collections-backend-go/internal/domain/run"
	"github.com/clearway/collections-backend-go/internal/pkg/database"
)

// RunService manages daily runs: CRUD, stop assembly and route
// optimization.
type RunService interface {
	Create(ctx context.Context, req run.CreateRunRequest) (run.RunResponse, error)
	Get(ctx context.Context, id string) (run.RunResponse, error)
	List(ctx context.Context, from, to *time.Time) ([]run.RunResponse, error)
	Update(ctx context.Context, id string, req run.UpdateRunRequest) (run.RunResponse, error)
	Delete(ctx context.Context, id string) error

	Stops(ctx context.Context, id string) ([]run.StopResponse, error)
	Optimize(ctx context.Context, id string, req run.OptimizeRequest) (run.OptimizeResponse, error)
}

type runServiceImpl struct {
	db        *database.DB
	runRepo   run.Repository
	assembler *Assembler
	sequencer *Sequencer
}

func NewRunService(db *database.DB, runRepo run.Repository, assembler *Assembler, sequencer *Sequencer) RunService {
	return &runServiceImpl{
		db:        db,
		runRepo:   runRepo,
		assembler: assembler,
		sequencer: sequencer,
	}
}

func (s *runServiceImpl) Create(ctx context.Context, req run.CreateRunRequest) (run.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return run.RunResponse{}, err
	}

	runDate, _ := time.Parse("2006-01-02", req.RunDate)
	r := run.DailyRun{
		RunDate:   runDate,
		RouteDay:  req.RouteDay,
		RouteArea: req.RouteArea,
		Slot:      routing.Slot(req.Slot),
		Vehicle:   req.Vehicle,
		Crew:      req.Crew,
		Notes:     req.Notes,
	}

	created, err := s.runRepo.Create(ctx, r)
	if err != nil {
		return run.RunResponse{}, err
	}
	return created.ToResponse(), nil
}

func (s *runServiceImpl) Get(ctx context.Context, id string) (run.RunResponse, error) {
	r, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return run.RunResponse{}, err
	}
	return r.ToResponse(), nil
}

func (s *runServiceImpl) List(ctx context.Context, from, to *time.Time) ([]run.RunResponse, error) {
	runs, err := s.runRepo.List(ctx, from, to)
	if err != nil {
		return nil, err
	}

	resp := make([]run.RunResponse, len(runs))
	for i := range runs {
		resp[i] = runs[i].ToResponse()
	}
	return resp, nil
}

func (s *runServiceImpl) Update(ctx context.Context, id string, req run.UpdateRunRequest) (run.RunResponse, error) {
	r, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return run.RunResponse{}, err
	}

	if req.Vehicle != nil {
		r.Vehicle = *req.Vehicle
	}
	if req.Crew != nil {
		r.Crew = *req.Crew
	}
	if req.Notes != nil {
		r.Notes = *req.Notes
	}

	updated, err := s.runRepo.Update(ctx, r)
	if err != nil {
		return run.RunResponse{}, err
	}
	return updated.ToResponse(), nil
}

func (s *runServiceImpl) Delete(ctx context.Context, id string) error {
	return s.runRepo.Delete(ctx, id)
}

func (s *runServiceImpl) Stops(ctx context.Context, id string) ([]run.StopResponse, error) {
	r, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stops, err := s.assembler.AssembleStops(ctx, r)
	if err != nil {
		return nil, err
	}

	resp := make([]run.StopResponse, len(stops))
	for i := range stops {
		resp[i] = stops[i].ToResponse()
	}
	return resp, nil
}

func (s *runServiceImpl) Optimize(ctx context.Context, id string, req run.OptimizeRequest) (run.OptimizeResponse, error) {
	r, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return run.OptimizeResponse{}, err
	}

	stops, err := s.assembler.AssembleStops(ctx, r)
	if err != nil {
		return run.OptimizeResponse{}, err
	}

	result, err := s.sequencer.OptimizeOrder(ctx, r, stops, req.Origin, req.Destination)
	if err != nil {
		return run.OptimizeResponse{}, err
	}

	return run.OptimizeResponse{
		StopOrder: result.Order,
		Truncated: result.Truncated,
	}, nil
}
