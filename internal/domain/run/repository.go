package run

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r DailyRun) (DailyRun, error)
	GetByID(ctx context.Context, id string) (DailyRun, error)
	List(ctx context.Context, from, to *time.Time) ([]DailyRun, error)
	ListByDate(ctx context.Context, date time.Time) ([]DailyRun, error)
	Update(ctx context.Context, r DailyRun) (DailyRun, error)
	UpdateStopOrder(ctx context.Context, id string, order []StopRef) error
	Delete(ctx context.Context, id string) error
}
