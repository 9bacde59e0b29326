package booking

import (
	"context"
	"time"

	"github.com/clearway/collections-backend-go/internal/domain/booking"
	"github.com/clearway/collections-backend-go/internal/domain/notification"
	"github.com/clearway/collections-backend-go/internal/domain/routing"
	notificationService "github.com/clearway/collections-backend-go/internal/service/notification"
	routingService "github.com/clearway/collections-backend-go/internal/service/routing"
	"github.com/clearway/collections-backend-go/internal/service/schedule"
)

// CreateResult pairs the created booking with the best-effort confirmation
// email enqueue.
type CreateResult struct {
	Booking      booking.BookingResponse
	Notification notificationService.EnqueueOutcome
}

type BookingService interface {
	Create(ctx context.Context, req booking.CreateBookingRequest) (CreateResult, error)
	Get(ctx context.Context, id string) (booking.BookingResponse, error)
	List(ctx context.Context, statuses []string) ([]booking.BookingResponse, error)
	Update(ctx context.Context, id string, req booking.UpdateBookingRequest) (booking.BookingResponse, error)
	Delete(ctx context.Context, id string) error

	Cancel(ctx context.Context, id string) (booking.BookingResponse, error)
	Complete(ctx context.Context, id string) (booking.BookingResponse, error)
	Uncomplete(ctx context.Context, id string) (booking.BookingResponse, error)
}

type bookingServiceImpl struct {
	bookingRepo booking.Repository
	ruleRepo    routing.RouteRuleRepository
	matcher     *routingService.Matcher
	calc        *schedule.Calculator
	notifier    notificationService.Service
}

func NewBookingService(
	bookingRepo booking.Repository,
	ruleRepo routing.RouteRuleRepository,
	matcher *routingService.Matcher,
	calc *schedule.Calculator,
	notifier notificationService.Service,
) BookingService {
	return &bookingServiceImpl{
		bookingRepo: bookingRepo,
		ruleRepo:    ruleRepo,
		matcher:     matcher,
		calc:        calc,
		notifier:    notifier,
	}
}

func (s *bookingServiceImpl) Create(ctx context.Context, req booking.CreateBookingRequest) (CreateResult, error) {
	if err := req.Validate(); err != nil {
		return CreateResult{}, err
	}

	serviceDate, _ := time.Parse("2006-01-02", req.ServiceDate)
	items := make([]booking.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = booking.Item{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}

	b := booking.Booking{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Address:       req.Address,
		Postcode:      routing.NormalizePostcode(req.Postcode),
		ServiceDate:   &serviceDate,
		Status:        booking.StatusConfirmed,
		Items:         items,
		Total:         booking.ItemTotal(items),
	}

	if req.RouteDay != nil || req.RouteArea != nil || req.RouteSlot != nil {
		if req.RouteDay != nil {
			b.RouteDay = *req.RouteDay
		}
		if req.RouteArea != nil {
			b.RouteArea = *req.RouteArea
		}
		if req.RouteSlot != nil {
			b.RouteSlot = routing.Slot(*req.RouteSlot)
		}
	} else {
		rules, err := s.ruleRepo.ListActive(ctx)
		if err != nil {
			return CreateResult{}, err
		}
		match := s.matcher.Match(req.Postcode, rules)
		if match.Default != nil {
			b.RouteDay = match.Default.RouteDay
			b.RouteArea = match.Default.RouteArea
			b.RouteSlot = match.Default.Slot
		}
	}

	created, err := s.bookingRepo.Create(ctx, b)
	if err != nil {
		return CreateResult{}, err
	}

	outcome := s.notifier.Enqueue(ctx, created.CustomerEmail, notification.BookingConfirmedPayload{
		BookingID:    created.ID,
		CustomerName: created.CustomerName,
		ServiceDate:  req.ServiceDate,
		Total:        created.Total.StringFixed(2),
	})

	return CreateResult{Booking: created.ToResponse(), Notification: outcome}, nil
}

func (s *bookingServiceImpl) Get(ctx context.Context, id string) (booking.BookingResponse, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return booking.BookingResponse{}, err
	}
	return b.ToResponse(), nil
}

func (s *bookingServiceImpl) List(ctx context.Context, statuses []string) ([]booking.BookingResponse, error) {
	bookings, err := s.bookingRepo.List(ctx, statuses)
	if err != nil {
		return nil, err
	}

	resp := make([]booking.BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = bookings[i].ToResponse()
	}
	return resp, nil
}

func (s *bookingServiceImpl) Update(ctx context.Context, id string, req booking.UpdateBookingRequest) (booking.BookingResponse, error) {
	if err := req.Validate(); err != nil {
		return booking.BookingResponse{}, err
	}

	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return booking.BookingResponse{}, err
	}

	if req.CustomerName != nil {
		b.CustomerName = *req.CustomerName
	}
	if req.CustomerEmail != nil {
		b.CustomerEmail = *req.CustomerEmail
	}
	if req.CustomerPhone != nil {
		b.CustomerPhone = *req.CustomerPhone
	}
	if req.Address != nil {
		b.Address = *req.Address
	}
	if req.ServiceDate != nil {
		serviceDate, _ := time.Parse("2006-01-02", *req.ServiceDate)
		b.ServiceDate = &serviceDate
	}
	if req.Status != nil {
		b.Status = booking.Status(*req.Status)
	}

	manualRoute := req.RouteDay != nil || req.RouteArea != nil || req.RouteSlot != nil
	if req.RouteDay != nil {
		b.RouteDay = *req.RouteDay
	}
	if req.RouteArea != nil {
		b.RouteArea = *req.RouteArea
	}
	if req.RouteSlot != nil {
		b.RouteSlot = routing.Slot(*req.RouteSlot)
	}

	// A postcode change re-derives the route unless this update also sets
	// route fields by hand.
	if req.Postcode != nil {
		b.Postcode = routing.NormalizePostcode(*req.Postcode)
		if !manualRoute {
			rules, err := s.ruleRepo.ListActive(ctx)
			if err != nil {
				return booking.BookingResponse{}, err
			}
			match := s.matcher.Match(*req.Postcode, rules)
			if match.Default != nil {
				b.RouteDay = match.Default.RouteDay
				b.RouteArea = match.Default.RouteArea
				b.RouteSlot = match.Default.Slot
			}
		}
	}

	updated, err := s.bookingRepo.Update(ctx, b)
	if err != nil {
		return booking.BookingResponse{}, err
	}
	return updated.ToResponse(), nil
}

func (s *bookingServiceImpl) Delete(ctx context.Context, id string) error {
	return s.bookingRepo.Delete(ctx, id)
}

func (s *bookingServiceImpl) Cancel(ctx context.Context, id string) (booking.BookingResponse, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return booking.BookingResponse{}, err
	}
	if b.Status.Cancelled() {
		return booking.BookingResponse{}, booking.ErrAlreadyCancelled
	}

	if err := s.bookingRepo.UpdateStatus(ctx, id, booking.StatusCancelled); err != nil {
		return booking.BookingResponse{}, err
	}
	b.Status = booking.StatusCancelled
	return b.ToResponse(), nil
}

// Complete stamps the booking as done. Completing an already completed
// booking refreshes the timestamp, which drivers hitting the button twice
// cannot tell apart from the first press.
func (s *bookingServiceImpl) Complete(ctx context.Context, id string) (booking.BookingResponse, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return booking.BookingResponse{}, err
	}

	now := s.calc.Now()
	if err := s.bookingRepo.SetCompleted(ctx, id, &now); err != nil {
		return booking.BookingResponse{}, err
	}
	b.Status = booking.StatusCompleted
	b.CompletedAt = &now
	return b.ToResponse(), nil
}

func (s *bookingServiceImpl) Uncomplete(ctx context.Context, id string) (booking.BookingResponse, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return booking.BookingResponse{}, err
	}

	if err := s.bookingRepo.SetCompleted(ctx, id, nil); err != nil {
		return booking.BookingResponse{}, err
	}
	b.Status = booking.StatusConfirmed
	b.CompletedAt = nil
	return b.ToResponse(), nil
}
