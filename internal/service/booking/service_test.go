package booking

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearway/collections-backend-go/internal/domain/booking"
	"github.com/clearway/collections-backend-go/internal/domain/notification"
	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/clearway/collections-backend-go/internal/pkg/validator"
	notificationService "github.com/clearway/collections-backend-go/internal/service/notification"
	routingService "github.com/clearway/collections-backend-go/internal/service/routing"
	"github.com/clearway/collections-backend-go/internal/service/schedule"
)

type fakeBookingRepo struct {
	booking.Repository

	bookings map[string]booking.Booking

	created       *booking.Booking
	updated       *booking.Booking
	statusUpdates map[string]booking.Status
	completedAt   **time.Time
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:      map[string]booking.Booking{},
		statusUpdates: map[string]booking.Status{},
	}
}

func (f *fakeBookingRepo) Create(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	b.ID = "bkg-1"
	f.created = &b
	return b, nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (booking.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return booking.Booking{}, booking.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) Update(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	f.updated = &b
	return b, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id string, status booking.Status) error {
	f.statusUpdates[id] = status
	return nil
}

func (f *fakeBookingRepo) SetCompleted(ctx context.Context, id string, completedAt *time.Time) error {
	f.completedAt = &completedAt
	return nil
}

type fakeRuleRepo struct {
	routing.RouteRuleRepository
	rules []routing.RouteRule
}

func (f *fakeRuleRepo) ListActive(ctx context.Context) ([]routing.RouteRule, error) {
	return f.rules, nil
}

type fakeNotifier struct {
	recipients []string
	payloads   []notification.Payload
	outcome    notificationService.EnqueueOutcome
}

func (f *fakeNotifier) Enqueue(ctx context.Context, recipient string, payload notification.Payload) notificationService.EnqueueOutcome {
	f.recipients = append(f.recipients, recipient)
	f.payloads = append(f.payloads, payload)
	return f.outcome
}

func (f *fakeNotifier) DrainPending(ctx context.Context, limit int) error {
	return nil
}

func newportRule() routing.RouteRule {
	return routing.RouteRule{
		ID:        "rule-1",
		Prefix:    "NP20",
		PrefixKey: "NP20",
		RouteDay:  "Friday",
		RouteArea: "Newport West",
		Slot:      routing.SlotAM,
		Active:    true,
	}
}

func newTestService(repo *fakeBookingRepo, rules *fakeRuleRepo, notifier *fakeNotifier) BookingService {
	calc := schedule.NewCalculator(time.UTC)
	return NewBookingService(repo, rules, routingService.NewMatcher(time.UTC), calc, notifier)
}

func validCreateRequest() booking.CreateBookingRequest {
	return booking.CreateBookingRequest{
		CustomerName:  "Ada Price",
		CustomerEmail: "ada@example.com",
		Address:       "1 High St",
		Postcode:      "np20 4hf",
		ServiceDate:   "2024-06-14",
		Items: []booking.ItemRequest{
			{Name: "Garden waste sack", Quantity: 2, UnitPrice: decimal.NewFromFloat(7.50)},
			{Name: "Mattress", Quantity: 1, UnitPrice: decimal.NewFromFloat(20)},
		},
	}
}

func TestCreateDerivesRouteFromRules(t *testing.T) {
	repo := newFakeBookingRepo()
	rules := &fakeRuleRepo{rules: []routing.RouteRule{newportRule()}}
	notifier := &fakeNotifier{outcome: notificationService.EnqueueOutcome{Queued: true}}
	svc := newTestService(repo, rules, notifier)

	result, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "NP20 4HF", result.Booking.Postcode)
	assert.Equal(t, "Friday", result.Booking.RouteDay)
	assert.Equal(t, "Newport West", result.Booking.RouteArea)
	assert.Equal(t, "AM", result.Booking.RouteSlot)
	assert.Equal(t, string(booking.StatusConfirmed), result.Booking.Status)
	assert.True(t, result.Booking.Total.Equal(decimal.NewFromInt(35)))
	assert.True(t, result.Notification.Queued)

	require.Len(t, notifier.recipients, 1)
	assert.Equal(t, "ada@example.com", notifier.recipients[0])
	payload, ok := notifier.payloads[0].(notification.BookingConfirmedPayload)
	require.True(t, ok)
	assert.Equal(t, "bkg-1", payload.BookingID)
	assert.Equal(t, "35.00", payload.Total)
}

func TestCreateManualRouteSkipsRules(t *testing.T) {
	repo := newFakeBookingRepo()
	rules := &fakeRuleRepo{rules: []routing.RouteRule{newportRule()}}
	svc := newTestService(repo, rules, &fakeNotifier{})

	day, area, slot := "Monday", "Caerphilly", "PM"
	req := validCreateRequest()
	req.RouteDay = &day
	req.RouteArea = &area
	req.RouteSlot = &slot

	result, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Monday", result.Booking.RouteDay)
	assert.Equal(t, "Caerphilly", result.Booking.RouteArea)
	assert.Equal(t, "PM", result.Booking.RouteSlot)
}

func TestCreateOutsideAreaLeavesRouteBlank(t *testing.T) {
	repo := newFakeBookingRepo()
	rules := &fakeRuleRepo{rules: []routing.RouteRule{newportRule()}}
	svc := newTestService(repo, rules, &fakeNotifier{})

	req := validCreateRequest()
	req.Postcode = "CF10 1AA"

	result, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, result.Booking.RouteDay)
	assert.Empty(t, result.Booking.RouteArea)
}

func TestCreateRejectsInvalidRequest(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), &fakeRuleRepo{}, &fakeNotifier{})

	req := validCreateRequest()
	req.Items = nil
	req.CustomerEmail = "not-an-email"

	_, err := svc.Create(context.Background(), req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "items")
	assert.Contains(t, fields, "customer_email")
}

func TestCreateReportsEnqueueFailureWithoutFailing(t *testing.T) {
	repo := newFakeBookingRepo()
	notifier := &fakeNotifier{outcome: notificationService.EnqueueOutcome{Err: assert.AnError}}
	svc := newTestService(repo, &fakeRuleRepo{}, notifier)

	result, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.False(t, result.Notification.Queued)
	assert.Error(t, result.Notification.Err)
	require.NotNil(t, repo.created)
}

func TestUpdatePostcodeRederivesRoute(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.bookings["bkg-1"] = booking.Booking{
		ID:        "bkg-1",
		Postcode:  "CF10 1AA",
		RouteDay:  "Monday",
		RouteArea: "Cardiff Central",
		Status:    booking.StatusConfirmed,
	}
	rules := &fakeRuleRepo{rules: []routing.RouteRule{newportRule()}}
	svc := newTestService(repo, rules, &fakeNotifier{})

	postcode := "NP20 4HF"
	resp, err := svc.Update(context.Background(), "bkg-1", booking.UpdateBookingRequest{Postcode: &postcode})
	require.NoError(t, err)

	assert.Equal(t, "NP20 4HF", resp.Postcode)
	assert.Equal(t, "Friday", resp.RouteDay)
	assert.Equal(t, "Newport West", resp.RouteArea)
}

func TestUpdatePostcodeKeepsManualRoute(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.bookings["bkg-1"] = booking.Booking{ID: "bkg-1", Status: booking.StatusConfirmed}
	rules := &fakeRuleRepo{rules: []routing.RouteRule{newportRule()}}
	svc := newTestService(repo, rules, &fakeNotifier{})

	postcode, day := "NP20 4HF", "Tuesday"
	resp, err := svc.Update(context.Background(), "bkg-1", booking.UpdateBookingRequest{
		Postcode: &postcode,
		RouteDay: &day,
	})
	require.NoError(t, err)

	assert.Equal(t, "Tuesday", resp.RouteDay)
}

func TestCancelTwiceIsRejected(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.bookings["bkg-1"] = booking.Booking{ID: "bkg-1", Status: booking.StatusCancelled}
	svc := newTestService(repo, &fakeRuleRepo{}, &fakeNotifier{})

	_, err := svc.Cancel(context.Background(), "bkg-1")
	assert.ErrorIs(t, err, booking.ErrAlreadyCancelled)
}

func TestCancelUpdatesStatus(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.bookings["bkg-1"] = booking.Booking{ID: "bkg-1", Status: booking.StatusConfirmed}
	svc := newTestService(repo, &fakeRuleRepo{}, &fakeNotifier{})

	resp, err := svc.Cancel(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, string(booking.StatusCancelled), resp.Status)
	assert.Equal(t, booking.StatusCancelled, repo.statusUpdates["bkg-1"])
}

func TestCompleteStampsTimestamp(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.bookings["bkg-1"] = booking.Booking{ID: "bkg-1", Status: booking.StatusConfirmed}
	svc := newTestService(repo, &fakeRuleRepo{}, &fakeNotifier{})

	resp, err := svc.Complete(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, string(booking.StatusCompleted), resp.Status)
	require.NotNil(t, repo.completedAt)
	assert.NotNil(t, *repo.completedAt)
}

func TestUncompleteClearsTimestamp(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.bookings["bkg-1"] = booking.Booking{ID: "bkg-1", Status: booking.StatusCompleted}
	svc := newTestService(repo, &fakeRuleRepo{}, &fakeNotifier{})

	_, err := svc.Uncomplete(context.Background(), "bkg-1")
	require.NoError(t, err)
	require.NotNil(t, repo.completedAt)
	assert.Nil(t, *repo.completedAt)
}
