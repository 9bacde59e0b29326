package billing

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripeSDK "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/clearway/collections-backend-go/internal/domain/booking"
	"github.com/clearway/collections-backend-go/internal/domain/notification"
	"github.com/clearway/collections-backend-go/internal/domain/subscription"
	"github.com/clearway/collections-backend-go/internal/pkg/stripe"
	notificationService "github.com/clearway/collections-backend-go/internal/service/notification"
)

const webhookSecret = "whsec_test"

type fakeBookingRepo struct {
	booking.Repository

	bySession map[string]booking.Booking
	updated   *booking.Booking
}

func (f *fakeBookingRepo) GetByCheckoutSessionID(ctx context.Context, sessionID string) (booking.Booking, error) {
	b, ok := f.bySession[sessionID]
	if !ok {
		return booking.Booking{}, booking.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) Update(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	f.updated = &b
	return b, nil
}

type fakeSubRepo struct {
	subscription.Repository

	byID       map[string]subscription.Subscription
	byStripeID map[string]subscription.Subscription

	updated       *subscription.Subscription
	statusUpdates map[string]subscription.Status
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{
		byID:          map[string]subscription.Subscription{},
		byStripeID:    map[string]subscription.Subscription{},
		statusUpdates: map[string]subscription.Status{},
	}
}

func (f *fakeSubRepo) GetByID(ctx context.Context, id string) (subscription.Subscription, error) {
	sub, ok := f.byID[id]
	if !ok {
		return subscription.Subscription{}, subscription.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (f *fakeSubRepo) GetByStripeSubscriptionID(ctx context.Context, stripeID string) (subscription.Subscription, error) {
	sub, ok := f.byStripeID[stripeID]
	if !ok {
		return subscription.Subscription{}, subscription.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (f *fakeSubRepo) Update(ctx context.Context, sub subscription.Subscription) (subscription.Subscription, error) {
	f.updated = &sub
	return sub, nil
}

func (f *fakeSubRepo) UpdateStatus(ctx context.Context, id string, status subscription.Status) error {
	f.statusUpdates[id] = status
	return nil
}

type fakeNotifier struct {
	recipients []string
	payloads   []notification.Payload
}

func (f *fakeNotifier) Enqueue(ctx context.Context, recipient string, payload notification.Payload) notificationService.EnqueueOutcome {
	f.recipients = append(f.recipients, recipient)
	f.payloads = append(f.payloads, payload)
	return notificationService.EnqueueOutcome{Queued: true}
}

func (f *fakeNotifier) DrainPending(ctx context.Context, limit int) error {
	return nil
}

func newTestService(bookings *fakeBookingRepo, subs *fakeSubRepo, notifier *fakeNotifier) BillingService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier := stripe.NewWebhookVerifier(webhookSecret)
	return NewBillingService(nil, verifier, bookings, subs, notifier, "http://localhost:3000", logger)
}

// sign produces a Stripe-Signature header the verifier accepts.
func sign(payload string) string {
	now := time.Now()
	sig := webhook.ComputeSignature(now, []byte(payload), webhookSecret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

// event builds a signed-payload body. The verifier rejects events from a
// different API version than the SDK pin, so the version is set explicitly.
func event(eventType, object string) string {
	return fmt.Sprintf(`{"id":"evt_1","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripeSDK.APIVersion, eventType, object)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	svc := newTestService(&fakeBookingRepo{}, newFakeSubRepo(), &fakeNotifier{})

	payload := event("checkout.session.completed", `{}`)
	err := svc.HandleWebhook(context.Background(), []byte(payload), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHandleWebhookIgnoresUnknownEvents(t *testing.T) {
	svc := newTestService(&fakeBookingRepo{}, newFakeSubRepo(), &fakeNotifier{})

	payload := event("charge.refunded", `{"id":"ch_1"}`)
	err := svc.HandleWebhook(context.Background(), []byte(payload), sign(payload))
	assert.NoError(t, err)
}

func TestCheckoutCompletedConfirmsBooking(t *testing.T) {
	bookings := &fakeBookingRepo{
		bySession: map[string]booking.Booking{
			"cs_1": {ID: "bkg-1", Status: booking.StatusConfirmed},
		},
	}
	svc := newTestService(bookings, newFakeSubRepo(), &fakeNotifier{})

	payload := event("checkout.session.completed",
		`{"id":"cs_1","mode":"payment","payment_intent":"pi_1"}`)
	err := svc.HandleWebhook(context.Background(), []byte(payload), sign(payload))
	require.NoError(t, err)

	require.NotNil(t, bookings.updated)
	assert.Equal(t, booking.StatusConfirmed, bookings.updated.Status)
	require.NotNil(t, bookings.updated.StripePaymentIntentID)
	assert.Equal(t, "pi_1", *bookings.updated.StripePaymentIntentID)
}

func TestCheckoutCompletedActivatesSubscription(t *testing.T) {
	subs := newFakeSubRepo()
	subs.byID["sub-1"] = subscription.Subscription{ID: "sub-1", Status: subscription.StatusPending}
	svc := newTestService(&fakeBookingRepo{}, subs, &fakeNotifier{})

	payload := event("checkout.session.completed",
		`{"id":"cs_2","mode":"subscription","client_reference_id":"sub-1","customer":"cus_1","subscription":"stripe_sub_1"}`)
	err := svc.HandleWebhook(context.Background(), []byte(payload), sign(payload))
	require.NoError(t, err)

	require.NotNil(t, subs.updated)
	assert.Equal(t, subscription.StatusActive, subs.updated.Status)
	require.NotNil(t, subs.updated.StripeCustomerID)
	assert.Equal(t, "cus_1", *subs.updated.StripeCustomerID)
	require.NotNil(t, subs.updated.StripeSubscriptionID)
	assert.Equal(t, "stripe_sub_1", *subs.updated.StripeSubscriptionID)
}

func TestSubscriptionUpdatedSyncsStatus(t *testing.T) {
	subs := newFakeSubRepo()
	subs.byStripeID["stripe_sub_1"] = subscription.Subscription{ID: "sub-1", Status: subscription.StatusActive}
	svc := newTestService(&fakeBookingRepo{}, subs, &fakeNotifier{})

	payload := event("customer.subscription.updated",
		`{"id":"stripe_sub_1","status":"past_due"}`)
	err := svc.HandleWebhook(context.Background(), []byte(payload), sign(payload))
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusPastDue, subs.statusUpdates["sub-1"])
}

func TestSubscriptionUpdatedDoesNotUnpause(t *testing.T) {
	subs := newFakeSubRepo()
	subs.byStripeID["stripe_sub_1"] = subscription.Subscription{ID: "sub-1", Status: subscription.StatusPaused}
	svc := newTestService(&fakeBookingRepo{}, subs, &fakeNotifier{})

	payload := event("customer.subscription.updated",
		`{"id":"stripe_sub_1","status":"active"}`)
	err := svc.HandleWebhook(context.Background(), []byte(payload), sign(payload))
	require.NoError(t, err)

	assert.NotContains(t, subs.statusUpdates, "sub-1")
}

func TestSubscriptionDeletedCancels(t *testing.T) {
	next := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	subs := newFakeSubRepo()
	subs.byStripeID["stripe_sub_1"] = subscription.Subscription{
		ID:                 "sub-1",
		Status:             subscription.StatusActive,
		NextCollectionDate: &next,
	}
	svc := newTestService(&fakeBookingRepo{}, subs, &fakeNotifier{})

	payload := event("customer.subscription.deleted", `{"id":"stripe_sub_1","status":"canceled"}`)
	err := svc.HandleWebhook(context.Background(), []byte(payload), sign(payload))
	require.NoError(t, err)

	require.NotNil(t, subs.updated)
	assert.Equal(t, subscription.StatusCancelled, subs.updated.Status)
	assert.Nil(t, subs.updated.NextCollectionDate)
}

func TestPaymentFailedMarksPastDueAndNotifies(t *testing.T) {
	subs := newFakeSubRepo()
	subs.byStripeID["stripe_sub_1"] = subscription.Subscription{
		ID:            "sub-1",
		Status:        subscription.StatusActive,
		CustomerName:  "Ada Price",
		CustomerEmail: "ada@example.com",
	}
	notifier := &fakeNotifier{}
	svc := newTestService(&fakeBookingRepo{}, subs, notifier)

	payload := event("invoice.payment_failed", `{"id":"in_1","subscription":"stripe_sub_1"}`)
	err := svc.HandleWebhook(context.Background(), []byte(payload), sign(payload))
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusPastDue, subs.statusUpdates["sub-1"])
	require.Len(t, notifier.recipients, 1)
	assert.Equal(t, "ada@example.com", notifier.recipients[0])
	payload2, ok := notifier.payloads[0].(notification.PaymentFailedPayload)
	require.True(t, ok)
	assert.Equal(t, "sub-1", payload2.SubscriptionID)
}

func TestPaymentFailedWithoutSubscriptionIsIgnored(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(&fakeBookingRepo{}, newFakeSubRepo(), notifier)

	payload := event("invoice.payment_failed", `{"id":"in_1"}`)
	err := svc.HandleWebhook(context.Background(), []byte(payload), sign(payload))
	require.NoError(t, err)
	assert.Empty(t, notifier.recipients)
}

func TestCreateBookingCheckoutWithoutStripe(t *testing.T) {
	svc := newTestService(&fakeBookingRepo{}, newFakeSubRepo(), &fakeNotifier{})

	_, err := svc.CreateBookingCheckout(context.Background(), "bkg-1")
	assert.ErrorIs(t, err, stripe.ErrNotConfigured)
}
