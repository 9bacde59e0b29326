package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	stripeSDK "github.com/stripe/stripe-go/v81"

	"github.com/clearway/collections-backend-go/internal/domain/booking"
	"github.com/clearway/collections-backend-go/internal/domain/notification"
	"github.com/clearway/collections-backend-go/internal/domain/subscription"
	"github.com/clearway/collections-backend-go/internal/pkg/stripe"
	notificationService "github.com/clearway/collections-backend-go/internal/service/notification"
)

// ErrInvalidSignature marks a webhook whose signature did not verify.
// These are rejected permanently rather than retried.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// CheckoutResponse points the storefront at a hosted payment page.
type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type BillingService interface {
	// CreateBookingCheckout opens a one-off payment session for a pending
	// booking and stores the session ID against it.
	CreateBookingCheckout(ctx context.Context, bookingID string) (CheckoutResponse, error)
	// CreateSubscriptionCheckout opens a recurring checkout session for a
	// pending subscription using the price configured for its frequency.
	CreateSubscriptionCheckout(ctx context.Context, subscriptionID string) (CheckoutResponse, error)
	// HandleWebhook verifies and applies a Stripe event. Unrecognized event
	// types are acknowledged without effect; Stripe retries on error.
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

type billingServiceImpl struct {
	client   *stripe.Client
	verifier *stripe.WebhookVerifier

	bookingRepo booking.Repository
	subRepo     subscription.Repository
	notifier    notificationService.Service

	frontendURL string
	logger      *slog.Logger
}

func NewBillingService(
	client *stripe.Client,
	verifier *stripe.WebhookVerifier,
	bookingRepo booking.Repository,
	subRepo subscription.Repository,
	notifier notificationService.Service,
	frontendURL string,
	logger *slog.Logger,
) BillingService {
	return &billingServiceImpl{
		client:      client,
		verifier:    verifier,
		bookingRepo: bookingRepo,
		subRepo:     subRepo,
		notifier:    notifier,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

func (s *billingServiceImpl) CreateBookingCheckout(ctx context.Context, bookingID string) (CheckoutResponse, error) {
	if s.client == nil {
		return CheckoutResponse{}, stripe.ErrNotConfigured
	}

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return CheckoutResponse{}, err
	}
	if b.Status.Cancelled() {
		return CheckoutResponse{}, booking.ErrAlreadyCancelled
	}
	if len(b.Items) == 0 {
		return CheckoutResponse{}, booking.ErrEmptyBasket
	}

	items := make([]stripe.CheckoutItem, len(b.Items))
	for i, it := range b.Items {
		items[i] = stripe.CheckoutItem{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}

	sess, err := s.client.CreatePaymentCheckout(stripe.CreatePaymentCheckoutRequest{
		BookingID:      b.ID,
		CustomerEmail:  b.CustomerEmail,
		Items:          items,
		SuccessURL:     s.frontendURL + "/booking/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      s.frontendURL + "/booking/cancelled",
		IdempotencyKey: "booking-checkout-" + b.ID + "-" + uuid.NewString(),
	})
	if err != nil {
		return CheckoutResponse{}, err
	}

	b.StripeCheckoutSessionID = &sess.ID
	if _, err := s.bookingRepo.Update(ctx, b); err != nil {
		return CheckoutResponse{}, err
	}

	return CheckoutResponse{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

func (s *billingServiceImpl) CreateSubscriptionCheckout(ctx context.Context, subscriptionID string) (CheckoutResponse, error) {
	if s.client == nil {
		return CheckoutResponse{}, stripe.ErrNotConfigured
	}

	sub, err := s.subRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return CheckoutResponse{}, err
	}

	sess, err := s.client.CreateSubscriptionCheckout(stripe.CreateSubscriptionCheckoutRequest{
		SubscriptionID: sub.ID,
		CustomerEmail:  sub.CustomerEmail,
		PriceID:        s.client.PriceID(string(sub.Frequency)),
		SuccessURL:     s.frontendURL + "/subscribe/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      s.frontendURL + "/subscribe/cancelled",
		IdempotencyKey: "subscription-checkout-" + sub.ID + "-" + uuid.NewString(),
	})
	if err != nil {
		return CheckoutResponse{}, err
	}

	return CheckoutResponse{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

func (s *billingServiceImpl) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.verifier.ConstructEvent(payload, sigHeader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	switch string(event.Type) {
	case stripe.EventCheckoutSessionCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	case stripe.EventSubscriptionUpdated:
		return s.handleSubscriptionUpdated(ctx, event)
	case stripe.EventSubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, event)
	case stripe.EventInvoicePaymentFailed:
		return s.handlePaymentFailed(ctx, event)
	}

	s.logger.Debug("ignoring stripe event", slog.String("type", string(event.Type)))
	return nil
}

func (s *billingServiceImpl) handleCheckoutCompleted(ctx context.Context, event stripeSDK.Event) error {
	var sess stripeSDK.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("parse checkout session: %w", err)
	}

	switch sess.Mode {
	case stripeSDK.CheckoutSessionModePayment:
		b, err := s.bookingRepo.GetByCheckoutSessionID(ctx, sess.ID)
		if err != nil {
			return err
		}
		b.Status = booking.StatusConfirmed
		if sess.PaymentIntent != nil {
			b.StripePaymentIntentID = &sess.PaymentIntent.ID
		}
		if _, err := s.bookingRepo.Update(ctx, b); err != nil {
			return err
		}
		s.logger.Info("booking payment confirmed", slog.String("booking_id", b.ID))
		return nil

	case stripeSDK.CheckoutSessionModeSubscription:
		sub, err := s.subRepo.GetByID(ctx, sess.ClientReferenceID)
		if err != nil {
			return err
		}
		sub.Status = subscription.StatusActive
		if sess.Customer != nil {
			sub.StripeCustomerID = &sess.Customer.ID
		}
		if sess.Subscription != nil {
			sub.StripeSubscriptionID = &sess.Subscription.ID
		}
		if _, err := s.subRepo.Update(ctx, sub); err != nil {
			return err
		}
		s.logger.Info("subscription activated", slog.String("subscription_id", sub.ID))
		return nil
	}

	return nil
}

func (s *billingServiceImpl) handleSubscriptionUpdated(ctx context.Context, event stripeSDK.Event) error {
	var stripeSub stripeSDK.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return fmt.Errorf("parse subscription: %w", err)
	}

	sub, err := s.subRepo.GetByStripeSubscriptionID(ctx, stripeSub.ID)
	if err != nil {
		return err
	}

	status, ok := mapStripeStatus(stripeSub.Status)
	if !ok {
		s.logger.Warn("unmapped stripe subscription status",
			slog.String("subscription_id", sub.ID),
			slog.String("stripe_status", string(stripeSub.Status)))
		return nil
	}

	// A local pause is an operational state Stripe knows nothing about;
	// sync must not silently unpause.
	if sub.Status == subscription.StatusPaused && status == subscription.StatusActive {
		return nil
	}

	return s.subRepo.UpdateStatus(ctx, sub.ID, status)
}

func (s *billingServiceImpl) handleSubscriptionDeleted(ctx context.Context, event stripeSDK.Event) error {
	var stripeSub stripeSDK.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return fmt.Errorf("parse subscription: %w", err)
	}

	sub, err := s.subRepo.GetByStripeSubscriptionID(ctx, stripeSub.ID)
	if err != nil {
		return err
	}

	sub.Status = subscription.StatusCancelled
	sub.NextCollectionDate = nil
	_, err = s.subRepo.Update(ctx, sub)
	return err
}

func (s *billingServiceImpl) handlePaymentFailed(ctx context.Context, event stripeSDK.Event) error {
	var invoice stripeSDK.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("parse invoice: %w", err)
	}
	if invoice.Subscription == nil {
		return nil
	}

	sub, err := s.subRepo.GetByStripeSubscriptionID(ctx, invoice.Subscription.ID)
	if err != nil {
		return err
	}

	if err := s.subRepo.UpdateStatus(ctx, sub.ID, subscription.StatusPastDue); err != nil {
		return err
	}

	outcome := s.notifier.Enqueue(ctx, sub.CustomerEmail, notification.PaymentFailedPayload{
		SubscriptionID: sub.ID,
		CustomerName:   sub.CustomerName,
	})
	if outcome.Err != nil {
		s.logger.Error("failed to queue payment-failed notification",
			slog.String("subscription_id", sub.ID),
			slog.Any("error", outcome.Err))
	}

	return nil
}

// mapStripeStatus translates Stripe's lifecycle into the local one. Local
// operational states (paused) have no Stripe counterpart and are managed
// here, not synced.
func mapStripeStatus(status stripeSDK.SubscriptionStatus) (subscription.Status, bool) {
	switch status {
	case stripeSDK.SubscriptionStatusActive:
		return subscription.StatusActive, true
	case stripeSDK.SubscriptionStatusTrialing:
		return subscription.StatusTrialing, true
	case stripeSDK.SubscriptionStatusPastDue, stripeSDK.SubscriptionStatusUnpaid:
		return subscription.StatusPastDue, true
	case stripeSDK.SubscriptionStatusCanceled, stripeSDK.SubscriptionStatusIncompleteExpired:
		return subscription.StatusCancelled, true
	case stripeSDK.SubscriptionStatusIncomplete:
		return subscription.StatusPending, true
	}
	return "", false
}
