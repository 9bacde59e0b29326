package stripe

import (
	stripeSDK "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

// WebhookVerifier checks event signatures against the endpoint secret.
type WebhookVerifier struct {
	secret string
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// ConstructEvent verifies the Stripe-Signature header and parses the event.
func (v *WebhookVerifier) ConstructEvent(payload []byte, sigHeader string) (stripeSDK.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, v.secret)
}

// Event types the billing service reacts to. Everything else is
// acknowledged and ignored.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventSubscriptionUpdated      = "customer.subscription.updated"
	EventSubscriptionDeleted      = "customer.subscription.deleted"
	EventInvoicePaymentFailed     = "invoice.payment_failed"
)
