package stripe

import (
	"fmt"

	"github.com/shopspring/decimal"
	stripeSDK "github.com/stripe/stripe-go/v81"
)

// CheckoutItem is one basket line to charge for.
type CheckoutItem struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal // GBP
}

// CreatePaymentCheckoutRequest creates a one-off payment checkout session
// for a booking basket.
type CreatePaymentCheckoutRequest struct {
	BookingID      string
	CustomerEmail  string
	Items          []CheckoutItem
	SuccessURL     string
	CancelURL      string
	IdempotencyKey string
}

// CreateSubscriptionCheckoutRequest creates a recurring checkout session
// against a preconfigured price.
type CreateSubscriptionCheckoutRequest struct {
	SubscriptionID string
	CustomerEmail  string
	PriceID        string
	SuccessURL     string
	CancelURL      string
	IdempotencyKey string
}

// CheckoutSession is the subset of the Stripe session the handlers need.
type CheckoutSession struct {
	ID  string
	URL string
}

var pence = decimal.NewFromInt(100)

// CreatePaymentCheckout creates a payment-mode checkout session. Unit
// prices are converted from pounds to whole pence.
func (c *Client) CreatePaymentCheckout(req CreatePaymentCheckoutRequest) (*CheckoutSession, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}

	lineItems := make([]*stripeSDK.CheckoutSessionLineItemParams, len(req.Items))
	for i, item := range req.Items {
		lineItems[i] = &stripeSDK.CheckoutSessionLineItemParams{
			PriceData: &stripeSDK.CheckoutSessionLineItemPriceDataParams{
				Currency: stripeSDK.String(string(stripeSDK.CurrencyGBP)),
				ProductData: &stripeSDK.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripeSDK.String(item.Name),
				},
				UnitAmount: stripeSDK.Int64(item.UnitPrice.Mul(pence).IntPart()),
			},
			Quantity: stripeSDK.Int64(int64(item.Quantity)),
		}
	}

	params := &stripeSDK.CheckoutSessionParams{
		Mode:              stripeSDK.String(string(stripeSDK.CheckoutSessionModePayment)),
		LineItems:         lineItems,
		CustomerEmail:     stripeSDK.String(req.CustomerEmail),
		SuccessURL:        stripeSDK.String(req.SuccessURL),
		CancelURL:         stripeSDK.String(req.CancelURL),
		ClientReferenceID: stripeSDK.String(req.BookingID),
	}
	params.AddMetadata("booking_id", req.BookingID)
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	sess, err := c.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %s", apiErrorMessage(err))
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// CreateSubscriptionCheckout creates a subscription-mode checkout session.
func (c *Client) CreateSubscriptionCheckout(req CreateSubscriptionCheckoutRequest) (*CheckoutSession, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	if req.PriceID == "" {
		return nil, ErrNotConfigured
	}

	params := &stripeSDK.CheckoutSessionParams{
		Mode: stripeSDK.String(string(stripeSDK.CheckoutSessionModeSubscription)),
		LineItems: []*stripeSDK.CheckoutSessionLineItemParams{
			{
				Price:    stripeSDK.String(req.PriceID),
				Quantity: stripeSDK.Int64(1),
			},
		},
		CustomerEmail:     stripeSDK.String(req.CustomerEmail),
		SuccessURL:        stripeSDK.String(req.SuccessURL),
		CancelURL:         stripeSDK.String(req.CancelURL),
		ClientReferenceID: stripeSDK.String(req.SubscriptionID),
	}
	params.AddMetadata("subscription_id", req.SubscriptionID)
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	sess, err := c.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %s", apiErrorMessage(err))
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}
