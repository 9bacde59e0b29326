package stripe

import (
	"errors"

	stripeSDK "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/clearway/collections-backend-go/internal/config"
)

// ErrNotConfigured is returned when checkout is requested without a Stripe
// secret key. The service boots fine without one; only payment endpoints
// report it.
var ErrNotConfigured = errors.New("stripe is not configured")

// Client wraps the official Stripe SDK.
type Client struct {
	sc     *client.API
	prices config.StripeConfig
}

// NewClient creates a new Stripe client using the official SDK. A nil
// client is returned when no secret key is configured.
func NewClient(cfg config.StripeConfig) *Client {
	if cfg.SecretKey == "" {
		return nil
	}

	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)

	return &Client{sc: sc, prices: cfg}
}

// PriceID returns the configured recurring price for a frequency, or ""
// when the frequency has no price set up.
func (c *Client) PriceID(frequency string) string {
	switch frequency {
	case "weekly":
		return c.prices.PriceWeekly
	case "fortnightly":
		return c.prices.PriceFortnightly
	case "threeweekly":
		return c.prices.PriceThreeWeekly
	}
	return ""
}

// apiErrorMessage unwraps the SDK error type for logging.
func apiErrorMessage(err error) string {
	var stripeErr *stripeSDK.Error
	if errors.As(err, &stripeErr) {
		return string(stripeErr.Code) + ": " + stripeErr.Msg
	}
	return err.Error()
}
