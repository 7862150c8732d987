package gateway

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
)

// PaymentGateway creates an external charge and hands back the provider's
// reference id plus the client secret the frontend needs to complete it.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount float64, description string) (Intent, error)
}

type Intent struct {
	Ref          string `json:"ref"`
	ClientSecret string `json:"client_secret"`
}

type StripeGateway struct {
	client *stripe.Client
}

func NewStripeGateway(apiKey string) *StripeGateway {
	if apiKey == "" {
		return &StripeGateway{}
	}
	return &StripeGateway{client: stripe.NewClient(apiKey)}
}

// CreateIntent charges in INR; Stripe takes the amount in paise. Without an
// API key the gateway runs in simulation mode and mints a local reference, so
// the booking flow stays testable offline.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount float64, description string) (Intent, error) {
	if amount < 0.5 {
		amount = 0.5
	}

	if g.client == nil {
		ref := "pi_sim_" + uuid.NewString()
		return Intent{Ref: ref, ClientSecret: ref + "_secret"}, nil
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:      stripe.Int64(int64(math.Round(amount * 100.0))),
		Currency:    stripe.String(string(stripe.CurrencyINR)),
		Description: stripe.String(description),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := g.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe create intent: %w", err)
	}
	return Intent{Ref: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
