// Package payment creates hosted checkout sessions for appointment prepayments.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

// ErrNotConfigured is returned when no payment provider credentials are set.
var ErrNotConfigured = errors.New("online payments are not configured")

// CheckoutRequest describes the amount to collect for an appointment.
type CheckoutRequest struct {
	AppointmentID string
	Description   string
	Option        models.PaymentOption
	Amount        int64
	Currency      string
}

// Checkout is the provider's answer: a reference and the URL to redirect the client to.
type Checkout struct {
	ProviderRef string
	RedirectURL string
}

// Provider creates checkouts.
type Provider interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
}

// Disabled rejects every checkout.
type Disabled struct{}

// CreateCheckout implements Provider.
func (Disabled) CreateCheckout(context.Context, CheckoutRequest) (*Checkout, error) {
	return nil, ErrNotConfigured
}

type sessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeProvider creates Stripe Checkout sessions in payment mode.
type StripeProvider struct {
	sessions   sessionCreator
	successURL string
	cancelURL  string
}

// NewProvider returns a Stripe provider, or Disabled when secretKey is empty.
func NewProvider(secretKey, successURL, cancelURL string) Provider {
	secretKey = strings.TrimSpace(secretKey)
	if secretKey == "" {
		return Disabled{}
	}
	client := &checkoutsession.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
	return newStripeProvider(client, successURL, cancelURL)
}

func newStripeProvider(sessions sessionCreator, successURL, cancelURL string) *StripeProvider {
	return &StripeProvider{sessions: sessions, successURL: successURL, cancelURL: cancelURL}
}

// CreateCheckout opens a checkout session for req. Amounts are whole currency
// units and are sent to Stripe in cents. The appointment and option form the
// idempotency key, so a retried request reuses the same session.
func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("checkout amount must be positive, got %d", req.Amount)
	}
	description := req.Description
	if description == "" {
		description = "Appointment " + req.AppointmentID
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.successURL),
		CancelURL:         stripe.String(p.cancelURL),
		ClientReferenceID: stripe.String(req.AppointmentID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.Amount * 100),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"appointment_id": req.AppointmentID,
			"payment_option": string(req.Option),
		},
	}
	params.Context = ctx
	// A changed amount must not reuse a key Stripe already bound to other parameters.
	params.IdempotencyKey = stripe.String(fmt.Sprintf("checkout:%s:%s:%d", req.AppointmentID, req.Option, req.Amount))

	sess, err := p.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe checkout session: %w", err)
	}
	return &Checkout{ProviderRef: sess.ID, RedirectURL: sess.URL}, nil
}
