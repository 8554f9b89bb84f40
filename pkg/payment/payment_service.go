package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

var ErrInvalidAmount = errors.New("invalid payment amount")

// ErrNotCompleted is returned when Stripe accepted the request but the charge
// still needs customer action or failed.
var ErrNotCompleted = errors.New("payment was not completed")

// ServiceInterface defines the contract for a payment processing service.
type ServiceInterface interface {
	ProcessPayment(ctx context.Context, reference string, amount decimal.Decimal, paymentMethodID string) (string, error)
}

// intentCreator is the part of the Stripe PaymentIntents client we call.
type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeService charges orders through Stripe PaymentIntents.
type StripeService struct {
	intents  intentCreator
	currency string
}

func NewStripeService(apiKey, currency string) *StripeService {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return newStripeService(sc.PaymentIntents, currency)
}

func newStripeService(intents intentCreator, currency string) *StripeService {
	if currency == "" {
		currency = "inr"
	}
	return &StripeService{intents: intents, currency: strings.ToLower(currency)}
}

// ProcessPayment confirms a PaymentIntent for amount and returns its id.
// reference is stored as metadata so the charge can be matched to an order.
func (s *StripeService) ProcessPayment(ctx context.Context, reference string, amount decimal.Decimal, paymentMethodID string) (string, error) {
	if !amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	if strings.TrimSpace(paymentMethodID) == "" {
		return "", fmt.Errorf("payment.ProcessPayment: payment method is required")
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(minorUnits(amount)),
		Currency:           stripe.String(s.currency),
		PaymentMethod:      stripe.String(paymentMethodID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
		Description:        stripe.String("Cafe order " + reference),
	}
	params.Context = ctx
	params.AddMetadata("order_reference", reference)

	pi, err := s.intents.New(params)
	if err != nil {
		return "", fmt.Errorf("payment.ProcessPayment: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return pi.ID, fmt.Errorf("payment.ProcessPayment: %w (status %s)", ErrNotCompleted, pi.Status)
	}
	return pi.ID, nil
}

// minorUnits converts 150.5 into 15050.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
