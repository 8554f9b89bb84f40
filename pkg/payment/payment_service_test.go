package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
)

type fakeIntents struct {
	got    *stripe.PaymentIntentParams
	status stripe.PaymentIntentStatus
	err    error
}

func (f *fakeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{ID: "pi_123", Status: f.status}, nil
}

func TestProcessPaymentSendsMinorUnits(t *testing.T) {
	fake := &fakeIntents{status: stripe.PaymentIntentStatusSucceeded}
	svc := newStripeService(fake, "")

	id, err := svc.ProcessPayment(context.Background(), "42", decimal.RequireFromString("150.5"), "pm_card_visa")
	require.NoError(t, err)
	assert.Equal(t, "pi_123", id)

	require.NotNil(t, fake.got)
	assert.Equal(t, int64(15050), *fake.got.Amount)
	assert.Equal(t, "inr", *fake.got.Currency)
	assert.Equal(t, "pm_card_visa", *fake.got.PaymentMethod)
	assert.True(t, *fake.got.Confirm)
	assert.Equal(t, "42", fake.got.Metadata["order_reference"])
}

func TestProcessPaymentRejectsNonPositiveAmount(t *testing.T) {
	fake := &fakeIntents{}
	svc := newStripeService(fake, "usd")

	_, err := svc.ProcessPayment(context.Background(), "1", decimal.Zero, "pm")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Nil(t, fake.got)
}

func TestProcessPaymentRequiresAction(t *testing.T) {
	fake := &fakeIntents{status: stripe.PaymentIntentStatusRequiresAction}
	svc := newStripeService(fake, "usd")

	id, err := svc.ProcessPayment(context.Background(), "1", decimal.NewFromInt(5), "pm")
	assert.ErrorIs(t, err, ErrNotCompleted)
	assert.Equal(t, "pi_123", id)
}

func TestProcessPaymentStripeError(t *testing.T) {
	fake := &fakeIntents{err: errors.New("card declined")}
	svc := newStripeService(fake, "usd")

	_, err := svc.ProcessPayment(context.Background(), "1", decimal.NewFromInt(5), "pm")
	assert.ErrorContains(t, err, "card declined")
}

func TestMinorUnitsRounds(t *testing.T) {
	assert.Equal(t, int64(1000), minorUnits(decimal.RequireFromString("9.999")))
	assert.Equal(t, int64(4025), minorUnits(decimal.RequireFromString("40.25")))
}
