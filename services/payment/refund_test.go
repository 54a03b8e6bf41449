package payment

import (
	"context"
	"errors"
	"testing"

	"wheelhouse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

type MockRefunder struct {
	mock.Mock
}

func (m *MockRefunder) Refund(ctx context.Context, bookingID, paymentIntentID string, amount float64) error {
	return m.Called(ctx, bookingID, paymentIntentID, amount).Error(0)
}

func canceledEvent() models.BookingEvent {
	return models.BookingEvent{
		Type:            models.EventBookingCanceled,
		BookingID:       "b1",
		RefundAmount:    522,
		PaymentStatus:   models.PaymentPaid,
		PaymentIntentID: "pi_123",
	}
}

func TestRefundIssuer_RefundsPaidCancellation(t *testing.T) {
	refunder := new(MockRefunder)
	refunder.On("Refund", mock.Anything, "b1", "pi_123", 522.0).Return(nil)

	require.NoError(t, NewRefundIssuer(refunder, zap.NewNop()).Handle(context.Background(), canceledEvent()))
	refunder.AssertExpectations(t)
}

func TestRefundIssuer_SkipsWhenNothingToRefund(t *testing.T) {
	unpaid := canceledEvent()
	unpaid.PaymentStatus = models.PaymentPending
	strict := canceledEvent()
	strict.RefundAmount = 0
	confirmed := canceledEvent()
	confirmed.Type = models.EventBookingConfirmed

	refunder := new(MockRefunder)
	issuer := NewRefundIssuer(refunder, zap.NewNop())
	for _, e := range []models.BookingEvent{unpaid, strict, confirmed} {
		require.NoError(t, issuer.Handle(context.Background(), e))
	}
	refunder.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefundIssuer_ReturnsFailure(t *testing.T) {
	refunder := new(MockRefunder)
	refunder.On("Refund", mock.Anything, "b1", "pi_123", 522.0).Return(errors.New("card_declined"))

	err := NewRefundIssuer(refunder, zap.NewNop()).Handle(context.Background(), canceledEvent())
	assert.EqualError(t, err, "card_declined")
}

func TestStripeRefunder_Params(t *testing.T) {
	var got *stripe.RefundParams
	r := &StripeRefunder{create: func(p *stripe.RefundParams) (*stripe.Refund, error) {
		got = p
		return &stripe.Refund{ID: "re_1"}, nil
	}}

	require.NoError(t, r.Refund(context.Background(), "b1", "pi_123", 522.35))

	require.NotNil(t, got)
	assert.Equal(t, "pi_123", *got.PaymentIntent)
	assert.Equal(t, int64(52235), *got.Amount)
	assert.Equal(t, "refund-b1", *got.IdempotencyKey)
	assert.Equal(t, "b1", got.Metadata[MetadataBookingID])
}

func TestStripeRefunder_WrapsError(t *testing.T) {
	r := &StripeRefunder{create: func(*stripe.RefundParams) (*stripe.Refund, error) {
		return nil, errors.New("rate limited")
	}}

	err := r.Refund(context.Background(), "b1", "pi_123", 10)
	assert.ErrorContains(t, err, "booking b1")
	assert.ErrorContains(t, err, "rate limited")
}
