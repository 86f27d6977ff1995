package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
)

type stubSettler struct {
	confirmed []uuid.UUID
	failed    []uuid.UUID
	err       error
}

func (s *stubSettler) ConfirmWebhookPayment(_ context.Context, orderID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.confirmed = append(s.confirmed, orderID)
	return nil
}

func (s *stubSettler) FailWebhookPayment(_ context.Context, orderID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.failed = append(s.failed, orderID)
	return nil
}

func paymentIntentEvent(t *testing.T, eventType stripe.EventType, metadata map[string]string) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":       "pi_test_123",
		"metadata": metadata,
	})
	require.NoError(t, err)
	return &stripe.Event{
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEventConfirmsOnSucceeded(t *testing.T) {
	settler := &stubSettler{}
	svc, err := NewService(settler, nil)
	require.NoError(t, err)

	orderID := uuid.New()
	event := paymentIntentEvent(t, stripe.EventTypePaymentIntentSucceeded, map[string]string{
		"order_id": orderID.String(),
	})

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Equal(t, []uuid.UUID{orderID}, settler.confirmed)
	assert.Empty(t, settler.failed)
}

func TestHandleEventFailsOnPaymentFailed(t *testing.T) {
	settler := &stubSettler{}
	svc, err := NewService(settler, nil)
	require.NoError(t, err)

	orderID := uuid.New()
	event := paymentIntentEvent(t, stripe.EventTypePaymentIntentPaymentFailed, map[string]string{
		"order_id": orderID.String(),
	})

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Equal(t, []uuid.UUID{orderID}, settler.failed)
	assert.Empty(t, settler.confirmed)
}

func TestHandleEventIgnoresUntrackedTypes(t *testing.T) {
	settler := &stubSettler{}
	svc, err := NewService(settler, nil)
	require.NoError(t, err)

	event := paymentIntentEvent(t, stripe.EventTypeChargeRefunded, map[string]string{
		"order_id": uuid.NewString(),
	})

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, settler.confirmed)
	assert.Empty(t, settler.failed)
}

func TestHandleEventRejectsMissingOrderMetadata(t *testing.T) {
	settler := &stubSettler{}
	svc, err := NewService(settler, nil)
	require.NoError(t, err)

	event := paymentIntentEvent(t, stripe.EventTypePaymentIntentSucceeded, nil)

	err = svc.HandleEvent(context.Background(), event)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Empty(t, settler.confirmed)
}

func TestHandleEventRejectsMalformedOrderID(t *testing.T) {
	settler := &stubSettler{}
	svc, err := NewService(settler, nil)
	require.NoError(t, err)

	event := paymentIntentEvent(t, stripe.EventTypePaymentIntentSucceeded, map[string]string{
		"order_id": "not-a-uuid",
	})

	err = svc.HandleEvent(context.Background(), event)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestHandleEventPropagatesSettlementFailure(t *testing.T) {
	settler := &stubSettler{err: fmt.Errorf("database down")}
	svc, err := NewService(settler, nil)
	require.NoError(t, err)

	event := paymentIntentEvent(t, stripe.EventTypePaymentIntentSucceeded, map[string]string{
		"order_id": uuid.NewString(),
	})

	assert.Error(t, svc.HandleEvent(context.Background(), event))
}
