package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
	"github.com/petalpost/florist-backend/pkg/logger"
)

// metadataOrderIDKey is set on the PaymentIntent when the checkout
// session is created, tying the gateway object back to our order.
const metadataOrderIDKey = "order_id"

type orderSettler interface {
	ConfirmWebhookPayment(ctx context.Context, orderID uuid.UUID) error
	FailWebhookPayment(ctx context.Context, orderID uuid.UUID) error
}

// Service maps Stripe payment events onto order settlement transitions.
type Service struct {
	orders orderSettler
	logg   *logger.Logger
}

// NewService wires the webhook service.
func NewService(orders orderSettler, logg *logger.Logger) (*Service, error) {
	if orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order service required")
	}
	return &Service{orders: orders, logg: logg}, nil
}

// HandleEvent processes one verified gateway event. Event types we do
// not track are acknowledged and dropped.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		orderID, err := orderIDFromEvent(event)
		if err != nil {
			return err
		}
		return s.orders.ConfirmWebhookPayment(ctx, orderID)
	case stripe.EventTypePaymentIntentPaymentFailed:
		orderID, err := orderIDFromEvent(event)
		if err != nil {
			return err
		}
		return s.orders.FailWebhookPayment(ctx, orderID)
	default:
		if s.logg != nil {
			ctx = s.logg.WithField(ctx, "event_type", string(event.Type))
			s.logg.Info(ctx, "stripe event ignored")
		}
		return nil
	}
}

func orderIDFromEvent(event *stripe.Event) (uuid.UUID, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	raw, ok := intent.Metadata[metadataOrderIDKey]
	if !ok || raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id missing from payment intent metadata")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id in payment intent metadata is malformed")
	}
	return orderID, nil
}
