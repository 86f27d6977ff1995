package orders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/petalpost/florist-backend/internal/audit"
	"github.com/petalpost/florist-backend/internal/authz"
	"github.com/petalpost/florist-backend/internal/pricing"
	"github.com/petalpost/florist-backend/pkg/db/models"
	"github.com/petalpost/florist-backend/pkg/enums"
	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
	"github.com/petalpost/florist-backend/pkg/logger"
	"github.com/petalpost/florist-backend/pkg/metrics"
)

const createRetries = 3

// Origins recorded on payment confirmation metrics.
const (
	ConfirmOriginManual  = "manual"
	ConfirmOriginWebhook = "webhook"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the order lifecycle: creation, status transitions,
// payment settlement, cost tracking and removal.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByPublicCode(ctx context.Context, code string) (*models.Order, error)
	List(ctx context.Context, actor Actor, filter ListFilter) ([]models.Order, int64, error)

	SetOrderStatus(ctx context.Context, input SetOrderStatusInput) (*models.Order, error)
	SetPaymentStatus(ctx context.Context, input SetPaymentStatusInput) (*models.Order, error)
	MarkPaid(ctx context.Context, input MarkPaidInput) (*MarkPaidResult, error)
	// ConfirmWebhookPayment settles a Stripe order from a gateway event.
	ConfirmWebhookPayment(ctx context.Context, orderID uuid.UUID) error
	// FailWebhookPayment records a gateway-reported failure on a
	// still-pending Stripe order.
	FailWebhookPayment(ctx context.Context, orderID uuid.UUID) error

	UpdateCosts(ctx context.Context, input UpdateCostsInput) (*models.Order, error)
	Remove(ctx context.Context, input RemoveInput) error
	Export(ctx context.Context, input ExportInput, w io.Writer) (int, error)
}

type service struct {
	repo    Repository
	pricing pricing.Service
	auditor audit.Recorder
	tx      txRunner
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the order service with its collaborators.
func NewService(
	repo Repository,
	pricingSvc pricing.Service,
	auditor audit.Recorder,
	tx txRunner,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if pricingSvc == nil {
		return nil, fmt.Errorf("pricing service is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		repo:    repo,
		pricing: pricingSvc,
		auditor: auditor,
		tx:      tx,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	quote, err := s.pricing.Quote(ctx, input.Lines, pricing.DeliveryInput{
		District:    input.District,
		AddressLine: input.AddressLine,
	})
	if err != nil {
		return nil, err
	}

	var created *models.Order
	for attempt := 0; attempt < createRetries; attempt++ {
		code, codeErr := NewPublicCode()
		if codeErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, codeErr, "generating order code")
		}

		order := buildOrder(code, input, quote)
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).Create(ctx, order)
		})
		if err == nil {
			created = order
			break
		}
		if !IsUniqueViolation(err) {
			return nil, storageFailure(err, "creating order")
		}
	}
	if created == nil {
		return nil, storageFailure(err, "allocating order code")
	}

	if s.logg != nil {
		ctx = s.logg.WithOrderCode(ctx, created.PublicCode)
		s.logg.Info(ctx, "order created")
	}
	return created, nil
}

func buildOrder(code string, input CreateInput, quote *pricing.Quote) *models.Order {
	items := make([]models.OrderItem, 0, len(quote.Items))
	for _, qi := range quote.Items {
		items = append(items, models.OrderItem{
			BouquetID:   qi.BouquetID,
			BouquetName: qi.BouquetName,
			SizeKey:     qi.SizeKey,
			UnitPrice:   qi.UnitPrice,
			Qty:         qi.Qty,
			CardType:    qi.CardType,
			CardMessage: qi.CardMessage,
			Wrapping:    qi.Wrapping,
			ImageURL:    qi.ImageURL,
		})
	}
	return &models.Order{
		PublicCode:     code,
		OrderStatus:    enums.OrderStatusNew,
		PaymentStatus:  enums.PaymentStatusPending,
		PaymentMethod:  input.PaymentMethod,
		ItemsTotal:     quote.ItemsTotal,
		DeliveryFee:    quote.DeliveryFee,
		GrandTotal:     quote.GrandTotal,
		RecipientName:  input.RecipientName,
		RecipientPhone: input.RecipientPhone,
		AddressLine:    input.AddressLine,
		District:       input.District,
		DeliveryDate:   input.DeliveryDate,
		DeliveryWindow: input.DeliveryWindow,
		Items:          items,
	}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrStorage(err, "order")
	}
	return order, nil
}

func (s *service) GetByPublicCode(ctx context.Context, code string) (*models.Order, error) {
	order, err := s.repo.FindByPublicCode(ctx, code)
	if err != nil {
		return nil, notFoundOrStorage(err, "order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, actor Actor, filter ListFilter) ([]models.Order, int64, error) {
	if err := authz.Require(actor.Role, authz.ActionReadOrders); err != nil {
		return nil, 0, err
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, storageFailure(err, "listing orders")
	}
	return rows, total, nil
}

// SetOrderStatus applies one fulfillment transition. Any target status
// is accepted so operators can correct mistakes; REFUNDED is gated to
// the owner role. A same-status request is an idempotent no-op and
// leaves no history entry.
func (s *service) SetOrderStatus(ctx context.Context, input SetOrderStatusInput) (*models.Order, error) {
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	action := authz.ActionChangeOrderStatus
	if input.Target == enums.OrderStatusRefunded {
		action = authz.ActionSetRefunded
	}
	if err := authz.Require(input.Actor.Role, action); err != nil {
		return nil, err
	}

	var changed bool
	var from enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			return notFoundOrStorage(err, "order")
		}
		from = order.OrderStatus
		if from == input.Target {
			return nil
		}

		won, err := repo.SetOrderStatus(ctx, input.OrderID, from, input.Target)
		if err != nil {
			return storageFailure(err, "updating order status")
		}
		if !won {
			return pkgerrors.New(pkgerrors.CodeInvalidOperation, "order was modified concurrently, retry")
		}

		if err := repo.AppendHistory(ctx, &models.StatusHistoryEntry{
			OrderID:    input.OrderID,
			FromStatus: from,
			ToStatus:   input.Target,
		}); err != nil {
			return storageFailure(err, "recording status history")
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		metrics.OrderMutations.WithLabelValues("set_order_status").Inc()
		s.auditor.Record(ctx, audit.RecordInput{
			ActorID:    input.Actor.ID,
			ActorEmail: input.Actor.Email,
			Action:     enums.AuditActionOrderStatusChanged,
			OrderID:    &input.OrderID,
			Diff:       map[string]any{"from": from, "to": input.Target},
		})
	}
	return s.GetByID(ctx, input.OrderID)
}

// SetPaymentStatus corrects the settlement state. Setting PAID follows
// the confirmation path (stamps paidAt, advances NEW -> PAID); any
// other target clears paidAt.
func (s *service) SetPaymentStatus(ctx context.Context, input SetPaymentStatusInput) (*models.Order, error) {
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status")
	}
	if err := authz.Require(input.Actor.Role, authz.ActionChangePaymentStatus); err != nil {
		return nil, err
	}

	if input.Target == enums.PaymentStatusPaid {
		confirmed, err := s.confirmPayment(ctx, input.OrderID, ConfirmOriginManual)
		if err != nil {
			return nil, err
		}
		if confirmed {
			s.auditor.Record(ctx, audit.RecordInput{
				ActorID:    input.Actor.ID,
				ActorEmail: input.Actor.Email,
				Action:     enums.AuditActionPaymentStatusChanged,
				OrderID:    &input.OrderID,
				Diff:       map[string]any{"to": enums.PaymentStatusPaid},
			})
		}
		return s.GetByID(ctx, input.OrderID)
	}

	var changed bool
	var from enums.PaymentStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			return notFoundOrStorage(err, "order")
		}
		from = order.PaymentStatus
		if from == input.Target {
			return nil
		}

		won, err := repo.SetPaymentStatus(ctx, input.OrderID, from, input.Target)
		if err != nil {
			return storageFailure(err, "updating payment status")
		}
		if !won {
			return pkgerrors.New(pkgerrors.CodeInvalidOperation, "order was modified concurrently, retry")
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		metrics.OrderMutations.WithLabelValues("set_payment_status").Inc()
		s.auditor.Record(ctx, audit.RecordInput{
			ActorID:    input.Actor.ID,
			ActorEmail: input.Actor.Email,
			Action:     enums.AuditActionPaymentStatusChanged,
			OrderID:    &input.OrderID,
			Diff:       map[string]any{"from": from, "to": input.Target},
		})
	}
	return s.GetByID(ctx, input.OrderID)
}

// MarkPaid confirms a manual payment. Stripe orders must settle through
// the webhook, so the operation is rejected for them. Repeats on an
// already-paid order succeed without side effects.
func (s *service) MarkPaid(ctx context.Context, input MarkPaidInput) (*MarkPaidResult, error) {
	if err := authz.Require(input.Actor.Role, authz.ActionMarkPaid); err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, notFoundOrStorage(err, "order")
	}
	if !order.PaymentMethod.IsManual() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidOperation, "stripe orders are settled by the payment gateway")
	}

	confirmed, err := s.confirmPayment(ctx, input.OrderID, ConfirmOriginManual)
	if err != nil {
		return nil, err
	}
	if confirmed {
		s.auditor.Record(ctx, audit.RecordInput{
			ActorID:    input.Actor.ID,
			ActorEmail: input.Actor.Email,
			Action:     enums.AuditActionPaymentMarkedPaid,
			OrderID:    &input.OrderID,
			Diff:       map[string]any{"from": enums.PaymentStatusPending, "to": enums.PaymentStatusPaid},
		})
	}
	return &MarkPaidResult{OrderID: input.OrderID, AlreadyPaid: !confirmed}, nil
}

func (s *service) ConfirmWebhookPayment(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return notFoundOrStorage(err, "order")
	}
	if order.PaymentMethod != enums.PaymentMethodStripe {
		return pkgerrors.New(pkgerrors.CodeInvalidOperation, "order is not a stripe order")
	}
	_, err = s.confirmPayment(ctx, orderID, ConfirmOriginWebhook)
	return err
}

func (s *service) FailWebhookPayment(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return notFoundOrStorage(err, "order")
	}
	if order.PaymentMethod != enums.PaymentMethodStripe {
		return pkgerrors.New(pkgerrors.CodeInvalidOperation, "order is not a stripe order")
	}
	if order.PaymentStatus != enums.PaymentStatusPending {
		return nil
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).SetPaymentStatus(ctx, orderID, enums.PaymentStatusPending, enums.PaymentStatusFailed)
		if err != nil {
			return storageFailure(err, "recording payment failure")
		}
		return nil
	})
}

// confirmPayment runs the PENDING/FAILED -> PAID edge. The conditional
// update decides a single winner under concurrency; only the winner
// appends the NEW -> PAID history entry. Returns whether this call won.
func (s *service) confirmPayment(ctx context.Context, orderID uuid.UUID, origin string) (bool, error) {
	stamp := s.now()

	var confirmed bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		pre, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return notFoundOrStorage(err, "order")
		}
		if pre.PaymentStatus == enums.PaymentStatusPaid {
			return nil
		}

		won, err := repo.ConfirmPayment(ctx, orderID, stamp)
		if err != nil {
			return storageFailure(err, "confirming payment")
		}
		if !won {
			// Lost the race: another confirmation committed first.
			return nil
		}

		if pre.OrderStatus == enums.OrderStatusNew {
			if err := repo.AppendHistory(ctx, &models.StatusHistoryEntry{
				OrderID:    orderID,
				FromStatus: enums.OrderStatusNew,
				ToStatus:   enums.OrderStatusPaid,
			}); err != nil {
				return storageFailure(err, "recording status history")
			}
		}
		confirmed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if confirmed {
		metrics.PaymentConfirmations.WithLabelValues(origin).Inc()
		if s.logg != nil {
			ctx = s.logg.WithField(ctx, "origin", origin)
			s.logg.Info(ctx, "payment confirmed")
		}
	}
	return confirmed, nil
}

// UpdateCosts applies a subset update of the internal cost fields.
// Values must be non-negative and are rounded to two decimal places
// (half away from zero). Omitted fields keep their stored value.
func (s *service) UpdateCosts(ctx context.Context, input UpdateCostsInput) (*models.Order, error) {
	if err := authz.Require(input.Actor.Role, authz.ActionEditCosts); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	diff := map[string]any{}
	for _, field := range []struct {
		column string
		value  *decimal.Decimal
	}{
		{"cogs_amount", input.CogsAmount},
		{"delivery_cost", input.DeliveryCost},
		{"payment_fee", input.PaymentFee},
	} {
		if field.value == nil {
			continue
		}
		if field.value.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, field.column+" must not be negative")
		}
		rounded := field.value.Round(2)
		updates[field.column] = rounded
		diff[field.column] = rounded
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one cost field is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, input.OrderID); err != nil {
			return notFoundOrStorage(err, "order")
		}
		found, err := repo.UpdateCosts(ctx, input.OrderID, updates)
		if err != nil {
			return storageFailure(err, "updating costs")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderMutations.WithLabelValues("update_costs").Inc()
	s.auditor.Record(ctx, audit.RecordInput{
		ActorID:    input.Actor.ID,
		ActorEmail: input.Actor.Email,
		Action:     enums.AuditActionCostsUpdated,
		OrderID:    &input.OrderID,
		Diff:       diff,
	})
	return s.GetByID(ctx, input.OrderID)
}

// Remove permanently deletes an order with its items and history.
// Removal is irreversible; a repeat for the same ID reports NotFound.
func (s *service) Remove(ctx context.Context, input RemoveInput) error {
	if err := authz.Require(input.Actor.Role, authz.ActionRemoveOrder); err != nil {
		return err
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return notFoundOrStorage(err, "order")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		found, err := s.repo.WithTx(tx).Delete(ctx, input.OrderID)
		if err != nil {
			return storageFailure(err, "removing order")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.OrderMutations.WithLabelValues("remove_order").Inc()
	s.auditor.Record(ctx, audit.RecordInput{
		ActorID:    input.Actor.ID,
		ActorEmail: input.Actor.Email,
		Action:     enums.AuditActionOrderRemoved,
		OrderID:    &input.OrderID,
		Diff:       map[string]any{"public_code": order.PublicCode},
	})
	return nil
}

func notFoundOrStorage(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, resource+" not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return storageFailure(err, "loading "+resource)
}

func storageFailure(err error, during string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, during)
}
