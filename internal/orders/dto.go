package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/petalpost/florist-backend/internal/pricing"
	"github.com/petalpost/florist-backend/pkg/enums"
)

// Actor identifies the authenticated operator performing a mutation.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  enums.AdminRole
}

// CreateInput is everything needed to open an order at checkout.
// Prices are never taken from here; the pricing engine computes them.
type CreateInput struct {
	Lines         []pricing.CartLine
	PaymentMethod enums.PaymentMethod

	RecipientName  string
	RecipientPhone string
	AddressLine    string
	District       string
	DeliveryDate   *time.Time
	DeliveryWindow string
}

// SetOrderStatusInput requests one fulfillment transition.
type SetOrderStatusInput struct {
	OrderID uuid.UUID
	Target  enums.OrderStatus
	Actor   Actor
}

// SetPaymentStatusInput requests one settlement-state correction.
type SetPaymentStatusInput struct {
	OrderID uuid.UUID
	Target  enums.PaymentStatus
	Actor   Actor
}

// MarkPaidInput confirms a manual (PromptPay / bank transfer) payment.
type MarkPaidInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// MarkPaidResult distinguishes a fresh confirmation from an idempotent
// repeat so callers can skip duplicate side effects.
type MarkPaidResult struct {
	OrderID     uuid.UUID
	AlreadyPaid bool
}

// UpdateCostsInput carries a subset update of internal cost fields.
// Nil pointers mean "leave untouched".
type UpdateCostsInput struct {
	OrderID      uuid.UUID
	CogsAmount   *decimal.Decimal
	DeliveryCost *decimal.Decimal
	PaymentFee   *decimal.Decimal
	Actor        Actor
}

// RemoveInput requests permanent deletion of an order.
type RemoveInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// ListFilter narrows admin listings and exports.
type ListFilter struct {
	OrderStatus   *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	PaymentMethod *enums.PaymentMethod
	District      string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	DeliveryFrom  *time.Time
	DeliveryTo    *time.Time
	Search        string
	Limit         int
	Offset        int
}

// ExportInput couples a filter with the acting operator for auditing.
type ExportInput struct {
	Filter ListFilter
	Actor  Actor
}
