package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/petalpost/florist-backend/pkg/enums"
)

// Order is the authoritative record of one customer purchase.
// Monetary totals are server-computed at creation and never trusted
// from a client afterwards.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PublicCode    string              `gorm:"column:public_code;uniqueIndex;not null" json:"public_code"`
	OrderStatus   enums.OrderStatus   `gorm:"column:order_status;type:text;not null;default:'new'" json:"order_status"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'" json:"payment_status"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null" json:"payment_method"`

	ItemsTotal  decimal.Decimal `gorm:"column:items_total;type:numeric(12,2);not null" json:"items_total"`
	DeliveryFee decimal.Decimal `gorm:"column:delivery_fee;type:numeric(12,2);not null" json:"delivery_fee"`
	GrandTotal  decimal.Decimal `gorm:"column:grand_total;type:numeric(12,2);not null" json:"grand_total"`

	CogsAmount   decimal.NullDecimal `gorm:"column:cogs_amount;type:numeric(12,2)" json:"cogs_amount"`
	DeliveryCost decimal.NullDecimal `gorm:"column:delivery_cost;type:numeric(12,2)" json:"delivery_cost"`
	PaymentFee   decimal.NullDecimal `gorm:"column:payment_fee;type:numeric(12,2)" json:"payment_fee"`

	PaidAt *time.Time `gorm:"column:paid_at" json:"paid_at"`

	RecipientName  string     `gorm:"column:recipient_name;not null" json:"recipient_name"`
	RecipientPhone string     `gorm:"column:recipient_phone;not null" json:"recipient_phone"`
	AddressLine    string     `gorm:"column:address_line;not null" json:"address_line"`
	District       string     `gorm:"column:district;not null" json:"district"`
	DeliveryDate   *time.Time `gorm:"column:delivery_date" json:"delivery_date"`
	DeliveryWindow string     `gorm:"column:delivery_window" json:"delivery_window"`

	InternalNotes *string `gorm:"column:internal_notes" json:"internal_notes,omitempty"`
	DriverName    *string `gorm:"column:driver_name" json:"driver_name,omitempty"`
	DriverPhone   *string `gorm:"column:driver_phone" json:"driver_phone,omitempty"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	StatusHistory []StatusHistoryEntry `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"status_history,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
