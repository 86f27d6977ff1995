package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a frozen line-item snapshot taken at checkout. The unit
// price is fixed at order time and independent of later catalog changes.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	BouquetID   uuid.UUID       `gorm:"column:bouquet_id;type:uuid;not null" json:"bouquet_id"`
	BouquetName string          `gorm:"column:bouquet_name;not null" json:"bouquet_name"`
	SizeKey     string          `gorm:"column:size_key;not null" json:"size_key"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	Qty         int             `gorm:"column:qty;not null;default:1" json:"qty"`
	CardType    string          `gorm:"column:card_type" json:"card_type"`
	CardMessage string          `gorm:"column:card_message" json:"card_message"`
	Wrapping    string          `gorm:"column:wrapping" json:"wrapping"`
	ImageURL    string          `gorm:"column:image_url" json:"image_url"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
