package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/petalpost/florist-backend/pkg/enums"
)

// StatusHistoryEntry records one accepted order-status edge. Rows are
// append-only and never updated or deleted while the order exists.
type StatusHistoryEntry struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID    uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	FromStatus enums.OrderStatus `gorm:"column:from_status;type:text;not null" json:"from_status"`
	ToStatus   enums.OrderStatus `gorm:"column:to_status;type:text;not null" json:"to_status"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StatusHistoryEntry) TableName() string {
	return "order_status_history"
}
