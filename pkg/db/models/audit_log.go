package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/petalpost/florist-backend/pkg/enums"
)

// AuditLogEntry records who did what to which order. The order reference
// carries no foreign key so entries survive order removal.
type AuditLogEntry struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorID    uuid.UUID         `gorm:"column:actor_id;type:uuid;not null" json:"actor_id"`
	ActorEmail string            `gorm:"column:actor_email;not null" json:"actor_email"`
	Action     enums.AuditAction `gorm:"column:action;type:text;not null" json:"action"`
	OrderID    *uuid.UUID        `gorm:"column:order_id;type:uuid" json:"order_id,omitempty"`
	Diff       json.RawMessage   `gorm:"column:diff;type:jsonb" json:"diff,omitempty"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AuditLogEntry) TableName() string {
	return "audit_log"
}
