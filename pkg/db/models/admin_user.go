package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/petalpost/florist-backend/pkg/enums"
)

// AdminUser is an authenticated operator account.
type AdminUser struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string          `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string          `gorm:"column:password_hash;not null" json:"-"`
	Role         enums.AdminRole `gorm:"column:role;type:text;not null" json:"role"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
