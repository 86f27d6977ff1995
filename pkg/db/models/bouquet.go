package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bouquet is a catalog product the pricing engine resolves cart lines
// against. Prices live on the per-size rows.
type Bouquet struct {
	ID        uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string        `gorm:"column:name;not null" json:"name"`
	ImageURL  string        `gorm:"column:image_url" json:"image_url"`
	Active    bool          `gorm:"column:active;not null;default:true" json:"active"`
	Sizes     []BouquetSize `gorm:"foreignKey:BouquetID;constraint:OnDelete:CASCADE" json:"sizes,omitempty"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Bouquet) TableName() string {
	return "bouquets"
}

// BouquetSize is one purchasable size of a bouquet.
type BouquetSize struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BouquetID uuid.UUID       `gorm:"column:bouquet_id;type:uuid;not null;index" json:"bouquet_id"`
	SizeKey   string          `gorm:"column:size_key;not null" json:"size_key"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (BouquetSize) TableName() string {
	return "bouquet_sizes"
}
