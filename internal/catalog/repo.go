package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petalpost/florist-backend/pkg/db/models"
)

// Repository resolves catalog products for pricing.
type Repository interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Bouquet, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Bouquet, error) {
	var bouquet models.Bouquet
	err := r.db.WithContext(ctx).
		Preload("Sizes").
		Where("id = ? AND active = ?", id, true).
		First(&bouquet).Error
	if err != nil {
		return nil, err
	}
	return &bouquet, nil
}
