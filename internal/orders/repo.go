package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/petalpost/florist-backend/pkg/db/models"
	"github.com/petalpost/florist-backend/pkg/enums"
)

// Repository is the persistence surface for orders. WithTx rebinds the
// repository to an open transaction so service-level units of work can
// span multiple calls atomically.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByPublicCode(ctx context.Context, code string) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)
	ListForExport(ctx context.Context, filter ListFilter) ([]models.Order, error)

	// SetOrderStatus flips the fulfillment status only when the stored
	// value still equals from. Reports whether the row changed.
	SetOrderStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error)

	// ConfirmPayment marks the order paid unless it already is. The
	// fulfillment status advances NEW -> PAID in the same statement so
	// concurrent confirmations cannot both observe NEW.
	ConfirmPayment(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)

	// SetPaymentStatus writes a non-paid settlement state and clears
	// paid_at, keeping the paid <=> paid_at invariant.
	SetPaymentStatus(ctx context.Context, id uuid.UUID, from, to enums.PaymentStatus) (bool, error)

	UpdateCosts(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	AppendHistory(ctx context.Context, entry *models.StatusHistoryEntry) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByPublicCode(ctx context.Context, code string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("public_code = ?", code).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Order{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []models.Order
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) ListForExport(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	filter.Limit = 0
	filter.Offset = 0
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Order{}), filter)

	var rows []models.Order
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) applyFilter(query *gorm.DB, filter ListFilter) *gorm.DB {
	if filter.OrderStatus != nil {
		query = query.Where("order_status = ?", *filter.OrderStatus)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if district := strings.TrimSpace(filter.District); district != "" {
		query = query.Where("district = ?", district)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at < ?", *filter.CreatedTo)
	}
	if filter.DeliveryFrom != nil {
		query = query.Where("delivery_date >= ?", *filter.DeliveryFrom)
	}
	if filter.DeliveryTo != nil {
		query = query.Where("delivery_date < ?", *filter.DeliveryTo)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"public_code LIKE ? OR recipient_name LIKE ? OR recipient_phone LIKE ?",
			pattern, pattern, pattern,
		)
	}
	return query
}

func (r *repository) SetOrderStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND order_status = ?", id, from).
		Updates(map[string]any{
			"order_status": to,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ConfirmPayment(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status <> ?", id, enums.PaymentStatusPaid).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusPaid,
			"paid_at":        paidAt,
			"order_status": gorm.Expr(
				"CASE WHEN order_status = ? THEN ? ELSE order_status END",
				enums.OrderStatusNew, enums.OrderStatusPaid,
			),
			"updated_at": paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) SetPaymentStatus(ctx context.Context, id uuid.UUID, from, to enums.PaymentStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, from).
		Updates(map[string]any{
			"payment_status": to,
			"paid_at":        nil,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) UpdateCosts(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	if len(updates) == 0 {
		return false, nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) AppendHistory(ctx context.Context, entry *models.StatusHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Order{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
// Checked when inserting orders so public-code collisions can be retried.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
