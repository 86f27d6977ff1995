package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/petalpost/florist-backend/internal/authz"
	"github.com/petalpost/florist-backend/pkg/db/models"
	"github.com/petalpost/florist-backend/pkg/enums"
	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
)

// Reader exposes an order's audit trail to back-office roles.
type Reader interface {
	Trail(ctx context.Context, role enums.AdminRole, orderID uuid.UUID) ([]models.AuditLogEntry, error)
}

type reader struct {
	repo Repository
}

// NewReader wires an audit trail reader with the provided repository.
func NewReader(repo Repository) (Reader, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &reader{repo: repo}, nil
}

func (r *reader) Trail(ctx context.Context, role enums.AdminRole, orderID uuid.UUID) ([]models.AuditLogEntry, error) {
	if err := authz.Require(role, authz.ActionReadOrders); err != nil {
		return nil, err
	}
	entries, err := r.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load audit trail")
	}
	return entries, nil
}
