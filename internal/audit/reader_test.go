package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petalpost/florist-backend/pkg/db/models"
	"github.com/petalpost/florist-backend/pkg/enums"
	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
)

func TestTrailReturnsOnlyMatchingOrder(t *testing.T) {
	orderID := uuid.New()
	otherID := uuid.New()
	repo := &stubAuditRepo{entries: []models.AuditLogEntry{
		{ID: uuid.New(), OrderID: &orderID, Action: enums.AuditActionOrderStatusChanged},
		{ID: uuid.New(), OrderID: &otherID, Action: enums.AuditActionOrderRemoved},
	}}
	reader, err := NewReader(repo)
	require.NoError(t, err)

	entries, err := reader.Trail(context.Background(), enums.AdminRoleSupport, orderID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, enums.AuditActionOrderStatusChanged, entries[0].Action)
}

func TestTrailRejectsUnknownRole(t *testing.T) {
	reader, err := NewReader(&stubAuditRepo{})
	require.NoError(t, err)

	_, err = reader.Trail(context.Background(), enums.AdminRole("intern"), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestTrailWrapsStorageFailure(t *testing.T) {
	reader, err := NewReader(&stubAuditRepo{err: fmt.Errorf("connection reset")})
	require.NoError(t, err)

	_, err = reader.Trail(context.Background(), enums.AdminRoleOwner, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}
