package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petalpost/florist-backend/pkg/db/models"
	"github.com/petalpost/florist-backend/pkg/enums"
)

type stubAuditRepo struct {
	entries []models.AuditLogEntry
	err     error
}

func (s *stubAuditRepo) Create(_ context.Context, entry *models.AuditLogEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubAuditRepo) ListByOrderID(_ context.Context, orderID uuid.UUID) ([]models.AuditLogEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.AuditLogEntry
	for _, e := range s.entries {
		if e.OrderID != nil && *e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestRecordPersistsEntryWithDiff(t *testing.T) {
	repo := &stubAuditRepo{}
	recorder, err := NewService(repo, nil)
	require.NoError(t, err)

	orderID := uuid.New()
	recorder.Record(context.Background(), RecordInput{
		ActorID:    uuid.New(),
		ActorEmail: "owner@petalpost.co.th",
		Action:     enums.AuditActionOrderStatusChanged,
		OrderID:    &orderID,
		Diff:       map[string]any{"from": "new", "to": "accepted"},
	})

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, enums.AuditActionOrderStatusChanged, entry.Action)
	require.NotNil(t, entry.OrderID)
	assert.Equal(t, orderID, *entry.OrderID)

	var diff map[string]string
	require.NoError(t, json.Unmarshal(entry.Diff, &diff))
	assert.Equal(t, "accepted", diff["to"])
}

func TestRecordSwallowsStorageFailure(t *testing.T) {
	repo := &stubAuditRepo{err: fmt.Errorf("connection reset")}
	recorder, err := NewService(repo, nil)
	require.NoError(t, err)

	// Must not panic or surface the error; the mutation that triggered
	// the audit entry has already committed.
	recorder.Record(context.Background(), RecordInput{
		ActorID: uuid.New(),
		Action:  enums.AuditActionOrderRemoved,
	})
	assert.Empty(t, repo.entries)
}

func TestRecordRejectsInvalidInputQuietly(t *testing.T) {
	repo := &stubAuditRepo{}
	recorder, err := NewService(repo, nil)
	require.NoError(t, err)

	recorder.Record(context.Background(), RecordInput{
		ActorID: uuid.Nil,
		Action:  enums.AuditActionOrderRemoved,
	})
	recorder.Record(context.Background(), RecordInput{
		ActorID: uuid.New(),
		Action:  enums.AuditAction("made_coffee"),
	})
	assert.Empty(t, repo.entries)
}
