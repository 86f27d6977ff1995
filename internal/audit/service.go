package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/petalpost/florist-backend/pkg/db/models"
	"github.com/petalpost/florist-backend/pkg/enums"
	"github.com/petalpost/florist-backend/pkg/logger"
	"github.com/petalpost/florist-backend/pkg/metrics"
)

// Recorder is the fire-and-forget surface business services write to.
// A failed write is logged and counted, never surfaced to the caller.
type Recorder interface {
	Record(ctx context.Context, input RecordInput)
}

// RecordInput captures one administrative mutation.
type RecordInput struct {
	ActorID    uuid.UUID
	ActorEmail string
	Action     enums.AuditAction
	OrderID    *uuid.UUID
	Diff       any
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires an audit recorder with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Recorder, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) {
	entry, err := buildEntry(input)
	if err == nil {
		err = s.repo.Create(ctx, entry)
	}
	if err != nil {
		metrics.AuditWriteFailures.Inc()
		if s.logg != nil {
			ctx = s.logg.WithField(ctx, "audit_action", string(input.Action))
			s.logg.Error(ctx, "audit.write_failed", err)
		}
	}
}

func buildEntry(input RecordInput) (*models.AuditLogEntry, error) {
	if input.ActorID == uuid.Nil {
		return nil, fmt.Errorf("actor id is required")
	}
	if !input.Action.IsValid() {
		return nil, fmt.Errorf("invalid audit action %q", input.Action)
	}

	var diff json.RawMessage
	if input.Diff != nil {
		raw, err := json.Marshal(input.Diff)
		if err != nil {
			return nil, fmt.Errorf("marshal audit diff: %w", err)
		}
		diff = raw
	}

	return &models.AuditLogEntry{
		ActorID:    input.ActorID,
		ActorEmail: input.ActorEmail,
		Action:     input.Action,
		OrderID:    input.OrderID,
		Diff:       diff,
	}, nil
}
