package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/repos"
	"github.com/junoathena/gateway-backend/internal/types"
)

// AuditService is the process-wide append-only journal. LogEvent never
// fails its caller: a journal write error is logged and swallowed so the
// triggering operation is unaffected. Payloads are opaque here; callers
// must keep secret material out of them.
type AuditService interface {
	LogEvent(ctx context.Context, actor, eventType string, payload map[string]any)
	FetchSince(ctx context.Context, since time.Time, limit int) ([]*types.AuditEvent, error)
}

type auditService struct {
	db     *gorm.DB
	log    *logger.Logger
	events repos.AuditEventRepo
}

func NewAuditService(db *gorm.DB, baseLog *logger.Logger, eventRepo repos.AuditEventRepo) AuditService {
	return &auditService{
		db:     db,
		log:    baseLog.With("service", "AuditService"),
		events: eventRepo,
	}
}

func (s *auditService) LogEvent(ctx context.Context, actor, eventType string, payload map[string]any) {
	if eventType == "" {
		s.log.Warn("audit event dropped: missing event type", "actor", actor)
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("audit payload not serializable, recording empty payload", "event_type", eventType, "error", err)
		raw = []byte("{}")
	}
	row := &types.AuditEvent{
		ID:        uuid.New(),
		Actor:     actor,
		EventType: eventType,
		Payload:   datatypes.JSON(raw),
	}
	// The journal write must survive the request being canceled mid-flight.
	dbc := dbctx.Context{Ctx: context.WithoutCancel(ctx)}
	if _, err := s.events.Append(dbc, row); err != nil {
		s.log.Error("audit append failed", "event_type", eventType, "actor", actor, "error", err)
	}
}

func (s *auditService) FetchSince(ctx context.Context, since time.Time, limit int) ([]*types.AuditEvent, error) {
	return s.events.FetchSince(dbctx.Context{Ctx: ctx}, since, limit)
}
