package repos

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/types"
)

type AuditEventRepo interface {
	// Append assigns the next journal sequence number under the journal lock
	// and inserts the event in the same transaction.
	Append(dbc dbctx.Context, row *types.AuditEvent) (*types.AuditEvent, error)
	FetchSince(dbc dbctx.Context, since time.Time, limit int) ([]*types.AuditEvent, error)
}

type auditEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditEventRepo(db *gorm.DB, baseLog *logger.Logger) AuditEventRepo {
	return &auditEventRepo{db: db, log: baseLog.With("repo", "AuditEventRepo")}
}

func (r *auditEventRepo) Append(dbc dbctx.Context, row *types.AuditEvent) (*types.AuditEvent, error) {
	if row == nil {
		return nil, fmt.Errorf("missing event")
	}
	err := r.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		var journal types.AuditJournal
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", 1).
			Take(&journal).Error; err != nil {
			return fmt.Errorf("lock audit journal: %w", err)
		}
		row.Seq = journal.NextSeq + 1
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return tx.Model(&types.AuditJournal{}).
			Where("id = ?", 1).
			Update("next_seq", row.Seq).Error
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *auditEventRepo) FetchSince(dbc dbctx.Context, since time.Time, limit int) ([]*types.AuditEvent, error) {
	if limit <= 0 || limit > 1000 {
		limit = 500
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.AuditEvent
	if err := txx.WithContext(dbc.Ctx).
		Where("created_at >= ?", since).
		Order("created_at ASC, seq ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
