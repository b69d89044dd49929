package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Audit event types written by the services. Payloads are opaque to the
// journal; callers must exclude secret material before logging.
const (
	AuditLogin             = "login"
	AuditLoginFailed       = "login_failed"
	AuditLicenseRefresh    = "license_refresh"
	AuditAbilityRequest    = "ability_request"
	AuditAbilityGrant      = "ability_grant"
	AuditCreateGroup       = "create_group"
	AuditInviteMember      = "invite_member"
	AuditRemoveMember      = "remove_member"
	AuditCreateProject     = "create_project"
	AuditAddFinding        = "add_finding"
	AuditChatCommand       = "chat_command"
	AuditAthenaUser        = "athena_user"
	AuditAthenaAssistant   = "athena_assistant"
	AuditSupervisorComment = "supervisor_comment"
	AuditStatus            = "status"
)

// AuditEvent is append-only: rows are never mutated or deleted. Seq is
// journal-global and assigned under the journal lock, so insertion order is
// a total order even when timestamps collide.
type AuditEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Seq       int64          `gorm:"column:seq;not null;uniqueIndex" json:"seq"`
	Actor     string         `gorm:"not null;index" json:"actor"`
	EventType string         `gorm:"not null;index" json:"event_type"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"payload"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (AuditEvent) TableName() string { return "audit_event" }

// AuditJournal is a single-row counter locked FOR UPDATE to serialize
// journal appends.
type AuditJournal struct {
	ID      int   `gorm:"primaryKey" json:"id"`
	NextSeq int64 `gorm:"not null;default:0" json:"next_seq"`
}

func (AuditJournal) TableName() string { return "audit_journal" }
