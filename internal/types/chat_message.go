package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatKindMessage = "message"
	ChatKindCommand = "command"
)

type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_chat_message_project_seq,unique,priority:1" json:"project_id"`

	// Seq is strictly increasing and gapless per project. Allocation happens
	// under a project-row lock so concurrent posts serialize.
	Seq int64 `gorm:"column:seq;not null;index:idx_chat_message_project_seq,unique,priority:2" json:"seq"`

	AuthorEmail string `gorm:"not null;index" json:"author_email"`
	AuthorName  string `gorm:"not null;default:''" json:"author_name"`

	Kind string `gorm:"not null;index" json:"kind"`
	Body string `gorm:"type:text;not null" json:"body"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (ChatMessage) TableName() string { return "chat_message" }
