package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	AthenaRoleUser      = "user"
	AthenaRoleAssistant = "assistant"

	AthenaStatusSent  = "sent"
	AthenaStatusError = "error"
)

// AthenaMessage rows are created in user/assistant pairs: a user entry is
// always immediately followed by exactly one assistant entry. A failed reply
// still produces the assistant entry, with status "error".
type AthenaMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`

	Role   string `gorm:"not null;index" json:"role"`
	Status string `gorm:"not null;default:'sent'" json:"status"`

	AuthorName string `gorm:"not null;default:''" json:"author_name"`
	Text       string `gorm:"type:text;not null" json:"text"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (AthenaMessage) TableName() string { return "athena_message" }
