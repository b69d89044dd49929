package types

import (
	"time"

	"github.com/google/uuid"
)

// SupervisorComment is written only by mentor principals. ExplainedText is
// an optional plain-language explanation rendered alongside the comment.
type SupervisorComment struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID     uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	AuthorEmail   string    `gorm:"not null;index" json:"author_email"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	ExplainedText string    `gorm:"type:text;not null;default:''" json:"explained_text,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (SupervisorComment) TableName() string { return "supervisor_comment" }
