package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	QualityPreliminary = "Preliminary"
	QualityValidated   = "Validated"
	QualityGold        = "Gold"
)

// ValidQuality reports whether quality is one of the closed enumeration.
// Unrecognized values are a validation error, never a silent default.
func ValidQuality(quality string) bool {
	switch quality {
	case QualityPreliminary, QualityValidated, QualityGold:
		return true
	default:
		return false
	}
}

// Finding is an immutable research note. Rows are only ever appended.
type Finding struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	AuthorEmail string    `gorm:"not null;index" json:"author_email"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Quality     string    `gorm:"not null" json:"quality"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (Finding) TableName() string { return "finding" }
