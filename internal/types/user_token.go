package types

import (
	"time"

	"github.com/google/uuid"
)

type UserToken struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	AccessToken  string    `gorm:"not null;index" json:"-"`
	RefreshToken string    `gorm:"not null;index" json:"-"`

	// ReadOnly mirrors the session's degraded mode so every request can
	// consult it without re-querying the license oracle.
	ReadOnly bool `gorm:"not null;default:false" json:"read_only"`

	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (UserToken) TableName() string { return "user_token" }
