package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	LicenseActive = "active"
	LicenseLapsed = "lapsed"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	FullName string    `gorm:"not null;default:'';column:full_name" json:"full_name"`

	// Consent must be affirmed at login before any domain write is allowed.
	Consent bool `gorm:"not null;default:false" json:"consent"`

	// LicenseStatus is the last snapshot from the license oracle.
	LicenseStatus string `gorm:"not null;default:'active';index" json:"license_status"`

	// Mentor marks supervisor-channel principals.
	Mentor bool `gorm:"not null;default:false" json:"mentor"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "user" }
