package types

import (
	"time"

	"github.com/google/uuid"
)

type Group struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	CreatorEmail string    `gorm:"not null;index" json:"creator_email"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Group) TableName() string { return "group" }
