package types

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GroupID      uuid.UUID `gorm:"type:uuid;not null;index" json:"group_id"`
	Title        string    `gorm:"not null" json:"title"`
	CreatorEmail string    `gorm:"not null;index" json:"creator_email"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Project) TableName() string { return "project" }
