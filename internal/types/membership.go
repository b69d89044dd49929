package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// RoleRank orders roles by privilege. Unknown roles rank below viewer.
func RoleRank(role string) int {
	switch role {
	case RoleOwner:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// ValidRole reports whether role is one of the closed role set.
func ValidRole(role string) bool {
	return RoleRank(role) > 0
}

type Membership struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GroupID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_membership_group_email,unique,priority:1" json:"group_id"`
	Email   string    `gorm:"not null;index;index:idx_membership_group_email,unique,priority:2" json:"email"`
	Role    string    `gorm:"not null;index" json:"role"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Membership) TableName() string { return "membership" }
