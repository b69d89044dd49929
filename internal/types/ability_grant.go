package types

import (
	"time"

	"github.com/google/uuid"
)

// AbilityGrant is an explicit per-principal override. Absence of a grant
// means the ability follows the role-default policy.
type AbilityGrant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"not null;index;index:idx_ability_grant_email_ability,unique,priority:1" json:"email"`
	Ability   string    `gorm:"not null;index;index:idx_ability_grant_email_ability,unique,priority:2" json:"ability"`
	GrantedBy string    `gorm:"not null" json:"granted_by"`
	GrantedAt time.Time `gorm:"not null;default:now()" json:"granted_at"`
}

func (AbilityGrant) TableName() string { return "ability_grant" }
