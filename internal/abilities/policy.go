package abilities

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/junoathena/gateway-backend/internal/types"
)

// Ability names used by the gateway.
const (
	AdvancedSearch   = "advanced_search"
	ManuscriptExport = "manuscript_export"
	ChatModeration   = "chat_moderation"
	AuditExport      = "audit_export"
)

// Policy maps roles to their default abilities. It is static configuration:
// explicit grants override it, and anything it does not name is denied.
type Policy struct {
	RoleDefaults map[string][]string `yaml:"role_defaults"`
}

func DefaultPolicy() Policy {
	return Policy{
		RoleDefaults: map[string][]string{
			types.RoleOwner:  {AdvancedSearch, ManuscriptExport, ChatModeration},
			types.RoleEditor: {AdvancedSearch},
			types.RoleViewer: {},
		},
	}
}

// LoadPolicy reads a YAML policy file. Roles outside the closed role set are
// rejected so a typo cannot silently widen access.
func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read ability policy: %w", err)
	}
	var p Policy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parse ability policy: %w", err)
	}
	for role := range p.RoleDefaults {
		if !types.ValidRole(role) {
			return Policy{}, fmt.Errorf("ability policy names unknown role %q", role)
		}
	}
	return p, nil
}

// Resolve is the pure ability decision: explicit grant overrides, otherwise
// the highest role held anywhere decides through the policy table, otherwise
// deny. It performs no I/O and has no side effects, so it is safe to call on
// every render.
func Resolve(p Policy, ability string, hasGrant bool, roles []string) bool {
	if ability == "" {
		return false
	}
	if hasGrant {
		return true
	}
	highest := HighestRole(roles)
	if highest == "" {
		return false
	}
	for _, a := range p.RoleDefaults[highest] {
		if a == ability {
			return true
		}
	}
	return false
}

// HighestRole returns the most privileged role in roles, or "" when the
// principal holds no membership anywhere.
func HighestRole(roles []string) string {
	best := ""
	bestRank := 0
	for _, role := range roles {
		if rank := types.RoleRank(role); rank > bestRank {
			best = role
			bestRank = rank
		}
	}
	return best
}
