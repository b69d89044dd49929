package abilities

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/junoathena/gateway-backend/internal/types"
)

func TestResolve(t *testing.T) {
	p := DefaultPolicy()
	cases := []struct {
		name     string
		ability  string
		hasGrant bool
		roles    []string
		want     bool
	}{
		{"grant overrides policy", ChatModeration, true, nil, true},
		{"grant overrides even with roles", ChatModeration, true, []string{types.RoleViewer}, true},
		{"owner gets moderation", ChatModeration, false, []string{types.RoleOwner}, true},
		{"editor gets advanced search", AdvancedSearch, false, []string{types.RoleEditor}, true},
		{"editor denied moderation", ChatModeration, false, []string{types.RoleEditor}, false},
		{"viewer denied advanced search", AdvancedSearch, false, []string{types.RoleViewer}, false},
		{"highest role anywhere wins", ManuscriptExport, false, []string{types.RoleViewer, types.RoleOwner}, true},
		{"no roles denied", AdvancedSearch, false, nil, false},
		{"unknown role denied", AdvancedSearch, false, []string{"admin"}, false},
		{"empty ability denied", "", false, []string{types.RoleOwner}, false},
		{"audit export not in any role default", AuditExport, false, []string{types.RoleOwner}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(p, tc.ability, tc.hasGrant, tc.roles); got != tc.want {
				t.Errorf("Resolve(%q, grant=%v, roles=%v) = %v, want %v",
					tc.ability, tc.hasGrant, tc.roles, got, tc.want)
			}
		})
	}
}

func TestHighestRole(t *testing.T) {
	cases := []struct {
		roles []string
		want  string
	}{
		{nil, ""},
		{[]string{types.RoleViewer}, types.RoleViewer},
		{[]string{types.RoleViewer, types.RoleEditor}, types.RoleEditor},
		{[]string{types.RoleEditor, types.RoleOwner, types.RoleViewer}, types.RoleOwner},
		{[]string{"admin"}, ""},
	}
	for _, tc := range cases {
		if got := HighestRole(tc.roles); got != tc.want {
			t.Errorf("HighestRole(%v) = %q, want %q", tc.roles, got, tc.want)
		}
	}
}

func TestLoadPolicy(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(good, []byte(`role_defaults:
  owner: [advanced_search, manuscript_export, chat_moderation]
  editor: [advanced_search]
  viewer: []
`), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	p, err := LoadPolicy(good)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if !Resolve(p, ChatModeration, false, []string{types.RoleOwner}) {
		t.Error("loaded policy should give owners chat_moderation")
	}
	if Resolve(p, ChatModeration, false, []string{types.RoleEditor}) {
		t.Error("loaded policy should deny editors chat_moderation")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte(`role_defaults:
  superuser: [advanced_search]
`), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	if _, err := LoadPolicy(bad); err == nil {
		t.Error("LoadPolicy should reject unknown roles")
	}

	if _, err := LoadPolicy(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadPolicy should fail on a missing file")
	}
}
