package services

import (
	"context"
	"testing"

	"github.com/junoathena/gateway-backend/internal/abilities"
	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/repos/testutil"
	"github.com/junoathena/gateway-backend/internal/types"
)

func TestCan_RoleDefaultsAndGrants(t *testing.T) {
	h := newHarness(t)
	seedGroupWithRoles(t, h)

	cases := []struct {
		name    string
		email   string
		ability string
		want    bool
	}{
		{"owner has moderation", "alice@example.com", abilities.ChatModeration, true},
		{"editor has advanced search", "bob@example.com", abilities.AdvancedSearch, true},
		{"editor lacks moderation", "bob@example.com", abilities.ChatModeration, false},
		{"viewer lacks advanced search", "vic@example.com", abilities.AdvancedSearch, false},
		{"stranger denied", "eve@example.com", abilities.AdvancedSearch, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := h.ability.Can(context.Background(), tc.email, tc.ability)
			if err != nil {
				t.Fatalf("Can: %v", err)
			}
			if got != tc.want {
				t.Errorf("Can(%q, %q) = %v, want %v", tc.email, tc.ability, got, tc.want)
			}
		})
	}

	// An explicit grant overrides the role default.
	testutil.SeedAbilityGrant(t, h.dbc(), "vic@example.com", abilities.AdvancedSearch)
	got, err := h.ability.Can(context.Background(), "vic@example.com", abilities.AdvancedSearch)
	if err != nil {
		t.Fatalf("Can: %v", err)
	}
	if !got {
		t.Error("grant should override the viewer default")
	}
}

func TestGrant_MentorGated(t *testing.T) {
	h := newHarness(t)

	student := sessionCtx("bob@example.com", "Bob Diaz", false, false)
	if _, err := h.ability.Grant(student, "vic@example.com", abilities.ChatModeration); !apierr.IsCode(err, apierr.CodePermission) {
		t.Fatalf("non-mentor grant: want permission error, got %v", err)
	}

	mentor := sessionCtx("mentor@example.com", "Maya Osei", true, false)
	grant, err := h.ability.Grant(mentor, "vic@example.com", abilities.ChatModeration)
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if grant.GrantedBy != "mentor@example.com" {
		t.Errorf("granted_by = %q", grant.GrantedBy)
	}

	if _, err := h.ability.Grant(mentor, "vic@example.com", abilities.ChatModeration); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Errorf("duplicate grant: want validation error, got %v", err)
	}

	got, err := h.ability.Can(context.Background(), "vic@example.com", abilities.ChatModeration)
	if err != nil {
		t.Fatalf("Can: %v", err)
	}
	if !got {
		t.Error("granted ability should resolve to allowed")
	}

	events := h.eventsByActor(t, "mentor@example.com")
	if len(events) != 1 || events[0].EventType != types.AuditAbilityGrant {
		t.Errorf("want one ability_grant event, got %+v", events)
	}
}

func TestRequestAccess_AuditsAndNotifies(t *testing.T) {
	h := newHarness(t)
	bob := sessionCtx("bob@example.com", "Bob Diaz", false, false)

	h.ability.RequestAccess(bob, abilities.ChatModeration, "need to pin the protocol message")

	events := h.eventsByActor(t, "bob@example.com")
	if len(events) != 1 || events[0].EventType != types.AuditAbilityRequest {
		t.Fatalf("want one ability_request event, got %+v", events)
	}
	waitFor(t, func() bool {
		h.mailer.mu.Lock()
		defer h.mailer.mu.Unlock()
		return len(h.mailer.sent) == 1
	})
}
