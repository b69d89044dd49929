package services

import (
	"testing"

	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/types"
)

// seedGroupWithRoles creates a group owned by alice with bob as editor and
// carol holding no membership at all.
func seedGroupWithRoles(t *testing.T, h *harness) *types.Group {
	t.Helper()
	owner := sessionCtx("alice@example.com", "Alice Chen", false, false)
	group, err := h.group.CreateGroup(owner, "Protein Folding")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := h.group.InviteMember(owner, group.ID, "bob@example.com", types.RoleEditor); err != nil {
		t.Fatalf("InviteMember: %v", err)
	}
	if _, err := h.group.InviteMember(owner, group.ID, "vic@example.com", types.RoleViewer); err != nil {
		t.Fatalf("InviteMember: %v", err)
	}
	return group
}

func TestCreateProject_Roles(t *testing.T) {
	h := newHarness(t)
	group := seedGroupWithRoles(t, h)

	bob := sessionCtx("bob@example.com", "Bob Diaz", false, false)
	project, err := h.project.CreateProject(bob, group.ID, "Misfold Screen")
	if err != nil {
		t.Fatalf("editor should create projects: %v", err)
	}
	if project.GroupID != group.ID {
		t.Errorf("project group = %v, want %v", project.GroupID, group.ID)
	}

	vic := sessionCtx("vic@example.com", "Vic Tran", false, false)
	if _, err := h.project.CreateProject(vic, group.ID, "Nope"); !apierr.IsCode(err, apierr.CodePermission) {
		t.Errorf("viewer: want permission error, got %v", err)
	}

	carol := sessionCtx("carol@example.com", "Carol Kim", false, false)
	if _, err := h.project.CreateProject(carol, group.ID, "Nope"); !apierr.IsCode(err, apierr.CodePermission) {
		t.Errorf("non-member: want permission error, got %v", err)
	}
}

func TestAddFinding(t *testing.T) {
	h := newHarness(t)
	group := seedGroupWithRoles(t, h)
	bob := sessionCtx("bob@example.com", "Bob Diaz", false, false)
	project, err := h.project.CreateProject(bob, group.ID, "Misfold Screen")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	finding, err := h.project.AddFinding(bob, AddFindingInput{
		ProjectID: project.ID,
		Text:      "Variant 7 misfolds at 42C",
		Quality:   types.QualityValidated,
	})
	if err != nil {
		t.Fatalf("AddFinding: %v", err)
	}
	if finding.Quality != types.QualityValidated {
		t.Errorf("quality = %q", finding.Quality)
	}

	t.Run("unknown quality rejected", func(t *testing.T) {
		_, err := h.project.AddFinding(bob, AddFindingInput{
			ProjectID: project.ID,
			Text:      "text",
			Quality:   "Platinum",
		})
		if !apierr.IsCode(err, apierr.CodeValidation) {
			t.Errorf("want validation error, got %v", err)
		}
	})

	t.Run("non-member denied", func(t *testing.T) {
		carol := sessionCtx("carol@example.com", "Carol Kim", false, false)
		_, err := h.project.AddFinding(carol, AddFindingInput{
			ProjectID: project.ID,
			Text:      "text",
			Quality:   types.QualityPreliminary,
		})
		if !apierr.IsCode(err, apierr.CodePermission) {
			t.Errorf("want permission error, got %v", err)
		}
	})

	t.Run("viewer denied", func(t *testing.T) {
		vic := sessionCtx("vic@example.com", "Vic Tran", false, false)
		_, err := h.project.AddFinding(vic, AddFindingInput{
			ProjectID: project.ID,
			Text:      "text",
			Quality:   types.QualityPreliminary,
		})
		if !apierr.IsCode(err, apierr.CodePermission) {
			t.Errorf("want permission error, got %v", err)
		}
	})

	t.Run("supervisor routing notifies mentor", func(t *testing.T) {
		before := len(h.mailer.sent)
		_, err := h.project.AddFinding(bob, AddFindingInput{
			ProjectID:     project.ID,
			Text:          "Please review variant 9",
			Quality:       types.QualityPreliminary,
			ForSupervisor: true,
		})
		if err != nil {
			t.Fatalf("AddFinding: %v", err)
		}
		waitFor(t, func() bool {
			h.mailer.mu.Lock()
			defer h.mailer.mu.Unlock()
			return len(h.mailer.sent) > before
		})
	})
}

func TestDegradedMode_WritesBlockedReadsAllowed(t *testing.T) {
	h := newHarness(t)
	group := seedGroupWithRoles(t, h)
	bob := sessionCtx("bob@example.com", "Bob Diaz", false, false)
	project, err := h.project.CreateProject(bob, group.ID, "Misfold Screen")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if _, err := h.project.AddFinding(bob, AddFindingInput{
		ProjectID: project.ID,
		Text:      "baseline",
		Quality:   types.QualityPreliminary,
	}); err != nil {
		t.Fatalf("AddFinding: %v", err)
	}

	lapsed := sessionCtx("bob@example.com", "Bob Diaz", false, true)
	if _, err := h.project.AddFinding(lapsed, AddFindingInput{
		ProjectID: project.ID,
		Text:      "blocked",
		Quality:   types.QualityPreliminary,
	}); !apierr.IsCode(err, apierr.CodeDegradedMode) {
		t.Fatalf("want degraded_mode error, got %v", err)
	}

	findings, err := h.project.ListFindings(lapsed, project.ID)
	if err != nil {
		t.Fatalf("reads must survive degraded mode: %v", err)
	}
	if len(findings) != 1 {
		t.Errorf("want 1 finding, got %d", len(findings))
	}
}

func TestListProjects_MembershipGate(t *testing.T) {
	h := newHarness(t)
	group := seedGroupWithRoles(t, h)
	bob := sessionCtx("bob@example.com", "Bob Diaz", false, false)
	if _, err := h.project.CreateProject(bob, group.ID, "Misfold Screen"); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	vic := sessionCtx("vic@example.com", "Vic Tran", false, false)
	projects, err := h.project.ListProjects(vic, group.ID)
	if err != nil {
		t.Fatalf("viewer should read projects: %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("want 1 project, got %d", len(projects))
	}

	carol := sessionCtx("carol@example.com", "Carol Kim", false, false)
	if _, err := h.project.ListProjects(carol, group.ID); !apierr.IsCode(err, apierr.CodePermission) {
		t.Errorf("non-member: want permission error, got %v", err)
	}
}
