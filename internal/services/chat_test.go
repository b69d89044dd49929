package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/types"
)

func TestPost_SequenceAndClassification(t *testing.T) {
	h := newHarness(t)
	group := seedGroupWithRoles(t, h)
	bob := sessionCtx("bob@example.com", "Bob Diaz", false, false)
	project, err := h.project.CreateProject(bob, group.ID, "Misfold Screen")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	alice := sessionCtx("alice@example.com", "Alice Chen", false, false)

	first, err := h.chat.Post(bob, project.ID, "/summarize")
	if err != nil {
		t.Fatalf("Post command: %v", err)
	}
	if first.Kind != types.ChatKindCommand || first.Seq != 1 {
		t.Errorf("want command seq 1, got kind=%q seq=%d", first.Kind, first.Seq)
	}

	second, err := h.chat.Post(alice, project.ID, "hello")
	if err != nil {
		t.Fatalf("Post message: %v", err)
	}
	if second.Kind != types.ChatKindMessage || second.Seq != 2 {
		t.Errorf("want message seq 2, got kind=%q seq=%d", second.Kind, second.Seq)
	}

	msgs, err := h.chat.Fetch(alice, project.ID, 0, 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("want 2 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.Seq != int64(i+1) {
			t.Errorf("messages not gapless: position %d has seq %d", i, m.Seq)
		}
	}

	since, err := h.chat.Fetch(alice, project.ID, 1, 0)
	if err != nil {
		t.Fatalf("Fetch since: %v", err)
	}
	if len(since) != 1 || since[0].Seq != 2 {
		t.Errorf("Fetch(since=1) should return only seq 2, got %+v", since)
	}

	events := h.eventsByActor(t, "bob@example.com")
	var commands int
	for _, e := range events {
		if e.EventType == types.AuditChatCommand {
			commands++
			if !strings.Contains(e.Payload, "summarize") {
				t.Errorf("chat_command payload should name the verb, got %s", e.Payload)
			}
		}
	}
	if commands != 1 {
		t.Errorf("want 1 chat_command event, got %d", commands)
	}
}

func TestPost_UnknownVerbEcho(t *testing.T) {
	h := newHarness(t)
	group := seedGroupWithRoles(t, h)
	bob := sessionCtx("bob@example.com", "Bob Diaz", false, false)
	project, err := h.project.CreateProject(bob, group.ID, "Misfold Screen")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	msg, err := h.chat.Post(bob, project.ID, "/teleport lab7")
	if err != nil {
		t.Fatalf("unknown verb must not fail the post: %v", err)
	}
	if msg.Kind != types.ChatKindCommand {
		t.Errorf("kind = %q, want command", msg.Kind)
	}

	msgs, err := h.chat.Fetch(bob, project.ID, 0, 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("want command plus echo, got %d messages", len(msgs))
	}
	echo := msgs[1]
	if echo.Kind != types.ChatKindMessage || !strings.Contains(echo.Body, "teleport") {
		t.Errorf("unexpected echo: %+v", echo)
	}
}

func TestPost_ModerationGate(t *testing.T) {
	h := newHarness(t)
	group := seedGroupWithRoles(t, h)
	bob := sessionCtx("bob@example.com", "Bob Diaz", false, false)
	project, err := h.project.CreateProject(bob, group.ID, "Misfold Screen")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	// Editors lack chat_moderation by default: the command is recorded but
	// answered with a denial echo.
	if _, err := h.chat.Post(bob, project.ID, "/mute carol"); err != nil {
		t.Fatalf("Post: %v", err)
	}
	msgs, err := h.chat.Fetch(bob, project.ID, 0, 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(msgs) != 2 || !strings.Contains(msgs[1].Body, "moderation") {
		t.Fatalf("want denial echo, got %+v", msgs)
	}

	// Owners hold chat_moderation through the role policy: no echo.
	alice := sessionCtx("alice@example.com", "Alice Chen", false, false)
	if _, err := h.chat.Post(alice, project.ID, "/mute carol"); err != nil {
		t.Fatalf("Post: %v", err)
	}
	msgs, err = h.chat.Fetch(alice, project.ID, 2, 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(msgs) != 1 {
		t.Errorf("owner moderation command should not echo, got %+v", msgs)
	}
}

func TestPost_PermissionsAndDegraded(t *testing.T) {
	h := newHarness(t)
	group := seedGroupWithRoles(t, h)
	bob := sessionCtx("bob@example.com", "Bob Diaz", false, false)
	project, err := h.project.CreateProject(bob, group.ID, "Misfold Screen")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	vic := sessionCtx("vic@example.com", "Vic Tran", false, false)
	if _, err := h.chat.Post(vic, project.ID, "hi"); !apierr.IsCode(err, apierr.CodePermission) {
		t.Errorf("viewer post: want permission error, got %v", err)
	}
	if _, err := h.chat.Fetch(vic, project.ID, 0, 0); err != nil {
		t.Errorf("viewer fetch should work: %v", err)
	}

	lapsed := sessionCtx("bob@example.com", "Bob Diaz", false, true)
	if _, err := h.chat.Post(lapsed, project.ID, "hi"); !apierr.IsCode(err, apierr.CodeDegradedMode) {
		t.Errorf("want degraded_mode error, got %v", err)
	}
}

func TestAskAthena_PairedEntries(t *testing.T) {
	h := newHarness(t)
	group := seedGroupWithRoles(t, h)
	bob := sessionCtx("bob@example.com", "Bob Diaz", false, false)
	project, err := h.project.CreateProject(bob, group.ID, "Misfold Screen")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	question, reply, err := h.chat.AskAthena(bob, project.ID, "What is known about variant 7?")
	if err != nil {
		t.Fatalf("AskAthena: %v", err)
	}
	if question.Role != types.AthenaRoleUser {
		t.Errorf("question role = %q", question.Role)
	}
	if reply.Role != types.AthenaRoleAssistant || reply.Status != types.AthenaStatusSent {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if reply.Text != "Here is what I found." {
		t.Errorf("reply text = %q", reply.Text)
	}

	msgs, err := h.chat.ListAthena(bob, project.ID, 0)
	if err != nil {
		t.Fatalf("ListAthena: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("want paired entries, got %d", len(msgs))
	}
}

func TestAskAthena_FailureStillPairs(t *testing.T) {
	h := newHarness(t)
	h.athena.replyErr = errors.New("upstream down")
	group := seedGroupWithRoles(t, h)
	bob := sessionCtx("bob@example.com", "Bob Diaz", false, false)
	project, err := h.project.CreateProject(bob, group.ID, "Misfold Screen")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	_, reply, err := h.chat.AskAthena(bob, project.ID, "Anyone there?")
	if err != nil {
		t.Fatalf("a failed generation must not fail the call: %v", err)
	}
	if reply.Status != types.AthenaStatusError {
		t.Errorf("reply status = %q, want error", reply.Status)
	}

	msgs, err := h.chat.ListAthena(bob, project.ID, 0)
	if err != nil {
		t.Fatalf("ListAthena: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("no dangling user entry allowed: got %d entries", len(msgs))
	}
}

func TestSupervisorComments(t *testing.T) {
	h := newHarness(t)
	group := seedGroupWithRoles(t, h)
	bob := sessionCtx("bob@example.com", "Bob Diaz", false, false)
	project, err := h.project.CreateProject(bob, group.ID, "Misfold Screen")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	if _, err := h.chat.AddSupervisorComment(bob, project.ID, "nice work", ""); !apierr.IsCode(err, apierr.CodePermission) {
		t.Fatalf("non-mentor: want permission error, got %v", err)
	}

	mentor := sessionCtx("mentor@example.com", "Maya Osei", true, false)
	comment, err := h.chat.AddSupervisorComment(mentor, project.ID, "Re-run with a control group", "Add a comparison run without the mutation.")
	if err != nil {
		t.Fatalf("AddSupervisorComment: %v", err)
	}
	if comment.ExplainedText == "" {
		t.Error("explained text should be stored")
	}

	// Students in the group can read the channel.
	comments, err := h.chat.ListSupervisorComments(bob, project.ID)
	if err != nil {
		t.Fatalf("ListSupervisorComments: %v", err)
	}
	if len(comments) != 1 {
		t.Errorf("want 1 comment, got %d", len(comments))
	}

	// The mentor can read it without holding a membership.
	if _, err := h.chat.ListSupervisorComments(mentor, project.ID); err != nil {
		t.Errorf("mentor read: %v", err)
	}

	outsider := sessionCtx("eve@example.com", "Eve Park", false, false)
	if _, err := h.chat.ListSupervisorComments(outsider, project.ID); !apierr.IsCode(err, apierr.CodePermission) {
		t.Errorf("outsider: want permission error, got %v", err)
	}
}

// TestCollaborationScenario walks the full flow: alice founds a group and
// invites bob as editor, bob opens a project, an outsider is refused, and the
// chat records a command then a message with consecutive sequence numbers.
func TestCollaborationScenario(t *testing.T) {
	h := newHarness(t)
	alice := sessionCtx("alice@example.com", "Alice Chen", false, false)
	bob := sessionCtx("bob@example.com", "Bob Diaz", false, false)
	carol := sessionCtx("carol@example.com", "Carol Kim", false, false)

	group, err := h.group.CreateGroup(alice, "Folding Lab")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := h.group.InviteMember(alice, group.ID, "bob@example.com", types.RoleEditor); err != nil {
		t.Fatalf("InviteMember: %v", err)
	}

	project, err := h.project.CreateProject(bob, group.ID, "Misfold Screen")
	if err != nil {
		t.Fatalf("bob is editor, CreateProject: %v", err)
	}

	if _, err := h.project.AddFinding(carol, AddFindingInput{
		ProjectID: project.ID,
		Text:      "intrusion",
		Quality:   types.QualityPreliminary,
	}); !apierr.IsCode(err, apierr.CodePermission) {
		t.Fatalf("carol: want permission error, got %v", err)
	}

	cmd, err := h.chat.Post(bob, project.ID, "/summarize")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if cmd.Kind != types.ChatKindCommand || cmd.Seq != 1 {
		t.Errorf("want command seq 1, got kind=%q seq=%d", cmd.Kind, cmd.Seq)
	}

	msg, err := h.chat.Post(alice, project.ID, "hello")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if msg.Kind != types.ChatKindMessage || msg.Seq != 2 {
		t.Errorf("want message seq 2, got kind=%q seq=%d", msg.Kind, msg.Seq)
	}
}
