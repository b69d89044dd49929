package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/abilities"
	"github.com/junoathena/gateway-backend/internal/clients/license"
	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/repos"
	"github.com/junoathena/gateway-backend/internal/repos/testutil"
	"github.com/junoathena/gateway-backend/internal/requestdata"
)

type fakeAthena struct {
	valid     bool
	verifyErr error
	reply     string
	replyErr  error
}

func (f *fakeAthena) IsPasskeyValid(ctx context.Context, email, passkey string) (bool, error) {
	return f.valid, f.verifyErr
}

func (f *fakeAthena) GenerateReply(ctx context.Context, prompt string) (string, error) {
	if f.replyErr != nil {
		return "", f.replyErr
	}
	return f.reply, nil
}

type fakeLicense struct {
	st  license.Status
	err error
}

func (f *fakeLicense) Validate(ctx context.Context, email string) (license.Status, error) {
	return f.st, f.err
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeMailer) Send(ctx context.Context, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, subject)
	return nil
}

// harness wires the full service graph over a rollback transaction so each
// test starts from a clean database and leaves nothing behind.
type harness struct {
	tx    *gorm.DB
	log   *logger.Logger
	repos struct {
		users       repos.UserRepo
		tokens      repos.UserTokenRepo
		groups      repos.GroupRepo
		memberships repos.MembershipRepo
		projects    repos.ProjectRepo
		findings    repos.FindingRepo
		messages    repos.ChatMessageRepo
		athenaMsgs  repos.AthenaMessageRepo
		comments    repos.SupervisorCommentRepo
		grants      repos.AbilityGrantRepo
		events      repos.AuditEventRepo
	}
	athena  *fakeAthena
	license *fakeLicense
	mailer  *fakeMailer

	audit   AuditService
	notify  MentorNotifier
	ability AbilityService
	group   GroupService
	project ProjectService
	chat    ChatService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	h := &harness{
		tx:      tx,
		log:     log,
		athena:  &fakeAthena{valid: true, reply: "Here is what I found."},
		license: &fakeLicense{st: license.Status{Valid: true}},
		mailer:  &fakeMailer{},
	}
	h.repos.users = repos.NewUserRepo(tx, log)
	h.repos.tokens = repos.NewUserTokenRepo(tx, log)
	h.repos.groups = repos.NewGroupRepo(tx, log)
	h.repos.memberships = repos.NewMembershipRepo(tx, log)
	h.repos.projects = repos.NewProjectRepo(tx, log)
	h.repos.findings = repos.NewFindingRepo(tx, log)
	h.repos.messages = repos.NewChatMessageRepo(tx, log)
	h.repos.athenaMsgs = repos.NewAthenaMessageRepo(tx, log)
	h.repos.comments = repos.NewSupervisorCommentRepo(tx, log)
	h.repos.grants = repos.NewAbilityGrantRepo(tx, log)
	h.repos.events = repos.NewAuditEventRepo(tx, log)

	h.audit = NewAuditService(tx, log, h.repos.events)
	h.notify = NewMentorNotifier(log, h.mailer)
	h.ability = NewAbilityService(tx, log, abilities.DefaultPolicy(), h.repos.grants, h.repos.memberships, h.audit, h.notify)
	h.group = NewGroupService(tx, log, h.repos.groups, h.repos.memberships, h.audit)
	h.project = NewProjectService(tx, log, h.repos.projects, h.repos.findings, h.repos.groups, h.repos.memberships, h.audit, h.notify)
	h.chat = NewChatService(tx, log, h.repos.messages, h.repos.athenaMsgs, h.repos.comments, h.repos.projects, h.repos.memberships, h.athena, h.ability, h.audit)
	return h
}

func (h *harness) dbc() dbctx.Context {
	return dbctx.Context{Ctx: context.Background(), Tx: h.tx}
}

// sessionCtx builds a request context for a principal without running the
// login path.
func sessionCtx(email, fullName string, mentor, readOnly bool) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		TokenString:  "test-token",
		RefreshToken: "test-refresh",
		UserID:       uuid.New(),
		Email:        email,
		FullName:     fullName,
		Mentor:       mentor,
		ReadOnly:     readOnly,
	})
}

// eventsByActor reads journal entries for one actor in seq order.
func (h *harness) eventsByActor(t *testing.T, actor string) []eventRow {
	t.Helper()
	var rows []eventRow
	if err := h.tx.
		Table("audit_event").
		Select("seq, event_type, actor, payload").
		Where("actor = ?", actor).
		Order("seq ASC").
		Scan(&rows).Error; err != nil {
		t.Fatalf("read audit events: %v", err)
	}
	return rows
}

// waitFor polls for an asynchronous side effect, such as a mentor
// notification delivered from a goroutine.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

type eventRow struct {
	Seq       int64
	EventType string
	Actor     string
	Payload   string
}
