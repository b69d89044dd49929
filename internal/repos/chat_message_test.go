package repos

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/repos/testutil"
	"github.com/junoathena/gateway-backend/internal/types"
)

// TestNextSeq_ConcurrentPosts drives real committed transactions on separate
// connections: every writer locks the project row, takes the next sequence
// number, and inserts. The committed result must be 1..N with no gaps and no
// duplicates.
func TestNextSeq_ConcurrentPosts(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	project := &types.Project{
		ID:           uuid.New(),
		GroupID:      uuid.New(),
		Title:        "Concurrency Probe",
		CreatorEmail: "seq-test@example.com",
	}
	if err := db.WithContext(ctx).Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	t.Cleanup(func() {
		db.Where("project_id = ?", project.ID).Delete(&types.ChatMessage{})
		db.Delete(&types.Project{}, "id = ?", project.ID)
	})

	projects := NewProjectRepo(db, log)
	messages := NewChatMessageRepo(db, log)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				txc := dbctx.Context{Ctx: ctx, Tx: tx}
				if _, err := projects.LockByID(txc, project.ID); err != nil {
					return err
				}
				seq, err := messages.NextSeq(txc, project.ID)
				if err != nil {
					return err
				}
				_, err = messages.Create(txc, []*types.ChatMessage{{
					ProjectID:   project.ID,
					Seq:         seq,
					AuthorEmail: "seq-test@example.com",
					AuthorName:  "Seq Test",
					Kind:        types.ChatKindMessage,
					Body:        "probe",
				}})
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent post: %v", err)
		}
	}

	rows, err := messages.ListByProjectSince(dbctx.Context{Ctx: ctx}, project.ID, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != writers {
		t.Fatalf("want %d messages, got %d", writers, len(rows))
	}
	seqs := make([]int64, 0, len(rows))
	for _, m := range rows {
		seqs = append(seqs, m.Seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	for i, s := range seqs {
		if s != int64(i+1) {
			t.Fatalf("sequence has gaps or duplicates: %v", seqs)
		}
	}
}
