package services

import (
	"context"
	"testing"
	"time"

	"github.com/junoathena/gateway-backend/internal/types"
)

func TestAuditJournal_OrderAndPayload(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.audit.LogEvent(ctx, "alice@example.com", types.AuditLogin, map[string]any{"email": "alice@example.com"})
	h.audit.LogEvent(ctx, "alice@example.com", types.AuditCreateGroup, map[string]any{"name": "Folding Lab"})
	h.audit.LogEvent(ctx, "alice@example.com", types.AuditStatus, nil)

	events := h.eventsByActor(t, "alice@example.com")
	if len(events) != 3 {
		t.Fatalf("want 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq != events[i-1].Seq+1 {
			t.Errorf("journal seq not gapless: %d then %d", events[i-1].Seq, events[i].Seq)
		}
	}
	wantTypes := []string{types.AuditLogin, types.AuditCreateGroup, types.AuditStatus}
	for i, e := range events {
		if e.EventType != wantTypes[i] {
			t.Errorf("event %d type = %q, want %q", i, e.EventType, wantTypes[i])
		}
	}
}

func TestAuditJournal_FetchSince(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Minute)
	h.audit.LogEvent(ctx, "alice@example.com", types.AuditLogin, nil)
	h.audit.LogEvent(ctx, "alice@example.com", types.AuditStatus, nil)

	events, err := h.audit.FetchSince(ctx, before, 0)
	if err != nil {
		t.Fatalf("FetchSince: %v", err)
	}
	if len(events) < 2 {
		t.Fatalf("want at least 2 events, got %d", len(events))
	}
	var last int64
	for _, e := range events {
		if e.Seq <= last {
			t.Errorf("events not in seq order: %d after %d", e.Seq, last)
		}
		last = e.Seq
	}

	future, err := h.audit.FetchSince(ctx, time.Now().Add(time.Hour), 0)
	if err != nil {
		t.Fatalf("FetchSince: %v", err)
	}
	if len(future) != 0 {
		t.Errorf("future cutoff should return nothing, got %d", len(future))
	}
}

// TestAuditNeverFailsCaller drops an unserializable payload through LogEvent;
// the call must not panic and the event still lands with an empty payload.
func TestAuditNeverFailsCaller(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.audit.LogEvent(ctx, "alice@example.com", types.AuditStatus, map[string]any{
		"bad": func() {},
	})

	events := h.eventsByActor(t, "alice@example.com")
	if len(events) != 1 {
		t.Fatalf("want the event recorded despite the bad payload, got %d", len(events))
	}
	if events[0].Payload != "{}" {
		t.Errorf("payload = %q, want empty object", events[0].Payload)
	}
}
