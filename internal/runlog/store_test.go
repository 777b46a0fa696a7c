package runlog_test

import (
	"context"
	"path/filepath"
	"testing"

	"dubloom/internal/runlog"
)

func newStore(t *testing.T) *runlog.Store {
	t.Helper()
	store, err := runlog.Open(filepath.Join(t.TempDir(), "runlog.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return store
}

func TestBeginAndFinishAttempt(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	id, err := store.Begin(ctx, "dub-1", "Episode 3 #render")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := store.Finish(ctx, id, "job-9", "exported", ""); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	attempts, err := store.RecentAttempts(ctx, 10)
	if err != nil {
		t.Fatalf("RecentAttempts failed: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", len(attempts))
	}
	got := attempts[0]
	if got.ItemID != "dub-1" || got.JobID != "job-9" || got.Status != "exported" {
		t.Fatalf("unexpected attempt: %+v", got)
	}
	if got.StartedAt.IsZero() || got.FinishedAt.IsZero() {
		t.Fatalf("expected both timestamps set: %+v", got)
	}
}

func TestRecentAttemptsNewestFirst(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, item := range []string{"dub-1", "dub-2", "dub-3"} {
		if _, err := store.Begin(ctx, item, ""); err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
	}

	attempts, err := store.RecentAttempts(ctx, 2)
	if err != nil {
		t.Fatalf("RecentAttempts failed: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected limit to apply, got %d attempts", len(attempts))
	}
	if attempts[0].ItemID != "dub-3" || attempts[1].ItemID != "dub-2" {
		t.Fatalf("unexpected order: %+v", attempts)
	}
}

func TestAttemptsForItemKeepsHistory(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first, err := store.Begin(ctx, "dub-1", "")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := store.Finish(ctx, first, "", "failed", "render_exploded"); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if _, err := store.Begin(ctx, "dub-1", ""); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := store.Begin(ctx, "dub-2", ""); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	attempts, err := store.AttemptsForItem(ctx, "dub-1")
	if err != nil {
		t.Fatalf("AttemptsForItem failed: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts for dub-1, got %d", len(attempts))
	}
	if attempts[1].Detail != "render_exploded" {
		t.Fatalf("expected failure detail preserved, got %+v", attempts[1])
	}
}
