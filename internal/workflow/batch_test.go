package workflow_test

import (
	"os"
	"path/filepath"
	"testing"

	"dubloom/internal/workflow"
)

func writeList(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dubbings.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	return path
}

func TestLoadBatchDropsRowsWithoutID(t *testing.T) {
	path := writeList(t, `[
		{"dubbingId": "dub-1", "name": "One"},
		{"name": "no id"},
		{"dubbingId": "  ", "name": "blank id"},
		{"dubbingId": "dub-2"}
	]`)

	items, err := workflow.LoadBatch(path, 0, 0)
	if err != nil {
		t.Fatalf("LoadBatch failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].DubbingID != "dub-1" || items[1].DubbingID != "dub-2" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestLoadBatchWindowing(t *testing.T) {
	path := writeList(t, `[
		{"dubbingId": "dub-1"},
		{"dubbingId": "dub-2"},
		{"dubbingId": "dub-3"},
		{"dubbingId": "dub-4"}
	]`)

	items, err := workflow.LoadBatch(path, 1, 2)
	if err != nil {
		t.Fatalf("LoadBatch failed: %v", err)
	}
	if len(items) != 2 || items[0].DubbingID != "dub-2" || items[1].DubbingID != "dub-3" {
		t.Fatalf("unexpected window: %+v", items)
	}

	// Offset past the end yields an empty batch, not an error.
	items, err = workflow.LoadBatch(path, 10, 0)
	if err != nil {
		t.Fatalf("LoadBatch failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty batch, got %+v", items)
	}

	// Zero limit means everything after the offset.
	items, err = workflow.LoadBatch(path, 2, 0)
	if err != nil {
		t.Fatalf("LoadBatch failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %+v", items)
	}
}

func TestLoadBatchRejectsBadInput(t *testing.T) {
	if _, err := workflow.LoadBatch(filepath.Join(t.TempDir(), "missing.json"), 0, 0); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := writeList(t, `{"not": "a list"}`)
	if _, err := workflow.LoadBatch(path, 0, 0); err == nil {
		t.Fatal("expected error for non-array payload")
	}
}
