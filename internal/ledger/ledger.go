package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"dubloom/internal/logging"
)

// Entry status values. An entry moves pending -> rendered -> exported on the
// happy path; failed is terminal for the attempt but a later run may retry.
const (
	StatusPending  = "pending"
	StatusRendered = "rendered"
	StatusExported = "exported"
	StatusFailed   = "failed"
)

// Entry records the outcome of a render attempt for one dubbing.
type Entry struct {
	ItemID         string    `json:"item_id"`
	Title          string    `json:"title"`
	RenderJobID    string    `json:"render_job_id"`
	MediaURL       string    `json:"media_url"`
	RenderLanguage string    `json:"render_language"`
	Status         string    `json:"status"`
	RenderedAt     time.Time `json:"rendered_at,omitzero"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Completed reports whether the entry represents finished work. A render
// only counts once the media URL is recorded; failed and pending entries
// stay eligible for another attempt.
func (e Entry) Completed() bool {
	return strings.TrimSpace(e.MediaURL) != ""
}

// Ledger provides thread-safe access to the render ledger. Every mutation
// rewrites the whole collection on disk, so the file is always a complete
// snapshot of the current state.
type Ledger struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]Entry // keyed by item ID
}

// Open loads the ledger at path, creating an empty one if the file does not
// exist yet. A file that exists but cannot be parsed is an error: silently
// starting empty would resubmit renders that already finished.
func Open(path string, logger *slog.Logger) (*Ledger, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ledger path cannot be empty")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ledger")

	l := &Ledger{
		path:    path,
		logger:  logger,
		entries: make(map[string]Entry),
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

// Get returns the entry for the given item ID if present.
func (l *Ledger) Get(itemID string) (Entry, bool) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return Entry{}, false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, found := l.entries[itemID]
	return entry, found
}

// Completed reports whether the item already has a recorded media URL.
func (l *Ledger) Completed(itemID string) bool {
	entry, found := l.Get(itemID)
	return found && entry.Completed()
}

// Put adds or replaces the entry for its item ID and persists to disk.
func (l *Ledger) Put(entry Entry) error {
	entry.ItemID = strings.TrimSpace(entry.ItemID)
	if entry.ItemID == "" {
		return errors.New("item ID cannot be empty")
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[entry.ItemID] = entry

	if err := l.save(); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}

	l.logger.Debug("recorded ledger entry",
		logging.String(logging.FieldItemID, entry.ItemID),
		logging.String("status", entry.Status),
		logging.String(logging.FieldJobID, entry.RenderJobID))

	return nil
}

// Remove deletes the entry for the given item ID and persists the change.
func (l *Ledger) Remove(itemID string) error {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return errors.New("item ID cannot be empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.entries[itemID]; !exists {
		return fmt.Errorf("item %q not found in ledger", itemID)
	}

	delete(l.entries, itemID)

	if err := l.save(); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// List returns all entries sorted by UpdatedAt descending (newest first).
func (l *Ledger) List() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.sorted()
}

// Count returns the number of entries in the ledger.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.entries)
}

// Clear removes all entries and persists the empty ledger.
func (l *Ledger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = make(map[string]Entry)

	if err := l.save(); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}

	l.logger.Debug("cleared ledger")
	return nil
}

func (l *Ledger) sorted() []Entry {
	entries := make([]Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].ItemID < entries[j].ItemID
		}
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries
}

func (l *Ledger) load() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read ledger file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse ledger file %s: %w", l.path, err)
	}

	l.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.ItemID) != "" {
			l.entries[entry.ItemID] = entry
		}
	}

	l.logger.Debug("loaded ledger",
		logging.Int("entry_count", len(l.entries)),
		logging.String("path", l.path))

	return nil
}

// save writes the full collection to disk atomically.
func (l *Ledger) save() error {
	data, err := json.MarshalIndent(l.sorted(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	tmpPath := l.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
