// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"dubloom/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Studio.APIKey = "test-key"
	cfgVal.Studio.Token = "test-token"
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Batch.ListPath = filepath.Join(base, "dubbings.json")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMarkers overrides the ready/exported title markers.
func WithMarkers(ready, exported string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Markers.Ready = ready
		b.cfg.Markers.Exported = exported
	}
}

// WithWindow sets batch offset and limit on the test config.
func WithWindow(offset, limit int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Batch.Offset = offset
		b.cfg.Batch.Limit = limit
	}
}

// WriteBatchList marshals items to the config's batch list path.
func WriteBatchList(t testing.TB, cfg *config.Config, items any) {
	t.Helper()

	data, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("marshal batch list: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Batch.ListPath), 0o755); err != nil {
		t.Fatalf("create batch list directory: %v", err)
	}
	if err := os.WriteFile(cfg.Batch.ListPath, data, 0o644); err != nil {
		t.Fatalf("write batch list: %v", err)
	}
}
