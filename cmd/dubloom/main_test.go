package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubloom/internal/ledger"
)

type cliEnv struct {
	configPath string
	dataDir    string
}

func setupCLITestEnv(t *testing.T) cliEnv {
	t.Helper()

	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	configPath := filepath.Join(base, "config.toml")

	body := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[studio]
api_key = "test-key"
token = "test-token"
`, dataDir, filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cliEnv{configPath: configPath, dataDir: dataDir}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	cmd := newRootCommand()
	cmd.SetArgs(args)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --overwrite refuses to clobber the file.
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestLedgerListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"ledger", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger list: %v", err)
	}
	requireContains(t, out, "Ledger is empty")
}

func TestLedgerClearRequiresConfirmation(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"ledger", "clear"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("expected confirmation error, got %v", err)
	}

	out, _, err := runCLI(t, []string{"ledger", "clear", "--yes"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger clear --yes: %v", err)
	}
	requireContains(t, out, "Removed 0 ledger entries")
}

func TestStatusWithEmptyState(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Ledger")
	requireContains(t, out, "exported")
	requireContains(t, out, "none recorded")
}

func TestConfigValidateShowsResolvedPaths(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)
	requireContains(t, out, filepath.Join(env.dataDir, "ledger.json"))
	requireContains(t, out, "#render -> #exported")
}

func TestLedgerRemove(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := os.MkdirAll(env.dataDir, 0o755); err != nil {
		t.Fatalf("create data dir: %v", err)
	}
	led, err := ledger.Open(filepath.Join(env.dataDir, "ledger.json"), nil)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	seed := ledger.Entry{
		ItemID:   "dub-1",
		Title:    "Episode 3 #exported",
		MediaURL: "https://cdn/dub-1.mp4",
		Status:   ledger.StatusExported,
	}
	if err := led.Put(seed); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}

	out, _, err := runCLI(t, []string{"ledger", "remove", "dub-1"}, env.configPath)
	if err != nil {
		t.Fatalf("ledger remove: %v", err)
	}
	requireContains(t, out, "Removed ledger entry for dub-1")

	_, _, err = runCLI(t, []string{"ledger", "show", "dub-1"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no ledger entry") {
		t.Fatalf("expected entry gone after remove, got %v", err)
	}

	_, _, err = runCLI(t, []string{"ledger", "remove", "dub-missing"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestLedgerShowUnknownItem(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"ledger", "show", "dub-missing"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no ledger entry") {
		t.Fatalf("expected missing entry error, got %v", err)
	}
}
