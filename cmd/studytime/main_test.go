package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func setupHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func TestLogAndStats(t *testing.T) {
	setupHome(t)
	if _, err := runCLI(t, "subject", "add", "Math"); err != nil {
		t.Fatalf("subject add failed: %v", err)
	}
	if _, err := runCLI(t, "log", "math", "--minutes", "30"); err != nil {
		t.Fatalf("log failed: %v", err)
	}
	out, err := runCLI(t, "stats")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if !strings.Contains(out, "30min") {
		t.Fatalf("expected 30min in stats:\n%s", out)
	}
	out, err = runCLI(t, "session", "list", "--subject", "Math")
	if err != nil {
		t.Fatalf("session list failed: %v", err)
	}
	if !strings.Contains(out, "Math") {
		t.Fatalf("expected Math in session list:\n%s", out)
	}
}

func TestLogRejectsUnknownSubjectAndZeroDuration(t *testing.T) {
	setupHome(t)
	if _, err := runCLI(t, "log", "Nope", "--minutes", "5"); err == nil {
		t.Fatalf("expected unknown subject error")
	}
	if _, err := runCLI(t, "subject", "add", "Math"); err != nil {
		t.Fatalf("subject add failed: %v", err)
	}
	if _, err := runCLI(t, "log", "Math"); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestExportClearImport(t *testing.T) {
	dir := setupHome(t)
	file := filepath.Join(dir, "backup.json")
	if _, err := runCLI(t, "subject", "add", "Art", "--color", "coral"); err != nil {
		t.Fatalf("subject add failed: %v", err)
	}
	if _, err := runCLI(t, "log", "Art", "--hours", "1.5", "--date", "2026-01-02"); err != nil {
		t.Fatalf("log failed: %v", err)
	}
	if _, err := runCLI(t, "export", file); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if _, err := runCLI(t, "clear"); err == nil {
		t.Fatalf("expected clear without --yes to fail")
	}
	if _, err := runCLI(t, "clear", "--yes"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	out, err := runCLI(t, "subject", "list")
	if err != nil {
		t.Fatalf("subject list failed: %v", err)
	}
	if strings.Contains(out, "Art") {
		t.Fatalf("expected no subjects after clear:\n%s", out)
	}
	out, err = runCLI(t, "import", file)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "Imported 1 subjects and 1 sessions") {
		t.Fatalf("unexpected import output %q", out)
	}
	out, err = runCLI(t, "session", "list", "--from", "2026-01-01", "--to", "2026-01-31")
	if err != nil {
		t.Fatalf("session list failed: %v", err)
	}
	if !strings.Contains(out, "1h 30min") {
		t.Fatalf("expected restored session:\n%s", out)
	}
}

func TestTimerSurvivesAcrossInvocations(t *testing.T) {
	setupHome(t)
	if _, err := runCLI(t, "subject", "add", "Math"); err != nil {
		t.Fatalf("subject add failed: %v", err)
	}
	if _, err := runCLI(t, "timer", "start", "Math"); err != nil {
		t.Fatalf("timer start failed: %v", err)
	}
	if _, err := runCLI(t, "timer", "start", "Math"); err == nil {
		t.Fatalf("expected second start to fail")
	}
	out, err := runCLI(t, "timer", "status")
	if err != nil {
		t.Fatalf("timer status failed: %v", err)
	}
	if !strings.Contains(out, "Math") || !strings.Contains(out, "running") {
		t.Fatalf("unexpected status %q", out)
	}
	out, err = runCLI(t, "timer", "stop")
	if err != nil {
		t.Fatalf("timer stop failed: %v", err)
	}
	if !strings.Contains(out, "Saved 1min of Math.") {
		t.Fatalf("unexpected stop output %q", out)
	}
	out, err = runCLI(t, "timer", "status")
	if err != nil {
		t.Fatalf("timer status failed: %v", err)
	}
	if !strings.Contains(out, "No timer running.") {
		t.Fatalf("expected idle timer, got %q", out)
	}
}

func TestChartRejectsUnknownView(t *testing.T) {
	setupHome(t)
	if _, err := runCLI(t, "chart", "--view", "yearly"); err == nil {
		t.Fatalf("expected invalid view error")
	}
}
