package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestThemesCommandListsBuiltInVocabulary(t *testing.T) {
	resetClassifyFlags(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("THEME_VOCABULARY_PATH", "")
	t.Setenv("PURGE_SCHEDULE", "")

	out, err := runRoot(t, "", "themes")
	if err != nil {
		t.Fatalf("themes failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 9 {
		t.Fatalf("expected header and 8 themes, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "THEME") || !strings.Contains(out, "Checkout") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestThemesCommandUsesVocabularyFile(t *testing.T) {
	resetClassifyFlags(t)
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("PURGE_SCHEDULE", "")
	path := filepath.Join(dir, "themes.yaml")
	vocab := "themes:\n  - id: onboarding\n    triggers: [signup, tutorial]\n  - id: billing\n    display: Billing & Invoices\n    triggers: [invoice]\n"
	if err := os.WriteFile(path, []byte(vocab), 0o644); err != nil {
		t.Fatalf("write vocabulary: %v", err)
	}
	t.Setenv("THEME_VOCABULARY_PATH", path)

	out, err := runRoot(t, "", "themes")
	if err != nil {
		t.Fatalf("themes failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 themes, got:\n%s", out)
	}
	if !strings.Contains(lines[1], "onboarding") || !strings.Contains(lines[1], "signup, tutorial") {
		t.Fatalf("unexpected first theme row: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "Billing & Invoices") {
		t.Fatalf("unexpected second theme row: %q", lines[2])
	}
}
