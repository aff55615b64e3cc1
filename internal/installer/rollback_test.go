package installer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRollback_Add(t *testing.T) {
	r := NewRollback()
	r.AddDir("/path/to/dir")
	r.AddFile("/path/to/file")
	r.AddReplaced("/path/to/skill", "/path/to/.skill.copm-old")

	if len(r.changes) != 3 {
		t.Errorf("expected 3 entries, got %d", len(r.changes))
	}
}

func TestRollback_RestoresReplaced(t *testing.T) {
	tmpDir := t.TempDir()
	dst := filepath.Join(tmpDir, "humanizer")
	backup := filepath.Join(tmpDir, ".humanizer.copm-old")
	createTestFile(t, backup, "SKILL.md", "old")
	createTestFile(t, dst, "SKILL.md", "new")

	r := NewRollback()
	r.AddReplaced(dst, backup)
	if err := r.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if got := readFile(t, filepath.Join(dst, "SKILL.md")); got != "old" {
		t.Errorf("SKILL.md = %q, want previous content", got)
	}
	if exists(backup) {
		t.Error("backup should be moved back")
	}
}

func TestRollback_CommitDropsBackups(t *testing.T) {
	tmpDir := t.TempDir()
	dst := createTestFile(t, tmpDir, "humanizer/SKILL.md", "new")
	backup := filepath.Join(tmpDir, ".humanizer.copm-old")
	createTestFile(t, backup, "SKILL.md", "old")

	r := NewRollback()
	r.AddReplaced(filepath.Dir(dst), backup)
	if err := r.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if exists(backup) {
		t.Error("backup should be removed")
	}
	if got := readFile(t, dst); got != "new" {
		t.Errorf("SKILL.md = %q, want new content", got)
	}
	if err := r.Execute(); err != nil || !exists(dst) {
		t.Error("Execute after Commit should do nothing")
	}
}

func TestRollback_Execute(t *testing.T) {
	tmpDir := t.TempDir()

	skillDir := filepath.Join(tmpDir, "skills", "humanizer")
	createTestFile(t, skillDir, "SKILL.md", "x")
	file := createTestFile(t, tmpDir, "prompts/a.prompt.md", "x")
	kept := createTestFile(t, tmpDir, "prompts/kept.prompt.md", "x")

	r := NewRollback()
	r.AddDir(skillDir)
	r.AddFile(file)

	if err := r.Execute(); err != nil {
		t.Errorf("Execute failed: %v", err)
	}

	if _, err := os.Stat(skillDir); !os.IsNotExist(err) {
		t.Error("skill dir should be removed")
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Error("created file should be removed")
	}
	if _, err := os.Stat(kept); err != nil {
		t.Error("untracked file should survive rollback")
	}
}

func TestRollback_Execute_MissingPathsIgnored(t *testing.T) {
	r := NewRollback()
	r.AddFile("/nonexistent/file.md")
	r.AddDir("/nonexistent/dir")

	if err := r.Execute(); err != nil {
		t.Errorf("Execute should not error for nonexistent paths: %v", err)
	}
}

func TestRollback_Execute_EmptyIsNoOp(t *testing.T) {
	if err := NewRollback().Execute(); err != nil {
		t.Errorf("Execute on empty rollback should not error: %v", err)
	}
}
