package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigrationDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, sql := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadMigrations_SortsByVersion(t *testing.T) {
	dir := writeMigrationDir(t, map[string]string{
		"002_indexes.sql": "SELECT 2;",
		"001_core.sql":    "SELECT 1;",
		"010_later.sql":   "SELECT 10;",
	})
	m := NewMigrator(nil, dir)

	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	want := []int{1, 2, 10}
	for i, mig := range migrations {
		if mig.Version != want[i] {
			t.Errorf("position %d: expected version %d, got %d", i, want[i], mig.Version)
		}
	}
	if migrations[0].Name != "core" {
		t.Errorf("expected name core, got %s", migrations[0].Name)
	}
}

func TestLoadMigrations_SkipsNonNumericAndNonSQL(t *testing.T) {
	dir := writeMigrationDir(t, map[string]string{
		"001_core.sql": "SELECT 1;",
		"README.md":    "notes",
		"notes.sql":    "SELECT 0;",
	})
	m := NewMigrator(nil, dir)

	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migrations))
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}
