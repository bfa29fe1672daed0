package materialize

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"schematch/pkg/index"
	"schematch/pkg/mix"
	"schematch/pkg/models"
)

func TestAddFilesCreatesStructure(t *testing.T) {
	root := t.TempDir()
	src := t.TempDir()
	files := []models.FileEntry{
		writeFile(t, src, "9.GR673.00.0.pdf", "one"),
		writeFile(t, src, "9.GR100.00.0.pdf", "two"),
	}

	result, err := AddFiles(context.Background(), mix.DefaultTable(), root, files,
		[]string{"MIX00017", "MIX00001"}, AddOptions{})
	if err != nil {
		t.Fatalf("AddFiles failed: %v", err)
	}

	if result.Added != 2 || result.Failed != 0 || result.Backups != 0 {
		t.Errorf("added=%d failed=%d backups=%d", result.Added, result.Failed, result.Backups)
	}
	if result.Status != models.StatusSuccess {
		t.Errorf("status = %s", result.Status)
	}

	for _, want := range []string{
		filepath.Join(root, "MIX00017", "5G - PB511", "9.GR673.00.0.pdf"),
		filepath.Join(root, "MIX00017", "5G - PB511", "9.GR100.00.0.pdf"),
		filepath.Join(root, "MIX00001", "4E Ecoline", "9.GR673.00.0.pdf"),
		filepath.Join(root, "MIX00001", "4E Ecoline", "9.GR100.00.0.pdf"),
	} {
		if _, err := os.Stat(want); err != nil {
			t.Errorf("expected %s: %v", want, err)
		}
	}
}

func TestAddFilesBackupOnConflict(t *testing.T) {
	root := t.TempDir()
	destDir := filepath.Join(root, "MIX00017", "5G - PB511")
	writeFile(t, destDir, "9.GR673.00.0.pdf", "original")

	src := t.TempDir()
	files := []models.FileEntry{writeFile(t, src, "9.GR673.00.0.pdf", "replacement")}

	stamp := time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC)
	result, err := AddFiles(context.Background(), mix.DefaultTable(), root, files,
		[]string{"MIX00017"}, AddOptions{Now: func() time.Time { return stamp }})
	if err != nil {
		t.Fatalf("AddFiles failed: %v", err)
	}

	if result.Backups != 1 || result.Added != 1 {
		t.Errorf("backups=%d added=%d", result.Backups, result.Added)
	}

	data, _ := os.ReadFile(filepath.Join(destDir, "9.GR673.00.0.pdf"))
	if string(data) != "replacement" {
		t.Errorf("destination content = %q", data)
	}

	backup := filepath.Join(destDir, "9.GR673.00.0.backup_20260824_153000.pdf")
	data, err = os.ReadFile(backup)
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(data) != "original" {
		t.Errorf("backup content = %q", data)
	}
}

func TestAddFilesUnknownCodeRejectedUpfront(t *testing.T) {
	root := t.TempDir()
	src := t.TempDir()
	files := []models.FileEntry{writeFile(t, src, "9.GR673.00.0.pdf", "one")}

	_, err := AddFiles(context.Background(), mix.DefaultTable(), root, files,
		[]string{"MIX00017", "MIX99999"}, AddOptions{})
	if err == nil {
		t.Fatal("expected error for unknown mix code")
	}

	if entries, _ := os.ReadDir(root); len(entries) != 0 {
		t.Error("no folder may be created when validation fails")
	}
}

func TestAddFilesNoCodes(t *testing.T) {
	if _, err := AddFiles(context.Background(), mix.DefaultTable(), t.TempDir(), nil, nil, AddOptions{}); err == nil {
		t.Error("expected error for empty mix code selection")
	}
}

func TestAddFilesRecordsPaths(t *testing.T) {
	root := t.TempDir()
	src := t.TempDir()
	files := []models.FileEntry{writeFile(t, src, "9.GR673.00.0.pdf", "one")}
	store := index.NewPathStore(filepath.Join(t.TempDir(), "paths.json"))

	if _, err := AddFiles(context.Background(), mix.DefaultTable(), root, files,
		[]string{"MIX00017"}, AddOptions{Store: store}); err != nil {
		t.Fatalf("AddFiles failed: %v", err)
	}

	paths, err := store.Load()
	if err != nil {
		t.Fatalf("store load failed: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("store paths = %v", paths)
	}
	want := filepath.Join(root, "MIX00017", "5G - PB511", "9.GR673.00.0.pdf")
	if paths[0] != want {
		t.Errorf("path = %s, want %s", paths[0], want)
	}
}

func TestBackupName(t *testing.T) {
	stamp := time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC)
	got := backupName("/x/A.pdf", stamp)
	if got != "/x/A.backup_20260824_153000.pdf" {
		t.Errorf("backupName = %s", got)
	}
}
