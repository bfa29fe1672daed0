package index

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

// treeHelper builds a throwaway reference tree for index tests
type treeHelper struct {
	t    *testing.T
	root string
}

func newTreeHelper(t *testing.T) *treeHelper {
	t.Helper()
	return &treeHelper{t: t, root: t.TempDir()}
}

func (h *treeHelper) addFile(relPath string) string {
	h.t.Helper()
	full := filepath.Join(h.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		h.t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(full, []byte("x"), 0644); err != nil {
		h.t.Fatalf("failed to create file: %v", err)
	}
	return full
}

func TestBuildIndexesAllFiles(t *testing.T) {
	h := newTreeHelper(t)
	h.addFile("sectionA/9.GR100.00.0.pdf")
	h.addFile("sectionA/sub/I9.GR100.00.0.pdf")
	h.addFile("sectionB/9.GR200.00.0_2.pdf")

	ix, err := NewBuilder().Build(context.Background(), h.root, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if ix.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", ix.TotalFiles)
	}
	if !ix.HasName("9.gr100.00.0.pdf") {
		t.Error("expected 9.gr100.00.0.pdf in known names")
	}
	if !ix.HasName("i9.gr100.00.0.pdf") {
		t.Error("expected i9.gr100.00.0.pdf in known names")
	}
	if got := len(ix.ByExactName("9.gr100.00.0.pdf")); got != 1 {
		t.Errorf("ByExactName returned %d entries, want 1", got)
	}
	// Both I-variants collapse onto the same pattern key
	if got := len(ix.ByPattern("9.gr100.00.0")); got != 2 {
		t.Errorf("ByPattern(9.gr100.00.0) returned %d entries, want 2", got)
	}
	if got := len(ix.ByPattern("9.gr200.00.0")); got != 1 {
		t.Errorf("ByPattern(9.gr200.00.0) returned %d entries, want 1", got)
	}
}

func TestBuildSectionRestriction(t *testing.T) {
	h := newTreeHelper(t)
	h.addFile("sectionA/a.pdf")
	h.addFile("sectionB/b.pdf")

	sections := []string{filepath.Join(h.root, "sectionA")}
	ix, err := NewBuilder().Build(context.Background(), h.root, sections)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if ix.TotalFiles != 1 {
		t.Errorf("TotalFiles = %d, want 1", ix.TotalFiles)
	}
	if !ix.HasName("a.pdf") {
		t.Error("expected a.pdf indexed")
	}
	if ix.HasName("b.pdf") {
		t.Error("b.pdf outside selected section must not be indexed")
	}
}

func TestBuildInvalidSectionsDropped(t *testing.T) {
	h := newTreeHelper(t)
	h.addFile("sectionA/a.pdf")
	h.addFile("sectionB/b.pdf")
	outside := t.TempDir()

	// One valid section, one missing, one outside the root: the invalid
	// ones are dropped silently, the selection stays narrower.
	sections := []string{
		filepath.Join(h.root, "sectionA"),
		filepath.Join(h.root, "does-not-exist"),
		outside,
	}
	ix, err := NewBuilder().Build(context.Background(), h.root, sections)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if ix.TotalFiles != 1 {
		t.Errorf("TotalFiles = %d, want 1", ix.TotalFiles)
	}

	// All-invalid selection falls back to the whole root.
	ix, err = NewBuilder().Build(context.Background(), h.root, []string{outside})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if ix.TotalFiles != 2 {
		t.Errorf("TotalFiles with no valid section = %d, want 2", ix.TotalFiles)
	}
}

func TestBuildMissingRoot(t *testing.T) {
	_, err := NewBuilder().Build(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestBuildIdempotent(t *testing.T) {
	h := newTreeHelper(t)
	h.addFile("s/9.GR100.00.0.pdf")
	h.addFile("s/I9.GR100.00.0.pdf")
	h.addFile("s/9.GR100.00.0_3.pdf")
	h.addFile("other/misc.txt")

	first, err := NewBuilder().Build(context.Background(), h.root, nil)
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	second, err := NewBuilder().Build(context.Background(), h.root, nil)
	if err != nil {
		t.Fatalf("second Build failed: %v", err)
	}

	if first.TotalFiles != second.TotalFiles {
		t.Fatalf("TotalFiles differ: %d vs %d", first.TotalFiles, second.TotalFiles)
	}
	for name := range first.knownNames {
		if !second.HasName(name) {
			t.Errorf("name %q missing from second build", name)
		}
	}
	for pattern, entries := range first.byPattern {
		var a, b []string
		for _, e := range entries {
			a = append(a, e.Path)
		}
		for _, e := range second.byPattern[pattern] {
			b = append(b, e.Path)
		}
		sort.Strings(a)
		sort.Strings(b)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("pattern %q path sets differ: %v vs %v", pattern, a, b)
		}
	}
}

func TestTargetEntries(t *testing.T) {
	h := newTreeHelper(t)
	h.addFile("a.pdf")
	h.addFile("nested/b.pdf")

	entries, err := TargetEntries(context.Background(), h.root)
	if err != nil {
		t.Fatalf("TargetEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if !e.HasPath() {
			t.Errorf("entry %q has no path", e.Name)
		}
		if e.Size != 1 {
			t.Errorf("entry %q size = %d, want 1", e.Name, e.Size)
		}
	}
}
