package mix

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTableLookup(t *testing.T) {
	table := DefaultTable()

	desc, ok := table.Describe("MIX00017")
	if !ok {
		t.Fatal("MIX00017 must be in the built-in table")
	}
	if desc != "5G - PB511" {
		t.Errorf("description = %q", desc)
	}

	if _, ok := table.Describe("MIX99999"); ok {
		t.Error("unknown code must not resolve")
	}
}

func TestLoadTableOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mix.yaml")
	content := "MIX00017: \"Custom Line\"\nMIX00500: \"New Line - PB900\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write table: %v", err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	if desc, _ := table.Describe("MIX00017"); desc != "Custom Line" {
		t.Errorf("override not applied: %q", desc)
	}
	if desc, _ := table.Describe("MIX00500"); desc != "New Line - PB900" {
		t.Errorf("new entry not applied: %q", desc)
	}
	if desc, _ := table.Describe("MIX00001"); desc != "4E Ecoline" {
		t.Errorf("untouched entry changed: %q", desc)
	}
}

func TestLoadTableEmptyPath(t *testing.T) {
	table, err := LoadTable("")
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	if _, ok := table.Describe("MIX00001"); !ok {
		t.Error("built-in entries missing")
	}
}

func TestLoadTableBadFile(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("{not yaml"), 0644)
	if _, err := LoadTable(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestCodesSorted(t *testing.T) {
	codes := DefaultTable().Codes()
	if len(codes) != 21 {
		t.Fatalf("got %d codes, want 21", len(codes))
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted at %d: %s >= %s", i, codes[i-1], codes[i])
		}
	}
}
