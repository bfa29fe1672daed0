package normalize

import (
	"testing"
)

func TestNormalizeKeys(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		exact     string
		iStripped string
		iAdded    string
		pattern   string
	}{
		{
			name:      "plain drawing name",
			input:     "9.GR100.00.0.pdf",
			exact:     "9.gr100.00.0.pdf",
			iStripped: "",
			iAdded:    "i9.gr100.00.0.pdf",
			pattern:   "9.gr100.00.0",
		},
		{
			name:      "i-prefixed drawing name",
			input:     "I9.GR100.00.0.pdf",
			exact:     "i9.gr100.00.0.pdf",
			iStripped: "9.gr100.00.0.pdf",
			iAdded:    "ii9.gr100.00.0.pdf",
			pattern:   "9.gr100.00.0",
		},
		{
			name:      "page suffix stripped",
			input:     "9.GR100.00.0_2.pdf",
			exact:     "9.gr100.00.0_2.pdf",
			iStripped: "",
			iAdded:    "i9.gr100.00.0_2.pdf",
			pattern:   "9.gr100.00.0",
		},
		{
			name:      "no extension",
			input:     "README",
			exact:     "readme",
			iStripped: "",
			iAdded:    "ireadme",
			pattern:   "readme",
		},
		{
			name:      "single i is never stripped",
			input:     "i",
			exact:     "i",
			iStripped: "",
			iAdded:    "ii",
			pattern:   "i",
		},
		{
			name:      "unknown extension kept",
			input:     "9.GR100.00.0",
			exact:     "9.gr100.00.0",
			iStripped: "",
			iAdded:    "i9.gr100.00.0",
			pattern:   "9.gr100.00.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := Normalize(tt.input)
			if keys.Exact != tt.exact {
				t.Errorf("Exact = %q, want %q", keys.Exact, tt.exact)
			}
			if keys.IStripped != tt.iStripped {
				t.Errorf("IStripped = %q, want %q", keys.IStripped, tt.iStripped)
			}
			if keys.IAdded != tt.iAdded {
				t.Errorf("IAdded = %q, want %q", keys.IAdded, tt.iAdded)
			}
			if keys.Pattern != tt.pattern {
				t.Errorf("Pattern = %q, want %q", keys.Pattern, tt.pattern)
			}
		})
	}
}

func TestPatternIdempotent(t *testing.T) {
	inputs := []string{
		"9.GR100.00.0.pdf",
		"I9.GR100.00.0_12.pdf",
		"i9.gr100.00.0",
		"plain.txt",
		"name_без_суффикса",
		"ix_3.pdf",
		"i",
		"",
		"file_007.PDF",
	}

	for _, in := range inputs {
		once := Pattern(in)
		twice := Pattern(once)
		if once != twice {
			t.Errorf("Pattern not idempotent for %q: first %q, second %q", in, once, twice)
		}
		// The property also holds when the output is re-fed with a
		// synthetic extension re-added.
		withExt := Pattern(once + ".pdf")
		if withExt != once {
			t.Errorf("Pattern(%q + .pdf) = %q, want %q", once, withExt, once)
		}
	}
}

func TestCanonicalBase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ABC.pdf", "abc.pdf"},
		{"IABC.pdf", "abc.pdf"},
		{"iabc.pdf", "abc.pdf"},
		{"i", "i"},
		{"X", "x"},
	}

	for _, tt := range tests {
		if got := CanonicalBase(tt.input); got != tt.want {
			t.Errorf("CanonicalBase(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if CanonicalBase("ABC.pdf") != CanonicalBase("IABC.pdf") {
		t.Error("I-prefix siblings must share a canonical base name")
	}
}
