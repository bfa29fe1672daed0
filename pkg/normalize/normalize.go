// Package normalize turns raw filenames into the comparable keys used by
// the reference indexer and the match engine. All functions are pure and
// total over any string input.
package normalize

import (
	"regexp"
	"strings"
)

// NameKeys holds the derived keys for one filename.
type NameKeys struct {
	// Exact is the lowercased filename including extension
	Exact string

	// IStripped is Exact with a single leading "i" removed. Empty when
	// Exact does not start with "i" or is the single character "i".
	IStripped string

	// IAdded is Exact with a leading "i" prepended
	IAdded string

	// Pattern is the structural key: extension removed, trailing _<digits>
	// suffix removed, single leading "i" removed
	Pattern string
}

// knownExtensions bounds extension stripping. Part codes contain dots
// (9.gr100.00.0), so stripping an arbitrary final dot segment would mangle
// them; only real file extensions are removed.
var knownExtensions = map[string]struct{}{
	".pdf":  {},
	".tif":  {},
	".tiff": {},
	".dwg":  {},
	".dxf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".doc":  {},
	".docx": {},
	".xls":  {},
	".xlsx": {},
	".zip":  {},
}

var trailingDigits = regexp.MustCompile(`_\d+$`)

// Normalize computes every key for a filename.
func Normalize(filename string) NameKeys {
	exact := strings.ToLower(filename)

	keys := NameKeys{
		Exact:   exact,
		IAdded:  "i" + exact,
		Pattern: Pattern(filename),
	}
	if strings.HasPrefix(exact, "i") && len(exact) > 1 {
		keys.IStripped = exact[1:]
	}
	return keys
}

// Pattern reduces a filename to its structural key: lowercase, known
// extension removed, trailing _<digits> page suffix removed, single leading
// "i" removed. The function is idempotent: Pattern(Pattern(f)) == Pattern(f).
func Pattern(filename string) string {
	name := strings.ToLower(filename)

	if idx := strings.LastIndex(name, "."); idx >= 0 {
		if _, ok := knownExtensions[name[idx:]]; ok {
			name = name[:idx]
		}
	}

	name = trailingDigits.ReplaceAllString(name, "")

	if strings.HasPrefix(name, "i") && len(name) > 1 {
		name = name[1:]
	}

	return name
}

// CanonicalBase lowercases a filename and removes a single leading "i".
// Two reference files that differ only by an "I" prefix share a canonical
// base and are treated as the same logical item.
func CanonicalBase(filename string) string {
	name := strings.ToLower(filename)
	if strings.HasPrefix(name, "i") && len(name) > 1 {
		name = name[1:]
	}
	return name
}

// DisplayName formats a filename for reports and logs.
func DisplayName(filename string) string {
	return strings.ToUpper(filename)
}
