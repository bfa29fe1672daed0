// Package index builds the lookup structures a reconciliation operation
// runs against: filename to paths, pattern to paths, and a flat name set.
// An index is built fresh per operation and must not be shared between
// concurrent operations.
package index

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"schematch/pkg/models"
	"schematch/pkg/normalize"
)

// ReferenceIndex is the output of one pass over the reference tree.
type ReferenceIndex struct {
	// Root is the resolved reference root
	Root string

	// Sections holds the validated section roots actually walked, empty
	// when the whole tree was indexed
	Sections []string

	// TotalFiles is the number of files indexed
	TotalFiles int

	byExactName map[string][]models.FileEntry
	byPattern   map[string][]models.FileEntry
	knownNames  map[string]struct{}
}

// ByExactName returns the entries whose lowercased filename equals name.
func (ix *ReferenceIndex) ByExactName(name string) []models.FileEntry {
	return ix.byExactName[name]
}

// ByPattern returns the entries whose structural pattern key equals pattern.
func (ix *ReferenceIndex) ByPattern(pattern string) []models.FileEntry {
	return ix.byPattern[pattern]
}

// HasName reports whether any indexed file has the given lowercased name.
func (ix *ReferenceIndex) HasName(name string) bool {
	_, ok := ix.knownNames[name]
	return ok
}

// ProgressFunc receives the running file count during a build.
type ProgressFunc func(filesIndexed int)

// Builder configures an index build.
type Builder struct {
	// OnProgress, if set, is called periodically with the file count
	OnProgress ProgressFunc

	// progressEvery controls callback frequency
	progressEvery int
}

// NewBuilder returns a Builder with defaults.
func NewBuilder() *Builder {
	return &Builder{progressEvery: 2000}
}

// Build walks the reference tree (or the validated subset of sections)
// exactly once and returns the populated index.
//
// The root must exist and be a directory. Section paths that do not exist,
// are not directories, or fall outside the root are silently dropped so a
// partially-invalid selection still yields a usable, narrower index; if no
// valid section remains the whole root is walked. Unreadable subtrees are
// skipped per entry and never abort the walk.
func (b *Builder) Build(ctx context.Context, root string, sections []string) (*ReferenceIndex, error) {
	resolvedRoot, err := resolveDir(root)
	if err != nil {
		return nil, &models.InputError{Field: "referenceRoot", Message: err.Error()}
	}

	roots := ValidSections(resolvedRoot, sections)
	ix := &ReferenceIndex{
		Root:        resolvedRoot,
		Sections:    roots,
		byExactName: make(map[string][]models.FileEntry),
		byPattern:   make(map[string][]models.FileEntry),
		knownNames:  make(map[string]struct{}),
	}
	if len(roots) == 0 {
		roots = []string{resolvedRoot}
	}

	for _, base := range roots {
		err := filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				// Permission errors on single entries are skipped; a
				// vanished base directory aborts the remaining work.
				if os.IsNotExist(walkErr) && p == base {
					return walkErr
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if d.IsDir() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}

			ix.add(models.FileEntry{
				Path:    p,
				Name:    d.Name(),
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})

			if b.OnProgress != nil && ix.TotalFiles%b.progressEvery == 0 {
				b.OnProgress(ix.TotalFiles)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk reference tree: %w", err)
		}
	}

	ix.finalize()
	return ix, nil
}

func (ix *ReferenceIndex) add(entry models.FileEntry) {
	keys := normalize.Normalize(entry.Name)
	ix.byExactName[keys.Exact] = append(ix.byExactName[keys.Exact], entry)
	ix.byPattern[keys.Pattern] = append(ix.byPattern[keys.Pattern], entry)
	ix.knownNames[keys.Exact] = struct{}{}
	ix.TotalFiles++
}

// finalize sorts every bucket by path so that matching output is
// deterministic regardless of filesystem iteration order.
func (ix *ReferenceIndex) finalize() {
	for _, entries := range ix.byExactName {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	}
	for _, entries := range ix.byPattern {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	}
}

// ValidSections resolves and filters section paths: each must exist, be a
// directory, and be a descendant of root. Invalid entries are dropped, not
// reported; a narrower selection is still usable.
func ValidSections(root string, sections []string) []string {
	var valid []string
	for _, s := range sections {
		resolved, err := resolveDir(s)
		if err != nil {
			continue
		}
		if !isDescendant(root, resolved) {
			continue
		}
		valid = append(valid, resolved)
	}
	return valid
}

func resolveDir(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to access path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", abs)
	}
	return abs, nil
}

func isDescendant(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// TargetEntries walks a target directory and returns one FileEntry per
// file found, using the same per-entry error recovery as Build.
func TargetEntries(ctx context.Context, dir string) ([]models.FileEntry, error) {
	resolved, err := resolveDir(dir)
	if err != nil {
		return nil, &models.InputError{Field: "targetDir", Message: err.Error()}
	}

	var entries []models.FileEntry
	err = filepath.WalkDir(resolved, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		entries = append(entries, models.FileEntry{
			Path:    p,
			Name:    d.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list target files: %w", err)
	}
	return entries, nil
}
