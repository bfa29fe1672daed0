package materialize

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"unicode"

	"schematch/pkg/index"
	"schematch/pkg/logging"
	"schematch/pkg/mix"
	"schematch/pkg/models"
	"schematch/pkg/operation"
)

// PlaceRequest describes one placement fan-out: a single source file copied
// into every reference directory whose name equals the mix description.
type PlaceRequest struct {
	// SourcePath is the file to place, typically a temp upload
	SourcePath string

	// OriginalFilename drives the subfolder key computation
	OriginalFilename string

	// MixCode selects the description folder to fan out to
	MixCode string

	// ReferenceRoot is the tree searched for description folders
	ReferenceRoot string

	// AllowedSections optionally restricts the search to these subtrees
	AllowedSections []string

	// DestFilename overrides the destination name; empty keeps the original
	DestFilename string
}

// Placer fans files out to mix description folders.
type Placer struct {
	table  *mix.Table
	store  *index.PathStore
	logger logging.Logger
	handle *operation.Handle
}

// NewPlacer creates a placer. The store is optional; when present every
// successful copy is appended to it. The handle is optional and provides
// cooperative cancellation between fan-out targets.
func NewPlacer(table *mix.Table, store *index.PathStore, handle *operation.Handle, logger logging.Logger) *Placer {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Placer{table: table, store: store, logger: logger, handle: handle}
}

// SubfolderKey derives the two-character subdirectory name from a filename:
// the last two alphanumeric characters of the segment before the second
// dot. "9.GR673.00.0.pdf" yields "73". Filenames with fewer than two dots
// have no key.
func SubfolderKey(filename string) (string, bool) {
	name := filepath.Base(filename)

	secondDot := -1
	dots := 0
	for i, r := range name {
		if r == '.' {
			dots++
			if dots == 2 {
				secondDot = i
				break
			}
		}
	}
	if secondDot < 0 {
		return "", false
	}

	var tail []rune
	for _, r := range name[:secondDot] {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			tail = append(tail, r)
		}
	}
	if len(tail) < 2 {
		return "", false
	}
	return string(tail[len(tail)-2:]), true
}

// FindDescriptionDirs walks the root (or the valid subset of sections) and
// returns every directory whose base name equals description, sorted for
// deterministic fan-out order.
func FindDescriptionDirs(ctx context.Context, root, description string, sections []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &models.InputError{Field: "referenceRoot", Message: err.Error()}
	}

	roots := index.ValidSections(absRoot, sections)
	if len(roots) == 0 {
		if len(sections) > 0 {
			return nil, nil
		}
		roots = []string{absRoot}
	}

	seen := make(map[string]struct{})
	var dirs []string
	for _, base := range roots {
		err := filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
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

			if d.IsDir() && d.Name() == description {
				if _, ok := seen[p]; !ok {
					seen[p] = struct{}{}
					dirs = append(dirs, p)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(dirs)
	return dirs, nil
}

// PlaceFile runs one fan-out. Validation failures (unknown mix code,
// underivable subfolder key, no matching description folders) are reported
// as errors before any copy happens; per-target copy failures are counted
// and recorded without aborting the remaining targets.
func (p *Placer) PlaceFile(ctx context.Context, req PlaceRequest) (*models.PlacementResult, error) {
	if _, err := os.Stat(req.ReferenceRoot); err != nil {
		return nil, &models.InputError{Field: "referenceRoot", Message: err.Error()}
	}

	description, ok := p.table.Describe(req.MixCode)
	if !ok {
		return nil, &models.ValidationError{Field: "mixCode", Message: "unknown mix code: " + req.MixCode}
	}

	subKey, ok := SubfolderKey(req.OriginalFilename)
	if !ok {
		return nil, &models.ValidationError{Field: "filename", Message: "cannot derive subfolder key from: " + req.OriginalFilename}
	}

	targets, err := FindDescriptionDirs(ctx, req.ReferenceRoot, description, req.AllowedSections)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, &models.ValidationError{Field: "mixCode", Message: "no folders named '" + description + "' under reference root"}
	}

	destName := req.DestFilename
	if destName == "" {
		destName = filepath.Base(req.OriginalFilename)
	} else {
		destName = filepath.Base(destName)
	}

	result := &models.PlacementResult{
		MixCode:      req.MixCode,
		Description:  description,
		SubfolderKey: subKey,
		TargetsFound: len(targets),
		Status:       models.StatusSuccess,
	}

	p.logger.Info(ctx, "placement started", logging.Fields{
		"mix_code":    req.MixCode,
		"description": description,
		"subfolder":   subKey,
		"targets":     len(targets),
		"file":        destName,
	})

	for i, baseDir := range targets {
		if cancelled(ctx, p.handle) {
			result.Status = models.StatusCancelled
			if p.handle != nil {
				p.handle.MarkCancelled()
			}
			p.logger.Warn(ctx, "placement cancelled", logging.Fields{"processed": i})
			break
		}

		destDir := filepath.Join(baseDir, subKey)
		target := models.PlacementTarget{Dir: destDir}

		if _, err := os.Stat(destDir); os.IsNotExist(err) {
			if err := os.MkdirAll(destDir, 0755); err != nil {
				target.Outcome = models.CopyFailed
				target.Err = err.Error()
				result.Errors++
				result.Targets = append(result.Targets, target)
				p.logger.Error(ctx, "failed to create subfolder", err, logging.Fields{"dir": destDir})
				continue
			}
			result.DirsCreated++
		}

		destFile := filepath.Join(destDir, destName)
		target.File = destFile
		if fileExists(destFile) {
			target.Outcome = models.CopyExists
			result.Exists++
		} else if err := copyFile(req.SourcePath, destFile); err != nil {
			target.Outcome = models.CopyFailed
			target.Err = err.Error()
			result.Errors++
			p.logger.Error(ctx, "placement copy failed", err, logging.Fields{"dest": destFile})
		} else {
			target.Outcome = models.CopyDone
			result.FilesCopied++
			p.recordPath(ctx, destFile)
		}
		result.Targets = append(result.Targets, target)

		if p.handle != nil {
			p.handle.Update("placing", i+1, len(targets))
		}
	}

	if result.Status == models.StatusSuccess && result.Errors > 0 {
		result.Status = models.StatusPartial
	}

	p.logger.Info(ctx, "placement finished", logging.Fields{
		"copied":       result.FilesCopied,
		"dirs_created": result.DirsCreated,
		"exists":       result.Exists,
		"errors":       result.Errors,
		"status":       string(result.Status),
	})

	return result, nil
}

// recordPath appends a freshly-written file to the persistent path list.
// Failures are logged, never escalated; the list is a rebuildable cache.
func (p *Placer) recordPath(ctx context.Context, path string) {
	if p.store == nil {
		return
	}
	if _, err := p.store.Add(path); err != nil {
		p.logger.Warn(ctx, "failed to record path in index", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
	}
}
