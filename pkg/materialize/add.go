package materialize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"schematch/pkg/index"
	"schematch/pkg/logging"
	"schematch/pkg/mix"
	"schematch/pkg/models"
	"schematch/pkg/operation"
)

// AddOptions carries the optional collaborators of an add pass.
type AddOptions struct {
	Handle     *operation.Handle
	Logger     logging.Logger
	Store      *index.PathStore
	OnProgress func(processed, total int)

	// Now is overridable for tests; nil uses time.Now
	Now func() time.Time
}

// AddFiles copies every source file into <root>/<mixCode>/<description>/
// for each selected mix code, creating the folder pair as needed. An
// existing destination file is first preserved as a timestamped backup
// sibling and then overwritten. All mix codes must resolve before any
// copy starts.
func AddFiles(ctx context.Context, table *mix.Table, root string, files []models.FileEntry, mixCodes []string, opts AddOptions) (*models.AddResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	if len(mixCodes) == 0 {
		return nil, &models.InputError{Field: "mixCodes", Message: "no mix codes selected"}
	}
	descriptions := make(map[string]string, len(mixCodes))
	for _, code := range mixCodes {
		desc, ok := table.Describe(code)
		if !ok {
			return nil, &models.ValidationError{Field: "mixCodes", Message: "unknown mix code: " + code}
		}
		descriptions[code] = desc
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &models.InputError{Field: "root", Message: err.Error()}
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		return nil, &models.InputError{Field: "root", Message: "reference root is not a directory: " + absRoot}
	}

	result := &models.AddResult{TotalFiles: len(files), Status: models.StatusSuccess}

	logger.Info(ctx, "add pass started", logging.Fields{
		"root":      absRoot,
		"files":     len(files),
		"mix_codes": strings.Join(mixCodes, ","),
	})

	for i, file := range files {
		if cancelled(ctx, opts.Handle) {
			result.Status = models.StatusCancelled
			if opts.Handle != nil {
				opts.Handle.MarkCancelled()
			}
			logger.Warn(ctx, "add pass cancelled", logging.Fields{"processed": i})
			break
		}

		fileFailed := false
		for _, code := range mixCodes {
			destDir := filepath.Join(absRoot, code, descriptions[code])
			if err := os.MkdirAll(destDir, 0755); err != nil {
				fileFailed = true
				result.Errors = append(result.Errors, models.ItemError{
					Name: file.Name, Path: destDir, Err: err.Error(), Timestamp: time.Now(),
				})
				logger.Error(ctx, "failed to create mix folder", err, logging.Fields{"dir": destDir})
				continue
			}

			destFile := filepath.Join(destDir, file.Name)
			if fileExists(destFile) {
				backup := backupName(destFile, now())
				if err := copyFile(destFile, backup); err != nil {
					fileFailed = true
					result.Errors = append(result.Errors, models.ItemError{
						Name: file.Name, Path: destFile, Err: "backup failed: " + err.Error(), Timestamp: time.Now(),
					})
					logger.Error(ctx, "backup failed", err, logging.Fields{"file": destFile})
					continue
				}
				result.Backups++
				logger.Debug(ctx, "existing file backed up", logging.Fields{"backup": backup})
			}

			if err := copyFile(file.Path, destFile); err != nil {
				fileFailed = true
				result.Errors = append(result.Errors, models.ItemError{
					Name: file.Name, Path: destFile, Err: err.Error(), Timestamp: time.Now(),
				})
				logger.Error(ctx, "add copy failed", err, logging.Fields{"dest": destFile})
				continue
			}
			if opts.Store != nil {
				opts.Store.Add(destFile)
			}
		}

		if fileFailed {
			result.Failed++
		} else {
			result.Added++
		}

		if opts.Handle != nil {
			opts.Handle.Update("adding", i+1, len(files))
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(files))
		}
	}

	if result.Status == models.StatusSuccess && result.Failed > 0 {
		result.Status = models.StatusPartial
	}

	logger.Info(ctx, "add pass finished", logging.Fields{
		"added":   result.Added,
		"backups": result.Backups,
		"failed":  result.Failed,
		"status":  string(result.Status),
	})

	return result, nil
}

// backupName derives the timestamped sibling an existing file is preserved
// as: "A.pdf" becomes "A.backup_20260824_153000.pdf".
func backupName(path string, ts time.Time) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s.backup_%s%s", stem, ts.Format("20060102_150405"), ext)
}
