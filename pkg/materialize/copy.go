package materialize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"schematch/pkg/logging"
	"schematch/pkg/models"
	"schematch/pkg/normalize"
	"schematch/pkg/operation"
)

// CopyOptions carries the optional collaborators of a CopySet batch.
type CopyOptions struct {
	Handle     *operation.Handle
	Logger     logging.Logger
	OnProgress func(processed, total int)
}

// DedupEntries collapses entries that share a canonical base name, keeping
// the one with the newer modification time. Input order is preserved for
// the survivors so batch output stays deterministic.
func DedupEntries(entries []models.FileEntry) []models.FileEntry {
	byBase := make(map[string]int)
	var deduped []models.FileEntry
	for _, e := range entries {
		base := normalize.CanonicalBase(e.Name)
		if idx, ok := byBase[base]; ok {
			if e.ModTime.After(deduped[idx].ModTime) {
				deduped[idx] = e
			}
			continue
		}
		byBase[base] = len(deduped)
		deduped = append(deduped, e)
	}
	return deduped
}

// CopySet copies every entry into destination, skipping names that already
// exist there. I-prefix siblings in the input are collapsed first so one
// logical item never produces two destination writes. Per-item failures
// are counted and recorded, never aborting the batch; only an unusable
// destination is fatal.
func CopySet(ctx context.Context, entries []models.FileEntry, destination string, opts CopyOptions) (*models.CopyResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	if destination == "" {
		return nil, &models.InputError{Field: "destination", Message: "destination is empty"}
	}
	absDest, err := filepath.Abs(destination)
	if err != nil {
		return nil, &models.InputError{Field: "destination", Message: err.Error()}
	}
	if err := os.MkdirAll(absDest, 0755); err != nil {
		if opts.Handle != nil {
			opts.Handle.Fail(err)
		}
		return nil, fmt.Errorf("failed to create destination: %w", err)
	}

	deduped := DedupEntries(entries)
	result := &models.CopyResult{
		Destination: absDest,
		Requested:   len(entries),
		Deduped:     len(deduped),
		Status:      models.StatusSuccess,
	}

	logger.Info(ctx, "copy batch started", logging.Fields{
		"destination": absDest,
		"requested":   len(entries),
		"deduped":     len(deduped),
	})

	for i, entry := range deduped {
		if cancelled(ctx, opts.Handle) {
			result.Status = models.StatusCancelled
			if opts.Handle != nil {
				opts.Handle.MarkCancelled()
			}
			logger.Warn(ctx, "copy batch cancelled", logging.Fields{"processed": i})
			break
		}

		item := models.CopyItem{
			Name:   entry.Name,
			Source: entry.Path,
			Dest:   filepath.Join(absDest, entry.Name),
		}

		switch {
		case !entry.HasPath():
			item.Outcome = models.CopyFailed
			item.Err = "no source path"
			result.Failed++
			result.Errors = append(result.Errors, models.ItemError{
				Name: entry.Name, Err: item.Err, Timestamp: time.Now(),
			})
		case fileExists(item.Dest):
			item.Outcome = models.CopyExists
			result.Exists++
		default:
			if err := copyFile(entry.Path, item.Dest); err != nil {
				item.Outcome = models.CopyFailed
				item.Err = err.Error()
				result.Failed++
				result.Errors = append(result.Errors, models.ItemError{
					Name: entry.Name, Path: entry.Path, Err: err.Error(), Timestamp: time.Now(),
				})
				logger.Error(ctx, "copy failed", err, logging.Fields{"file": entry.Name})
			} else {
				item.Outcome = models.CopyDone
				result.Copied++
			}
		}
		result.Items = append(result.Items, item)

		if opts.Handle != nil {
			opts.Handle.Update("copying", i+1, len(deduped))
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(deduped))
		}
	}

	if result.Status == models.StatusSuccess && result.Failed > 0 {
		result.Status = models.StatusPartial
	}

	logger.Info(ctx, "copy batch finished", logging.Fields{
		"copied": result.Copied,
		"exists": result.Exists,
		"failed": result.Failed,
		"status": string(result.Status),
	})

	return result, nil
}

func cancelled(ctx context.Context, handle *operation.Handle) bool {
	if handle != nil && handle.Cancelled() {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
