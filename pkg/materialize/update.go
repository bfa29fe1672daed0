package materialize

import (
	"context"
	"time"

	"schematch/pkg/index"
	"schematch/pkg/logging"
	"schematch/pkg/match"
	"schematch/pkg/models"
	"schematch/pkg/operation"
)

// UpdateOptions carries the optional collaborators of an update pass.
type UpdateOptions struct {
	Handle     *operation.Handle
	Logger     logging.Logger
	Store      *index.PathStore
	OnProgress func(processed, total int)
}

// UpdateSet overwrites the reference-side counterpart of every update file
// that matches, in place, without backups. One update file may refresh
// several reference locations when it matches more than one logical item
// path. Files with no match are counted, not failed.
func UpdateSet(ctx context.Context, engine *match.Engine, updates []models.FileEntry, opts UpdateOptions) (*models.UpdateResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	result := &models.UpdateResult{Status: models.StatusSuccess}

	logger.Info(ctx, "update pass started", logging.Fields{"files": len(updates)})

	for i, update := range updates {
		if cancelled(ctx, opts.Handle) {
			result.Status = models.StatusCancelled
			if opts.Handle != nil {
				opts.Handle.MarkCancelled()
			}
			logger.Warn(ctx, "update pass cancelled", logging.Fields{"processed": i})
			break
		}
		result.TotalProcessed++

		matches := engine.MatchOne(update.Name)
		if len(matches) == 0 {
			result.NotFound++
			logger.Debug(ctx, "no reference counterpart", logging.Fields{"file": update.Name})
			continue
		}
		result.UniqueMatched++

		for _, m := range matches {
			if !fileExists(m.Entry.Path) {
				// The index can be stale; a vanished counterpart is a
				// per-item miss, not a failure.
				logger.Warn(ctx, "matched file no longer exists", logging.Fields{"path": m.Entry.Path})
				continue
			}
			if err := copyFile(update.Path, m.Entry.Path); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, models.ItemError{
					Name: update.Name, Path: m.Entry.Path, Err: err.Error(), Timestamp: time.Now(),
				})
				logger.Error(ctx, "update copy failed", err, logging.Fields{
					"source": update.Name,
					"dest":   m.Entry.Path,
				})
				continue
			}
			result.IndividualUpdates++
			if opts.Store != nil {
				opts.Store.Add(m.Entry.Path)
			}
		}

		if opts.Handle != nil {
			opts.Handle.Update("updating", i+1, len(updates))
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(updates))
		}
	}

	if result.Status == models.StatusSuccess && result.Failed > 0 {
		result.Status = models.StatusPartial
	}

	logger.Info(ctx, "update pass finished", logging.Fields{
		"processed":      result.TotalProcessed,
		"unique_matched": result.UniqueMatched,
		"updates":        result.IndividualUpdates,
		"not_found":      result.NotFound,
		"failed":         result.Failed,
		"status":         string(result.Status),
	})

	return result, nil
}
