// Package match implements the multi-strategy matching of target filenames
// against a reference index. For each target the engine tries, in a fixed
// priority order: exact name, I-prefix removed, I-prefix added, and
// structural pattern, then collapses candidates that are the same logical
// item under an "I" prefix.
package match

import (
	"context"
	"sort"

	"schematch/pkg/index"
	"schematch/pkg/logging"
	"schematch/pkg/models"
	"schematch/pkg/normalize"
	"schematch/pkg/operation"
)

// ProgressFunc receives per-item progress during MatchAll.
type ProgressFunc func(processed, total int)

// Engine runs target names against one ReferenceIndex. An engine owns its
// index for the duration of one operation; independent operations must
// build their own.
type Engine struct {
	index  *index.ReferenceIndex
	handle *operation.Handle
	logger logging.Logger

	// OnProgress, if set, is called after each target item
	OnProgress ProgressFunc
}

// NewEngine creates a match engine over a fully-built index.
func NewEngine(ix *index.ReferenceIndex, handle *operation.Handle, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Engine{
		index:  ix,
		handle: handle,
		logger: logger,
	}
}

// MatchOne returns the ordered, deduplicated reference-side matches for a
// single target name. The result is deterministic: candidates are ordered
// by (strategy priority, path) before the canonical-base dedup, so ties
// never depend on filesystem iteration order.
func (e *Engine) MatchOne(targetName string) []models.Match {
	keys := normalize.Normalize(targetName)

	var candidates []models.Match
	seenPaths := make(map[string]struct{})

	gather := func(entries []models.FileEntry, matchType models.MatchType) {
		for _, entry := range entries {
			if _, ok := seenPaths[entry.Path]; ok {
				continue
			}
			seenPaths[entry.Path] = struct{}{}
			candidates = append(candidates, models.Match{Entry: entry, Type: matchType})
		}
	}

	gather(e.index.ByExactName(keys.Exact), models.MatchExact)
	if keys.IStripped != "" {
		gather(e.index.ByExactName(keys.IStripped), models.MatchIPrefixRemoved)
	}
	gather(e.index.ByExactName(keys.IAdded), models.MatchIPrefixAdded)
	gather(e.index.ByPattern(keys.Pattern), models.MatchPattern)

	sort.SliceStable(candidates, func(i, j int) bool {
		pi, pj := candidates[i].Type.Priority(), candidates[j].Type.Priority()
		if pi != pj {
			return pi < pj
		}
		return candidates[i].Entry.Path < candidates[j].Entry.Path
	})

	// Collapse I-prefix siblings: the first candidate for a canonical base
	// wins, so EXACT beats the I-variants and those beat PATTERN.
	var deduped []models.Match
	seenBases := make(map[string]struct{})
	for _, c := range candidates {
		base := normalize.CanonicalBase(c.Entry.Name)
		if _, ok := seenBases[base]; ok {
			continue
		}
		seenBases[base] = struct{}{}
		deduped = append(deduped, c)
	}

	return deduped
}

// MatchAll streams every target through MatchOne, in input order,
// aggregating the reconciliation metrics. Cancellation is observed at the
// top of each iteration; a cancelled run returns the counts accumulated so
// far with Status Cancelled, never an error.
func (e *Engine) MatchAll(ctx context.Context, targets []models.FileEntry, targetLabel string) (*models.ReconciliationResult, error) {
	result := &models.ReconciliationResult{
		ReferenceRoot: e.index.Root,
		TargetLabel:   targetLabel,
		TotalTargets:  len(targets),
		Status:        models.StatusSuccess,
	}

	e.logger.Info(ctx, "matching started", logging.Fields{
		"reference_root": e.index.Root,
		"target_label":   targetLabel,
		"targets":        len(targets),
		"indexed_files":  e.index.TotalFiles,
	})

	for i, target := range targets {
		if e.cancelled(ctx) {
			result.Status = models.StatusCancelled
			result.TotalTargets = i
			if e.handle != nil {
				e.handle.MarkCancelled()
			}
			e.logger.Warn(ctx, "matching cancelled", logging.Fields{"processed": i})
			break
		}

		matches := e.MatchOne(target.Name)
		if len(matches) > 0 {
			result.Matched = append(result.Matched, models.MatchRecord{
				TargetName: normalize.DisplayName(target.Name),
				TargetPath: target.Path,
				Matches:    matches,
			})
			result.UniqueMatched++
			result.TotalIndividualMatches += len(matches)
		} else {
			result.NonMatched = append(result.NonMatched, target)
			result.NonMatchedCount++
		}

		if e.handle != nil {
			e.handle.Update("matching", i+1, len(targets))
		}
		if e.OnProgress != nil {
			e.OnProgress(i+1, len(targets))
		}
	}

	if result.TotalTargets > 0 {
		result.MatchPercentage = result.UniqueMatched * 100 / result.TotalTargets
	}

	e.logger.Info(ctx, "matching finished", logging.Fields{
		"unique_matched":     result.UniqueMatched,
		"individual_matches": result.TotalIndividualMatches,
		"non_matched":        result.NonMatchedCount,
		"match_percentage":   result.MatchPercentage,
		"status":             string(result.Status),
	})

	return result, nil
}

func (e *Engine) cancelled(ctx context.Context) bool {
	if e.handle != nil && e.handle.Cancelled() {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
