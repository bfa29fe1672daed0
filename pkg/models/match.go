package models

// MatchType identifies which strategy produced a match. The declaration
// order is the priority order used when deduplicating candidates.
type MatchType string

const (
	// MatchExact means the lowercased filenames are identical
	MatchExact MatchType = "EXACT"
	// MatchIPrefixRemoved means the target's leading "i" was removed to match
	MatchIPrefixRemoved MatchType = "I_PREFIX_REMOVED"
	// MatchIPrefixAdded means a leading "i" was added to the target to match
	MatchIPrefixAdded MatchType = "I_PREFIX_ADDED"
	// MatchPattern means the structural pattern keys are equal
	MatchPattern MatchType = "PATTERN"
)

// Priority returns the dedup rank of the match type; lower wins.
func (t MatchType) Priority() int {
	switch t {
	case MatchExact:
		return 0
	case MatchIPrefixRemoved:
		return 1
	case MatchIPrefixAdded:
		return 2
	case MatchPattern:
		return 3
	default:
		return 4
	}
}

// Match is one reference-side candidate for a target item.
type Match struct {
	Entry FileEntry
	Type  MatchType
}

// MatchRecord holds the deduplicated matches for a single target item.
// No two matches in one record share a canonical base name.
type MatchRecord struct {
	// TargetName is the display name of the target item (uppercased)
	TargetName string

	// TargetPath is the target's own path, or NoPath in filename-only mode
	TargetPath string

	// Matches is the ordered, deduplicated match list
	Matches []Match
}

// MatchCount returns the number of surviving matches.
func (r *MatchRecord) MatchCount() int {
	return len(r.Matches)
}

// ReconciliationResult aggregates one complete matching pass.
type ReconciliationResult struct {
	// ReferenceRoot and TargetLabel identify the operation inputs
	ReferenceRoot string
	TargetLabel   string

	// TotalTargets is the number of target items processed
	TotalTargets int

	// UniqueMatched is the count of target items with at least one match
	UniqueMatched int

	// TotalIndividualMatches sums MatchCount over all matched items; it can
	// exceed UniqueMatched when one target matches several reference files
	TotalIndividualMatches int

	// NonMatchedCount is the count of target items with zero matches
	NonMatchedCount int

	// MatchPercentage is UniqueMatched/TotalTargets*100, truncated
	MatchPercentage int

	// Matched holds one record per matched target item, in input order
	Matched []MatchRecord

	// NonMatched holds the target entries with zero matches, in input order
	NonMatched []FileEntry

	// Status is Success for a full pass, Cancelled for a cooperative stop;
	// counts always reflect the items processed so far
	Status Status
}

// MatchedReferencePaths returns the resolved reference-side paths of all
// matches, deduplicated, preserving first-seen order. Consumers use this
// list to drive copy and archive actions.
func (r *ReconciliationResult) MatchedReferencePaths() []string {
	seen := make(map[string]struct{})
	var paths []string
	for _, rec := range r.Matched {
		for _, m := range rec.Matches {
			if _, ok := seen[m.Entry.Path]; ok {
				continue
			}
			seen[m.Entry.Path] = struct{}{}
			paths = append(paths, m.Entry.Path)
		}
	}
	return paths
}

// NonMatchedTargetPaths returns the path (or NoPath marker) of every
// non-matched target item, in input order.
func (r *ReconciliationResult) NonMatchedTargetPaths() []string {
	paths := make([]string, 0, len(r.NonMatched))
	for _, e := range r.NonMatched {
		paths = append(paths, e.Path)
	}
	return paths
}
