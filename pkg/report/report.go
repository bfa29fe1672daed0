// Package report turns a reconciliation result into the two text sections
// persisted alongside an operation: a summary of the counts and a detail
// listing of every matched and non-matched item. Building a report does no
// I/O; the caller writes the lines wherever it wants.
package report

import (
	"fmt"
	"time"

	"schematch/pkg/models"
)

// Report holds the rendered sections.
type Report struct {
	SummaryLines []string
	DetailLines  []string
}

// Lines returns the full report, summary first.
func (r *Report) Lines() []string {
	out := make([]string, 0, len(r.SummaryLines)+len(r.DetailLines))
	out = append(out, r.SummaryLines...)
	out = append(out, r.DetailLines...)
	return out
}

// Build renders the result. Empty sub-sections are omitted entirely rather
// than emitted as bare headers.
func Build(result *models.ReconciliationResult) *Report {
	r := &Report{}

	r.SummaryLines = append(r.SummaryLines,
		"=== Reconciliation Summary ===",
		fmt.Sprintf("Reference root:     %s", result.ReferenceRoot),
	)
	if result.TargetLabel != "" {
		r.SummaryLines = append(r.SummaryLines,
			fmt.Sprintf("Target:             %s", result.TargetLabel))
	}
	r.SummaryLines = append(r.SummaryLines,
		fmt.Sprintf("Targets processed:  %d", result.TotalTargets),
		fmt.Sprintf("Matched:            %d (%d individual matches)", result.UniqueMatched, result.TotalIndividualMatches),
		fmt.Sprintf("Not matched:        %d", result.NonMatchedCount),
		fmt.Sprintf("Match rate:         %d%%", result.MatchPercentage),
	)
	if result.Status != models.StatusSuccess {
		r.SummaryLines = append(r.SummaryLines,
			fmt.Sprintf("Status:             %s", result.Status))
	}

	if len(result.Matched) > 0 {
		r.DetailLines = append(r.DetailLines, "", "--- Matched items ---")
		for _, rec := range result.Matched {
			r.DetailLines = append(r.DetailLines,
				fmt.Sprintf("%s (%d match(es))", rec.TargetName, rec.MatchCount()))
			for _, m := range rec.Matches {
				r.DetailLines = append(r.DetailLines,
					fmt.Sprintf("  [%s] %s at %s", m.Type, m.Entry.Name, m.Entry.Path))
			}
		}
	}

	if len(result.NonMatched) > 0 {
		r.DetailLines = append(r.DetailLines, "", "--- Non-matched items ---")
		for _, e := range result.NonMatched {
			r.DetailLines = append(r.DetailLines,
				fmt.Sprintf("%s  size=%s  modified=%s", e.Name, sizeString(&e), modTimeString(&e)))
		}
	}

	return r
}

func sizeString(e *models.FileEntry) string {
	if !e.HasPath() && e.Size == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d", e.Size)
}

func modTimeString(e *models.FileEntry) string {
	if e.ModTime.IsZero() {
		return "n/a"
	}
	return e.ModTime.Format(time.RFC3339)
}
