package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"schematch/pkg/models"
	"schematch/pkg/report"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer io.Writer

	ok    *color.Color
	warn  *color.Color
	fail  *color.Color
	title *color.Color
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(writer io.Writer) *HumanFormatter {
	if writer == nil {
		writer = io.Discard
	}
	return &HumanFormatter{
		writer: writer,
		ok:     color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		fail:   color.New(color.FgRed),
		title:  color.New(color.Bold),
	}
}

func (f *HumanFormatter) Name() string { return "human" }

func (f *HumanFormatter) status(s models.Status) string {
	switch s {
	case models.StatusSuccess:
		return f.ok.Sprint("success")
	case models.StatusPartial:
		return f.warn.Sprint("partial")
	case models.StatusCancelled:
		return f.warn.Sprint("cancelled")
	default:
		return f.fail.Sprint("failed")
	}
}

// Reconciliation renders the report built from a matching pass. Verbose
// output appends the per-item detail section.
func (f *HumanFormatter) Reconciliation(result *models.ReconciliationResult, verbose bool) error {
	r := report.Build(result)
	lines := r.SummaryLines
	if verbose {
		lines = r.Lines()
	}
	for _, line := range lines {
		fmt.Fprintln(f.writer, line)
	}
	fmt.Fprintf(f.writer, "Status: %s\n", f.status(result.Status))
	return nil
}

// Copy renders a copy batch
func (f *HumanFormatter) Copy(result *models.CopyResult) error {
	f.title.Fprintln(f.writer, "=== Copy Summary ===")
	fmt.Fprintf(f.writer, "Destination:   %s\n", result.Destination)
	fmt.Fprintf(f.writer, "Requested:     %d (%d after dedup)\n", result.Requested, result.Deduped)
	fmt.Fprintf(f.writer, "Copied:        %d\n", result.Copied)
	fmt.Fprintf(f.writer, "Already there: %d\n", result.Exists)
	if result.Failed > 0 {
		f.fail.Fprintf(f.writer, "Failed:        %d\n", result.Failed)
		for _, e := range result.Errors {
			fmt.Fprintf(f.writer, "  ✗ %s: %s\n", e.Name, e.Err)
		}
	}
	fmt.Fprintf(f.writer, "Status: %s\n", f.status(result.Status))
	return nil
}

// Placement renders a placement fan-out
func (f *HumanFormatter) Placement(result *models.PlacementResult) error {
	f.title.Fprintln(f.writer, "=== Placement Summary ===")
	fmt.Fprintf(f.writer, "Mix code:      %s (%s)\n", result.MixCode, result.Description)
	fmt.Fprintf(f.writer, "Subfolder:     %s\n", result.SubfolderKey)
	fmt.Fprintf(f.writer, "Targets found: %d\n", result.TargetsFound)
	fmt.Fprintf(f.writer, "Files copied:  %d\n", result.FilesCopied)
	fmt.Fprintf(f.writer, "Dirs created:  %d\n", result.DirsCreated)
	fmt.Fprintf(f.writer, "Already there: %d\n", result.Exists)
	if result.Errors > 0 {
		f.fail.Fprintf(f.writer, "Errors:        %d\n", result.Errors)
	}
	for _, tgt := range result.Targets {
		switch tgt.Outcome {
		case models.CopyDone:
			fmt.Fprintf(f.writer, "  ✓ %s\n", tgt.File)
		case models.CopyExists:
			fmt.Fprintf(f.writer, "  = %s (exists)\n", tgt.File)
		default:
			fmt.Fprintf(f.writer, "  ✗ %s: %s\n", tgt.Dir, tgt.Err)
		}
	}
	fmt.Fprintf(f.writer, "Status: %s\n", f.status(result.Status))
	return nil
}

// Update renders an update pass
func (f *HumanFormatter) Update(result *models.UpdateResult) error {
	f.title.Fprintln(f.writer, "=== Update Summary ===")
	fmt.Fprintf(f.writer, "Processed:       %d\n", result.TotalProcessed)
	fmt.Fprintf(f.writer, "Matched:         %d (%d files updated)\n", result.UniqueMatched, result.IndividualUpdates)
	fmt.Fprintf(f.writer, "Not found:       %d\n", result.NotFound)
	if result.Failed > 0 {
		f.fail.Fprintf(f.writer, "Failed:          %d\n", result.Failed)
		for _, e := range result.Errors {
			fmt.Fprintf(f.writer, "  ✗ %s: %s\n", e.Name, e.Err)
		}
	}
	fmt.Fprintf(f.writer, "Status: %s\n", f.status(result.Status))
	return nil
}

// Add renders an add pass
func (f *HumanFormatter) Add(result *models.AddResult) error {
	f.title.Fprintln(f.writer, "=== Add Summary ===")
	fmt.Fprintf(f.writer, "Total files: %d\n", result.TotalFiles)
	fmt.Fprintf(f.writer, "Added:       %d\n", result.Added)
	fmt.Fprintf(f.writer, "Backups:     %d\n", result.Backups)
	if result.Failed > 0 {
		f.fail.Fprintf(f.writer, "Failed:      %d\n", result.Failed)
		for _, e := range result.Errors {
			fmt.Fprintf(f.writer, "  ✗ %s: %s\n", e.Name, e.Err)
		}
	}
	fmt.Fprintf(f.writer, "Status: %s\n", f.status(result.Status))
	return nil
}

// Error reports a fatal operation error
func (f *HumanFormatter) Error(err error) error {
	f.fail.Fprintf(f.writer, "Error: %v\n", err)
	return nil
}
