package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"schematch/pkg/index"
	"schematch/pkg/logging"
	"schematch/pkg/match"
	"schematch/pkg/materialize"
	"schematch/pkg/models"
	"schematch/pkg/operation"
	"schematch/pkg/report"
)

// ScanFlags holds scan command flags
type ScanFlags struct {
	Reference      string
	Target         string
	NamesFile      string
	Sections       []string
	Label          string
	ReportFile     string
	CopyMatched    string
	CopyNonMatched string
}

var scanFlags ScanFlags

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [filenames...]",
		Short: "Match target files against a reference tree",
		Long: `Index the reference tree once, then match every target filename against
it using exact, I-prefix and pattern strategies. Targets come from a
directory (--target), a names file (--names-file), or bare filenames
given as arguments.`,
		RunE: runScan,
	}

	cmd.Flags().StringVarP(&scanFlags.Reference, "reference", "r", "", "reference tree root (default from config)")
	cmd.Flags().StringVarP(&scanFlags.Target, "target", "t", "", "directory holding the target files")
	cmd.Flags().StringVar(&scanFlags.NamesFile, "names-file", "", "file with one target filename per line")
	cmd.Flags().StringSliceVar(&scanFlags.Sections, "section", nil, "restrict indexing to these subtrees")
	cmd.Flags().StringVar(&scanFlags.Label, "label", "", "label identifying the target set in reports")
	cmd.Flags().StringVar(&scanFlags.ReportFile, "report", "", "write the detailed report to this file")
	cmd.Flags().StringVar(&scanFlags.CopyMatched, "copy-matched", "", "copy matched reference files to this directory")
	cmd.Flags().StringVar(&scanFlags.CopyNonMatched, "copy-non-matched", "", "copy non-matched target files to this directory")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	root, err := referenceRoot(scanFlags.Reference, cfg)
	if err != nil {
		return err
	}

	targets, err := collectTargets(ctx, args)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return &models.InputError{Field: "target", Message: "no target files: pass --target, --names-file or filenames"}
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	formatter := newFormatter(cfg)

	if !globalFlags.Quiet && outputFormat(cfg) == "human" {
		fmt.Printf("Indexing %s...\n", root)
	}
	ix, err := index.NewBuilder().Build(ctx, root, sections(scanFlags.Sections, cfg))
	if err != nil {
		formatter.Error(err)
		os.Exit(models.StatusFailed.ExitCode())
	}
	logger.Info(ctx, "index built", logging.Fields{"root": root, "files": ix.TotalFiles})

	handle := operation.NewHandle()
	handle.Start("matching")
	engine := match.NewEngine(ix, handle, logger)

	bar := startBar(cfg, len(targets))
	engine.OnProgress = barProgress(bar)

	result, err := engine.MatchAll(ctx, targets, scanFlags.Label)
	finishBar(bar)
	if err != nil {
		handle.Fail(err)
		formatter.Error(err)
		os.Exit(models.StatusFailed.ExitCode())
	}
	handle.Complete()

	if err := formatter.Reconciliation(result, globalFlags.Verbose); err != nil {
		return err
	}

	if scanFlags.ReportFile != "" {
		if err := writeReport(result, scanFlags.ReportFile); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	status := result.Status

	if scanFlags.CopyMatched != "" {
		copyResult, err := copyMatched(ctx, result, scanFlags.CopyMatched, logger)
		if err != nil {
			formatter.Error(err)
			os.Exit(models.StatusFailed.ExitCode())
		}
		formatter.Copy(copyResult)
		status = worstStatus(status, copyResult.Status)
	}

	if scanFlags.CopyNonMatched != "" {
		copyResult, err := materialize.CopySet(ctx, result.NonMatched, scanFlags.CopyNonMatched,
			materialize.CopyOptions{Logger: logger})
		if err != nil {
			formatter.Error(err)
			os.Exit(models.StatusFailed.ExitCode())
		}
		formatter.Copy(copyResult)
		status = worstStatus(status, copyResult.Status)
	}

	os.Exit(status.ExitCode())
	return nil
}

// collectTargets gathers target entries from the directory, names file and
// bare arguments, in that order.
func collectTargets(ctx context.Context, args []string) ([]models.FileEntry, error) {
	var targets []models.FileEntry

	if scanFlags.Target != "" {
		entries, err := index.TargetEntries(ctx, scanFlags.Target)
		if err != nil {
			return nil, err
		}
		targets = append(targets, entries...)
	}

	if scanFlags.NamesFile != "" {
		file, err := os.Open(scanFlags.NamesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open names file: %w", err)
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			name := strings.TrimSpace(scanner.Text())
			if name == "" {
				continue
			}
			targets = append(targets, models.NameOnly(name, 0, time.Time{}))
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read names file: %w", err)
		}
	}

	for _, name := range args {
		targets = append(targets, models.NameOnly(name, 0, time.Time{}))
	}

	return targets, nil
}

// copyMatched copies every matched reference-side file into destination
func copyMatched(ctx context.Context, result *models.ReconciliationResult, destination string, logger logging.Logger) (*models.CopyResult, error) {
	var entries []models.FileEntry
	for _, rec := range result.Matched {
		for _, m := range rec.Matches {
			entries = append(entries, m.Entry)
		}
	}
	return materialize.CopySet(ctx, entries, destination, materialize.CopyOptions{Logger: logger})
}

// writeReport persists the full report text
func writeReport(result *models.ReconciliationResult, path string) error {
	r := report.Build(result)
	return os.WriteFile(path, []byte(strings.Join(r.Lines(), "\n")+"\n"), 0644)
}

// worstStatus combines phase outcomes for the process exit code
func worstStatus(a, b models.Status) models.Status {
	if b.ExitCode() > a.ExitCode() {
		return b
	}
	return a
}
