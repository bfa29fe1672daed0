package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"schematch/pkg/index"
	"schematch/pkg/logging"
	"schematch/pkg/match"
	"schematch/pkg/materialize"
	"schematch/pkg/models"
	"schematch/pkg/operation"
)

// UpdateFlags holds update command flags
type UpdateFlags struct {
	Reference string
	From      string
	Sections  []string
}

var updateFlags UpdateFlags

// NewUpdateCommand creates the update command
func NewUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Overwrite matched reference files with fresh versions",
		Long: `Match every file in the update folder against the reference tree and
overwrite each matched counterpart in place. No backups are made; files
with no counterpart are reported as not found.`,
		RunE: runUpdate,
	}

	cmd.Flags().StringVarP(&updateFlags.Reference, "reference", "r", "", "reference tree root (default from config)")
	cmd.Flags().StringVarP(&updateFlags.From, "from", "f", "", "folder holding the updated files (required)")
	cmd.Flags().StringSliceVar(&updateFlags.Sections, "section", nil, "restrict indexing to these subtrees")
	cmd.MarkFlagRequired("from")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	root, err := referenceRoot(updateFlags.Reference, cfg)
	if err != nil {
		return err
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	store, err := openPathStore(cfg)
	if err != nil {
		return err
	}

	formatter := newFormatter(cfg)

	updates, err := index.TargetEntries(ctx, updateFlags.From)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return &models.InputError{Field: "from", Message: "no files found in update folder: " + updateFlags.From}
	}

	if !globalFlags.Quiet && outputFormat(cfg) == "human" {
		fmt.Printf("Indexing %s...\n", root)
	}
	ix, err := index.NewBuilder().Build(ctx, root, sections(updateFlags.Sections, cfg))
	if err != nil {
		formatter.Error(err)
		os.Exit(models.StatusFailed.ExitCode())
	}
	logger.Info(ctx, "index built", logging.Fields{"root": root, "files": ix.TotalFiles})

	handle := operation.NewHandle()
	handle.Start("updating")
	engine := match.NewEngine(ix, handle, logger)

	bar := startBar(cfg, len(updates))
	result, err := materialize.UpdateSet(ctx, engine, updates, materialize.UpdateOptions{
		Handle:     handle,
		Logger:     logger,
		Store:      store,
		OnProgress: barProgress(bar),
	})
	finishBar(bar)
	if err != nil {
		handle.Fail(err)
		formatter.Error(err)
		os.Exit(models.StatusFailed.ExitCode())
	}
	handle.Complete()

	if err := formatter.Update(result); err != nil {
		return err
	}

	os.Exit(result.Status.ExitCode())
	return nil
}
