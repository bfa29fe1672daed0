package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"schematch/pkg/index"
	"schematch/pkg/materialize"
	"schematch/pkg/models"
	"schematch/pkg/operation"
)

// AddFlags holds add command flags
type AddFlags struct {
	Reference string
	From      string
	MixCodes  []string
}

var addFlags AddFlags

// NewAddCommand creates the add command
func NewAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [files...]",
		Short: "Add files under mix code description folders",
		Long: `Copy files into <root>/<mix code>/<description>/ for every selected mix
code, creating the folder pair as needed. An existing destination file
is preserved as a timestamped backup before being replaced.`,
		RunE: runAdd,
	}

	cmd.Flags().StringVarP(&addFlags.Reference, "reference", "r", "", "reference tree root (default from config)")
	cmd.Flags().StringVarP(&addFlags.From, "from", "f", "", "folder holding the files to add")
	cmd.Flags().StringSliceVarP(&addFlags.MixCodes, "mix", "m", nil, "mix codes to add the files under (required)")
	cmd.MarkFlagRequired("mix")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	root, err := referenceRoot(addFlags.Reference, cfg)
	if err != nil {
		return err
	}

	table, err := loadMixTable(cfg)
	if err != nil {
		return err
	}

	store, err := openPathStore(cfg)
	if err != nil {
		return err
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	formatter := newFormatter(cfg)

	files, err := collectAddFiles(ctx, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return &models.InputError{Field: "files", Message: "no files to add: pass --from or file arguments"}
	}

	handle := operation.NewHandle()
	handle.Start("adding")

	bar := startBar(cfg, len(files))
	result, err := materialize.AddFiles(ctx, table, root, files, addFlags.MixCodes, materialize.AddOptions{
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

	if err := formatter.Add(result); err != nil {
		return err
	}

	os.Exit(result.Status.ExitCode())
	return nil
}

// collectAddFiles gathers the files to add from --from and the arguments
func collectAddFiles(ctx context.Context, args []string) ([]models.FileEntry, error) {
	var files []models.FileEntry

	if addFlags.From != "" {
		entries, err := index.TargetEntries(ctx, addFlags.From)
		if err != nil {
			return nil, err
		}
		files = append(files, entries...)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to access file: %w", err)
		}
		if info.IsDir() {
			return nil, &models.InputError{Field: "files", Message: "directories go through --from: " + arg}
		}
		files = append(files, models.FileEntry{
			Path:    arg,
			Name:    info.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}
