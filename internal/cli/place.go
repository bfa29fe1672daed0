package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"schematch/pkg/materialize"
	"schematch/pkg/models"
	"schematch/pkg/operation"
)

// PlaceFlags holds place command flags
type PlaceFlags struct {
	Reference string
	File      string
	Name      string
	MixCodes  []string
	Sections  []string
	DestName  string
}

var placeFlags PlaceFlags

// NewPlaceCommand creates the place command
func NewPlaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Fan a file out to every matching mix description folder",
		Long: `Resolve the mix code to its description, find every directory in the
reference tree named exactly like it, and copy the file into a
two-character subfolder derived from the filename. Existing destination
files are never overwritten.`,
		RunE: runPlace,
	}

	cmd.Flags().StringVarP(&placeFlags.Reference, "reference", "r", "", "reference tree root (default from config)")
	cmd.Flags().StringVarP(&placeFlags.File, "file", "f", "", "file to place (required)")
	cmd.Flags().StringVar(&placeFlags.Name, "name", "", "original filename driving the subfolder key (default: basename of --file)")
	cmd.Flags().StringSliceVarP(&placeFlags.MixCodes, "mix", "m", nil, "mix codes selecting the description folders (required)")
	cmd.Flags().StringSliceVar(&placeFlags.Sections, "section", nil, "restrict the search to these subtrees")
	cmd.Flags().StringVar(&placeFlags.DestName, "dest-name", "", "destination filename override")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("mix")

	return cmd
}

func runPlace(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	root, err := referenceRoot(placeFlags.Reference, cfg)
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

	name := placeFlags.Name
	if name == "" {
		name = filepath.Base(placeFlags.File)
	}

	handle := operation.NewHandle()
	handle.Start("placing")
	placer := materialize.NewPlacer(table, store, handle, logger)

	// One fan-out per selected mix code, stopping between codes when
	// cancellation is requested.
	status := models.StatusSuccess
	for _, code := range placeFlags.MixCodes {
		select {
		case <-ctx.Done():
			status = worstStatus(status, models.StatusCancelled)
		default:
		}
		if status == models.StatusCancelled {
			break
		}

		result, err := placer.PlaceFile(ctx, materialize.PlaceRequest{
			SourcePath:       placeFlags.File,
			OriginalFilename: name,
			MixCode:          code,
			ReferenceRoot:    root,
			AllowedSections:  sections(placeFlags.Sections, cfg),
			DestFilename:     placeFlags.DestName,
		})
		if err != nil {
			handle.Fail(err)
			formatter.Error(err)
			os.Exit(models.StatusFailed.ExitCode())
		}

		if err := formatter.Placement(result); err != nil {
			return err
		}
		status = worstStatus(status, result.Status)
	}
	handle.Complete()

	os.Exit(status.ExitCode())
	return nil
}
