package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"schematch/pkg/config"
	"schematch/pkg/index"
)

// NewIndexCommand creates the index command
func NewIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the persisted path list",
		Long: `The path list is a rebuildable cache of every known file path under the
reference root. Placement and update operations append to it
incrementally; rebuild replaces it from a fresh walk.`,
	}

	cmd.AddCommand(newIndexRebuildCommand())
	cmd.AddCommand(newIndexAddCommand())
	cmd.AddCommand(newIndexRemoveCommand())
	cmd.AddCommand(newIndexShowCommand())

	return cmd
}

func indexStore() (*config.Config, *index.PathStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	store, err := openPathStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

func newIndexRebuildCommand() *cobra.Command {
	var reference string

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the path list from a full walk",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, store, err := indexStore()
			if err != nil {
				return err
			}
			root, err := referenceRoot(reference, cfg)
			if err != nil {
				return err
			}

			var onProgress index.ProgressFunc
			if showProgress(cfg) {
				onProgress = func(n int) { fmt.Printf("\rIndexed %d files...", n) }
			}

			count, err := store.Rebuild(ctx, root, onProgress)
			if err != nil {
				return err
			}
			if !globalFlags.Quiet {
				fmt.Printf("\rIndexed %d files into %s\n", count, store.Path())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&reference, "reference", "r", "", "reference tree root (default from config)")

	return cmd
}

func newIndexAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>...",
		Short: "Add paths to the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := indexStore()
			if err != nil {
				return err
			}

			added := 0
			for _, path := range args {
				ok, err := store.Add(path)
				if err != nil {
					return err
				}
				if ok {
					added++
				}
			}
			if !globalFlags.Quiet {
				fmt.Printf("Added %d of %d paths\n", added, len(args))
			}
			return nil
		},
	}
}

func newIndexRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>...",
		Short: "Remove paths from the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := indexStore()
			if err != nil {
				return err
			}

			removed := 0
			for _, path := range args {
				ok, err := store.Remove(path)
				if err != nil {
					return err
				}
				if ok {
					removed++
				}
			}
			if !globalFlags.Quiet {
				fmt.Printf("Removed %d of %d paths\n", removed, len(args))
			}
			return nil
		},
	}
}

func newIndexShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current path list",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := indexStore()
			if err != nil {
				return err
			}

			paths, err := store.Load()
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			if !globalFlags.Quiet {
				fmt.Printf("%d paths in %s\n", len(paths), store.Path())
			}
			return nil
		},
	}
}
