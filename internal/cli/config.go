package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"schematch/pkg/config"
	"schematch/pkg/mix"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or modify schematch configuration.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigMixCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Reference Root: %s\n", cfg.Reference.Root)
			fmt.Printf("Sections: %s\n", strings.Join(cfg.Reference.Sections, ", "))
			fmt.Printf("Index File: %s\n", cfg.Reference.IndexFile)
			fmt.Printf("Mix Table: %s\n", cfg.Reference.MixTable)
			fmt.Printf("Output Format: %s\n", cfg.Output.Format)
			fmt.Printf("Progress: %t\n", cfg.Output.Progress)
			fmt.Printf("Logging Enabled: %t\n", cfg.Logging.Enabled)
			fmt.Printf("Log Format: %s\n", cfg.Logging.Format)
			fmt.Printf("Log Level: %s\n", cfg.Logging.Level)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Printf("Configuration file created at: %s\n", path)
			return nil
		},
	}
}

func newConfigMixCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mix",
		Short: "List the known mix codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			table, err := loadMixTable(cfg)
			if err != nil {
				return err
			}

			printMixTable(table)
			return nil
		},
	}
}

func printMixTable(table *mix.Table) {
	for _, code := range table.Codes() {
		desc, _ := table.Describe(code)
		fmt.Printf("%s  %s\n", code, desc)
	}
}
