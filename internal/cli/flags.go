package cli

import (
	"fmt"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"schematch/pkg/config"
	"schematch/pkg/index"
	"schematch/pkg/logging"
	"schematch/pkg/mix"
	"schematch/pkg/output"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
	Output     string
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/schematch/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
	cmd.PersistentFlags().StringVarP(
		&globalFlags.Output,
		"output",
		"o",
		"",
		"output format: human, json (default from config)",
	)
}

// loadConfig loads the effective configuration, honoring --config
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// outputFormat resolves the effective format from flag and config
func outputFormat(cfg *config.Config) string {
	if globalFlags.Output != "" {
		return globalFlags.Output
	}
	return cfg.Output.Format
}

// newFormatter creates the formatter for the effective format. Quiet mode
// discards everything except errors, which still go to stderr via Error.
func newFormatter(cfg *config.Config) output.Formatter {
	if globalFlags.Quiet {
		return output.New(outputFormat(cfg), nil)
	}
	return output.New(outputFormat(cfg), os.Stdout)
}

// createLogger creates the operation logger per config
func createLogger(cfg *config.Config) (logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NewNullLogger(), nil
	}

	path, err := cfg.LogFilePath()
	if err != nil {
		return nil, err
	}

	var format logging.Format
	switch cfg.Logging.Format {
	case "text":
		format = logging.FormatText
	default:
		format = logging.FormatJSON
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:    path,
		Format:  format,
		Level:   logging.ParseLevel(cfg.Logging.Level),
		MaxSize: 10 * 1024 * 1024, // 10 MB
	})
}

// showProgress reports whether a progress bar should be rendered
func showProgress(cfg *config.Config) bool {
	return cfg.Output.Progress && !globalFlags.Quiet && outputFormat(cfg) == "human"
}

// startBar starts a progress bar over a known total
func startBar(cfg *config.Config, total int) *pb.ProgressBar {
	if !showProgress(cfg) || total == 0 {
		return nil
	}
	return pb.StartNew(total)
}

// barProgress returns a per-item callback driving the bar, or nil
func barProgress(bar *pb.ProgressBar) func(processed, total int) {
	if bar == nil {
		return nil
	}
	return func(processed, total int) {
		bar.SetCurrent(int64(processed))
	}
}

func finishBar(bar *pb.ProgressBar) {
	if bar != nil {
		bar.Finish()
	}
}

// loadMixTable loads the mix code table with the configured override file
func loadMixTable(cfg *config.Config) (*mix.Table, error) {
	return mix.LoadTable(cfg.Reference.MixTable)
}

// openPathStore opens the persisted path list at the configured location
func openPathStore(cfg *config.Config) (*index.PathStore, error) {
	path, err := cfg.IndexFilePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve index file path: %w", err)
	}
	return index.NewPathStore(path), nil
}

// referenceRoot resolves the reference root from flag or config
func referenceRoot(flagValue string, cfg *config.Config) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.Reference.Root != "" {
		return cfg.Reference.Root, nil
	}
	return "", fmt.Errorf("no reference root: pass --reference or set reference.root in the config")
}

// sections resolves the section restriction from flag or config
func sections(flagValue []string, cfg *config.Config) []string {
	if len(flagValue) > 0 {
		return flagValue
	}
	return cfg.Reference.Sections
}
