// Package output renders operation results for the terminal, either as
// human-readable text or as JSON for automation.
package output

import (
	"io"

	"schematch/pkg/models"
)

// Formatter defines the interface for output formatting
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// Reconciliation renders a matching pass, with detail when verbose
	Reconciliation(result *models.ReconciliationResult, verbose bool) error

	// Copy renders a copy batch
	Copy(result *models.CopyResult) error

	// Placement renders a placement fan-out
	Placement(result *models.PlacementResult) error

	// Update renders an update pass
	Update(result *models.UpdateResult) error

	// Add renders an add pass
	Add(result *models.AddResult) error

	// Error reports a fatal operation error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for the configured format name.
func New(format string, writer io.Writer) Formatter {
	if format == "json" {
		return NewJSONFormatter(writer)
	}
	return NewHumanFormatter(writer)
}
