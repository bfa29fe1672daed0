package output

import (
	"encoding/json"
	"io"
	"time"

	"schematch/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(writer io.Writer) *JSONFormatter {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONFormatter{writer: writer}
}

func (f *JSONFormatter) Name() string { return "json" }

// JSONEnvelope wraps every emitted document
type JSONEnvelope struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func (f *JSONFormatter) emit(kind string, data any) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(JSONEnvelope{
		Timestamp: time.Now(),
		Type:      kind,
		Data:      data,
	})
}

// JSONMatch is one reference-side match in JSON output
type JSONMatch struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// JSONMatchRecord is one matched target item in JSON output
type JSONMatchRecord struct {
	TargetName string      `json:"target_name"`
	TargetPath string      `json:"target_path,omitempty"`
	Matches    []JSONMatch `json:"matches"`
}

// JSONReconciliationData is the scan result document
type JSONReconciliationData struct {
	ReferenceRoot          string            `json:"reference_root"`
	TargetLabel            string            `json:"target_label,omitempty"`
	TotalTargets           int               `json:"total_targets"`
	UniqueMatched          int               `json:"unique_matched"`
	TotalIndividualMatches int               `json:"total_individual_matches"`
	NonMatchedCount        int               `json:"non_matched_count"`
	MatchPercentage        int               `json:"match_percentage"`
	Status                 string            `json:"status"`
	Matched                []JSONMatchRecord `json:"matched,omitempty"`
	NonMatched             []string          `json:"non_matched,omitempty"`
}

// Reconciliation renders a matching pass. The detail lists are always
// included; JSON consumers filter for themselves.
func (f *JSONFormatter) Reconciliation(result *models.ReconciliationResult, verbose bool) error {
	data := JSONReconciliationData{
		ReferenceRoot:          result.ReferenceRoot,
		TargetLabel:            result.TargetLabel,
		TotalTargets:           result.TotalTargets,
		UniqueMatched:          result.UniqueMatched,
		TotalIndividualMatches: result.TotalIndividualMatches,
		NonMatchedCount:        result.NonMatchedCount,
		MatchPercentage:        result.MatchPercentage,
		Status:                 string(result.Status),
	}
	for _, rec := range result.Matched {
		jr := JSONMatchRecord{TargetName: rec.TargetName, TargetPath: rec.TargetPath}
		for _, m := range rec.Matches {
			jr.Matches = append(jr.Matches, JSONMatch{
				Path: m.Entry.Path,
				Name: m.Entry.Name,
				Type: string(m.Type),
			})
		}
		data.Matched = append(data.Matched, jr)
	}
	for _, e := range result.NonMatched {
		data.NonMatched = append(data.NonMatched, e.Name)
	}
	return f.emit("reconciliation", data)
}

// Copy renders a copy batch
func (f *JSONFormatter) Copy(result *models.CopyResult) error {
	return f.emit("copy", result)
}

// Placement renders a placement fan-out
func (f *JSONFormatter) Placement(result *models.PlacementResult) error {
	return f.emit("placement", result)
}

// Update renders an update pass
func (f *JSONFormatter) Update(result *models.UpdateResult) error {
	return f.emit("update", result)
}

// Add renders an add pass
func (f *JSONFormatter) Add(result *models.AddResult) error {
	return f.emit("add", result)
}

// Error reports a fatal operation error
func (f *JSONFormatter) Error(err error) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(JSONEnvelope{
		Timestamp: time.Now(),
		Type:      "error",
		Error:     err.Error(),
	})
}
