package report

import (
	"strings"
	"testing"
	"time"

	"schematch/pkg/models"
)

func sampleResult() *models.ReconciliationResult {
	return &models.ReconciliationResult{
		ReferenceRoot:          "/data/reference",
		TargetLabel:            "order-17",
		TotalTargets:           3,
		UniqueMatched:          2,
		TotalIndividualMatches: 3,
		NonMatchedCount:        1,
		MatchPercentage:        66,
		Status:                 models.StatusSuccess,
		Matched: []models.MatchRecord{
			{
				TargetName: "SPEC9.PDF",
				TargetPath: models.NoPath,
				Matches: []models.Match{
					{Entry: models.FileEntry{Name: "SPEC9.pdf", Path: "/data/reference/a/SPEC9.pdf"}, Type: models.MatchExact},
					{Entry: models.FileEntry{Name: "SPEC9_2.pdf", Path: "/data/reference/b/SPEC9_2.pdf"}, Type: models.MatchPattern},
				},
			},
			{
				TargetName: "DRAW44.PDF",
				TargetPath: models.NoPath,
				Matches: []models.Match{
					{Entry: models.FileEntry{Name: "IDRAW44.pdf", Path: "/data/reference/c/IDRAW44.pdf"}, Type: models.MatchIPrefixAdded},
				},
			},
		},
		NonMatched: []models.FileEntry{
			models.NameOnly("MISSING.pdf", 0, time.Time{}),
		},
	}
}

func TestBuildSummary(t *testing.T) {
	r := Build(sampleResult())
	text := strings.Join(r.SummaryLines, "\n")

	for _, want := range []string{
		"/data/reference",
		"order-17",
		"Targets processed:  3",
		"Matched:            2 (3 individual matches)",
		"Not matched:        1",
		"Match rate:         66%",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Status:") {
		t.Error("status line must be omitted for a successful pass")
	}
}

func TestBuildDetail(t *testing.T) {
	r := Build(sampleResult())
	text := strings.Join(r.DetailLines, "\n")

	for _, want := range []string{
		"SPEC9.PDF (2 match(es))",
		"[EXACT] SPEC9.pdf at /data/reference/a/SPEC9.pdf",
		"[PATTERN] SPEC9_2.pdf",
		"[I_PREFIX_ADDED] IDRAW44.pdf",
		"MISSING.pdf  size=n/a  modified=n/a",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("detail missing %q:\n%s", want, text)
		}
	}
}

func TestBuildOmitsEmptySections(t *testing.T) {
	result := sampleResult()
	result.NonMatched = nil
	result.NonMatchedCount = 0
	text := strings.Join(Build(result).DetailLines, "\n")
	if strings.Contains(text, "Non-matched") {
		t.Error("empty non-matched section must be omitted")
	}

	result = sampleResult()
	result.Matched = nil
	text = strings.Join(Build(result).DetailLines, "\n")
	if strings.Contains(text, "Matched items") {
		t.Error("empty matched section must be omitted")
	}
}

func TestBuildCancelledStatusShown(t *testing.T) {
	result := sampleResult()
	result.Status = models.StatusCancelled
	text := strings.Join(Build(result).SummaryLines, "\n")
	if !strings.Contains(text, "Status:             cancelled") {
		t.Errorf("cancelled status missing:\n%s", text)
	}
}

func TestBuildRealMetadataShown(t *testing.T) {
	result := &models.ReconciliationResult{
		ReferenceRoot: "/data/reference",
		NonMatched: []models.FileEntry{
			{
				Path:    "/targets/BIG.pdf",
				Name:    "BIG.pdf",
				Size:    2048,
				ModTime: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			},
		},
		NonMatchedCount: 1,
	}
	text := strings.Join(Build(result).DetailLines, "\n")
	if !strings.Contains(text, "size=2048") {
		t.Errorf("size missing:\n%s", text)
	}
	if !strings.Contains(text, "2026-03-01T12:00:00Z") {
		t.Errorf("mtime missing:\n%s", text)
	}
}
