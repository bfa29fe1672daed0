package models

import (
	"time"
)

// Status represents the overall outcome of an operation
type Status string

const (
	// StatusSuccess indicates all items completed successfully
	StatusSuccess Status = "success"
	// StatusPartial indicates some items failed
	StatusPartial Status = "partial"
	// StatusFailed indicates the operation could not continue
	StatusFailed Status = "failed"
	// StatusCancelled indicates the operation was stopped by the caller
	StatusCancelled Status = "cancelled"
)

// ExitCode returns the appropriate process exit code for the status
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}

// ItemError records a single per-item failure. Per-item failures are
// counted and logged, never escalated to operation failure.
type ItemError struct {
	Name      string
	Path      string
	Err       string
	Timestamp time.Time
}

// CopyOutcome categorizes the result of one copy attempt
type CopyOutcome string

const (
	CopyDone   CopyOutcome = "copied"
	CopyExists CopyOutcome = "exists"
	CopyFailed CopyOutcome = "failed"
)

// CopyItem is the per-file log line of a CopySet operation
type CopyItem struct {
	Name    string
	Source  string
	Dest    string
	Outcome CopyOutcome
	Err     string
}

// CopyResult reports a CopySet batch.
type CopyResult struct {
	Destination string
	Requested   int // entries before canonical-base dedup
	Deduped     int // entries actually attempted
	Copied      int
	Exists      int
	Failed      int
	Items       []CopyItem
	Errors      []ItemError
	Status      Status
}

// PlacementTarget is the per-directory log line of a PlaceFile fan-out
type PlacementTarget struct {
	Dir     string
	File    string
	Outcome CopyOutcome
	Err     string
}

// PlacementResult reports one PlaceFile invocation: a single source file
// fanned out to every reference directory matching the mix description.
type PlacementResult struct {
	MixCode      string
	Description  string
	SubfolderKey string
	TargetsFound int
	FilesCopied  int
	DirsCreated  int
	Exists       int
	Errors       int
	Targets      []PlacementTarget
	Status       Status
}

// UpdateResult reports an update pass: target files overwriting their
// matched counterparts inside the reference tree.
type UpdateResult struct {
	TotalProcessed    int
	UniqueMatched     int
	IndividualUpdates int
	NotFound          int
	Failed            int
	Errors            []ItemError
	Status            Status
}

// AddResult reports an add pass: source files copied into mix-code
// description folders, with backup-on-conflict.
type AddResult struct {
	TotalFiles int
	Added      int
	Backups    int
	Failed     int
	Errors     []ItemError
	Status     Status
}
