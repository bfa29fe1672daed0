// Package operation provides the lifecycle handle shared by every
// long-running engine invocation. A Handle is created per operation and
// returned to the caller immediately; the caller polls Snapshot for
// progress and may request a cooperative stop with Cancel.
package operation

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of an operation
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Progress is a point-in-time snapshot of an operation
type Progress struct {
	ID         string
	State      State
	Stage      string
	Processed  int
	Total      int
	Percentage int
	Err        string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Handle tracks one operation. All methods are safe for concurrent use:
// the worker goroutine updates it while request handlers read it.
type Handle struct {
	id        string
	cancelled atomic.Bool

	mu         sync.Mutex
	state      State
	stage      string
	processed  int
	total      int
	percentage int
	errMsg     string
	startedAt  time.Time
	finishedAt time.Time
}

// NewHandle creates an idle handle with a fresh operation ID.
func NewHandle() *Handle {
	return &Handle{
		id:    uuid.New().String(),
		state: StateIdle,
	}
}

// ID returns the operation ID.
func (h *Handle) ID() string {
	return h.id
}

// Start transitions Idle → Running. It is a no-op after a terminal state.
func (h *Handle) Start(stage string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateIdle {
		return
	}
	h.state = StateRunning
	h.stage = stage
	h.startedAt = time.Now()
}

// Update records per-item progress. Percentage is derived from
// processed/total when total is known.
func (h *Handle) Update(stage string, processed, total int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateRunning {
		return
	}
	h.stage = stage
	h.processed = processed
	h.total = total
	if total > 0 {
		h.percentage = processed * 100 / total
	}
}

// Cancel requests a cooperative stop. The running operation observes the
// flag at the top of its next per-item iteration.
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
}

// Cancelled reports whether a stop was requested.
func (h *Handle) Cancelled() bool {
	return h.cancelled.Load()
}

// Complete transitions Running → Completed.
func (h *Handle) Complete() {
	h.finish(StateCompleted, "")
}

// Fail transitions Running → Failed with the fatal condition.
func (h *Handle) Fail(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	h.finish(StateFailed, msg)
}

// MarkCancelled transitions Running → Cancelled once the worker has
// actually stopped. Counts accumulated so far stay readable.
func (h *Handle) MarkCancelled() {
	h.finish(StateCancelled, "")
}

func (h *Handle) finish(state State, errMsg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateRunning && h.state != StateIdle {
		return
	}
	h.state = state
	h.errMsg = errMsg
	h.finishedAt = time.Now()
	if state == StateCompleted {
		h.percentage = 100
	}
}

// Snapshot returns a copy of the current progress.
func (h *Handle) Snapshot() Progress {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Progress{
		ID:         h.id,
		State:      h.state,
		Stage:      h.stage,
		Processed:  h.processed,
		Total:      h.total,
		Percentage: h.percentage,
		Err:        h.errMsg,
		StartedAt:  h.startedAt,
		FinishedAt: h.finishedAt,
	}
}

// Done reports whether the operation reached a terminal state.
func (h *Handle) Done() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == StateCompleted || h.state == StateFailed || h.state == StateCancelled
}
