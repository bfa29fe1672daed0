package operation

import (
	"errors"
	"sync"
	"testing"
)

func TestHandleLifecycle(t *testing.T) {
	h := NewHandle()

	snap := h.Snapshot()
	if snap.State != StateIdle {
		t.Fatalf("new handle state = %s, want idle", snap.State)
	}
	if snap.ID == "" {
		t.Fatal("handle must carry an operation ID")
	}

	h.Start("indexing")
	h.Update("matching", 5, 10)

	snap = h.Snapshot()
	if snap.State != StateRunning {
		t.Errorf("state = %s, want running", snap.State)
	}
	if snap.Percentage != 50 {
		t.Errorf("percentage = %d, want 50", snap.Percentage)
	}
	if snap.Stage != "matching" {
		t.Errorf("stage = %q, want matching", snap.Stage)
	}

	h.Complete()
	snap = h.Snapshot()
	if snap.State != StateCompleted {
		t.Errorf("state = %s, want completed", snap.State)
	}
	if snap.Percentage != 100 {
		t.Errorf("percentage = %d, want 100", snap.Percentage)
	}
	if !h.Done() {
		t.Error("Done() should report true after completion")
	}

	// Terminal states are sticky
	h.Fail(errors.New("late failure"))
	if h.Snapshot().State != StateCompleted {
		t.Error("terminal state must not change after completion")
	}
}

func TestHandleFailKeepsError(t *testing.T) {
	h := NewHandle()
	h.Start("copying")
	h.Update("copying", 3, 10)
	h.Fail(errors.New("destination root cannot be created"))

	snap := h.Snapshot()
	if snap.State != StateFailed {
		t.Errorf("state = %s, want failed", snap.State)
	}
	if snap.Err == "" {
		t.Error("failed handle must expose the fatal condition")
	}
	// Partial counts accumulated so far stay readable
	if snap.Processed != 3 {
		t.Errorf("processed = %d, want 3", snap.Processed)
	}
}

func TestHandleCancellation(t *testing.T) {
	h := NewHandle()
	h.Start("matching")

	if h.Cancelled() {
		t.Fatal("fresh handle must not be cancelled")
	}
	h.Cancel()
	if !h.Cancelled() {
		t.Fatal("Cancel must set the flag")
	}

	h.MarkCancelled()
	snap := h.Snapshot()
	if snap.State != StateCancelled {
		t.Errorf("state = %s, want cancelled", snap.State)
	}
	if snap.Err != "" {
		t.Error("cancellation is not an error")
	}
}

func TestHandleConcurrentAccess(t *testing.T) {
	h := NewHandle()
	h.Start("matching")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Update("matching", j, 100)
			}
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = h.Snapshot()
			}
		}()
	}
	wg.Wait()
}
