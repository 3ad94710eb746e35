package session

import (
	"context"
	"sync"
)

// taskSet tracks the session's outstanding background tasks (one per
// in-flight transcription/generation/synthesis pipeline run). The speech
// guard consults [taskSet.active]; end_call uses [taskSet.cancelAll] to stop
// every in-flight provider call deterministically.
//
// Each session owns exactly one taskSet, so one candidate's work can never
// gate or cancel another candidate's session.
type taskSet struct {
	mu      sync.Mutex
	nextID  uint64
	cancels map[uint64]context.CancelFunc
}

func newTaskSet() *taskSet {
	return &taskSet{cancels: make(map[uint64]context.CancelFunc)}
}

// track derives a cancellable child context from parent and registers it.
// The returned release func must be called when the task finishes; it cancels
// the child context and removes the entry.
func (ts *taskSet) track(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	ts.mu.Lock()
	id := ts.nextID
	ts.nextID++
	ts.cancels[id] = cancel
	ts.mu.Unlock()

	release := func() {
		ts.mu.Lock()
		delete(ts.cancels, id)
		ts.mu.Unlock()
		cancel()
	}
	return ctx, release
}

// active reports whether any tracked task is still running.
func (ts *taskSet) active() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.cancels) > 0
}

// cancelAll cancels every tracked task. Entries are removed here rather than
// waiting for each task's release so the guard observes an empty set
// immediately.
func (ts *taskSet) cancelAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for id, cancel := range ts.cancels {
		cancel()
		delete(ts.cancels, id)
	}
}
