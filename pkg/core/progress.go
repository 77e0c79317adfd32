package core

import (
	"go.uber.org/atomic"
)

// Progress receives the advancement of an upload.
//
// Each work item is reported exactly once, either with Update or with UpdateForSkip(false).
// Implementations must be safe for concurrent use.
type Progress interface {
	Update()

	// UpdateForSkip records a skipped item when keep is false, and returns keep
	UpdateForSkip(keep bool) bool

	Disabled() bool
}

var (
	_ Progress = &Tracker{}
	_ Progress = noProgress{}
)

type noProgress struct{}

func (noProgress) Update()                      {}
func (noProgress) UpdateForSkip(keep bool) bool { return keep }
func (noProgress) Disabled() bool               { return true }

// Tracker is a Progress counting uploaded and skipped items against an expected total
type Tracker struct {
	total    int64
	done     atomic.Int64
	skipped  atomic.Int64
	disabled bool
	onUpdate func(done, total int64)
}

// TrackerOption configures a Tracker
type TrackerOption func(*Tracker)

// OnUpdate calls a function each time the tracker advances. It may be called concurrently.
func OnUpdate(fn func(done, total int64)) TrackerOption {
	return func(t *Tracker) {
		t.onUpdate = fn
	}
}

// DisableTracker turns off progress reporting
func DisableTracker(disabled bool) TrackerOption {
	return func(t *Tracker) {
		t.disabled = disabled
	}
}

// NewTracker for some total number of items
func NewTracker(total int, opts ...TrackerOption) *Tracker {
	t := &Tracker{total: int64(total)}
	for _, apply := range opts {
		apply(t)
	}
	return t
}

// Update records an uploaded item
func (t *Tracker) Update() {
	t.advance()
}

// UpdateForSkip records a skipped item when keep is false
func (t *Tracker) UpdateForSkip(keep bool) bool {
	if !keep {
		t.skipped.Inc()
		t.advance()
	}
	return keep
}

func (t *Tracker) advance() {
	done := t.done.Inc()
	if t.onUpdate != nil && !t.disabled {
		t.onUpdate(done, t.total)
	}
}

// Disabled tells if progress is not reported
func (t *Tracker) Disabled() bool {
	return t.disabled
}

// Done counts the items reported so far, uploaded or skipped
func (t *Tracker) Done() int64 {
	return t.done.Load()
}

// Skipped counts the items skipped
func (t *Tracker) Skipped() int64 {
	return t.skipped.Load()
}

// Total number of items expected
func (t *Tracker) Total() int64 {
	return t.total
}
