package pipeline

import (
	"sync"
	"time"
)

// =============================================================================
// Scheduler - frame coalescing
// =============================================================================

// Scheduler defers recompute work to the next display refresh. Any number of
// requests between two refreshes run the work once.
type Scheduler struct {
	mu    sync.Mutex
	dirty bool
	runs  int
	work  func() error
}

// NewScheduler returns a scheduler that runs work on refresh.
func NewScheduler(work func() error) *Scheduler {
	return &Scheduler{work: work}
}

// Request marks the frame dirty.
func (s *Scheduler) Request() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// Pending reports whether a request is waiting.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Runs returns how many times work has run.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// OnDisplayRefresh runs the pending work, if any, and reports whether it ran.
// A request made while work runs is kept for the next refresh.
func (s *Scheduler) OnDisplayRefresh() (bool, error) {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return false, nil
	}
	s.dirty = false
	s.runs++
	s.mu.Unlock()

	return true, s.work()
}

// =============================================================================
// Debouncer - rescale quiescence
// =============================================================================

// DefaultQuiet is the zoom quiescence window before a rescale is applied.
const DefaultQuiet = 150 * time.Millisecond

// Debouncer holds the latest requested scale until no request has arrived for
// the quiet window. Times are supplied by the caller.
type Debouncer struct {
	Quiet time.Duration

	scale   float64
	last    time.Time
	pending bool
}

// NewDebouncer returns a debouncer with the given quiet window. A
// non-positive window uses DefaultQuiet.
func NewDebouncer(quiet time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Debouncer{Quiet: quiet}
}

// Request records scale as the latest wanted scale at now.
func (d *Debouncer) Request(scale float64, now time.Time) {
	d.scale = scale
	d.last = now
	d.pending = true
}

// Flush returns the pending scale once the quiet window has passed since the
// last request, clearing it. Otherwise it returns false.
func (d *Debouncer) Flush(now time.Time) (float64, bool) {
	if !d.pending || now.Sub(d.last) < d.Quiet {
		return 0, false
	}
	d.pending = false
	return d.scale, true
}

// Pending reports whether a scale is waiting.
func (d *Debouncer) Pending() bool { return d.pending }
