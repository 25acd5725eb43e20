package core

import (
	"sync"
	"time"

	"github.com/mxrlkn/murmur/internal/sched"
)

// DefaultFillerPool matches the daemon's stock persona.
var DefaultFillerPool = []string{
	"Working on it.",
	"Still on it.",
	"Almost there.",
	"Thanks for waiting.",
	"Making progress.",
}

const (
	fillerFirstDelay = 2 * time.Second
	fillerInterval   = 9 * time.Second
)

// ProgressScheduler announces filler lines while a request is
// outstanding. The first line is held back for FirstDelay so fast
// responses never produce a spurious "still working" message; after
// that one line is emitted per Interval, cycling through the pool.
//
// At most one run is active: Start cancels any previous run. Emission
// happens under the scheduler's lock, so once Stop returns no further
// line can be emitted — callers rely on this to interpret a real
// response only after the filler stream is quiet.
type ProgressScheduler struct {
	mu     sync.Mutex
	first  time.Duration
	every  time.Duration
	emit   func(line string)
	pool   []string
	cursor int
	gen    uint64
	delay  *sched.Handle
	repeat *sched.Handle
}

// NewProgressScheduler creates a scheduler with the production timing
// constants (2s first delay, 9s interval).
func NewProgressScheduler(emit func(string)) *ProgressScheduler {
	return NewProgressSchedulerWithTiming(fillerFirstDelay, fillerInterval, emit)
}

// NewProgressSchedulerWithTiming creates a scheduler with explicit
// timings.
func NewProgressSchedulerWithTiming(first, every time.Duration, emit func(string)) *ProgressScheduler {
	return &ProgressScheduler{first: first, every: every, emit: emit}
}

// Start arms a run over pool, cancelling any previous run first. An
// empty pool falls back to DefaultFillerPool.
func (ps *ProgressScheduler) Start(pool []string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.cancelLocked()
	if len(pool) == 0 {
		pool = DefaultFillerPool
	}
	ps.pool = pool
	gen := ps.gen
	ps.delay = sched.Delayed(ps.first, func() { ps.firstTick(gen) })
}

// Stop cancels any pending delay and repeating timer and resets the
// cursor. Idempotent; safe when nothing is running.
func (ps *ProgressScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.cancelLocked()
}

// Running reports whether a run is armed or ticking.
func (ps *ProgressScheduler) Running() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.delay != nil || ps.repeat != nil
}

func (ps *ProgressScheduler) cancelLocked() {
	ps.gen++
	ps.delay.Stop()
	ps.repeat.Stop()
	ps.delay = nil
	ps.repeat = nil
	ps.cursor = 0
}

func (ps *ProgressScheduler) firstTick(gen uint64) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if gen != ps.gen {
		return
	}
	ps.emitLocked()
	ps.repeat = sched.Repeating(ps.every, func() { ps.tick(gen) })
}

func (ps *ProgressScheduler) tick(gen uint64) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if gen != ps.gen {
		return
	}
	ps.emitLocked()
}

func (ps *ProgressScheduler) emitLocked() {
	if len(ps.pool) == 0 || ps.emit == nil {
		return
	}
	line := ps.pool[ps.cursor%len(ps.pool)]
	ps.cursor++
	ps.emit(line)
}
