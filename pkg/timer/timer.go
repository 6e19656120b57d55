// Package timer provides the stopwatches the firing sequences use to measure
// settle and fire windows.  Time comes from a Clock so that tests can step it.
package timer

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Real is the wall clock.
var Real Clock = realClock{}

// Fake is a Clock that only moves when told to.
type Fake struct {
	lock sync.Mutex
	now  time.Time
}

func NewFake() *Fake {
	return &Fake{now: time.Unix(1700000000, 0)}
}

func (f *Fake) Now() time.Time {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.now
}

func (f *Fake) Advance(d time.Duration) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.now = f.now.Add(d)
}

// Timer is a resettable stopwatch.  A stopped timer holds its accumulated
// time; Reset zeroes it without changing whether it is running.
type Timer struct {
	clock Clock

	running     bool
	startTime   time.Time
	accumulated time.Duration
}

func New(clock Clock) *Timer {
	if clock == nil {
		clock = Real
	}
	return &Timer{clock: clock}
}

// Start begins timing.  Starting a running timer has no effect.
func (t *Timer) Start() {
	if t.running {
		return
	}
	t.startTime = t.clock.Now()
	t.running = true
}

func (t *Timer) Stop() {
	if !t.running {
		return
	}
	t.accumulated += t.clock.Now().Sub(t.startTime)
	t.running = false
}

func (t *Timer) Reset() {
	t.accumulated = 0
	t.startTime = t.clock.Now()
}

// Restart is Reset followed by Start.
func (t *Timer) Restart() {
	t.Reset()
	t.Start()
}

func (t *Timer) Running() bool {
	return t.running
}

func (t *Timer) Elapsed() time.Duration {
	if t.running {
		return t.accumulated + t.clock.Now().Sub(t.startTime)
	}
	return t.accumulated
}

// Get returns the elapsed time in seconds.
func (t *Timer) Get() float64 {
	return t.Elapsed().Seconds()
}

// HasElapsed reports whether strictly more than d has been timed.
func (t *Timer) HasElapsed(d time.Duration) bool {
	return t.Elapsed() > d
}
