// Package rangefinder supplies the distance from the robot to the speaker
// target.
package rangefinder

import (
	"math"
	"sync"
	"time"
)

type Source interface {
	// Distance returns metres.  It must not block.
	Distance() float64
}

// Fixed reports a distance set from outside, for example from the operator
// or a test.
type Fixed struct {
	lock     sync.Mutex
	distance float64
}

func NewFixed(d float64) *Fixed {
	return &Fixed{distance: d}
}

func (f *Fixed) Distance() float64 {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.distance
}

func (f *Fixed) Set(d float64) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.distance = d
}

// PinholeDistance estimates the distance to a target of known height from
// its apparent height in pixels.
func PinholeDistance(focalLengthPx, targetHeightM float64, heightPx int) (float64, bool) {
	if heightPx <= 0 || focalLengthPx <= 0 {
		return 0, false
	}
	return focalLengthPx * targetHeightM / float64(heightPx), true
}

// Tracker smooths a stream of distance observations and holds the last good
// value when the target is lost.  It is safe to read from one goroutine
// while another records.
type Tracker struct {
	// Alpha is the weight given to each new observation.
	Alpha float64

	lock     sync.Mutex
	distance float64
	seen     bool
	lastSeen time.Time
}

func NewTracker(fallback, alpha float64) *Tracker {
	return &Tracker{Alpha: alpha, distance: fallback}
}

func (t *Tracker) Record(d float64, now time.Time) {
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.seen {
		t.distance = d
		t.seen = true
	} else {
		t.distance += t.Alpha * (d - t.distance)
	}
	t.lastSeen = now
}

func (t *Tracker) Distance() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.distance
}

// Age returns how long ago the target was last seen, and false if it never
// has been.
func (t *Tracker) Age(now time.Time) (time.Duration, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.seen {
		return 0, false
	}
	return now.Sub(t.lastSeen), true
}
