// Package indicator tells the drive team what the shooter is doing.  Sinks
// are fire-and-forget: SetState never blocks and never fails.
package indicator

import (
	"fmt"
	"sync"
)

type State int

const (
	Idle State = iota
	HandingOff
	ShooterLoaded
	IntakeFull
	Homing
	Shooting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case HandingOff:
		return "handing-off"
	case ShooterLoaded:
		return "shooter-loaded"
	case IntakeFull:
		return "intake-full"
	case Homing:
		return "homing"
	case Shooting:
		return "shooting"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

type Sink interface {
	SetState(s State)
}

// Log prints state changes.
type Log struct {
	lock sync.Mutex
	last State
	seen bool
}

func (l *Log) SetState(s State) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.seen && s == l.last {
		return
	}
	fmt.Println("Indicator:", s)
	l.last = s
	l.seen = true
}

// Multi fans a state out to several sinks.
type Multi []Sink

func (m Multi) SetState(s State) {
	for _, sink := range m {
		sink.SetState(s)
	}
}

// Latest remembers the most recent state.  Handy for the status screen.
type Latest struct {
	lock  sync.Mutex
	state State
}

func (l *Latest) SetState(s State) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.state = s
}

func (l *Latest) State() State {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.state
}
