// Package scheduler runs the shooter's control loop.  Each tick it updates
// the shooter and then steps the one active routine.  Starting a routine
// interrupts the one that was running, and its Stop runs before the new
// routine's Start.
package scheduler

import (
	"context"
	"fmt"
	"time"
)

// Sequence is a routine that takes over the shooter for a while.
type Sequence interface {
	Name() string
	Start()
	Step()
	IsDone() bool
	// Stop runs exactly once per Start.  interrupted is true if the
	// routine was cancelled or replaced before it finished.
	Stop(interrupted bool)
}

// Ticker is the subsystem updated at the start of every tick.
type Ticker interface {
	Tick()
}

// Stopper is optionally implemented by the subsystem to park its motors
// when the loop exits.
type Stopper interface {
	Stop()
}

type request struct {
	seq    Sequence
	cancel bool
}

type Scheduler struct {
	subsystem Ticker

	// requests carries Schedule/Cancel calls from other goroutines into the
	// loop.  They are applied at the start of the next tick.
	requests chan request

	active Sequence
}

func New(subsystem Ticker) *Scheduler {
	return &Scheduler{
		subsystem: subsystem,
		requests:  make(chan request, 8),
	}
}

// Schedule queues seq to replace the active routine at the next tick.  It is
// safe to call from any goroutine.
func (s *Scheduler) Schedule(seq Sequence) {
	s.enqueue(request{seq: seq})
}

// Cancel queues an interruption of the active routine.
func (s *Scheduler) Cancel() {
	s.enqueue(request{cancel: true})
}

func (s *Scheduler) enqueue(r request) {
	select {
	case s.requests <- r:
	default:
		fmt.Println("Sched: request queue full, dropping request")
	}
}

// Active returns the name of the running routine, or "".  Only meaningful on
// the loop goroutine.
func (s *Scheduler) Active() string {
	if s.active == nil {
		return ""
	}
	return s.active.Name()
}

// Tick runs one control period: pending requests, the subsystem update, and
// then one step of the active routine.
func (s *Scheduler) Tick() {
	s.drainRequests()

	s.subsystem.Tick()

	if s.active == nil {
		return
	}
	s.active.Step()
	if s.active.IsDone() {
		fmt.Printf("Sched: %s done\n", s.active.Name())
		s.active.Stop(false)
		s.active = nil
	}
}

func (s *Scheduler) drainRequests() {
	for {
		select {
		case r := <-s.requests:
			if r.cancel {
				s.interrupt()
			} else {
				s.start(r.seq)
			}
		default:
			return
		}
	}
}

// discardRequests empties the queue without starting anything.
func (s *Scheduler) discardRequests() {
	for {
		select {
		case r := <-s.requests:
			if r.seq != nil {
				fmt.Printf("Sched: shutting down, not starting %s\n", r.seq.Name())
			}
		default:
			return
		}
	}
}

func (s *Scheduler) interrupt() {
	if s.active == nil {
		return
	}
	fmt.Printf("Sched: interrupting %s\n", s.active.Name())
	s.active.Stop(true)
	s.active = nil
}

func (s *Scheduler) start(seq Sequence) {
	s.interrupt()
	fmt.Printf("Sched: starting %s\n", seq.Name())
	s.active = seq
	seq.Start()
}

// Loop ticks every period until the context is cancelled, then interrupts
// the active routine and stops the subsystem.  Routines still queued at that
// point are never started.
func (s *Scheduler) Loop(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	overruns := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Println("Sched: context done, shutting down")
			s.discardRequests()
			s.interrupt()
			if st, ok := s.subsystem.(Stopper); ok {
				st.Stop()
			}
			return
		case <-ticker.C:
			start := time.Now()
			s.Tick()
			if time.Since(start) > period {
				overruns++
				if overruns%50 == 1 {
					fmt.Printf("Sched: tick overran %v (%d overruns)\n", period, overruns)
				}
			}
		}
	}
}
