package sequence

import (
	"fmt"
	"math"
	"time"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/indicator"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/ina219"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/shooter"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/timer"
)

// Condition decides when the pivot has reached its hard stop.
type Condition interface {
	// Reset is called as homing starts.
	Reset()
	// Reached is polled once per tick while homing.
	Reached(s *shooter.Shooter) bool
}

// ConditionFunc adapts a plain function, for example a limit switch.
type ConditionFunc func() bool

func (f ConditionFunc) Reset() {}

func (f ConditionFunc) Reached(*shooter.Shooter) bool {
	return f()
}

// StallCondition fires once the pivot has been driven for at least MinDrive
// and has then read slower than StallVelocity (rad/s) for StallTicks ticks in
// a row.
type StallCondition struct {
	MinDrive      time.Duration
	StallVelocity float64
	StallTicks    int

	timer   *timer.Timer
	stalled int
}

func NewStallCondition(minDrive time.Duration, stallVelocity float64, stallTicks int, clock timer.Clock) *StallCondition {
	return &StallCondition{
		MinDrive:      minDrive,
		StallVelocity: stallVelocity,
		StallTicks:    stallTicks,
		timer:         timer.New(clock),
	}
}

func (c *StallCondition) Reset() {
	c.stalled = 0
	c.timer.Restart()
}

func (c *StallCondition) Reached(s *shooter.Shooter) bool {
	if !c.timer.HasElapsed(c.MinDrive) {
		return false
	}
	if math.Abs(s.PivotVelocity()) < c.StallVelocity {
		c.stalled++
	} else {
		c.stalled = 0
	}
	return c.stalled >= c.StallTicks
}

// CurrentCondition fires when the pivot motor's supply current spikes above
// LimitAmps, which happens as soon as it pushes against the stop.
type CurrentCondition struct {
	Sensor    ina219.Interface
	LimitAmps float64
}

func (c *CurrentCondition) Reset() {}

func (c *CurrentCondition) Reached(*shooter.Shooter) bool {
	amps, err := c.Sensor.ReadCurrent()
	if err != nil {
		fmt.Println("Seq: homing current read failed:", err)
		return false
	}
	return math.Abs(amps) > c.LimitAmps
}

// AnyCondition fires when any of its members does.
type AnyCondition []Condition

func (a AnyCondition) Reset() {
	for _, c := range a {
		c.Reset()
	}
}

func (a AnyCondition) Reached(s *shooter.Shooter) bool {
	reached := false
	// Poll every member so stall counters keep counting.
	for _, c := range a {
		if c.Reached(s) {
			reached = true
		}
	}
	return reached
}

// Homing drives the pivot slowly onto its hard stop and makes that position
// the pivot's zero.
type Homing struct {
	shooter   *shooter.Shooter
	condition Condition
	indicator indicator.Sink

	// Timeout gives up if the stop is never detected.  Zero means never.
	Timeout time.Duration
	timer   *timer.Timer

	handle  *shooter.Handle
	reached bool
}

func NewHoming(s *shooter.Shooter, condition Condition, ind indicator.Sink, timeout time.Duration, clock timer.Clock) *Homing {
	return &Homing{
		shooter:   s,
		condition: condition,
		indicator: ind,
		Timeout:   timeout,
		timer:     timer.New(clock),
	}
}

func (h *Homing) Name() string {
	return "homing"
}

func (h *Homing) Start() {
	h.handle = h.shooter.Acquire(h.Name())
	h.reached = false
	h.condition.Reset()
	h.timer.Restart()
	h.handle.SetHoming(true)
	setIndicator(h.indicator, indicator.Homing)
}

func (h *Homing) Step() {
	if h.condition.Reached(h.shooter) {
		h.reached = true
	}
}

func (h *Homing) IsDone() bool {
	if h.reached {
		return true
	}
	if h.Timeout > 0 && h.timer.HasElapsed(h.Timeout) {
		fmt.Printf("Seq: homing timed out after %v\n", h.Timeout)
		return true
	}
	return false
}

func (h *Homing) Stop(interrupted bool) {
	if h.handle == nil {
		return
	}
	h.handle.SetHoming(false)
	h.handle.ZeroPivot()
	h.handle.Release()
	h.handle = nil
	h.timer.Stop()
	fmt.Printf("Seq: homing finished, interrupted=%v stop found=%v\n", interrupted, h.reached)
	setIndicator(h.indicator, indicator.Idle)
}
