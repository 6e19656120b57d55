package sequence

import (
	"fmt"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/indicator"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/shooter"
)

// Handoff takes a ball from the intake: it lowers the pivot to the intake,
// runs the feeder in and waits for the side beam-break.  Whether it finishes
// or is interrupted it stops the feeder and stows the pivot.
type Handoff struct {
	shooter   *shooter.Shooter
	indicator indicator.Sink

	handle *shooter.Handle
}

func NewHandoff(s *shooter.Shooter, ind indicator.Sink) *Handoff {
	return &Handoff{
		shooter:   s,
		indicator: ind,
	}
}

func (h *Handoff) Name() string {
	return "handoff"
}

func (h *Handoff) Start() {
	cfg := h.shooter.Config()
	h.handle = h.shooter.Acquire(h.Name())
	h.handle.SetPivotSetpoint(cfg.PivotHandoff.Radians())
	h.handle.SetFeederSetpoint(cfg.FeederIntakeRPM)
	h.handle.SetFlywheelSetpoint(0, 0)
	setIndicator(h.indicator, indicator.HandingOff)
}

func (h *Handoff) Step() {}

func (h *Handoff) IsDone() bool {
	return h.shooter.Loaded()
}

func (h *Handoff) Stop(interrupted bool) {
	if h.handle == nil {
		return
	}
	cfg := h.shooter.Config()
	h.handle.SetFeederSetpoint(cfg.FeederHoldRPM)
	h.handle.SetPivotSetpoint(cfg.PivotStow.Radians())
	h.handle.Release()
	h.handle = nil

	loaded := h.shooter.Loaded()
	fmt.Printf("Seq: handoff finished, interrupted=%v loaded=%v\n", interrupted, loaded)
	if loaded {
		setIndicator(h.indicator, indicator.ShooterLoaded)
	} else {
		setIndicator(h.indicator, indicator.IntakeFull)
	}
}
