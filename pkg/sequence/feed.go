package sequence

import (
	"fmt"
	"time"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/indicator"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/shooter"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/timer"
)

// ManualFeed is an operator-triggered shot at a fixed flywheel speed and
// pivot angle.  The feeder only runs while the pivot and flywheels are at
// goal; if either drops out the fire timer starts again from zero.
type ManualFeed struct {
	shooter   *shooter.Shooter
	indicator indicator.Sink

	speed float64
	pivot float64

	settle *timer.Timer
	fire   *timer.Timer

	handle *shooter.Handle
}

// NewManualFeed returns a shot at speed RPM on both flywheels with the pivot
// at pivot radians.
func NewManualFeed(s *shooter.Shooter, speed, pivot float64, ind indicator.Sink, clock timer.Clock) *ManualFeed {
	return &ManualFeed{
		shooter:   s,
		indicator: ind,
		speed:     speed,
		pivot:     pivot,
		settle:    timer.New(clock),
		fire:      timer.New(clock),
	}
}

func (f *ManualFeed) Name() string {
	return fmt.Sprintf("manual-feed(%.0frpm)", f.speed)
}

func (f *ManualFeed) Start() {
	f.handle = f.shooter.Acquire(f.Name())
	f.fire.Stop()
	f.fire.Reset()
	f.settle.Restart()
	f.handle.SetPivotSetpoint(f.pivot)
}

func (f *ManualFeed) Step() {
	// Re-asserted every tick in case something else has changed them.
	f.handle.SetFlywheelSetpoint(f.speed, f.speed)

	if f.shooter.PivotAtGoal() && f.shooter.FlywheelAtGoal() && f.settle.HasElapsed(SettleTime) {
		if !f.fire.Running() {
			setIndicator(f.indicator, indicator.Shooting)
		}
		f.handle.SetFeederSetpoint(f.shooter.Config().FeederFeedRPM)
		f.fire.Start()
	} else {
		f.fire.Stop()
		f.fire.Reset()
	}
}

// FireTime returns how long the feeder has been running continuously.
func (f *ManualFeed) FireTime() time.Duration {
	return f.fire.Elapsed()
}

func (f *ManualFeed) IsDone() bool {
	return f.fire.HasElapsed(FireTime) && !f.shooter.Loaded()
}

func (f *ManualFeed) Stop(interrupted bool) {
	if f.handle == nil {
		return
	}
	cfg := f.shooter.Config()
	f.handle.SetFeederSetpoint(cfg.FeederHoldRPM)
	f.handle.SetPivotSetpoint(cfg.PivotStow.Radians())
	// Left spinning so the next shot doesn't have to spin up from rest.
	f.handle.SetFlywheelSetpoint(cfg.FlywheelStaticRPM, cfg.FlywheelStaticRPM)
	f.handle.Release()
	f.handle = nil
	f.fire.Stop()
	f.settle.Stop()
	fmt.Printf("Seq: %s finished, fed for %.2fs, interrupted=%v\n", f.Name(), f.fire.Get(), interrupted)
	setIndicator(f.indicator, indicator.Idle)
}
