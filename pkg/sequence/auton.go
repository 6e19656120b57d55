package sequence

import (
	"fmt"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/indicator"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/lookup"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/shooter"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/timer"
)

// AutonShoot aims from the measured distance to the target and fires once
// everything is at goal.  It leaves the flywheels spinning at the last
// looked-up speed, ready for another shot.
type AutonShoot struct {
	shooter   *shooter.Shooter
	distance  DistanceSource
	table     *lookup.Table
	indicator indicator.Sink

	timer *timer.Timer

	handle  *shooter.Handle
	feeding bool
}

func NewAutonShoot(s *shooter.Shooter, distance DistanceSource, table *lookup.Table, ind indicator.Sink, clock timer.Clock) *AutonShoot {
	return &AutonShoot{
		shooter:   s,
		distance:  distance,
		table:     table,
		indicator: ind,
		timer:     timer.New(clock),
	}
}

func (a *AutonShoot) Name() string {
	return "auton-shoot"
}

func (a *AutonShoot) Start() {
	a.handle = a.shooter.Acquire(a.Name())
	a.feeding = false
	a.timer.Restart()
}

func (a *AutonShoot) Step() {
	d := a.distance.Distance()
	a.handle.SetShootingConfigSetpoints(a.table.Lookup(d))

	if a.timer.HasElapsed(AutonFeedDelay) && a.shooter.FlywheelAtGoal() && a.shooter.PivotAtGoalDeg(AutonPivotToleranceDeg) {
		if !a.feeding {
			fmt.Printf("Seq: auton shot at %.2fm\n", d)
			setIndicator(a.indicator, indicator.Shooting)
			a.feeding = true
		}
		a.handle.SetFeederSetpoint(a.shooter.Config().FeederFeedRPM)
	}
}

func (a *AutonShoot) IsDone() bool {
	return !a.shooter.Loaded() && a.timer.HasElapsed(AutonMinTime)
}

func (a *AutonShoot) Stop(interrupted bool) {
	if a.handle == nil {
		return
	}
	cfg := a.shooter.Config()
	a.handle.SetPivotSetpoint(cfg.PivotHandoff.Radians())
	a.handle.SetFeederSetpoint(cfg.FeederHoldRPM)
	a.handle.Release()
	a.handle = nil
	a.timer.Stop()
	fmt.Printf("Seq: auton shot finished after %.2fs, interrupted=%v\n", a.timer.Get(), interrupted)
	setIndicator(a.indicator, indicator.Idle)
}
