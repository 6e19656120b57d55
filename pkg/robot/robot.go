// Package robot assembles the shooter, its routines and the operator
// controls on top of a set of hardware.
package robot

import (
	"github.com/tigerbot-team/tigerbot/shooter/pkg/config"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/indicator"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/operator"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/scheduler"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/sequence"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/shooter"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/timer"
)

type Robot struct {
	Shooter   *shooter.Shooter
	Scheduler *scheduler.Scheduler
	Operator  *operator.Operator
	Routines  operator.Routines
}

// Params are the collaborators the routines need besides the hardware.
// Telemetry and Indicator may be nil.
type Params struct {
	Config    config.Config
	Hardware  hardware.Interface
	Distance  sequence.DistanceSource
	Indicator indicator.Sink
	Telemetry shooter.Telemetry
	Clock     timer.Clock
}

func New(p Params) *Robot {
	if p.Clock == nil {
		p.Clock = timer.Real
	}
	cfg := p.Config
	s := shooter.New(p.Hardware.Shooter(), cfg.Shooter, p.Telemetry)
	table := cfg.ShootingTable()
	homingCondition := HomingCondition(cfg.Homing, p.Hardware, p.Clock)

	r := &Robot{
		Shooter:   s,
		Scheduler: scheduler.New(s),
	}
	r.Routines = operator.Routines{
		Homing: func() scheduler.Sequence {
			return sequence.NewHoming(s, homingCondition, p.Indicator, cfg.Homing.Timeout, p.Clock)
		},
		Handoff: func() scheduler.Sequence {
			return sequence.NewHandoff(s, p.Indicator)
		},
		ManualFeed: func(speed, pivot float64) scheduler.Sequence {
			return sequence.NewManualFeed(s, speed, pivot, p.Indicator, p.Clock)
		},
		AutonShoot: func() scheduler.Sequence {
			return sequence.NewAutonShoot(s, p.Distance, table, p.Indicator, p.Clock)
		},
	}
	r.Operator = operator.New(r.Scheduler, s, r.Routines, cfg)
	return r
}

// HomingCondition detects the pivot's hard stop by stall and, when a current
// sensor is fitted and a limit is configured, by current draw.
func HomingCondition(cfg config.Homing, hw hardware.Interface, clock timer.Clock) sequence.Condition {
	cond := sequence.AnyCondition{
		sequence.NewStallCondition(cfg.MinDrive, cfg.StallVelocity, cfg.StallTicks, clock),
	}
	if sensor := hw.PivotCurrentSensor(); sensor != nil && cfg.CurrentLimitAmps > 0 {
		cond = append(cond, &sequence.CurrentCondition{Sensor: sensor, LimitAmps: cfg.CurrentLimitAmps})
	}
	return cond
}
