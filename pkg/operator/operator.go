// Package operator maps the operator's controller onto shooter routines.
package operator

import (
	"fmt"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/config"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/joystick"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/scheduler"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/tunable"
)

// Scheduler is satisfied by *scheduler.Scheduler.
type Scheduler interface {
	Schedule(seq scheduler.Sequence)
	Cancel()
}

// AmpArm is satisfied by *shooter.Shooter.
type AmpArm interface {
	SetAmpDeployed(deployed bool)
}

// Routines builds a fresh routine for each button press.
type Routines struct {
	Homing     func() scheduler.Sequence
	Handoff    func() scheduler.Sequence
	ManualFeed func(speed, pivot float64) scheduler.Sequence
	AutonShoot func() scheduler.Sequence
}

// Operator turns controller events into routines.  RB homes the pivot, A
// hands off from the intake, Y takes a speaker shot at the trimmed speaker
// speed, X takes an amp shot, Start takes a ranged shot and Back cancels
// whatever is running.  Holding B deploys the amp arm.  The d-pad selects a
// trim with left/right and adjusts it with up/down.
type Operator struct {
	sched    Scheduler
	amp      AmpArm
	routines Routines
	cfg      config.Config

	Tunables   tunable.Tunables
	speakerRPM *tunable.Tunable
	ampRPM     *tunable.Tunable
}

func New(sched Scheduler, amp AmpArm, routines Routines, cfg config.Config) *Operator {
	o := &Operator{
		sched:    sched,
		amp:      amp,
		routines: routines,
		cfg:      cfg,
	}
	o.speakerRPM = o.Tunables.Create("speaker-rpm", cfg.Operator.SpeakerRPM, cfg.Operator.TrimStepRPM)
	o.ampRPM = o.Tunables.Create("amp-rpm", cfg.Operator.AmpRPM, cfg.Operator.TrimStepRPM)
	return o
}

func (o *Operator) SpeakerRPM() float64 {
	return o.speakerRPM.Get()
}

func (o *Operator) AmpRPM() float64 {
	return o.ampRPM.Get()
}

func (o *Operator) OnJoystickEvent(event *joystick.Event) {
	if event.Init {
		return
	}
	sh := o.cfg.Shooter
	switch {
	case event.Pressed(joystick.ButtonRB):
		o.sched.Schedule(o.routines.Homing())
	case event.Pressed(joystick.ButtonA):
		o.sched.Schedule(o.routines.Handoff())
	case event.Pressed(joystick.ButtonY):
		o.sched.Schedule(o.routines.ManualFeed(o.SpeakerRPM(), sh.PivotActive.Radians()))
	case event.Pressed(joystick.ButtonX):
		o.sched.Schedule(o.routines.ManualFeed(o.AmpRPM(), sh.PivotAmp.Radians()))
	case event.Pressed(joystick.ButtonStart):
		o.sched.Schedule(o.routines.AutonShoot())
	case event.Pressed(joystick.ButtonBack):
		fmt.Println("Operator: cancel")
		o.sched.Cancel()
	case event.Pressed(joystick.ButtonB):
		o.amp.SetAmpDeployed(true)
	case event.Released(joystick.ButtonB):
		o.amp.SetAmpDeployed(false)
	case event.Type == joystick.EventTypeAxis && event.Number == joystick.AxisDPadX:
		if event.Value > 0 {
			o.Tunables.SelectNext()
		} else if event.Value < 0 {
			o.Tunables.SelectPrev()
		}
	case event.Type == joystick.EventTypeAxis && event.Number == joystick.AxisDPadY:
		// Up is negative.
		if event.Value < 0 {
			o.Tunables.Current().Add(1)
		} else if event.Value > 0 {
			o.Tunables.Current().Add(-1)
		}
	}
}
