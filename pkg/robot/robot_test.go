package robot

import (
	"testing"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/config"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/indicator"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/joystick"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/rangefinder"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/sequence"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/timer"
)

func newTestRobot() (*Robot, *hardware.Dummy, *indicator.Latest) {
	hw := hardware.NewDummy()
	latest := &indicator.Latest{}
	r := New(Params{
		Config:    config.Default(),
		Hardware:  hw,
		Distance:  rangefinder.NewFixed(2),
		Indicator: latest,
		Clock:     timer.NewFake(),
	})
	return r, hw, latest
}

func press(button uint8) *joystick.Event {
	return &joystick.Event{Type: joystick.EventTypeButton, Number: button, Value: 1}
}

func TestButtonStartsHandoffThroughScheduler(t *testing.T) {
	r, hw, latest := newTestRobot()

	r.Operator.OnJoystickEvent(press(joystick.ButtonA))
	r.Scheduler.Tick()
	if r.Scheduler.Active() != "handoff" {
		t.Fatalf("Expected handoff to be running, got %q", r.Scheduler.Active())
	}
	if r.Shooter.Owner() != "handoff" {
		t.Fatalf("Expected handoff to own the shooter, got %q", r.Shooter.Owner())
	}
	if latest.State() != indicator.HandingOff {
		t.Fatalf("Expected handing-off indicator, got %v", latest.State())
	}

	hw.Sim.SideBeamBreak.SetIntact(false)
	r.Scheduler.Tick()
	if r.Scheduler.Active() != "" {
		t.Fatalf("Expected handoff to finish, still running %q", r.Scheduler.Active())
	}
	if latest.State() != indicator.ShooterLoaded {
		t.Fatalf("Expected shooter-loaded indicator, got %v", latest.State())
	}
}

func TestBackCancelsActiveRoutine(t *testing.T) {
	r, _, latest := newTestRobot()

	r.Operator.OnJoystickEvent(press(joystick.ButtonA))
	r.Scheduler.Tick()
	r.Operator.OnJoystickEvent(press(joystick.ButtonBack))
	r.Scheduler.Tick()

	if r.Scheduler.Active() != "" {
		t.Fatalf("Expected nothing running, got %q", r.Scheduler.Active())
	}
	if r.Shooter.Owner() != "" {
		t.Fatalf("Expected shooter to be released, owned by %q", r.Shooter.Owner())
	}
	if latest.State() != indicator.IntakeFull {
		t.Fatalf("Expected intake-full indicator after an interrupted handoff, got %v", latest.State())
	}
}

func TestNewRoutineReplacesRunningOne(t *testing.T) {
	r, _, _ := newTestRobot()

	r.Operator.OnJoystickEvent(press(joystick.ButtonA))
	r.Scheduler.Tick()
	r.Operator.OnJoystickEvent(press(joystick.ButtonY))
	r.Scheduler.Tick()

	if r.Scheduler.Active() != "manual-feed(5200rpm)" {
		t.Fatalf("Expected speaker shot to be running, got %q", r.Scheduler.Active())
	}
	sp := r.Shooter.Setpoints()
	if sp.Pivot != config.Default().Shooter.PivotActive.Radians() {
		t.Fatalf("Expected pivot at the speaker angle, got %v", sp.Pivot)
	}
}

func TestAmpButtonDeploysArm(t *testing.T) {
	r, _, _ := newTestRobot()
	cfg := config.Default().Shooter

	r.Operator.OnJoystickEvent(press(joystick.ButtonB))
	if sp := r.Shooter.Setpoints(); sp.Amp != cfg.AmpDeployed.Radians() {
		t.Fatalf("Expected amp deployed, got %v", sp.Amp)
	}
	r.Operator.OnJoystickEvent(&joystick.Event{Type: joystick.EventTypeButton, Number: joystick.ButtonB, Value: 0})
	if sp := r.Shooter.Setpoints(); sp.Amp != cfg.AmpHardstop.Radians() {
		t.Fatalf("Expected amp stowed, got %v", sp.Amp)
	}
}

func TestHomingConditionWithoutCurrentSensor(t *testing.T) {
	cfg := config.Default().Homing
	cfg.CurrentLimitAmps = 5
	cond := HomingCondition(cfg, hardware.NewDummy(), timer.NewFake())
	conds, ok := cond.(sequence.AnyCondition)
	if !ok {
		t.Fatalf("Expected an AnyCondition, got %T", cond)
	}
	if len(conds) != 1 {
		t.Fatalf("Expected only the stall condition, got %d conditions", len(conds))
	}
}
