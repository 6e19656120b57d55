package sequence

import (
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/config"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/indicator"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/lookup"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/shooter"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/timer"
)

const tick = 20 * time.Millisecond

type recordingSink struct {
	states []indicator.State
}

func (r *recordingSink) SetState(s indicator.State) {
	r.states = append(r.states, s)
}

type fixedDistance float64

func (f fixedDistance) Distance() float64 {
	return float64(f)
}

type rig struct {
	t     *testing.T
	cfg   config.Shooter
	hw    *shooter.DummyHardware
	s     *shooter.Shooter
	clock *timer.Fake
}

func newRig(t *testing.T) *rig {
	cfg := config.Default().Shooter
	hw := shooter.NewDummyHardware()
	return &rig{
		t:     t,
		cfg:   cfg,
		hw:    hw,
		s:     shooter.New(hw.Hardware(), cfg, nil),
		clock: timer.NewFake(),
	}
}

// step runs one control period the way the scheduler does.
func (r *rig) step(seq interface{ Step() }) {
	r.clock.Advance(tick)
	r.s.Tick()
	seq.Step()
}

// holdPivotAt puts the simulated pivot at rad radians.
func (r *rig) holdPivotAt(rad float64) {
	r.hw.Pivot.SetState(rad/(2*math.Pi*r.cfg.Pivot.Gearing), 0)
}

func (r *rig) holdFlywheelsAt(left, right float64) {
	r.hw.LeftFlywheel.SetState(0, left/r.cfg.LeftFlywheel.Gearing)
	r.hw.RightFlywheel.SetState(0, right/r.cfg.RightFlywheel.Gearing)
}

func TestHandoffFinishesWhenLoaded(t *testing.T) {
	r := newRig(t)
	ind := &recordingSink{}
	h := NewHandoff(r.s, ind)

	h.Start()
	sp := r.s.Setpoints()
	if sp.Pivot != r.cfg.PivotHandoff.Radians() || sp.Feeder != r.cfg.FeederIntakeRPM {
		t.Fatalf("Unexpected setpoints on start %+v", sp)
	}
	if sp.LeftFlywheel != 0 || sp.RightFlywheel != 0 {
		t.Fatalf("Expected flywheels stopped, got %+v", sp)
	}

	for i := 0; i < 10; i++ {
		r.step(h)
		if h.IsDone() {
			t.Fatal("Finished before the ball arrived")
		}
	}

	r.hw.SideBeamBreak.SetIntact(false)
	r.step(h)
	if !h.IsDone() {
		t.Fatal("Expected to finish on the tick the ball arrived")
	}
	h.Stop(false)
	h.Stop(false)

	sp = r.s.Setpoints()
	if sp.Feeder != r.cfg.FeederHoldRPM || sp.Pivot != r.cfg.PivotStow.Radians() {
		t.Fatalf("Unexpected setpoints after stop %+v", sp)
	}
	want := []indicator.State{indicator.HandingOff, indicator.ShooterLoaded}
	if len(ind.states) != len(want) || ind.states[0] != want[0] || ind.states[1] != want[1] {
		t.Fatalf("Expected indicator states %v, got %v", want, ind.states)
	}
	if r.s.Owner() != "" {
		t.Fatalf("Expected the handle to be released, owner is %q", r.s.Owner())
	}
}

func TestHandoffInterruptedStillStopsFeeder(t *testing.T) {
	r := newRig(t)
	ind := &recordingSink{}
	h := NewHandoff(r.s, ind)
	h.Start()
	r.step(h)
	h.Stop(true)

	if sp := r.s.Setpoints(); sp.Feeder != r.cfg.FeederHoldRPM || sp.Pivot != r.cfg.PivotStow.Radians() {
		t.Fatalf("Interrupted handoff left setpoints %+v", sp)
	}
	if last := ind.states[len(ind.states)-1]; last != indicator.IntakeFull {
		t.Fatalf("Expected intake-full indicator, got %v", last)
	}
}

// armManualFeed runs f until it starts feeding.
func armManualFeed(r *rig, f *ManualFeed) {
	for i := 0; i < 50; i++ {
		r.step(f)
		if r.s.Setpoints().Feeder == r.cfg.FeederFeedRPM {
			return
		}
	}
	r.t.Fatal("Manual feed never armed")
}

func TestManualFeedFireTimerResetsOnRegression(t *testing.T) {
	r := newRig(t)
	pivot := r.cfg.PivotActive.Radians()
	f := NewManualFeed(r.s, 3000, pivot, nil, r.clock)
	r.holdPivotAt(pivot)
	r.holdFlywheelsAt(3000, 3000)
	r.hw.SideBeamBreak.SetIntact(false)

	f.Start()
	armManualFeed(r, f)
	if f.FireTime() != 0 {
		t.Fatalf("Fire timer should start from zero, got %v", f.FireTime())
	}

	for i := 0; i < 12; i++ {
		r.step(f)
	}
	if f.FireTime() != 240*time.Millisecond {
		t.Fatalf("Expected 240ms of firing, got %v", f.FireTime())
	}

	// Right flywheel drops out.
	r.holdFlywheelsAt(3000, 1000)
	r.step(f)
	if f.FireTime() != 0 {
		t.Fatalf("Expected the fire timer to reset to zero, got %v", f.FireTime())
	}
	r.clock.Advance(time.Second)
	if f.FireTime() != 0 || f.IsDone() {
		t.Fatalf("Fire timer should stay at zero until re-armed, got %v", f.FireTime())
	}
}

func TestManualFeedCompletes(t *testing.T) {
	r := newRig(t)
	pivot := r.cfg.PivotAmp.Radians()
	f := NewManualFeed(r.s, 1000, pivot, nil, r.clock)
	r.holdPivotAt(pivot)
	r.holdFlywheelsAt(1000, 1000)
	r.hw.SideBeamBreak.SetIntact(false)

	f.Start()
	if r.s.Setpoints().Pivot != pivot {
		t.Fatalf("Expected pivot setpoint on start")
	}
	armManualFeed(r, f)
	for i := 0; i < 20; i++ {
		r.step(f)
	}
	if f.IsDone() {
		t.Fatal("Should not finish while the ball is still loaded")
	}

	r.hw.SideBeamBreak.SetIntact(true)
	r.step(f)
	if !f.IsDone() {
		t.Fatal("Expected to finish once the ball has gone")
	}
	f.Stop(false)

	sp := r.s.Setpoints()
	if sp.Feeder != r.cfg.FeederHoldRPM || sp.Pivot != r.cfg.PivotStow.Radians() {
		t.Fatalf("Unexpected setpoints after shot %+v", sp)
	}
	if sp.LeftFlywheel != r.cfg.FlywheelStaticRPM || sp.RightFlywheel != r.cfg.FlywheelStaticRPM {
		t.Fatalf("Expected flywheels left at idle speed, got %+v", sp)
	}
}

func TestManualFeedWaitsForSettle(t *testing.T) {
	r := newRig(t)
	pivot := r.cfg.PivotActive.Radians()
	f := NewManualFeed(r.s, 3000, pivot, nil, r.clock)
	r.holdPivotAt(pivot)
	r.holdFlywheelsAt(3000, 3000)

	f.Start()
	for i := 0; i < 12; i++ {
		r.step(f)
		if r.s.Setpoints().Feeder == r.cfg.FeederFeedRPM {
			t.Fatalf("Fed after only %v", time.Duration(i+1)*tick)
		}
	}
}

func TestAutonShootLeavesFlywheelsSpinning(t *testing.T) {
	r := newRig(t)
	table := lookup.NewTable(
		lookup.Point{Distance: 1, Config: lookup.NewShootingConfiguration(1.0, 3500, 3000)},
		lookup.Point{Distance: 3, Config: lookup.NewShootingConfiguration(0.6, 4500, 4000)},
	)
	want := table.Lookup(2)
	a := NewAutonShoot(r.s, fixedDistance(2), table, nil, r.clock)

	r.holdPivotAt(want.PivotAngle())
	r.holdFlywheelsAt(want.LeftSpeed(), want.RightSpeed())
	r.hw.SideBeamBreak.SetIntact(false)

	a.Start()
	fed := false
	for i := 0; i < 50 && !fed; i++ {
		r.step(a)
		fed = r.s.Setpoints().Feeder == r.cfg.FeederFeedRPM
	}
	if !fed {
		t.Fatal("Auton shot never fed")
	}
	if a.IsDone() {
		t.Fatal("Should not finish while loaded")
	}

	r.hw.SideBeamBreak.SetIntact(true)
	for i := 0; i < 50 && !a.IsDone(); i++ {
		r.step(a)
	}
	if !a.IsDone() {
		t.Fatal("Auton shot never finished")
	}
	a.Stop(false)

	sp := r.s.Setpoints()
	if sp.LeftFlywheel != want.LeftSpeed() || sp.RightFlywheel != want.RightSpeed() {
		t.Fatalf("Flywheels changed on exit: %+v", sp)
	}
	if sp.Pivot != r.cfg.PivotHandoff.Radians() {
		t.Fatalf("Expected pivot at handoff, got %v", sp.Pivot)
	}
	if sp.Feeder != r.cfg.FeederHoldRPM {
		t.Fatalf("Expected feeder at hold, got %v", sp.Feeder)
	}
}

func TestAutonShootMinimumTime(t *testing.T) {
	r := newRig(t)
	table := lookup.NewTable(lookup.Point{Distance: 1, Config: lookup.NewShootingConfiguration(0.5, 3000, 3000)})
	a := NewAutonShoot(r.s, fixedDistance(4), table, nil, r.clock)
	a.Start()
	// Nothing loaded, but the shot must run for at least half a second.
	for i := 0; i < 25; i++ {
		r.step(a)
		if a.IsDone() {
			t.Fatalf("Finished after only %v", time.Duration(i+1)*tick)
		}
	}
	r.step(a)
	if !a.IsDone() {
		t.Fatal("Expected to finish after half a second with nothing loaded")
	}
}

func TestHomingZeroesPivot(t *testing.T) {
	r := newRig(t)
	reached := false
	ind := &recordingSink{}
	h := NewHoming(r.s, ConditionFunc(func() bool { return reached }), ind, 0, r.clock)

	r.hw.Pivot.SetState(-1.5, 0)
	h.Start()
	if !r.s.Homing() {
		t.Fatal("Expected homing to be set")
	}
	r.step(h)
	if r.hw.Pivot.Output() != r.cfg.HomingOutput {
		t.Fatalf("Expected homing drive %v, got %v", r.cfg.HomingOutput, r.hw.Pivot.Output())
	}
	if h.IsDone() {
		t.Fatal("Finished before the stop was found")
	}

	reached = true
	r.step(h)
	if !h.IsDone() {
		t.Fatal("Expected to finish")
	}
	h.Stop(false)
	if r.s.Homing() {
		t.Fatal("Expected homing to be cleared")
	}
	if p := r.s.Status().Pivot.Position; math.Abs(p) > 1e-9 {
		t.Fatalf("Expected pivot zeroed, got %v", p)
	}
	if ind.states[0] != indicator.Homing {
		t.Fatalf("Expected homing indicator, got %v", ind.states)
	}
}

func TestHomingTimeout(t *testing.T) {
	r := newRig(t)
	h := NewHoming(r.s, ConditionFunc(func() bool { return false }), nil, time.Second, r.clock)
	h.Start()
	for i := 0; i < 50; i++ {
		r.step(h)
	}
	if h.IsDone() {
		t.Fatal("Timed out early")
	}
	r.step(h)
	if !h.IsDone() {
		t.Fatal("Expected to time out after a second")
	}
	h.Stop(false)
	if r.s.Homing() {
		t.Fatal("Expected homing to be cleared after timeout")
	}
}

func TestStallCondition(t *testing.T) {
	r := newRig(t)
	c := NewStallCondition(100*time.Millisecond, 0.02, 3, r.clock)
	c.Reset()

	// Not yet driven long enough, even though it isn't moving.
	if c.Reached(r.s) {
		t.Fatal("Reached before the minimum drive time")
	}

	r.clock.Advance(200 * time.Millisecond)
	r.hw.Pivot.SetState(0, -500)
	for i := 0; i < 5; i++ {
		if c.Reached(r.s) {
			t.Fatal("Reached while the pivot was moving")
		}
	}

	r.hw.Pivot.SetState(0, 0)
	if c.Reached(r.s) || c.Reached(r.s) {
		t.Fatal("Reached before enough stalled ticks")
	}
	if !c.Reached(r.s) {
		t.Fatal("Expected to detect the stall on the third tick")
	}
}

type fakeCurrentSensor struct {
	amps float64
	err  error
}

func (f *fakeCurrentSensor) Configure(shuntOhms, maxCurrent float64) error { return nil }
func (f *fakeCurrentSensor) ReadBusVoltage() (float64, error)              { return 12, nil }
func (f *fakeCurrentSensor) ReadCurrent() (float64, error)                 { return f.amps, f.err }
func (f *fakeCurrentSensor) ReadPower() (float64, error)                   { return 12 * f.amps, nil }

func TestCurrentCondition(t *testing.T) {
	r := newRig(t)
	sensor := &fakeCurrentSensor{amps: 2}
	c := &CurrentCondition{Sensor: sensor, LimitAmps: 8}
	if c.Reached(r.s) {
		t.Fatal("Reached below the limit")
	}
	sensor.amps = -9
	if !c.Reached(r.s) {
		t.Fatal("Expected a reverse current spike to count")
	}
	sensor.err = errors.New("bus error")
	if c.Reached(r.s) {
		t.Fatal("A failed read should not count as reaching the stop")
	}
}

func TestAnyCondition(t *testing.T) {
	r := newRig(t)
	a, b := false, false
	c := AnyCondition{
		ConditionFunc(func() bool { return a }),
		ConditionFunc(func() bool { return b }),
	}
	c.Reset()
	if c.Reached(r.s) {
		t.Fatal("Neither condition reached")
	}
	b = true
	if !c.Reached(r.s) {
		t.Fatal("Expected the second condition to count")
	}
}
