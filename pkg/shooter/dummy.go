package shooter

import (
	"context"
	"time"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/beambreak"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/motor"
)

// DummyHardware is a simulated shooter, for running without the robot.
type DummyHardware struct {
	LeftFlywheel  *motor.Dummy
	RightFlywheel *motor.Dummy
	Feeder        *motor.Dummy
	Pivot         *motor.Dummy
	PivotFollower *motor.Dummy
	Amp           *motor.Dummy

	BeamBreak     *beambreak.Fixed
	SideBeamBreak *beambreak.Fixed
}

func NewDummyHardware() *DummyHardware {
	d := &DummyHardware{
		LeftFlywheel:  motor.NewDummy("left-flywheel", 6000),
		RightFlywheel: motor.NewDummy("right-flywheel", 6000),
		Feeder:        motor.NewDummy("feeder", 6000),
		Pivot:         motor.NewDummy("pivot", 6000),
		PivotFollower: motor.NewDummy("pivot-follower", 6000),
		Amp:           motor.NewDummy("amp", 6000),
		BeamBreak:     &beambreak.Fixed{},
		SideBeamBreak: &beambreak.Fixed{},
	}
	// Pivot travel is roughly 0-90 degrees through a 100:1 gearbox, with the
	// hard stop a little below the zero the motor starts at.
	d.Pivot.MinRotations = -2
	d.Pivot.MaxRotations = 25
	// Flywheels are heavy; they spin up and coast down slowly.
	d.LeftFlywheel.TimeConstant = 2 * time.Second
	d.RightFlywheel.TimeConstant = 2 * time.Second
	d.BeamBreak.SetIntact(true)
	d.SideBeamBreak.SetIntact(true)
	return d
}

func (d *DummyHardware) Hardware() Hardware {
	return Hardware{
		LeftFlywheel:  d.LeftFlywheel,
		RightFlywheel: d.RightFlywheel,
		Feeder:        d.Feeder,
		Pivot:         d.Pivot,
		PivotFollower: d.PivotFollower,
		Amp:           d.Amp,
		BeamBreak:     d.BeamBreak,
		SideBeamBreak: d.SideBeamBreak,
	}
}

func (d *DummyHardware) Motors() []*motor.Dummy {
	return []*motor.Dummy{d.LeftFlywheel, d.RightFlywheel, d.Feeder, d.Pivot, d.PivotFollower, d.Amp}
}

// Step advances every simulated motor by dt.
func (d *DummyHardware) Step(dt time.Duration) {
	for _, m := range d.Motors() {
		m.Step(dt)
	}
}

// Simulate steps the motors in real time until the context is done.
func (d *DummyHardware) Simulate(ctx context.Context, period time.Duration) {
	motor.Simulate(ctx, period, d.Motors()...)
}
