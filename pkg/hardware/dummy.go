package hardware

import (
	"fmt"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/ina219"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/pca9685"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/shooter"
)

// Dummy is simulated hardware.  Sim gives access to the simulated motors
// and beam-breaks; the caller is responsible for stepping them.
type Dummy struct {
	Sim *shooter.DummyHardware
	pwm pca9685.Interface
}

var _ Interface = (*Dummy)(nil)

func NewDummy() *Dummy {
	return &Dummy{
		Sim: shooter.NewDummyHardware(),
		pwm: pca9685.Dummy(),
	}
}

func (d *Dummy) Shooter() shooter.Hardware {
	return d.Sim.Hardware()
}

func (d *Dummy) PivotCurrentSensor() ina219.Interface {
	return nil
}

func (d *Dummy) PWM() pca9685.Interface {
	return d.pwm
}

func (d *Dummy) BattVolts() (float64, error) {
	return 12.6, nil
}

func (d *Dummy) Shutdown() {
	fmt.Println("DHW: Shutdown")
	for _, m := range d.Sim.Motors() {
		_ = m.Set(0)
	}
}
