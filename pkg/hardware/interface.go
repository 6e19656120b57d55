package hardware

import (
	"github.com/tigerbot-team/tigerbot/shooter/pkg/ina219"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/pca9685"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/shooter"
)

type Interface interface {
	// Shooter returns the motors and sensors for shooter.New.
	Shooter() shooter.Hardware

	// PivotCurrentSensor returns nil if no sensor is fitted.
	PivotCurrentSensor() ina219.Interface

	PWM() pca9685.Interface

	BattVolts() (float64, error)

	Shutdown()
}
