// Package hardware opens the shooter's motor controllers and sensors.
package hardware

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/periph/host"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/beambreak"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/config"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/ina219"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/motor"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/pca9685"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/shooter"
)

// WatchdogTimeout stops the motors if the control loop stops talking to the
// Pico boards.
const WatchdogTimeout = 200 * time.Millisecond

type Hardware struct {
	picos        []*motor.PicoBLDC
	shooter      shooter.Hardware
	pivotCurrent ina219.Interface
	pwm          pca9685.Interface
}

var _ Interface = (*Hardware)(nil)

// Open opens every device named in the config.  Motors and beam-breaks are
// required; the current sensor and PWM board are optional and are skipped,
// with a warning, if they can't be opened.
func Open(cfg config.Config) (_ *Hardware, err error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialise periph host")
	}

	h := &Hardware{}
	defer func() {
		if err != nil {
			h.Shutdown()
		}
	}()

	hwCfg := cfg.Hardware
	for _, bus := range hwCfg.PicoBuses {
		p, err := motor.NewPicoBLDC(bus)
		if err != nil {
			return nil, err
		}
		h.picos = append(h.picos, p)
		if err := p.SetWatchdog(WatchdogTimeout); err != nil {
			return nil, errors.Wrapf(err, "failed to enable watchdog on %s", bus)
		}
	}

	if h.shooter.LeftFlywheel, err = h.channel(hwCfg.LeftFlywheelMotor); err != nil {
		return nil, err
	}
	if h.shooter.RightFlywheel, err = h.channel(hwCfg.RightFlywheelMotor); err != nil {
		return nil, err
	}
	if h.shooter.Feeder, err = h.channel(hwCfg.FeederMotor); err != nil {
		return nil, err
	}
	if h.shooter.Pivot, err = h.channel(hwCfg.PivotMotor); err != nil {
		return nil, err
	}
	if hwCfg.PivotFollowerMotor >= 0 {
		if h.shooter.PivotFollower, err = h.channel(hwCfg.PivotFollowerMotor); err != nil {
			return nil, err
		}
	}
	if h.shooter.Amp, err = h.channel(hwCfg.AmpMotor); err != nil {
		return nil, err
	}

	if h.shooter.BeamBreak, err = beambreak.Open(hwCfg.BeamBreakPin); err != nil {
		return nil, err
	}
	if h.shooter.SideBeamBreak, err = beambreak.Open(hwCfg.SideBeamBreakPin); err != nil {
		return nil, err
	}

	if hwCfg.PivotCurrentSensorAddr != 0 {
		h.pivotCurrent = openCurrentSensor(hwCfg)
	}

	h.pwm = openPWM(cfg.Indicator.PWMDevice)
	return h, nil
}

// channel maps a motor number onto a Pico board and output: four outputs per
// board, boards in the order they are listed.
func (h *Hardware) channel(n int) (motor.Motor, error) {
	board := n / motor.NumPicoChannels
	if n < 0 || board >= len(h.picos) {
		return nil, errors.Errorf("motor %d has no Pico board (%d configured)", n, len(h.picos))
	}
	return h.picos[board].Channel(n % motor.NumPicoChannels), nil
}

func openCurrentSensor(cfg config.Hardware) ina219.Interface {
	sensor, err := ina219.NewI2C(cfg.I2CBus, cfg.PivotCurrentSensorAddr)
	if err != nil {
		fmt.Println("HW: failed to open pivot current sensor; ignoring!", err)
		return nil
	}
	if err := sensor.Configure(cfg.ShuntOhms, cfg.MaxCurrentAmps); err != nil {
		fmt.Println("HW: failed to configure pivot current sensor; ignoring!", err)
		return nil
	}
	return sensor
}

func openPWM(device string) pca9685.Interface {
	pwm, err := pca9685.New(device)
	if err != nil {
		fmt.Println("HW: failed to open PWM board; using dummy.", err)
		return pca9685.Dummy()
	}
	return pwm
}

func (h *Hardware) Shooter() shooter.Hardware {
	return h.shooter
}

func (h *Hardware) PivotCurrentSensor() ina219.Interface {
	return h.pivotCurrent
}

func (h *Hardware) PWM() pca9685.Interface {
	return h.pwm
}

// BattVolts reads the battery voltage from the first Pico board.
func (h *Hardware) BattVolts() (float64, error) {
	if len(h.picos) == 0 {
		return 0, errors.New("no Pico boards")
	}
	return h.picos[0].BattVolts()
}

// Shutdown zeroes every motor and closes the boards.
func (h *Hardware) Shutdown() {
	for _, p := range h.picos {
		if err := p.Close(); err != nil {
			fmt.Println("HW: failed to close Pico board:", err)
		}
	}
	h.picos = nil
	if h.pwm != nil {
		_ = h.pwm.Close()
		h.pwm = nil
	}
}
