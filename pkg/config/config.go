// Package config holds the shooter's calibration constants.  Defaults are
// compiled in; a YAML file, if present, overrides any subset of them.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/actuator"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/angle"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/lookup"
)

const DefaultPath = "/cfg/shooter.yaml"

// Degrees is an angle written in degrees in the config file.
type Degrees float64

func (d Degrees) Radians() float64 {
	return angle.ToRadians(float64(d))
}

type Config struct {
	LoopPeriod time.Duration `yaml:"loopPeriod"`

	Shooter   Shooter       `yaml:"shooter"`
	Homing    Homing        `yaml:"homing"`
	Table     []TablePoint  `yaml:"table"`
	Hardware  Hardware      `yaml:"hardware"`
	Indicator Indicator     `yaml:"indicator"`
	Camera    Camera        `yaml:"camera"`
	Operator  OperatorInput `yaml:"operator"`
}

type Shooter struct {
	LeftFlywheel  actuator.Config `yaml:"leftFlywheel"`
	RightFlywheel actuator.Config `yaml:"rightFlywheel"`
	Feeder        actuator.Config `yaml:"feeder"`
	Pivot         actuator.Config `yaml:"pivot"`
	Amp           actuator.Config `yaml:"amp"`

	// Named feeder speeds, RPM.
	FeederHoldRPM   float64 `yaml:"feederHoldRPM"`
	FeederBumpRPM   float64 `yaml:"feederBumpRPM"`
	FeederFeedRPM   float64 `yaml:"feederFeedRPM"`
	FeederIntakeRPM float64 `yaml:"feederIntakeRPM"`

	// FlywheelStaticRPM is the idle speed the flywheels are left at after a
	// manual shot.
	FlywheelStaticRPM float64 `yaml:"flywheelStaticRPM"`

	PivotStow    Degrees `yaml:"pivotStowDeg"`
	PivotHandoff Degrees `yaml:"pivotHandoffDeg"`
	PivotActive  Degrees `yaml:"pivotActiveDeg"`
	PivotAmp     Degrees `yaml:"pivotAmpDeg"`

	AmpHardstop Degrees `yaml:"ampHardstopDeg"`
	AmpDeployed Degrees `yaml:"ampDeployedDeg"`

	// HomingOutput is the raw pivot output used while driving down onto the
	// lower hard stop.  Pivot angles are measured up from that stop.
	HomingOutput float64 `yaml:"homingOutput"`
}

type Homing struct {
	// Stall detection: the pivot must have been driven for at least MinDrive
	// and then read below StallVelocity (rad/s) for StallTicks ticks in a row.
	MinDrive      time.Duration `yaml:"minDrive"`
	StallVelocity float64       `yaml:"stallVelocity"`
	StallTicks    int           `yaml:"stallTicks"`

	// CurrentLimitAmps, when non-zero and a current sensor is fitted, ends
	// homing as soon as the pivot motor current exceeds it.
	CurrentLimitAmps float64 `yaml:"currentLimitAmps"`

	// Timeout gives up homing if no stop is detected.  Zero disables it.
	Timeout time.Duration `yaml:"timeout"`
}

type TablePoint struct {
	DistanceM float64 `yaml:"distanceM"`
	Pivot     Degrees `yaml:"pivotDeg"`
	LeftRPM   float64 `yaml:"leftRPM"`
	RightRPM  float64 `yaml:"rightRPM"`
}

type Hardware struct {
	I2CBus string `yaml:"i2cBus"`

	// PicoBLDC channel assignments; two boards give eight outputs.  Set
	// PivotFollowerMotor to -1 on a single-motor pivot.
	PicoBuses          []string `yaml:"picoBuses"`
	LeftFlywheelMotor  int      `yaml:"leftFlywheelMotor"`
	RightFlywheelMotor int      `yaml:"rightFlywheelMotor"`
	FeederMotor        int      `yaml:"feederMotor"`
	PivotMotor         int      `yaml:"pivotMotor"`
	PivotFollowerMotor int      `yaml:"pivotFollowerMotor"`
	AmpMotor           int      `yaml:"ampMotor"`

	BeamBreakPin     string `yaml:"beamBreakPin"`
	SideBeamBreakPin string `yaml:"sideBeamBreakPin"`

	// INA219 on the pivot motor supply, used for homing.
	PivotCurrentSensorAddr int     `yaml:"pivotCurrentSensorAddr"`
	ShuntOhms              float64 `yaml:"shuntOhms"`
	MaxCurrentAmps         float64 `yaml:"maxCurrentAmps"`
}

type Indicator struct {
	SoundDir string `yaml:"soundDir"`

	// PCA9685 PWM channels driving the RGB status LED.
	PWMDevice string `yaml:"pwmDevice"`
	RedPWM    int    `yaml:"redPWM"`
	GreenPWM  int    `yaml:"greenPWM"`
	BluePWM   int    `yaml:"bluePWM"`
}

type Camera struct {
	Device int `yaml:"device"`
	FPS    int `yaml:"fps"`

	// Pinhole model: distance = FocalLengthPx * TargetHeightM / heightPx.
	FocalLengthPx float64 `yaml:"focalLengthPx"`
	TargetHeightM float64 `yaml:"targetHeightM"`

	HueMin byte `yaml:"hueMin"`
	HueMax byte `yaml:"hueMax"`
	SatMin byte `yaml:"satMin"`
	SatMax byte `yaml:"satMax"`
	ValMin byte `yaml:"valMin"`
	ValMax byte `yaml:"valMax"`

	// FallbackDistanceM is reported until the target has been seen.
	FallbackDistanceM float64 `yaml:"fallbackDistanceM"`
}

type OperatorInput struct {
	// Flywheel speeds for the two manual shots.
	SpeakerRPM float64 `yaml:"speakerRPM"`
	AmpRPM     float64 `yaml:"ampRPM"`
	// TrimStepRPM is the d-pad adjustment step for the speaker speed.
	TrimStepRPM float64 `yaml:"trimStepRPM"`
}

func Default() Config {
	const period = 20 * time.Millisecond
	flywheel := actuator.Config{
		Mode:      actuator.VelocityBangBang,
		Gearing:   1,
		Tolerance: 150,
		Period:    period,
	}
	return Config{
		LoopPeriod: period,
		Shooter: Shooter{
			LeftFlywheel:  flywheel,
			RightFlywheel: flywheel,
			Feeder: actuator.Config{
				Mode:      actuator.VelocityFlywheel,
				Gearing:   1.0 / 3,
				KP:        0.0002,
				KFF:       1.0 / 1900,
				Tolerance: 100,
				Period:    period,
			},
			Pivot: actuator.Config{
				Mode:       actuator.PositionServo,
				Rotational: true,
				Gearing:    1.0 / 100,
				KP:         1.2,
				KD:         0.02,
				Tolerance:  Degrees(1.5).Radians(),
				Period:     period,
			},
			Amp: actuator.Config{
				Mode:       actuator.PositionServo,
				Rotational: true,
				Gearing:    1.0 / 25,
				KP:         0.8,
				Tolerance:  Degrees(3).Radians(),
				Period:     period,
			},

			FeederHoldRPM:   0,
			FeederBumpRPM:   300,
			FeederFeedRPM:   3000,
			FeederIntakeRPM: 1500,

			FlywheelStaticRPM: 2500,

			PivotStow:    5,
			PivotHandoff: 18,
			PivotActive:  38,
			PivotAmp:     62,

			AmpHardstop: 0,
			AmpDeployed: 100,

			HomingOutput: -0.05,
		},
		Homing: Homing{
			MinDrive:      250 * time.Millisecond,
			StallVelocity: 0.02,
			StallTicks:    5,
			Timeout:       4 * time.Second,
		},
		Table: []TablePoint{
			{DistanceM: 1.2, Pivot: 55, LeftRPM: 3500, RightRPM: 3000},
			{DistanceM: 2.0, Pivot: 45, LeftRPM: 4000, RightRPM: 3500},
			{DistanceM: 3.0, Pivot: 36, LeftRPM: 4600, RightRPM: 4000},
			{DistanceM: 4.0, Pivot: 30, LeftRPM: 5200, RightRPM: 4600},
			{DistanceM: 5.5, Pivot: 25, LeftRPM: 5600, RightRPM: 5100},
		},
		Hardware: Hardware{
			I2CBus:             "/dev/i2c-1",
			PicoBuses:          []string{"/dev/i2c-1", "/dev/i2c-3"},
			LeftFlywheelMotor:  0,
			RightFlywheelMotor: 1,
			FeederMotor:        2,
			PivotMotor:         4,
			PivotFollowerMotor: 5,
			AmpMotor:           6,

			BeamBreakPin:     "GPIO5",
			SideBeamBreakPin: "GPIO6",

			PivotCurrentSensorAddr: 0x41,
			ShuntOhms:              0.01,
			MaxCurrentAmps:         20,
		},
		Indicator: Indicator{
			SoundDir:  "/sounds",
			PWMDevice: "/dev/i2c-1",
			RedPWM:    0,
			GreenPWM:  1,
			BluePWM:   2,
		},
		Camera: Camera{
			Device:            0,
			FPS:               15,
			FocalLengthPx:     540,
			TargetHeightM:     0.36,
			HueMin:            165,
			HueMax:            10,
			SatMin:            100,
			SatMax:            255,
			ValMin:            60,
			ValMax:            255,
			FallbackDistanceM: 2.0,
		},
		Operator: OperatorInput{
			SpeakerRPM:  5200,
			AmpRPM:      1000,
			TrimStepRPM: 100,
		},
	}
}

// Load returns the defaults overridden by the YAML file at path.  A missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Printf("Config: %s not found, using defaults\n", path)
		return cfg, nil
	} else if err != nil {
		return cfg, errors.Wrapf(err, "failed to read %s", path)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse %s", path)
	}
	fmt.Printf("Config: loaded %s\n", path)
	return cfg, nil
}

// Parse overlays YAML onto cfg.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	if c.LoopPeriod <= 0 {
		return errors.New("loopPeriod must be positive")
	}
	if len(c.Table) == 0 {
		return errors.New("shooting table is empty")
	}
	if c.Shooter.HomingOutput < -1 || c.Shooter.HomingOutput > 1 {
		return errors.Errorf("homingOutput %v outside [-1, 1]", c.Shooter.HomingOutput)
	}
	return nil
}

// ShootingTable builds the distance lookup from the configured points.
func (c *Config) ShootingTable() *lookup.Table {
	points := make([]lookup.Point, 0, len(c.Table))
	for _, p := range c.Table {
		points = append(points, lookup.Point{
			Distance: p.DistanceM,
			Config:   lookup.NewShootingConfiguration(p.Pivot.Radians(), p.LeftRPM, p.RightRPM),
		})
	}
	return lookup.NewTable(points...)
}

func (c *Config) Dump() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(out)
}
