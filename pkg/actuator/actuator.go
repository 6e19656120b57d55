package actuator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/felixge/pidctrl"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/angle"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/motor"
)

type Mode int

const (
	PositionServo Mode = iota
	VelocityBangBang
	VelocityFlywheel
	Raw
)

func (m Mode) String() string {
	switch m {
	case PositionServo:
		return "position-servo"
	case VelocityBangBang:
		return "velocity-bangbang"
	case VelocityFlywheel:
		return "velocity-flywheel"
	case Raw:
		return "raw"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	for m := PositionServo; m <= Raw; m++ {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown actuator mode %q", s)
}

// UnmarshalYAML lets config files name the mode rather than number it.
func (m *Mode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Mode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// NominalVolts converts feed-forward volts into a fraction of full output.
const NominalVolts = 12.0

type Config struct {
	Mode Mode `yaml:"mode"`

	// Rotational actuators report radians and wrap their error into (-π, π];
	// linear ones report metres.
	Rotational bool `yaml:"rotational"`
	// Gearing is output rotations per motor rotation.
	Gearing float64 `yaml:"gearing"`
	// DiameterM is the final wheel/spool diameter of a linear actuator.
	DiameterM float64 `yaml:"diameterM"`

	KP  float64 `yaml:"kp"`
	KI  float64 `yaml:"ki"`
	KD  float64 `yaml:"kd"`
	KFF float64 `yaml:"kff"`

	// Tolerance is the default at-goal band, in the actuator's setpoint units.
	Tolerance float64 `yaml:"tolerance"`

	// Period is the control loop period used for the PID's time step.
	Period time.Duration `yaml:"period"`
}

// Actuator is a closed-loop driver for one motor.  Every SetSetpoint call
// runs one step of the configured control law and commands the motor.
type Actuator struct {
	Name string

	cfg   Config
	motor motor.Motor
	pid   *pidctrl.PIDController

	positionFactor float64
	velocityFactor float64
	continuous     bool

	mode     Mode
	setpoint float64
	output   float64
}

func New(name string, cfg Config, m motor.Motor) *Actuator {
	if cfg.Gearing == 0 {
		cfg.Gearing = 1
	}
	if cfg.Period == 0 {
		cfg.Period = 20 * time.Millisecond
	}

	// Rotational: rad and rad/s.  Linear: m and m/s.
	positionFactor := 2 * math.Pi * cfg.Gearing
	if !cfg.Rotational {
		positionFactor = cfg.Gearing * cfg.DiameterM * math.Pi
	}

	a := &Actuator{
		Name:           name,
		cfg:            cfg,
		motor:          m,
		positionFactor: positionFactor,
		velocityFactor: positionFactor / 60.0,
		continuous:     cfg.Rotational,
		mode:           cfg.Mode,
	}
	a.resetController()
	m.SetEncoderRotations(0)
	return a
}

func (a *Actuator) resetController() {
	a.pid = pidctrl.NewPIDController(a.cfg.KP, a.cfg.KI, a.cfg.KD).SetOutputLimits(-1, 1)
}

// DisableContinuousInput turns off angle wrapping, for mechanisms that must
// never take the short way round through a hard stop.
func (a *Actuator) DisableContinuousInput() {
	a.continuous = false
}

func (a *Actuator) Config() Config {
	return a.cfg
}

// Mode returns the active mode; Raw after SetRaw until the next SetSetpoint.
func (a *Actuator) Mode() Mode {
	return a.mode
}

func (a *Actuator) Setpoint() float64 {
	return a.setpoint
}

// Output returns the last commanded output, in [-1, 1].
func (a *Actuator) Output() float64 {
	return a.output
}

// SetSetpoint stores the setpoint and drives the motor towards it.
// feedForward is in volts and is added to the loop's output.
func (a *Actuator) SetSetpoint(setpoint, feedForward float64) {
	if a.mode == Raw {
		a.mode = a.cfg.Mode
		a.resetController()
	}
	a.setpoint = setpoint

	var out float64
	switch a.cfg.Mode {
	case PositionServo:
		out = a.pidStep()
	case VelocityBangBang:
		out = a.bangBang()
	case VelocityFlywheel:
		out = a.cfg.KFF*setpoint + a.pidStep()
	case Raw:
		out = setpoint
	}
	a.write(out + feedForward/NominalVolts)
}

// pidStep runs the PID on the error rather than on the raw measurement so
// that continuous actuators take the shortest way round.  The controller's
// own setpoint stays at zero and the measurement fed to it is -error.
func (a *Actuator) pidStep() float64 {
	err := a.Error()
	if !a.isVelocityMode() && !a.continuous {
		err = a.setpoint - a.Position()
	}
	return a.pid.UpdateDuration(-err, a.cfg.Period)
}

func (a *Actuator) bangBang() float64 {
	v := a.Velocity()
	switch {
	case a.setpoint > 0 && v < a.setpoint:
		return 1
	case a.setpoint < 0 && v > a.setpoint:
		return -1
	default:
		return 0
	}
}

// SetRaw commands the motor directly, bypassing the control loop.
func (a *Actuator) SetRaw(percent float64) {
	a.mode = Raw
	a.write(percent)
}

func (a *Actuator) Stop() {
	a.write(0)
}

func (a *Actuator) write(out float64) {
	if out > 1 {
		out = 1
	} else if out < -1 {
		out = -1
	}
	a.output = out
	if err := a.motor.Set(out); err != nil {
		fmt.Printf("Actuator %s: failed to set output: %v\n", a.Name, err)
	}
}

// Position returns radians (rotational) or metres (linear).
func (a *Actuator) Position() float64 {
	return a.motor.EncoderRotations() * a.positionFactor
}

// SetPosition re-zeroes the position reference so the current position
// reads as pos.
func (a *Actuator) SetPosition(pos float64) {
	if a.positionFactor == 0 {
		return
	}
	a.motor.SetEncoderRotations(pos / a.positionFactor)
}

// Velocity returns output-shaft RPM for the velocity modes, otherwise rad/s
// or m/s.
func (a *Actuator) Velocity() float64 {
	rpm := a.motor.EncoderRPM()
	if a.isVelocityMode() {
		return rpm * a.cfg.Gearing
	}
	return rpm * a.velocityFactor
}

func (a *Actuator) isVelocityMode() bool {
	return a.cfg.Mode == VelocityBangBang || a.cfg.Mode == VelocityFlywheel
}

// Error returns setpoint - measured.  For rotational position actuators the
// result is the shortest angle, in (-π, π].
func (a *Actuator) Error() float64 {
	if a.isVelocityMode() {
		return a.setpoint - a.Velocity()
	}
	if a.cfg.Rotational {
		return angle.Diff(a.setpoint, a.Position())
	}
	return a.setpoint - a.Position()
}

func (a *Actuator) AtGoal(tolerance float64) bool {
	return math.Abs(a.Error()) < tolerance
}

// AtDefaultGoal checks the error against the configured tolerance.
func (a *Actuator) AtDefaultGoal() bool {
	return a.AtGoal(a.cfg.Tolerance)
}

type Status struct {
	Name     string
	Mode     Mode
	Setpoint float64
	Position float64
	Velocity float64
	Error    float64
	Output   float64
}

func (a *Actuator) Status() Status {
	return Status{
		Name:     a.Name,
		Mode:     a.mode,
		Setpoint: a.setpoint,
		Position: a.Position(),
		Velocity: a.Velocity(),
		Error:    a.Error(),
		Output:   a.output,
	}
}
