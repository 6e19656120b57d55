package shooter

import (
	"fmt"
	"sync"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/actuator"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/angle"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/beambreak"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/config"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/lookup"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/motor"
)

// Hardware is the set of motors and sensors the shooter drives.
// PivotFollower may be nil on a single-motor pivot.
type Hardware struct {
	LeftFlywheel  motor.Motor
	RightFlywheel motor.Motor
	Feeder        motor.Motor
	Pivot         motor.Motor
	PivotFollower motor.Motor
	Amp           motor.Motor

	// BeamBreak sits at the firing position; SideBeamBreak at the intake
	// mouth.
	BeamBreak     beambreak.Interface
	SideBeamBreak beambreak.Interface
}

// Telemetry receives a Status after every tick.  Implementations must not
// block.
type Telemetry interface {
	Post(status Status)
}

type Setpoints struct {
	LeftFlywheel  float64
	RightFlywheel float64
	Feeder        float64
	Pivot         float64
	Amp           float64
}

type Status struct {
	Owner  string
	Homing bool

	Loaded         bool
	InPosition     bool
	FlywheelAtGoal bool
	PivotAtGoal    bool
	AmpAtGoal      bool

	Setpoints Setpoints
	// FeederApplied is the feeder setpoint actually used on the last tick,
	// after the bump override.
	FeederApplied float64

	LeftFlywheel  actuator.Status
	RightFlywheel actuator.Status
	Feeder        actuator.Status
	Pivot         actuator.Status
	Amp           actuator.Status
}

// Shooter owns the flywheels, feeder, pivot and amp arm.  Setters only store
// values; Tick applies them.  Writes go through a Handle obtained from
// Acquire so that only one routine at a time can move the mechanism.
type Shooter struct {
	// lock guards everything below.  The actuators are only touched with it
	// held.
	lock sync.Mutex
	cfg  config.Shooter

	leftFlywheel  *actuator.Actuator
	rightFlywheel *actuator.Actuator
	feeder        *actuator.Actuator
	pivot         *actuator.Actuator
	amp           *actuator.Actuator

	beamBreak     beambreak.Interface
	sideBeamBreak beambreak.Interface

	telemetry Telemetry

	setpoints     Setpoints
	feederApplied float64
	homing        bool

	owner *Handle
}

func New(hw Hardware, cfg config.Shooter, telemetry Telemetry) *Shooter {
	pivotMotor := hw.Pivot
	if hw.PivotFollower != nil {
		pivotMotor = &motor.Follower{Leader: hw.Pivot, Follower: hw.PivotFollower, Inverted: true}
	}

	s := &Shooter{
		cfg:           cfg,
		leftFlywheel:  actuator.New("left-flywheel", cfg.LeftFlywheel, hw.LeftFlywheel),
		rightFlywheel: actuator.New("right-flywheel", cfg.RightFlywheel, hw.RightFlywheel),
		feeder:        actuator.New("feeder", cfg.Feeder, hw.Feeder),
		pivot:         actuator.New("pivot", cfg.Pivot, pivotMotor),
		amp:           actuator.New("amp", cfg.Amp, hw.Amp),
		beamBreak:     hw.BeamBreak,
		sideBeamBreak: hw.SideBeamBreak,
		telemetry:     telemetry,
	}
	s.amp.DisableContinuousInput()
	s.setpoints.Feeder = cfg.FeederHoldRPM
	s.setpoints.Amp = cfg.AmpHardstop.Radians()
	return s
}

func (s *Shooter) Config() config.Shooter {
	return s.cfg
}

// Tick applies the stored setpoints to the actuators.  Call it once per
// control loop period, before stepping any routine.
func (s *Shooter) Tick() {
	s.lock.Lock()

	sp := s.setpoints
	s.leftFlywheel.SetSetpoint(sp.LeftFlywheel, 0)
	s.rightFlywheel.SetSetpoint(sp.RightFlywheel, 0)

	if s.homing {
		s.pivot.SetRaw(s.cfg.HomingOutput)
	} else {
		s.pivot.SetSetpoint(sp.Pivot, 0)
	}

	s.amp.SetSetpoint(sp.Amp, 0)

	// A ball that has been taken in but hasn't reached the top sensor gets
	// nudged up rather than held where it is.
	feeder := sp.Feeder
	if feeder == s.cfg.FeederHoldRPM && s.loadedLocked() && !s.inPositionLocked() {
		feeder = s.cfg.FeederBumpRPM
	}
	s.feeder.SetSetpoint(feeder, 0)
	s.feederApplied = feeder

	var status Status
	if s.telemetry != nil {
		status = s.statusLocked()
	}
	s.lock.Unlock()

	if s.telemetry != nil {
		s.telemetry.Post(status)
	}
}

// Loaded is true when a ball is blocking the side beam-break.
func (s *Shooter) Loaded() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.loadedLocked()
}

// InPosition is true when the ball is loaded and has reached the top
// beam-break.
func (s *Shooter) InPosition() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.inPositionLocked()
}

func (s *Shooter) loadedLocked() bool {
	return !s.sideBeamBreak.Intact()
}

func (s *Shooter) inPositionLocked() bool {
	return s.loadedLocked() && !s.beamBreak.Intact()
}

func (s *Shooter) FlywheelAtGoal() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.flywheelAtGoalLocked()
}

func (s *Shooter) flywheelAtGoalLocked() bool {
	return s.leftFlywheel.AtDefaultGoal() && s.rightFlywheel.AtDefaultGoal()
}

func (s *Shooter) PivotAtGoal() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.pivot.AtDefaultGoal()
}

// PivotAtGoalDeg checks the pivot error against a tolerance in degrees.
func (s *Shooter) PivotAtGoalDeg(tolerance float64) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.pivot.AtGoal(angle.ToRadians(tolerance))
}

func (s *Shooter) AmpAtGoal() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.amp.AtDefaultGoal()
}

func (s *Shooter) Homing() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.homing
}

// PivotVelocity returns the pivot's measured speed in rad/s.
func (s *Shooter) PivotVelocity() float64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.pivot.Velocity()
}

func (s *Shooter) Setpoints() Setpoints {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.setpoints
}

// FeederApplied returns the feeder setpoint used on the last tick.
func (s *Shooter) FeederApplied() float64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.feederApplied
}

// SetAmpDeployed moves the amp arm out to its scoring position or back to its
// hard stop.  The amp arm is driven directly by the operator, not by any
// routine, so it does not need a Handle.
func (s *Shooter) SetAmpDeployed(deployed bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if deployed {
		s.setpoints.Amp = s.cfg.AmpDeployed.Radians()
	} else {
		s.setpoints.Amp = s.cfg.AmpHardstop.Radians()
	}
}

func (s *Shooter) Status() Status {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.statusLocked()
}

func (s *Shooter) statusLocked() Status {
	owner := ""
	if s.owner != nil {
		owner = s.owner.name
	}
	return Status{
		Owner:          owner,
		Homing:         s.homing,
		Loaded:         s.loadedLocked(),
		InPosition:     s.inPositionLocked(),
		FlywheelAtGoal: s.flywheelAtGoalLocked(),
		PivotAtGoal:    s.pivot.AtDefaultGoal(),
		AmpAtGoal:      s.amp.AtDefaultGoal(),
		Setpoints:      s.setpoints,
		FeederApplied:  s.feederApplied,
		LeftFlywheel:   s.leftFlywheel.Status(),
		RightFlywheel:  s.rightFlywheel.Status(),
		Feeder:         s.feeder.Status(),
		Pivot:          s.pivot.Status(),
		Amp:            s.amp.Status(),
	}
}

// Stop zeroes every motor and parks the stored setpoints.  Used on shut down.
func (s *Shooter) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()
	fmt.Println("Shooter: stopping all motors")
	s.setpoints.LeftFlywheel = 0
	s.setpoints.RightFlywheel = 0
	s.setpoints.Feeder = s.cfg.FeederHoldRPM
	s.homing = false
	for _, a := range []*actuator.Actuator{s.leftFlywheel, s.rightFlywheel, s.feeder, s.pivot, s.amp} {
		a.Stop()
	}
}

// The setters below are reached through a Handle.

func (s *Shooter) setFlywheelSetpoint(left, right float64) {
	s.setpoints.LeftFlywheel = left
	s.setpoints.RightFlywheel = right
}

func (s *Shooter) setShootingConfigSetpoints(c lookup.ShootingConfiguration) {
	s.setpoints.Pivot = c.PivotAngle()
	s.setFlywheelSetpoint(c.LeftSpeed(), c.RightSpeed())
}
