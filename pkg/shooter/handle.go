package shooter

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/lookup"
)

var ErrNotOwner = errors.New("shooter handle has been revoked")

// Handle is write access to the shooter's setpoints.  Only the most recently
// acquired handle is live; writes through an older one are dropped.
type Handle struct {
	s    *Shooter
	name string

	// err is set on the first dropped write.  Guarded by s.lock.
	err error
}

// Acquire revokes any existing handle and returns a new one for owner.
func (s *Shooter) Acquire(owner string) *Handle {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.owner != nil {
		fmt.Printf("Shooter: %s takes over from %s\n", owner, s.owner.name)
	}
	h := &Handle{s: s, name: owner}
	s.owner = h
	return h
}

// Owner returns the name of the current handle's owner, or "" if nobody
// holds one.
func (s *Shooter) Owner() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.owner == nil {
		return ""
	}
	return s.owner.name
}

func (h *Handle) Name() string {
	return h.name
}

// Live reports whether the handle still owns the shooter.
func (h *Handle) Live() bool {
	h.s.lock.Lock()
	defer h.s.lock.Unlock()
	return h.s.owner == h
}

// Err returns ErrNotOwner if a write was dropped because the handle had been
// revoked.
func (h *Handle) Err() error {
	h.s.lock.Lock()
	defer h.s.lock.Unlock()
	return h.err
}

// Release gives up ownership.  Releasing a revoked handle is a no-op.
func (h *Handle) Release() {
	h.s.lock.Lock()
	defer h.s.lock.Unlock()
	if h.s.owner == h {
		h.s.owner = nil
	}
}

func (h *Handle) write(what string, f func(s *Shooter)) {
	h.s.lock.Lock()
	defer h.s.lock.Unlock()
	if h.s.owner != h {
		fmt.Printf("Shooter: dropped %s write from %s, not the owner\n", what, h.name)
		h.err = ErrNotOwner
		return
	}
	f(h.s)
}

func (h *Handle) SetFlywheelSetpoint(left, right float64) {
	h.write("flywheel", func(s *Shooter) {
		s.setFlywheelSetpoint(left, right)
	})
}

func (h *Handle) SetFeederSetpoint(rpm float64) {
	h.write("feeder", func(s *Shooter) {
		s.setpoints.Feeder = rpm
	})
}

func (h *Handle) SetPivotSetpoint(rad float64) {
	h.write("pivot", func(s *Shooter) {
		s.setpoints.Pivot = rad
	})
}

func (h *Handle) SetAmpSetpoint(rad float64) {
	h.write("amp", func(s *Shooter) {
		s.setpoints.Amp = rad
	})
}

// SetShootingConfigSetpoints sets the pivot and both flywheels together, so
// a tick never sees half of a configuration.
func (h *Handle) SetShootingConfigSetpoints(c lookup.ShootingConfiguration) {
	h.write("shooting config", func(s *Shooter) {
		s.setShootingConfigSetpoints(c)
	})
}

// HardSetPivot drives the pivot open loop until the next tick.
func (h *Handle) HardSetPivot(percent float64) {
	h.write("raw pivot", func(s *Shooter) {
		s.pivot.SetRaw(percent)
	})
}

// HardSetAmp drives the amp arm open loop until the next tick.
func (h *Handle) HardSetAmp(percent float64) {
	h.write("raw amp", func(s *Shooter) {
		s.amp.SetRaw(percent)
	})
}

// SetHoming switches the pivot between closed-loop control and the constant
// homing drive.
func (h *Handle) SetHoming(homing bool) {
	h.write("homing", func(s *Shooter) {
		s.homing = homing
	})
}

// ZeroPivot makes the pivot's current position read as zero.
func (h *Handle) ZeroPivot() {
	h.write("pivot zero", func(s *Shooter) {
		s.pivot.SetPosition(0)
	})
}
