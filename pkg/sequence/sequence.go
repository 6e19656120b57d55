// Package sequence contains the shooter's firing routines.  Each one is a
// polled state machine: Start once, Step once per tick until IsDone, then
// Stop.  Stop always runs, including when the routine is interrupted, and
// leaves the shooter safe.
package sequence

import (
	"time"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/indicator"
)

const (
	// SettleTime is how long a manual shot waits after Start before it may
	// fire, covering the one-tick lag between a setpoint and its effect.
	SettleTime = 250 * time.Millisecond
	// FireTime is how long the feeder must run before a shot can finish.
	FireTime = 250 * time.Millisecond

	// AutonFeedDelay and AutonMinTime bound an autonomous shot.
	AutonFeedDelay = 250 * time.Millisecond
	AutonMinTime   = 500 * time.Millisecond

	// AutonPivotToleranceDeg is tighter than the pivot's default tolerance.
	AutonPivotToleranceDeg = 1.0
)

// DistanceSource supplies the distance to the target in metres.
type DistanceSource interface {
	Distance() float64
}

func setIndicator(sink indicator.Sink, s indicator.State) {
	if sink != nil {
		sink.SetState(s)
	}
}
