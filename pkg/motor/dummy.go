package motor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// Dummy is a simulated motor with a first-order velocity response.  It is
// used when the real motor controller is missing and by the simulator.
// Call Step to advance the simulation.
type Dummy struct {
	Name string

	// FreeSpeedRPM is the steady-state speed at full output.
	FreeSpeedRPM float64
	// TimeConstant of the velocity response.
	TimeConstant time.Duration
	// Optional hard stops, in motor rotations.  Ignored when equal.
	MinRotations, MaxRotations float64

	lock      sync.Mutex
	output    float64
	rpm       float64
	rotations float64
	loggedOut float64
}

var _ Motor = (*Dummy)(nil)

func NewDummy(name string, freeSpeedRPM float64) *Dummy {
	return &Dummy{
		Name:         name,
		FreeSpeedRPM: freeSpeedRPM,
		TimeConstant: 100 * time.Millisecond,
	}
}

func (d *Dummy) Set(percent float64) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.output = clampPercent(percent)
	if math.Abs(d.output-d.loggedOut) > 0.1 {
		fmt.Printf("DHW: motor %s output=%.2f\n", d.Name, d.output)
		d.loggedOut = d.output
	}
	return nil
}

func (d *Dummy) Output() float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.output
}

func (d *Dummy) EncoderRotations() float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.rotations
}

func (d *Dummy) EncoderRPM() float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.rpm
}

func (d *Dummy) SetEncoderRotations(r float64) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.MinRotations += r - d.rotations
	d.MaxRotations += r - d.rotations
	d.rotations = r
}

// SetState forces the simulated shaft to a position and speed.
func (d *Dummy) SetState(rotations, rpm float64) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.rotations = rotations
	d.rpm = rpm
}

// Step advances the simulation by dt.
func (d *Dummy) Step(dt time.Duration) {
	d.lock.Lock()
	defer d.lock.Unlock()

	target := d.output * d.FreeSpeedRPM
	alpha := 1.0
	if d.TimeConstant > 0 {
		alpha = math.Min(1, dt.Seconds()/d.TimeConstant.Seconds())
	}
	d.rpm += (target - d.rpm) * alpha
	d.rotations += d.rpm / 60 * dt.Seconds()

	if d.MinRotations != d.MaxRotations {
		if d.rotations <= d.MinRotations {
			d.rotations = d.MinRotations
			if d.rpm < 0 {
				d.rpm = 0
			}
		} else if d.rotations >= d.MaxRotations {
			d.rotations = d.MaxRotations
			if d.rpm > 0 {
				d.rpm = 0
			}
		}
	}
}

// Simulate steps the given motors every period until the context is done.
func Simulate(ctx context.Context, period time.Duration, motors ...*Dummy) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, m := range motors {
				m.Step(period)
			}
		}
	}
}
