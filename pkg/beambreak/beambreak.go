package beambreak

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
)

// Interface is a binary optical sensor.  Intact is true while nothing is
// blocking the beam.
type Interface interface {
	Intact() bool
}

// Sensor reads a beam-break receiver wired to a GPIO input.  The receiver
// pulls the line high while it can see the emitter.
type Sensor struct {
	pin gpio.PinIn
}

var _ Interface = (*Sensor)(nil)

func New(pin gpio.PinIn) *Sensor {
	return &Sensor{pin: pin}
}

// Open looks up the named pin and configures it as a pulled-down input, so a
// disconnected receiver reads as broken.
func Open(name string) (*Sensor, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, errors.Errorf("no such GPIO pin %q", name)
	}
	if err := pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, errors.Wrapf(err, "failed to configure beam-break input %s", name)
	}
	return New(pin), nil
}

func (s *Sensor) Intact() bool {
	return s.pin.Read() == gpio.High
}

// Fixed is a beam-break with a manually controlled state, for running
// without hardware.
type Fixed struct {
	broken int32
}

var _ Interface = (*Fixed)(nil)

func (f *Fixed) Intact() bool {
	return atomic.LoadInt32(&f.broken) == 0
}

func (f *Fixed) SetIntact(intact bool) {
	var v int32 = 1
	if intact {
		v = 0
	}
	atomic.StoreInt32(&f.broken, v)
}
