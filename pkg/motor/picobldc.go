package motor

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/io/i2c"
)

const (
	PicoAddr = 0x42

	NumPicoChannels = 4
)

type Register byte

const (
	RegCtrl Register = iota
	RegStatus
	RegWatchdogTimeout
	RegFaultCount

	RegMot0V
	RegMot1V
	RegMot2V
	RegMot3V

	// Raw encoder counters, LSB = 1/256 motor rotation; wraps.
	RegMot0Pos
	RegMot1Pos
	RegMot2Pos
	RegMot3Pos

	// Signed motor-shaft RPM.
	RegMot0RPM
	RegMot1RPM
	RegMot2RPM
	RegMot3RPM

	RegBattV // LSB=4mV
)

const (
	BattVLSB        = 0.004
	CountsPerRev    = 256.0
	maxOutputCounts = math.MaxInt16
)

const (
	RegCtrlEnableI2CControl uint16 = 1 << iota
	RegCtrlRun
	RegCtrlDoCalib
	RegCtrlReset
	RegCtrlWatchdogEnable
)

type StatusFlag uint16

const (
	RegStatusFault StatusFlag = 1 << iota
	RegStatusCalibDone
	RegStatusWatchdogExpired
)

type port interface {
	ReadReg(reg byte, buf []byte) error
	Write(buf []byte) error
	Close() error
}

// PicoBLDC is a four-channel brushless motor controller on the I2C bus.  Each
// channel is exposed as a Motor.
type PicoBLDC struct {
	lock sync.Mutex
	dev  port

	lastConfigWord  uint16
	lastConfigTime  time.Time
	watchdogEnabled bool

	channels [NumPicoChannels]*PicoChannel
}

func NewPicoBLDC(deviceFile string) (*PicoBLDC, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, PicoAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open Pico-BLDC on %s", deviceFile)
	}
	return newPico(dev), nil
}

func newPico(dev port) *PicoBLDC {
	p := &PicoBLDC{dev: dev}
	for i := range p.channels {
		p.channels[i] = &PicoChannel{pico: p, n: i}
	}
	return p
}

// Channel returns the Motor for output n (0-3).
func (p *PicoBLDC) Channel(n int) *PicoChannel {
	return p.channels[n]
}

func (p *PicoBLDC) SetWatchdog(timeout time.Duration) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if timeout == 0 {
		p.watchdogEnabled = false
		return p.maybeConfigure(false, false)
	}

	ms := timeout.Milliseconds()
	if ms > math.MaxUint16 {
		ms = math.MaxUint16
	}
	err := p.writeReg(RegWatchdogTimeout, uint16(ms))
	if err != nil {
		return err
	}

	p.watchdogEnabled = true
	return p.maybeConfigure(false, false)
}

func (p *PicoBLDC) Reset() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.maybeConfigure(true, false)
}

func (p *PicoBLDC) Close() error {
	_ = p.Reset()
	return p.dev.Close()
}

func (p *PicoBLDC) BattVolts() (float64, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	raw, err := p.readReg(RegBattV)
	if err != nil {
		return 0, err
	}
	return float64(raw) * BattVLSB, nil
}

func (p *PicoBLDC) Status() (StatusFlag, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	raw, err := p.readReg(RegStatus)
	if err != nil {
		return 0, err
	}
	return StatusFlag(raw), nil
}

func (p *PicoBLDC) maybeConfigure(resetMotorSpeeds bool, enableMotors bool) error {
	var configWord uint16 = RegCtrlEnableI2CControl
	if resetMotorSpeeds {
		configWord |= RegCtrlReset
	}
	if enableMotors {
		configWord |= RegCtrlRun
	}
	if p.watchdogEnabled {
		configWord |= RegCtrlWatchdogEnable
	}

	if configWord == p.lastConfigWord && time.Since(p.lastConfigTime) < 100*time.Millisecond {
		// Skip writing config if we've done it recently.
		return nil
	}

	if err := p.writeReg(RegCtrl, configWord); err != nil {
		return err
	}

	p.lastConfigTime = time.Now()
	p.lastConfigWord = configWord & (^RegCtrlReset) /* Reset flag is not persistent */
	return nil
}

func (p *PicoBLDC) writeReg(reg Register, value uint16) error {
	data := []byte{byte(reg), byte(value >> 8), byte(value)}
	var err error
	for tries := 0; tries < 3; tries++ {
		err = p.dev.Write(data)
		if err == nil {
			return nil
		}
		fmt.Println("Failed to write to Pico-BLDC:", err)
	}
	return errors.Wrapf(err, "failed to write Pico-BLDC register %d", reg)
}

func (p *PicoBLDC) readReg(reg Register) (uint16, error) {
	var buf [2]byte
	err := p.dev.ReadReg(byte(reg), buf[:])
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read Pico-BLDC register %d", reg)
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// PicoChannel is one output of a PicoBLDC.
type PicoChannel struct {
	pico *PicoBLDC
	n    int

	// Encoder accumulation; the raw counter is only 16 bits.
	doneFirstPoll bool
	lastRaw       int16
	accumulator   int64
	offset        float64
}

var _ Motor = (*PicoChannel)(nil)

func (c *PicoChannel) Set(percent float64) error {
	c.pico.lock.Lock()
	defer c.pico.lock.Unlock()
	if err := c.pico.maybeConfigure(false, true); err != nil {
		return err
	}
	v := int16(clampPercent(percent) * maxOutputCounts)
	return c.pico.writeReg(RegMot0V+Register(c.n), uint16(v))
}

// EncoderRotations polls the channel's encoder counter and returns the
// accumulated rotations.  On a read failure the last value is returned.
func (c *PicoChannel) EncoderRotations() float64 {
	c.pico.lock.Lock()
	defer c.pico.lock.Unlock()
	raw, err := c.pico.readReg(RegMot0Pos + Register(c.n))
	if err != nil {
		fmt.Println("Pico: encoder read failed:", err)
	} else {
		c.accumulate(int16(raw))
	}
	return float64(c.accumulator)/CountsPerRev + c.offset
}

func (c *PicoChannel) accumulate(raw int16) {
	if c.doneFirstPoll {
		delta := raw - c.lastRaw
		c.accumulator += int64(delta)
	}
	c.lastRaw = raw
	c.doneFirstPoll = true
}

func (c *PicoChannel) EncoderRPM() float64 {
	c.pico.lock.Lock()
	defer c.pico.lock.Unlock()
	raw, err := c.pico.readReg(RegMot0RPM + Register(c.n))
	if err != nil {
		fmt.Println("Pico: RPM read failed:", err)
		return 0
	}
	return float64(int16(raw))
}

func (c *PicoChannel) SetEncoderRotations(r float64) {
	c.pico.lock.Lock()
	defer c.pico.lock.Unlock()
	c.accumulator = 0
	c.offset = r
}
