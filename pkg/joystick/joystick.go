package joystick

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"
)

// Button and axis numbers for an Xbox-style pad on the Linux joystick API.
//
// Axes
//
//    L stick l/r = 0, u/d = 1 (up = -32767; down = +32767)
//    R stick l/r = 3, u/d = 4
//    LT          = 2 (unpressed = -32767; fully-pressed = 32767)
//    RT          = 5
//    D-pad   l/r = 6 (left = -32767; right = +32767)
//            u/d = 7 (up = -32767; down = +32767)

type EventType uint8

const (
	EventTypeButton = 1
	EventTypeAxis   = 2

	// eventTypeInit is or-ed into the synthetic events sent on open.
	eventTypeInit = 0x80
)

const (
	ButtonA      = 0
	ButtonB      = 1
	ButtonX      = 2
	ButtonY      = 3
	ButtonLB     = 4
	ButtonRB     = 5
	ButtonBack   = 6
	ButtonStart  = 7
	ButtonGuide  = 8
	ButtonLStick = 9
	ButtonRStick = 10

	AxisLStickX = 0
	AxisLStickY = 1
	AxisLT      = 2
	AxisRStickX = 3
	AxisRStickY = 4
	AxisRT      = 5
	AxisDPadX   = 6
	AxisDPadY   = 7
)

const DefaultDevice = "/dev/input/js0"

func (e EventType) String() string {
	switch e {
	case EventTypeAxis:
		return "axis"
	case EventTypeButton:
		return "button"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

type Joystick struct {
	device io.ReadCloser

	deviceEpoch    uint32
	wallclockEpoch time.Time
}

type rawEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

type Event struct {
	Time   time.Time
	Value  int16
	Type   EventType
	Number uint8
	// Init is true for the synthetic events reporting the initial state.
	Init bool
}

func (e *Event) String() string {
	return fmt.Sprintf("%v(%v)=%v", e.Type, e.Number, e.Value)
}

// Pressed is true for a button-down event.
func (e *Event) Pressed(button uint8) bool {
	return e.Type == EventTypeButton && e.Number == button && e.Value == 1
}

// Released is true for a button-up event.
func (e *Event) Released(button uint8) bool {
	return e.Type == EventTypeButton && e.Number == button && e.Value == 0
}

func NewJoystick(device string) (*Joystick, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, err
	}
	return New(f), nil
}

func New(device io.ReadCloser) *Joystick {
	return &Joystick{device: device}
}

func (j *Joystick) ReadEvent() (*Event, error) {
	var rawEvent rawEvent
	err := binary.Read(j.device, binary.LittleEndian, &rawEvent)
	if err != nil {
		return nil, err
	}

	if j.deviceEpoch == 0 {
		j.deviceEpoch = rawEvent.Time
		j.wallclockEpoch = time.Now()
	}

	return &Event{
		Time:   j.wallclockEpoch.Add(time.Duration(rawEvent.Time-j.deviceEpoch) * time.Millisecond),
		Value:  rawEvent.Value,
		Type:   EventType(rawEvent.Type &^ eventTypeInit),
		Number: rawEvent.Number,
		Init:   rawEvent.Type&eventTypeInit != 0,
	}, nil
}

func (j *Joystick) Close() error {
	return j.device.Close()
}

// WaitForJoystick retries opening the device once a second until it appears
// or the context is done.
func WaitForJoystick(ctx context.Context, device string) (*Joystick, error) {
	firstLog := true
	for {
		j, err := NewJoystick(device)
		if err == nil {
			fmt.Printf("Opened joystick %s\n", device)
			return j, nil
		}
		if firstLog {
			fmt.Printf("Waiting for joystick: %v.\n", err)
			firstLog = false
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// LoopReadingEvents sends events to the channel until a read fails, then
// closes it.
func LoopReadingEvents(ctx context.Context, j *Joystick, events chan<- *Event) error {
	defer close(events)
	defer j.Close()
	for ctx.Err() == nil {
		event, err := j.ReadEvent()
		if err != nil {
			fmt.Printf("Failed to read from joystick: %v.\n", err)
			return err
		}
		select {
		case events <- event:
		case <-ctx.Done():
		}
	}
	return ctx.Err()
}
