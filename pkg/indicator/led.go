package indicator

import (
	"fmt"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/pca9685"
)

// LEDFrequencyHz is fast enough that the LED doesn't visibly flicker.
const LEDFrequencyHz = 1000

type Colour struct {
	R, G, B float64
}

var Colours = map[State]Colour{
	Idle:          {0, 0, 0.1},
	HandingOff:    {1, 0.5, 0},
	ShooterLoaded: {0, 1, 0},
	IntakeFull:    {1, 1, 0},
	Homing:        {0.5, 0, 1},
	Shooting:      {1, 0, 0},
}

// LED drives an RGB status LED from three PCA9685 outputs.
type LED struct {
	pwm              pca9685.Interface
	red, green, blue int
}

func NewLED(pwm pca9685.Interface, red, green, blue int) (*LED, error) {
	if err := pwm.Configure(LEDFrequencyHz); err != nil {
		return nil, err
	}
	l := &LED{pwm: pwm, red: red, green: green, blue: blue}
	l.SetState(Idle)
	return l, nil
}

func (l *LED) SetState(s State) {
	c := Colours[s]
	for _, ch := range []struct {
		port  int
		value float64
	}{
		{l.red, c.R},
		{l.green, c.G},
		{l.blue, c.B},
	} {
		if err := l.pwm.SetPWM(ch.port, ch.value); err != nil {
			fmt.Println("Indicator: failed to set LED:", err)
			return
		}
	}
}
