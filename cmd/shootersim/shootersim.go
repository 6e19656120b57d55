// shootersim runs a scripted match against the simulated shooter, stepping
// the simulation and the control loop in lockstep so it runs faster than
// real time.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/config"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/indicator"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/joystick"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/rangefinder"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/robot"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/timer"
)

func main() {
	app := cli.NewApp()
	app.Name = "shootersim"
	app.Usage = "run a scripted match against the simulated shooter"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config",
			Value:  config.DefaultPath,
			Usage:  "YAML config overriding the built-in defaults",
			EnvVar: "SHOOTER_CONFIG",
		},
		cli.Float64Flag{
			Name:  "distance",
			Value: 3,
			Usage: "distance to the target for the ranged shot, metres",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Value: 10 * time.Second,
			Usage: "simulated time allowed for each step of the script",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// ball models a game piece moving through the feeder.  It breaks the side
// beam as soon as it is taken in, the top beam once the feeder has pushed it
// up, and clears both once it is fired.
type ball struct {
	sim *hardware.Dummy

	present  bool
	feedTime time.Duration
}

const (
	travelToTop = 100 * time.Millisecond
	travelOut   = 60 * time.Millisecond
)

func (b *ball) load() {
	b.present = true
	b.feedTime = 0
	b.sim.Sim.SideBeamBreak.SetIntact(false)
}

func (b *ball) step(dt time.Duration, feederRPM float64) {
	if !b.present {
		return
	}
	if feederRPM > 0 {
		b.feedTime += dt
	}
	switch {
	case b.feedTime >= travelToTop+travelOut:
		fmt.Println("Sim: ball fired")
		b.present = false
		b.sim.Sim.SideBeamBreak.SetIntact(true)
		b.sim.Sim.BeamBreak.SetIntact(true)
	case b.feedTime >= travelToTop:
		b.sim.Sim.BeamBreak.SetIntact(false)
	}
}

type match struct {
	cfg     config.Config
	clock   *timer.Fake
	hw      *hardware.Dummy
	bot     *robot.Robot
	ball    *ball
	latest  *indicator.Latest
	elapsed time.Duration
	timeout time.Duration
}

// tick advances the simulation and then runs one control period.
func (m *match) tick() {
	period := m.cfg.LoopPeriod
	m.clock.Advance(period)
	m.hw.Sim.Step(period)
	m.ball.step(period, m.bot.Shooter.FeederApplied())
	m.bot.Scheduler.Tick()
	m.elapsed += period
}

// press sends a button press and runs the routine it starts to completion.
func (m *match) press(label string, button uint8, during func(i int)) error {
	fmt.Printf("---- %s ----\n", label)
	m.bot.Operator.OnJoystickEvent(&joystick.Event{Type: joystick.EventTypeButton, Number: button, Value: 1})
	m.bot.Operator.OnJoystickEvent(&joystick.Event{Type: joystick.EventTypeButton, Number: button, Value: 0})
	m.tick()
	start := m.elapsed
	name := m.bot.Scheduler.Active()
	for i := 0; m.bot.Scheduler.Active() != ""; i++ {
		if m.elapsed-start > m.timeout {
			return errors.Errorf("%s did not finish within %v", name, m.timeout)
		}
		if during != nil {
			during(i)
		}
		m.tick()
	}
	st := m.bot.Shooter.Status()
	fmt.Printf("Sim: %s finished after %v; indicator=%v loaded=%v pivot=%.3frad flywheels=%.0f/%.0frpm\n",
		name, m.elapsed-start, m.latest.State(), st.Loaded,
		st.Pivot.Position, st.LeftFlywheel.Velocity, st.RightFlywheel.Velocity)
	return nil
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return err
	}

	clock := timer.NewFake()
	hw := hardware.NewDummy()
	latest := &indicator.Latest{}
	bot := robot.New(robot.Params{
		Config:    cfg,
		Hardware:  hw,
		Distance:  rangefinder.NewFixed(c.GlobalFloat64("distance")),
		Indicator: indicator.Multi{&indicator.Log{}, latest},
		Clock:     clock,
	})
	m := &match{
		cfg:     cfg,
		clock:   clock,
		hw:      hw,
		bot:     bot,
		ball:    &ball{sim: hw},
		latest:  latest,
		timeout: c.GlobalDuration("timeout"),
	}
	defer bot.Shooter.Stop()

	// Start somewhere above the hard stop, as if the robot was switched on
	// with the pivot raised.
	hw.Sim.Pivot.SetState(3, 0)

	if err := m.press("Home", joystick.ButtonRB, nil); err != nil {
		return err
	}
	if err := m.press("Handoff", joystick.ButtonA, func(i int) {
		if i == 10 {
			m.ball.load()
		}
	}); err != nil {
		return err
	}
	if err := m.press("Speaker shot", joystick.ButtonY, nil); err != nil {
		return err
	}

	m.ball.load()
	if err := m.press("Ranged shot", joystick.ButtonStart, nil); err != nil {
		return err
	}

	fmt.Printf("---- Match complete in %v of simulated time ----\n", m.elapsed)
	return nil
}
