package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/config"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/indicator"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/joystick"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/rangefinder"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/rangefinder/camera"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/robot"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/screen"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/sequence"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/sound"
)

func main() {
	app := cli.NewApp()
	app.Name = "shooterctl"
	app.Usage = "run the shooter from a joystick"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config",
			Value:  config.DefaultPath,
			Usage:  "YAML config overriding the built-in defaults",
			EnvVar: "SHOOTER_CONFIG",
		},
		cli.StringFlag{
			Name:   "joystick",
			Value:  joystick.DefaultDevice,
			Usage:  "joystick device",
			EnvVar: "JOYSTICK_DEVICE",
		},
		cli.StringFlag{
			Name:  "screen",
			Value: screen.DefaultDevice,
			Usage: "status screen framebuffer",
		},
		cli.BoolFlag{
			Name:   "dummy",
			Usage:  "simulate the hardware instead of opening it",
			EnvVar: "IGNORE_MISSING_HARDWARE",
		},
		cli.BoolFlag{
			Name:  "dump-config",
			Usage: "print the effective config and exit",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	fmt.Print("---- Shooter ----\n\n")
	fmt.Println("GOMAXPROCS", runtime.GOMAXPROCS(0))

	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return err
	}
	if c.GlobalBool("dump-config") {
		fmt.Print(cfg.Dump())
		return nil
	}

	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hook Ctrl-C etc.
	registerSignalHandlers(cancel)

	dummy := c.GlobalBool("dummy")
	hw := openHardware(ctx, cfg, dummy)
	defer func() {
		fmt.Println("Zeroing motors for shut down")
		hw.Shutdown()
		time.Sleep(100 * time.Millisecond)
	}()

	scr := screen.New()
	scr.SetMode("SHOOTER")
	go scr.LoopUpdatingScreen(ctx, c.GlobalString("screen"))
	go hardware.LoopMonitoringPower(ctx, hw, scr, time.Second)

	player := sound.NewPlayer()
	defer player.Close()
	player.Play(filepath.Join(cfg.Indicator.SoundDir, "shooterstart.wav"))

	ind := indicator.Multi{
		&indicator.Log{},
		indicator.NewSound(cfg.Indicator.SoundDir, player),
	}
	led, err := indicator.NewLED(hw.PWM(), cfg.Indicator.RedPWM, cfg.Indicator.GreenPWM, cfg.Indicator.BluePWM)
	if err != nil {
		fmt.Println("Failed to initialise status LED; ignoring.", err)
	} else {
		ind = append(ind, led)
	}

	bot := robot.New(robot.Params{
		Config:    cfg,
		Hardware:  hw,
		Distance:  openRangefinder(ctx, cfg, dummy),
		Indicator: ind,
		Telemetry: scr,
	})

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		bot.Scheduler.Loop(ctx, cfg.LoopPeriod)
	}()
	defer func() {
		cancel()
		<-loopDone
	}()

	// Wait for the joystick in the background; the shooter holds its
	// position until it turns up.
	joystickEvents := make(chan *joystick.Event, 1)
	go func() {
		j, err := joystick.WaitForJoystick(ctx, c.GlobalString("joystick"))
		if err != nil {
			return
		}
		defer cancel()
		err = joystick.LoopReadingEvents(ctx, j, joystickEvents)
		fmt.Printf("Joystick failed: %v\n", err)
	}()

	fmt.Println("Waiting for events...")
	watchdog := time.NewTicker(5 * time.Second)
	defer watchdog.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("Context done, shutting down")
			return nil
		case event, ok := <-joystickEvents:
			if !ok {
				fmt.Println("Joystick events channel closed!")
				return nil
			}
			bot.Operator.OnJoystickEvent(event)
		case <-watchdog.C:
			st := bot.Shooter.Status()
			fmt.Printf("Main loop still running: owner=%q loaded=%v pivot=%.3f\n",
				st.Owner, st.Loaded, st.Pivot.Position)
		}
	}
}

// openHardware opens the real hardware, falling back to the simulation if
// dummy is set or the hardware is missing.
func openHardware(ctx context.Context, cfg config.Config, dummy bool) hardware.Interface {
	if !dummy {
		hw, err := hardware.Open(cfg)
		if err == nil {
			return hw
		}
		fmt.Printf("Failed to open hardware: %v.\n", err)
	}
	fmt.Println("Using dummy hardware")
	d := hardware.NewDummy()
	go d.Sim.Simulate(ctx, cfg.LoopPeriod)
	return d
}

func openRangefinder(ctx context.Context, cfg config.Config, dummy bool) sequence.DistanceSource {
	if dummy {
		return rangefinder.NewFixed(cfg.Camera.FallbackDistanceM)
	}
	cam := camera.New(cfg.Camera)
	go func() {
		err := cam.Run(ctx)
		if ctx.Err() == nil {
			fmt.Printf("Camera failed, using fallback distance: %v\n", err)
		}
	}()
	return cam
}

func registerSignalHandlers(cancelFunc context.CancelFunc) {
	// Hook Ctrl-C to cause shut down.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.Println("Signal: ", s)
		cancelFunc()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()
}
