package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/joystick"
)

func main() {
	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())

	// Hook Ctrl-C etc.
	registerSignalHandlers(cancel)

	jDev := os.Getenv("JOYSTICK_DEVICE")
	if jDev == "" {
		jDev = joystick.DefaultDevice
	}
	j, err := joystick.WaitForJoystick(ctx, jDev)
	if err != nil {
		return
	}

	joystickEvents := make(chan *joystick.Event)
	go func() {
		defer cancel()
		err := joystick.LoopReadingEvents(ctx, j, joystickEvents)
		fmt.Printf("Joystick failed: %v\n", err)
	}()
	for je := range joystickEvents {
		fmt.Println(je)
	}
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
