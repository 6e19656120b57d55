package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/config"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/motor"
)

// Usage: picotest <bus-index> <channel> <output>
//
// Drives one Pico-BLDC output and prints its encoder, for checking motor
// numbering and direction before a match.
func main() {
	fmt.Println("Pico-BLDC test program")
	if len(os.Args) != 4 {
		fmt.Println("Usage: picotest <bus-index> <channel> <output -1.0..1.0>")
		os.Exit(1)
	}
	busIdx, err1 := strconv.Atoi(os.Args[1])
	channel, err2 := strconv.Atoi(os.Args[2])
	output, err3 := strconv.ParseFloat(os.Args[3], 64)
	if err1 != nil || err2 != nil || err3 != nil || channel < 0 || channel >= motor.NumPicoChannels {
		fmt.Println("Bad arguments")
		os.Exit(1)
	}

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		panic(err)
	}
	if busIdx < 0 || busIdx >= len(cfg.Hardware.PicoBuses) {
		fmt.Printf("Only %d Pico buses configured\n", len(cfg.Hardware.PicoBuses))
		os.Exit(1)
	}

	pico, err := motor.NewPicoBLDC(cfg.Hardware.PicoBuses[busIdx])
	if err != nil {
		panic(err)
	}
	defer pico.Close()
	fmt.Println("Created PicoBLDC object. Enabling watchdog...")

	if err := pico.SetWatchdog(time.Second); err != nil {
		panic(err)
	}
	fmt.Println("Watchdog enabled.")

	m := pico.Channel(channel)
	for {
		if err := m.Set(output); err != nil {
			fmt.Println("Failed to set output:", err)
		}
		battV, _ := pico.BattVolts()
		status, _ := pico.Status()
		fmt.Printf("%.2fV rotations=%.2f rpm=%.0f Status=%x\n",
			battV, m.EncoderRotations(), m.EncoderRPM(), status)
		time.Sleep(500 * time.Millisecond)
	}
}
