package main

import (
	"fmt"
	"time"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/config"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/ina219"
)

// Prints the pivot motor supply readings, for calibrating the homing
// current limit.
func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Println("Failed to load config", err)
		return
	}
	hw := cfg.Hardware

	sensor, err := ina219.NewI2C(hw.I2CBus, hw.PivotCurrentSensorAddr)
	if err != nil {
		fmt.Println("Failed to open INA219", err)
		return
	}

	err = sensor.Configure(hw.ShuntOhms, hw.MaxCurrentAmps)
	if err != nil {
		fmt.Println("Failed to configure INA219", err)
		return
	}

	fmt.Printf("Homing current limit: %.2fA\n", cfg.Homing.CurrentLimitAmps)
	var peak float64
	for range time.NewTicker(100 * time.Millisecond).C {
		voltage, err := sensor.ReadBusVoltage()
		fmt.Printf("%.2fV %v ", voltage, err)
		current, err := sensor.ReadCurrent()
		fmt.Printf("%.3fA %v ", current, err)
		power, err := sensor.ReadPower()
		fmt.Printf("%.3fW %v ", power, err)
		if current > peak {
			peak = current
		}
		fmt.Printf("peak %.3fA\n", peak)
	}
}
