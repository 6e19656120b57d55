package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/config"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/indicator"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/pca9685"
)

func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Println("Failed to load config", err)
		return
	}

	pwmController, err := pca9685.New(cfg.Indicator.PWMDevice)
	if err != nil {
		fmt.Println("Failed to open PCA9685", err)
		return
	}
	defer pwmController.Close()

	led, err := indicator.NewLED(pwmController, cfg.Indicator.RedPWM, cfg.Indicator.GreenPWM, cfg.Indicator.BluePWM)
	if err != nil {
		fmt.Println("Failed to configure PCA9685", err)
		return
	}

	fmt.Println(
		`Commands:
    p <n> <pwm-duty-cycle>  # Set a raw PWM output
    l <state>               # Show a status LED state

<n>               Port number 0-15
<pwm-duty-cycle>  Raw PWM duty cycle 0.0-1.0; 0=fully off, 1.0=fully on
<state>           idle, handing-off, shooter-loaded, intake-full, homing, shooting`)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nFailed to read stdin: ", err)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "p":
			if len(parts) < 3 {
				fmt.Println("Not enough parameters")
				continue
			}
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("Expected int, not ", parts[1])
				continue
			}
			if n < 0 || n > 15 {
				fmt.Println("Expected 0 <= n < 16")
				continue
			}
			v, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				fmt.Println("Expected float, not ", parts[2])
				continue
			}
			fmt.Printf("Setting PWM %d to %f\n", n, v)
			if err := pwmController.SetPWM(n, v); err != nil {
				fmt.Println("Failed to write to PCA9685: ", err)
				return
			}
		case "l":
			if len(parts) < 2 {
				fmt.Println("Not enough parameters")
				continue
			}
			state, ok := parseState(parts[1])
			if !ok {
				fmt.Println("Unknown state ", parts[1])
				continue
			}
			led.SetState(state)
		default:
			fmt.Println("Unknown command ", parts[0])
		}
	}
}

func parseState(s string) (indicator.State, bool) {
	for state := range indicator.Colours {
		if state.String() == s {
			return state, true
		}
	}
	return 0, false
}
