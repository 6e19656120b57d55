package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/screen"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/shooter"
)

func main() {
	ctx := context.Background()

	s := screen.New()
	go s.LoopUpdatingScreen(ctx, screen.DefaultDevice)

	s.SetBusVoltage(11.7)
	s.Post(shooter.Status{
		Owner:          "handoff",
		Loaded:         true,
		FlywheelAtGoal: true,
	})

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nFailed to read stdin: ", err)
			return
		}

		s.SetMode(strings.TrimSpace(line))
	}
}
