package hardware

import (
	"context"
	"fmt"
	"time"
)

// BusVoltageSink is satisfied by *screen.Screen.
type BusVoltageSink interface {
	SetBusVoltage(v float64)
}

// LoopMonitoringPower polls the battery voltage and, if fitted, the pivot
// current until the context is done.
func LoopMonitoringPower(ctx context.Context, hw Interface, sink BusVoltageSink, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	var lastLogTime time.Time
	for {
		v, err := hw.BattVolts()
		if err != nil {
			fmt.Println("HW: failed to read battery voltage:", err)
		} else {
			sink.SetBusVoltage(v)
		}

		if time.Since(lastLogTime) > 10*time.Second {
			if sensor := hw.PivotCurrentSensor(); sensor != nil {
				bv, errV := sensor.ReadBusVoltage()
				bc, errC := sensor.ReadCurrent()
				bp, errP := sensor.ReadPower()
				if errV == nil && errC == nil && errP == nil {
					fmt.Printf("HW: pivot supply %.2fV %.2fA %.2fW\n", bv, bc, bp)
				}
			}
			fmt.Printf("HW: battery %.2fV\n", v)
			lastLogTime = time.Now()
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
