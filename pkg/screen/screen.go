package screen

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/fogleman/gg"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/angle"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/shooter"
)

const (
	S = 128

	DefaultDevice  = "/dev/fb1"
	UpdateInterval = 500 * time.Millisecond
)

// Screen is the shooter's status display.  It implements shooter.Telemetry;
// Post only stores the status and the framebuffer is redrawn on its own
// goroutine.
type Screen struct {
	lock       sync.Mutex
	status     shooter.Status
	haveStatus bool
	busVoltage float64
	mode       string
}

var _ shooter.Telemetry = (*Screen)(nil)

func New() *Screen {
	return &Screen{}
}

func (s *Screen) Post(status shooter.Status) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.status = status
	s.haveStatus = true
}

func (s *Screen) SetBusVoltage(v float64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.busVoltage = v
}

// SetMode sets the banner at the top of the screen.
func (s *Screen) SetMode(mode string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.mode = mode
}

func (s *Screen) LoopUpdatingScreen(ctx context.Context, device string) {
	f, err := os.OpenFile(device, os.O_RDWR, 0666)
	if err != nil {
		fmt.Println("Failed to open screen, ignoring")
		return
	}
	defer f.Close()

	ticker := time.NewTicker(UpdateInterval)
	defer ticker.Stop()

	var buf [S * S * 2]byte
	for {
		select {
		case <-ctx.Done():
			for i := range buf {
				buf[i] = 0
			}
			_, _ = f.Seek(0, 0)
			_, _ = f.Write(buf[:])
			return
		case <-ticker.C:
		}

		ToRGB565(s.Render(), buf[:])
		_, err = f.Seek(0, 0)
		if err != nil {
			fmt.Println("Screen failure: ", err)
			return
		}
		for i := 0; i < S; i++ {
			_, err = f.Write(buf[i*S*2 : (i+1)*S*2])
			if err != nil {
				fmt.Println("Screen failure: ", err)
				return
			}
			time.Sleep(10 * time.Microsecond)
		}
	}
}

// Render draws the latest status.
func (s *Screen) Render() image.Image {
	s.lock.Lock()
	st := s.status
	have := s.haveStatus
	voltage := s.busVoltage
	mode := s.mode
	s.lock.Unlock()

	dc := gg.NewContext(S, S)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGBA(1, 0.9, 0, 1)
	dc.DrawString(mode, 2, 12)

	if !have {
		dc.DrawString("NO DATA", 2, 40)
		return dc.Image()
	}

	owner := st.Owner
	if owner == "" {
		owner = "-"
	}
	dc.DrawString(owner, 2, 26)

	dc.Push()
	dc.Translate(2, 34)
	drawFlag(dc, "LOAD", st.Loaded, 0)
	drawFlag(dc, "POS", st.InPosition, 1)
	drawFlag(dc, "FLY", st.FlywheelAtGoal, 2)
	drawFlag(dc, "PIV", st.PivotAtGoal, 3)
	dc.Pop()

	dc.SetRGBA(1, 0.9, 0, 1)
	dc.DrawString(fmt.Sprintf("L %4.0f R %4.0f", st.LeftFlywheel.Velocity, st.RightFlywheel.Velocity), 2, 62)
	dc.DrawString(fmt.Sprintf("PIV %5.1f", angle.ToDegrees(st.Pivot.Position)), 2, 76)
	dc.DrawString(fmt.Sprintf("FEED %4.0f", st.FeederApplied), 2, 90)
	if st.Homing {
		dc.Push()
		dc.Translate(110, 86)
		DrawWarning(dc)
		dc.Pop()
	}

	dc.Push()
	dc.Translate(94, 5)
	drawPowerBar(dc, voltage)
	dc.Pop()

	return dc.Image()
}

func drawFlag(dc *gg.Context, label string, on bool, slot int) {
	x := float64(slot) * 23
	if on {
		dc.SetRGB(0, 1, 0)
	} else {
		dc.SetRGB(0.3, 0.3, 0.3)
	}
	dc.DrawRectangle(x, 0, 20, 8)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.DrawString(label, x, 18)
}

// ToRGB565 packs an image into the framebuffer's 16-bit format.  The panel
// is mounted rotated, so rows and columns are swapped.
func ToRGB565(img image.Image, buf []byte) {
	for y := 0; y < S; y++ {
		for x := 0; x < S; x++ {
			r, g, b, _ := img.At(x, y).RGBA() // 16-bit pre-multiplied

			rb := byte(r >> (16 - 5))
			gb := byte(g >> (16 - 6)) // Green has 6 bits
			bb := byte(b >> (16 - 5))

			buf[(S-1-y)*2+x*S*2+1] = (rb << 3) | (gb >> 3)
			buf[(S-1-y)*2+x*S*2] = bb | (gb << 5)
		}
	}
}

const (
	minCellVoltage = 3
	maxCellVoltage = 4.2
)

func drawPowerBar(dc *gg.Context, voltage float64) {
	// 3-cell pack.
	cellVoltage := voltage / 3
	charge := (cellVoltage - minCellVoltage) / (maxCellVoltage - minCellVoltage)

	if charge < 0.1 {
		dc.SetRGBA(1, 0.2, 0, 1)
	} else {
		dc.SetRGBA(1, 0.9, 0, 1)
	}
	dc.DrawRectangle(0, 70, 30, 10)
	for n := 2; n < 13; n++ {
		if charge >= (float64(n) / 13) {
			dc.DrawRectangle(2, 75-float64(n)*5, 26, 3)
		}
	}
	dc.Fill()
	dc.DrawString(fmt.Sprintf("%.1fv", voltage), -2, 93)
}

func DrawWarning(dc *gg.Context) {
	dc.SetRGB(1, 0.2, 0)
	dc.DrawRegularPolygon(3, 0, 0, 14, 0)
	dc.Fill()
	dc.SetRGBA(0, 0, 0, 0.9)
	dc.DrawString("!", -3, 3)
}
