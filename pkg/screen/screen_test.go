package screen

import (
	"image"
	"image/color"
	"testing"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/shooter"
)

func TestRenderWithoutStatus(t *testing.T) {
	s := New()
	img := s.Render()
	if b := img.Bounds(); b.Dx() != S || b.Dy() != S {
		t.Fatalf("Expected %dx%d image, got %v", S, S, b)
	}
}

func TestRenderShowsLoadedFlag(t *testing.T) {
	s := New()
	s.Post(shooter.Status{Loaded: true, Owner: "handoff"})
	img := s.Render()
	// The LOAD flag box is drawn green at (2..22, 34..42).
	r, g, b, _ := img.At(10, 38).RGBA()
	if g < 0xf000 || r > 0x1000 || b > 0x1000 {
		t.Fatalf("Expected a green flag, got %x %x %x", r, g, b)
	}
	// POS is off.
	r, g, _, _ = img.At(33, 38).RGBA()
	if g > 0x8000 || r != g {
		t.Fatalf("Expected a grey flag, got %x %x", r, g)
	}
}

func TestToRGB565(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, S, S))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 255, A: 255})
	var buf [S * S * 2]byte
	ToRGB565(img, buf[:])

	// (0,0) lands at the end of the first column.
	if buf[(S-1)*2] != 0xff || buf[(S-1)*2+1] != 0xff {
		t.Fatalf("Expected white, got %x %x", buf[(S-1)*2], buf[(S-1)*2+1])
	}
	// (1,0) is pure red: top five bits of the high byte.
	hi := buf[(S-1)*2+S*2+1]
	lo := buf[(S-1)*2+S*2]
	if hi != 0xf8 || lo != 0 {
		t.Fatalf("Expected red 0xf800, got %x%02x", hi, lo)
	}
}
