package beambreak

import (
	"testing"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpiotest"
)

func TestSensorReadsPinLevel(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO5", Num: 5, L: gpio.High}
	s := New(pin)
	if !s.Intact() {
		t.Fatal("High level should read as intact")
	}
	pin.L = gpio.Low
	if s.Intact() {
		t.Fatal("Low level should read as broken")
	}
}

func TestFixed(t *testing.T) {
	var f Fixed
	if !f.Intact() {
		t.Fatal("Zero value should be intact")
	}
	f.SetIntact(false)
	if f.Intact() {
		t.Fatal("Expected broken")
	}
	f.SetIntact(true)
	if !f.Intact() {
		t.Fatal("Expected intact")
	}
}
