package actuator

import (
	"math"
	"testing"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/motor"
)

func servoConfig() Config {
	return Config{
		Mode:       PositionServo,
		Rotational: true,
		Gearing:    1,
		KP:         0.5,
		Tolerance:  0.05,
	}
}

// setShaftAngle puts the simulated output shaft at rad radians.
func setShaftAngle(m *motor.Dummy, rad float64) {
	m.SetState(rad/(2*math.Pi), 0)
}

func TestRotationalErrorAlwaysInRange(t *testing.T) {
	m := motor.NewDummy("pivot", 1000)
	a := New("pivot", servoConfig(), m)
	for sp := -10.0; sp <= 10; sp += 0.7 {
		for pos := -10.0; pos <= 10; pos += 0.9 {
			setShaftAngle(m, pos)
			a.SetSetpoint(sp, 0)
			e := a.Error()
			if e <= -math.Pi || e > math.Pi {
				t.Fatalf("Error %f out of range for setpoint %f position %f", e, sp, pos)
			}
		}
	}
}

func TestRotationalErrorTakesShortWay(t *testing.T) {
	m := motor.NewDummy("pivot", 1000)
	a := New("pivot", servoConfig(), m)
	setShaftAngle(m, 3)
	a.SetSetpoint(-3, 0)
	// -3 - 3 = -6, which is 2π-6 ≈ 0.283 the short way.
	if math.Abs(a.Error()-(2*math.Pi-6)) > 1e-9 {
		t.Fatalf("Expected short-way error, got %f", a.Error())
	}
	if a.Output() <= 0 {
		t.Fatalf("Expected positive drive towards the short way, got %f", a.Output())
	}
}

func TestLinearErrorIsSubtraction(t *testing.T) {
	m := motor.NewDummy("elevator", 1000)
	cfg := Config{Mode: PositionServo, Gearing: 1, DiameterM: 1 / math.Pi, KP: 1}
	a := New("elevator", cfg, m)
	m.SetState(2, 0) // 2 rotations of a 1m-circumference spool.
	a.SetSetpoint(10, 0)
	if math.Abs(a.Error()-8) > 1e-9 {
		t.Fatalf("Expected linear error of 8, got %f", a.Error())
	}
}

func TestAtGoal(t *testing.T) {
	m := motor.NewDummy("pivot", 1000)
	a := New("pivot", servoConfig(), m)
	setShaftAngle(m, 1.0)
	a.SetSetpoint(1.02, 0)
	if !a.AtGoal(0.05) || !a.AtDefaultGoal() {
		t.Fatal("Expected to be at goal")
	}
	if a.AtGoal(0.01) {
		t.Fatal("Expected not to be at goal with a tight tolerance")
	}
}

func TestBangBang(t *testing.T) {
	m := motor.NewDummy("flywheel", 6000)
	a := New("flywheel", Config{Mode: VelocityBangBang, Gearing: 1, Tolerance: 100}, m)

	m.SetState(0, 1000)
	a.SetSetpoint(5000, 0)
	if a.Output() != 1 {
		t.Fatalf("Expected full output below setpoint, got %f", a.Output())
	}

	m.SetState(0, 5200)
	a.SetSetpoint(5000, 0)
	if a.Output() != 0 {
		t.Fatalf("Expected no output above setpoint, got %f", a.Output())
	}

	a.SetSetpoint(0, 0)
	if a.Output() != 0 {
		t.Fatalf("Expected coast at zero setpoint, got %f", a.Output())
	}
}

func TestVelocityIsOutputShaftRPM(t *testing.T) {
	m := motor.NewDummy("flywheel", 6000)
	a := New("flywheel", Config{Mode: VelocityBangBang, Gearing: 2}, m)
	m.SetState(0, 1000)
	if a.Velocity() != 2000 {
		t.Fatalf("Expected 2000 RPM, got %f", a.Velocity())
	}
	a.SetSetpoint(2100, 0)
	if a.Error() != 100 {
		t.Fatalf("Expected error of 100 RPM, got %f", a.Error())
	}
}

func TestFlywheelFeedForward(t *testing.T) {
	m := motor.NewDummy("feeder", 6000)
	a := New("feeder", Config{Mode: VelocityFlywheel, Gearing: 1, KFF: 1.0 / 6000}, m)
	m.SetState(0, 3000)
	a.SetSetpoint(3000, 0)
	if math.Abs(a.Output()-0.5) > 1e-9 {
		t.Fatalf("Expected pure feed-forward output of 0.5, got %f", a.Output())
	}
}

func TestArbitraryFeedForwardVolts(t *testing.T) {
	m := motor.NewDummy("pivot", 1000)
	a := New("pivot", servoConfig(), m)
	a.SetSetpoint(0, 6)
	if math.Abs(a.Output()-0.5) > 1e-9 {
		t.Fatalf("Expected 6V feed-forward to add 0.5, got %f", a.Output())
	}
}

func TestRawOverride(t *testing.T) {
	m := motor.NewDummy("pivot", 1000)
	a := New("pivot", servoConfig(), m)

	a.SetRaw(2)
	if a.Mode() != Raw {
		t.Fatalf("Expected raw mode, got %v", a.Mode())
	}
	if a.Output() != 1 || m.Output() != 1 {
		t.Fatalf("Expected raw output clamped to 1, got %f", a.Output())
	}

	a.SetSetpoint(0, 0)
	if a.Mode() != PositionServo {
		t.Fatalf("Expected closed loop again, got %v", a.Mode())
	}
}

func TestSetPositionRezeroes(t *testing.T) {
	m := motor.NewDummy("pivot", 1000)
	a := New("pivot", servoConfig(), m)
	setShaftAngle(m, 1.5)
	a.SetPosition(0)
	if math.Abs(a.Position()) > 1e-9 {
		t.Fatalf("Expected zero after re-zero, got %f", a.Position())
	}
}

func TestParseMode(t *testing.T) {
	for m := PositionServo; m <= Raw; m++ {
		parsed, err := ParseMode(m.String())
		if err != nil || parsed != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), parsed, err)
		}
	}
	if _, err := ParseMode("warp-drive"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}
