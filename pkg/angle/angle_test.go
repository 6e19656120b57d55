package angle

import (
	"math"
	"testing"
)

func TestWrap(t *testing.T) {
	expectWrapResult(t, 0, 0)
	expectWrapResult(t, math.Pi, math.Pi)
	expectWrapResult(t, -math.Pi, math.Pi)
	expectWrapResult(t, 2*math.Pi, 0)
	expectWrapResult(t, 3*math.Pi/2, -math.Pi/2)
	expectWrapResult(t, -3*math.Pi/2, math.Pi/2)
	expectWrapResult(t, 0.5, 0.5)
	expectWrapResult(t, -0.5, -0.5)
}

func expectWrapResult(t *testing.T, in, expected float64) {
	t.Helper()
	out := Wrap(in)
	if out <= -math.Pi || out > math.Pi {
		t.Errorf("Wrap(%f) = %f, out of range", in, out)
	}
	if math.Abs(out-expected) > 1e-9 {
		t.Errorf("Wrap(%f) = %f, expected %f", in, out, expected)
	}
}

func TestDiffAlwaysInRange(t *testing.T) {
	for a := -20.0; a <= 20; a += 0.37 {
		for b := -20.0; b <= 20; b += 0.41 {
			d := Diff(a, b)
			if d <= -math.Pi || d > math.Pi {
				t.Fatalf("Diff(%f, %f) = %f, out of range", a, b, d)
			}
		}
	}
}

func TestDiffTakesShortWayRound(t *testing.T) {
	// 170° to -170° is 20° the short way, not 340°.
	d := Diff(ToRadians(-170), ToRadians(170))
	if math.Abs(ToDegrees(d)-20) > 1e-9 {
		t.Errorf("Expected 20 degrees, got %f", ToDegrees(d))
	}
}
