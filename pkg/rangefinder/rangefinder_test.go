package rangefinder

import (
	"math"
	"testing"
	"time"
)

func TestPinholeDistance(t *testing.T) {
	d, ok := PinholeDistance(500, 0.4, 100)
	if !ok || math.Abs(d-2.0) > 1e-9 {
		t.Fatalf("Expected 2m, got %v %v", d, ok)
	}
	if _, ok := PinholeDistance(500, 0.4, 0); ok {
		t.Fatal("Zero height should not give a distance")
	}
}

func TestTrackerHoldsFallbackUntilSeen(t *testing.T) {
	tr := NewTracker(2.5, 0.5)
	now := time.Unix(1000, 0)
	if tr.Distance() != 2.5 {
		t.Fatalf("Expected fallback, got %v", tr.Distance())
	}
	if _, seen := tr.Age(now); seen {
		t.Fatal("Target should not have been seen yet")
	}

	tr.Record(4, now)
	if tr.Distance() != 4 {
		t.Fatalf("First observation should be taken as-is, got %v", tr.Distance())
	}
	tr.Record(2, now.Add(time.Second))
	if tr.Distance() != 3 {
		t.Fatalf("Expected smoothed distance of 3, got %v", tr.Distance())
	}

	// Junk is ignored.
	tr.Record(math.NaN(), now)
	tr.Record(-1, now)
	if tr.Distance() != 3 {
		t.Fatalf("Bad observations changed the distance to %v", tr.Distance())
	}
	if age, _ := tr.Age(now.Add(3 * time.Second)); age != 2*time.Second {
		t.Fatalf("Expected age of 2s, got %v", age)
	}
}

func TestFixed(t *testing.T) {
	f := NewFixed(1)
	f.Set(3.5)
	if f.Distance() != 3.5 {
		t.Fatalf("Expected 3.5, got %v", f.Distance())
	}
}
