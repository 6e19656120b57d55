package lookup

import (
	"math"
	"testing"
)

func testTable() *Table {
	return NewTable(
		Point{Distance: 3, Config: NewShootingConfiguration(0.6, 4600, 4000)},
		Point{Distance: 1, Config: NewShootingConfiguration(1.0, 3500, 3000)},
		Point{Distance: 2, Config: NewShootingConfiguration(0.8, 4000, 3500)},
	)
}

func expectConfig(t *testing.T, got, want ShootingConfiguration) {
	t.Helper()
	const eps = 1e-9
	if math.Abs(got.PivotAngle()-want.PivotAngle()) > eps ||
		math.Abs(got.LeftSpeed()-want.LeftSpeed()) > eps ||
		math.Abs(got.RightSpeed()-want.RightSpeed()) > eps {
		t.Errorf("Got %v, want %v", got, want)
	}
}

func TestLookupExactPoints(t *testing.T) {
	tbl := testTable()
	expectConfig(t, tbl.Lookup(1), NewShootingConfiguration(1.0, 3500, 3000))
	expectConfig(t, tbl.Lookup(2), NewShootingConfiguration(0.8, 4000, 3500))
	expectConfig(t, tbl.Lookup(3), NewShootingConfiguration(0.6, 4600, 4000))
}

func TestLookupInterpolates(t *testing.T) {
	tbl := testTable()
	expectConfig(t, tbl.Lookup(1.5), NewShootingConfiguration(0.9, 3750, 3250))
	expectConfig(t, tbl.Lookup(2.25), NewShootingConfiguration(0.75, 4150, 3625))
}

func TestLookupClampsOutsideRange(t *testing.T) {
	tbl := testTable()
	expectConfig(t, tbl.Lookup(10), NewShootingConfiguration(0.6, 4600, 4000))
	expectConfig(t, tbl.Lookup(-1), NewShootingConfiguration(1.0, 3500, 3000))
}

func TestLookupNaN(t *testing.T) {
	tbl := testTable()
	expectConfig(t, tbl.Lookup(math.NaN()), NewShootingConfiguration(1.0, 3500, 3000))

	two := NewTable(
		Point{Distance: 1, Config: NewShootingConfiguration(1.0, 3500, 3000)},
		Point{Distance: 2, Config: NewShootingConfiguration(0.8, 4000, 3500)},
	)
	expectConfig(t, two.Lookup(math.NaN()), NewShootingConfiguration(1.0, 3500, 3000))
}

func TestLookupEmptyTable(t *testing.T) {
	tbl := NewTable()
	if got := tbl.Lookup(2); got != (ShootingConfiguration{}) {
		t.Errorf("Expected zero configuration, got %v", got)
	}
	if lo, hi := tbl.Domain(); lo != 0 || hi != 0 {
		t.Errorf("Expected empty domain, got %v..%v", lo, hi)
	}
}

func TestDuplicateDistanceLastWins(t *testing.T) {
	tbl := NewTable(
		Point{Distance: 1, Config: NewShootingConfiguration(1, 1, 1)},
		Point{Distance: 1, Config: NewShootingConfiguration(2, 2, 2)},
	)
	if tbl.Len() != 1 {
		t.Fatalf("Expected one point, got %d", tbl.Len())
	}
	expectConfig(t, tbl.Lookup(1), NewShootingConfiguration(2, 2, 2))
}

func TestDomain(t *testing.T) {
	lo, hi := testTable().Domain()
	if lo != 1 || hi != 3 {
		t.Errorf("Expected domain 1..3, got %v..%v", lo, hi)
	}
}
