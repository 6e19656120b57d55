package lookup

import (
	"fmt"
	"math"
	"sort"
)

// ShootingConfiguration is a pivot angle (radians) and a pair of flywheel
// speeds (RPM).
type ShootingConfiguration struct {
	pivotAngle float64
	leftSpeed  float64
	rightSpeed float64
}

func NewShootingConfiguration(pivotAngle, leftSpeed, rightSpeed float64) ShootingConfiguration {
	return ShootingConfiguration{
		pivotAngle: pivotAngle,
		leftSpeed:  leftSpeed,
		rightSpeed: rightSpeed,
	}
}

func (c ShootingConfiguration) PivotAngle() float64 {
	return c.pivotAngle
}

func (c ShootingConfiguration) LeftSpeed() float64 {
	return c.leftSpeed
}

func (c ShootingConfiguration) RightSpeed() float64 {
	return c.rightSpeed
}

func (c ShootingConfiguration) String() string {
	return fmt.Sprintf("pivot=%.3frad left=%.0frpm right=%.0frpm", c.pivotAngle, c.leftSpeed, c.rightSpeed)
}

// interpolate returns the configuration a fraction t of the way from a to b.
func interpolate(a, b ShootingConfiguration, t float64) ShootingConfiguration {
	lerp := func(x, y float64) float64 {
		return x + (y-x)*t
	}
	return ShootingConfiguration{
		pivotAngle: lerp(a.pivotAngle, b.pivotAngle),
		leftSpeed:  lerp(a.leftSpeed, b.leftSpeed),
		rightSpeed: lerp(a.rightSpeed, b.rightSpeed),
	}
}

type Point struct {
	Distance float64
	Config   ShootingConfiguration
}

// Table maps distance to the target (metres) to a ShootingConfiguration by
// linear interpolation between calibrated points.  Distances outside the
// calibrated range clamp to the nearest end point.
type Table struct {
	points []Point
}

// NewTable sorts the points by distance.  If a distance appears more than
// once the last one given wins.
func NewTable(points ...Point) *Table {
	byDistance := map[float64]ShootingConfiguration{}
	for _, p := range points {
		byDistance[p.Distance] = p.Config
	}
	t := &Table{}
	for d, c := range byDistance {
		t.points = append(t.points, Point{Distance: d, Config: c})
	}
	sort.Slice(t.points, func(i, j int) bool {
		return t.points[i].Distance < t.points[j].Distance
	})
	return t
}

func (t *Table) Len() int {
	return len(t.points)
}

// Domain returns the smallest and largest calibrated distances.
func (t *Table) Domain() (min, max float64) {
	if len(t.points) == 0 {
		return 0, 0
	}
	return t.points[0].Distance, t.points[len(t.points)-1].Distance
}

// Lookup returns the configuration for the given distance.  An empty table
// returns the zero configuration; a NaN distance gives the nearest calibrated
// point.
func (t *Table) Lookup(distance float64) ShootingConfiguration {
	n := len(t.points)
	if n == 0 {
		return ShootingConfiguration{}
	}
	if math.IsNaN(distance) || distance <= t.points[0].Distance {
		return t.points[0].Config
	}
	if distance >= t.points[n-1].Distance {
		return t.points[n-1].Config
	}
	// First point strictly beyond the distance; 1 <= i <= n-1 here.
	i := sort.Search(n, func(i int) bool {
		return t.points[i].Distance > distance
	})
	lo, hi := t.points[i-1], t.points[i]
	frac := (distance - lo.Distance) / (hi.Distance - lo.Distance)
	return interpolate(lo.Config, hi.Config, frac)
}
