// Package angle has helpers for angles in radians.
package angle

import "math"

// Wrap shifts f into (-π, π].
func Wrap(f float64) float64 {
	r := math.Mod(f, 2*math.Pi)
	if r <= -math.Pi {
		r += 2 * math.Pi
	} else if r > math.Pi {
		r -= 2 * math.Pi
	}
	return r
}

// Diff returns the shortest signed rotation from b to a.
func Diff(a, b float64) float64 {
	return Wrap(Wrap(a) - Wrap(b))
}

func ToRadians(d float64) float64 {
	return d * math.Pi / 180
}

func ToDegrees(r float64) float64 {
	return r * 180 / math.Pi
}
