// Package physics provides distance and proximity utilities.
package physics

import "math"

// Distance calculates the Euclidean distance between two points in 3D.
func Distance(x1, y1, z1, x2, y2, z2 float64) float64 {
	return math.Sqrt(DistanceSquared(x1, y1, z1, x2, y2, z2))
}

// DistanceSquared calculates the squared 3D distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, z1, x2, y2, z2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	dz := z2 - z1
	return dx*dx + dy*dy + dz*dz
}

// PlanarDistance is the distance between two points projected onto the
// ground (x,z) plane. Height is ignored.
func PlanarDistance(x1, z1, x2, z2 float64) float64 {
	dx := x2 - x1
	dz := z2 - z1
	return math.Sqrt(dx*dx + dz*dz)
}

// Within reports whether two points are strictly closer than threshold.
func Within(x1, y1, z1, x2, y2, z2, threshold float64) bool {
	return DistanceSquared(x1, y1, z1, x2, y2, z2) < threshold*threshold
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
