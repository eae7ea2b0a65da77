// Package physics provides distance, overlap and frame-rate-independent decay helpers.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return mgl64.Vec2{x2 - x1, y2 - y1}.Len()
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	d := mgl64.Vec2{x2 - x1, y2 - y1}
	return d.Dot(d)
}

// Toward returns the unit vector pointing from (x1,y1) to (x2,y2) and the distance between them.
// The direction is zero when the points coincide.
func Toward(x1, y1, x2, y2 float64) (nx, ny, dist float64) {
	d := mgl64.Vec2{x2 - x1, y2 - y1}
	dist = d.Len()
	if dist == 0 {
		return 0, 0, 0
	}
	n := d.Mul(1 / dist)
	return n.X(), n.Y(), dist
}

// PointInCircle checks if a point is strictly within radius of a target position.
func PointInCircle(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) < radius*radius
}

// CirclesOverlap checks if two circles overlap.
func CirclesOverlap(x1, y1, r1, x2, y2, r2 float64) bool {
	minDist := r1 + r2
	return DistanceSquared(x1, y1, x2, y2) < minDist*minDist
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// Decay returns the per-step multiplier for a per-frame rate scaled by dt.
// rate^dt keeps exponential decay correct under variable frame timing.
func Decay(rate, dt float64) float64 {
	return math.Pow(rate, dt)
}

// Lerp moves a toward b by the given fraction.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
