package plane

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/loa-editor/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// NewRay creates a ray, normalizing dir.
func NewRay(origin, dir math.Vec3) Ray {
	return Ray{Origin: origin, Direction: dir.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Intersect intersects the ray with the plane.
// Returns the hit point and whether the intersection is valid.
func (r Ray) Intersect(pl Plane) (math.Vec3, bool) {
	// Ray: P = Origin + t * Direction
	// Plane: (P - O) . N = 0
	denom := r.Direction.Dot(pl.Normal)
	if math32.Abs(denom) < 0.001 {
		return math.Vec3{}, false // Ray parallel to plane
	}

	t := pl.Origin.Sub(r.Origin).Dot(pl.Normal) / denom
	if t < 0 {
		return math.Vec3{}, false // Intersection behind ray origin
	}
	return r.At(t), true
}
