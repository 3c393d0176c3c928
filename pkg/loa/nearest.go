package loa

import "github.com/Faultbox/loa-editor/pkg/math"

// Nearest returns the point on the polyline closest to q and the index of
// the start vertex of the segment it lies on. Segments are scanned in order
// and only a strictly smaller distance replaces the current best, so ties
// resolve to the lowest index.
func Nearest(points []math.Vec3, q math.Vec3) (math.Vec3, int, error) {
	if len(points) < 2 {
		return math.Vec3{}, -1, ErrEmptyPath
	}

	best := 0
	bestPoint, _ := q.ClosestOnSegment(points[0], points[1])
	bestDist := q.Distance(bestPoint)

	for i := 1; i < len(points)-1; i++ {
		c, _ := q.ClosestOnSegment(points[i], points[i+1])
		if d := q.Distance(c); d < bestDist {
			best, bestPoint, bestDist = i, c, d
		}
	}
	return bestPoint, best, nil
}

// Nearest runs Nearest over the path's points.
func (p *Path) Nearest(q math.Vec3) (math.Vec3, int, error) {
	return Nearest(p.points, q)
}
