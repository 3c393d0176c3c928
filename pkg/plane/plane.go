// Package plane provides the editor drawing plane: a plane spanned by
// three reference points onto which pick rays are projected to produce
// path points, plus the grid drawn over it.
package plane

import (
	"errors"

	"github.com/Faultbox/loa-editor/pkg/math"
)

// ErrDegenerate is returned when the reference points are collinear.
var ErrDegenerate = errors.New("plane reference points are collinear")

// Plane is an oriented plane with an orthonormal in-plane basis.
type Plane struct {
	Origin math.Vec3
	U      math.Vec3 // first in-plane axis, along p2-p1
	V      math.Vec3 // second in-plane axis, perpendicular to U
	Normal math.Vec3
}

// FromPoints builds the plane through p1, p2, p3. U points from p1 to p2
// and V is perpendicular to U inside the plane.
func FromPoints(p1, p2, p3 math.Vec3) (Plane, error) {
	a := p2.Sub(p1)
	b := p3.Sub(p1)
	n := a.Cross(b)
	if n.LengthSq() == 0 {
		return Plane{}, ErrDegenerate
	}
	return Plane{
		Origin: p1,
		U:      a.Normalize(),
		V:      a.Cross(n).Normalize(),
		Normal: n.Normalize(),
	}, nil
}

// Distance returns the signed distance from p to the plane.
func (pl Plane) Distance(p math.Vec3) float32 {
	return p.Sub(pl.Origin).Dot(pl.Normal)
}

// Project returns the orthogonal projection of p onto the plane.
func (pl Plane) Project(p math.Vec3) math.Vec3 {
	return p.Sub(pl.Normal.Scale(pl.Distance(p)))
}

// At returns the world point at plane coordinates (u, v).
func (pl Plane) At(u, v float32) math.Vec3 {
	return pl.Origin.Add(pl.U.Scale(u)).Add(pl.V.Scale(v))
}

// Grid describes the overlay drawn on the plane. Spacing is in plane
// units; a non-positive cell size means one unit.
type Grid struct {
	WidthLines  int
	HeightLines int
	CellWidth   float32
	CellHeight  float32
}

// DefaultGrid matches the editor's default overlay.
func DefaultGrid() Grid {
	return Grid{
		WidthLines:  100,
		HeightLines: 100,
		CellWidth:   1,
		CellHeight:  1,
	}
}

// Lines returns the grid line segments centred on the plane origin:
// WidthLines lines along U-spaced columns and HeightLines lines along
// V-spaced rows.
func (pl Plane) Lines(g Grid) [][2]math.Vec3 {
	if g.CellWidth <= 0 {
		g.CellWidth = 1
	}
	if g.CellHeight <= 0 {
		g.CellHeight = 1
	}
	lines := make([][2]math.Vec3, 0, g.WidthLines+g.HeightLines)

	halfV := float32(g.HeightLines) * g.CellHeight / 2
	for x := -g.WidthLines / 2; x < g.WidthLines/2; x++ {
		u := float32(x) * g.CellWidth
		lines = append(lines, [2]math.Vec3{pl.At(u, halfV), pl.At(u, -halfV)})
	}

	halfU := float32(g.WidthLines) * g.CellWidth / 2
	for y := -g.HeightLines / 2; y < g.HeightLines/2; y++ {
		v := float32(y) * g.CellHeight
		lines = append(lines, [2]math.Vec3{pl.At(halfU, v), pl.At(-halfU, v)})
	}
	return lines
}
