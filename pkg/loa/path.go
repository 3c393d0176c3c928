// Package loa implements the line-of-action path model: point entry,
// nearest-point search over the polyline and sub-range re-editing.
package loa

import (
	"errors"

	"github.com/Faultbox/loa-editor/pkg/math"
)

// Path errors.
var (
	ErrEmptyPath  = errors.New("path has fewer than 2 points")
	ErrOutOfRange = errors.New("point too far from path")
	ErrNotEditing = errors.New("no edit in progress")
)

// Path is an ordered, open polyline. Points i and i+1 form segment i.
type Path struct {
	points []math.Vec3
	dirty  bool
}

// NewPath creates a path holding a copy of points.
func NewPath(points ...math.Vec3) *Path {
	p := &Path{}
	p.Set(points)
	return p
}

// Add appends a point and marks the path dirty.
func (p *Path) Add(pt math.Vec3) {
	p.points = append(p.points, pt)
	p.dirty = true
}

// Clear removes every point.
func (p *Path) Clear() {
	p.points = nil
	p.dirty = true
}

// Set replaces the whole path with a copy of points.
func (p *Path) Set(points []math.Vec3) {
	p.points = append([]math.Vec3(nil), points...)
	p.dirty = true
}

// Len returns the number of points.
func (p *Path) Len() int {
	return len(p.points)
}

// At returns point i.
func (p *Path) At(i int) math.Vec3 {
	return p.points[i]
}

// Points returns a copy of the points in traversal order.
func (p *Path) Points() []math.Vec3 {
	return append([]math.Vec3(nil), p.points...)
}

// Segments returns the polyline segments, one per consecutive point pair.
func (p *Path) Segments() [][2]math.Vec3 {
	if len(p.points) < 2 {
		return nil
	}
	segs := make([][2]math.Vec3, 0, len(p.points)-1)
	for i := 1; i < len(p.points); i++ {
		segs = append(segs, [2]math.Vec3{p.points[i-1], p.points[i]})
	}
	return segs
}

// Length returns the arc length of the polyline.
func (p *Path) Length() float32 {
	var total float32
	for i := 1; i < len(p.points); i++ {
		total += p.points[i-1].Distance(p.points[i])
	}
	return total
}

// Dirty reports whether the path changed since the last MarkClean.
func (p *Path) Dirty() bool {
	return p.dirty
}

// MarkClean resets the dirty flag after the path has been drawn.
func (p *Path) MarkClean() {
	p.dirty = false
}

// splice replaces the inclusive index range [start, end] with repl.
func (p *Path) splice(start, end int, repl []math.Vec3) {
	out := make([]math.Vec3, 0, len(p.points)-(end-start+1)+len(repl))
	out = append(out, p.points[:start]...)
	out = append(out, repl...)
	out = append(out, p.points[end+1:]...)
	p.points = out
	p.dirty = true
}

// Markers holds rotation markers. They are only drawn, never ordered
// against the path.
type Markers struct {
	points []math.Vec3
}

// Add appends a marker.
func (m *Markers) Add(pt math.Vec3) {
	m.points = append(m.points, pt)
}

// Clear removes every marker.
func (m *Markers) Clear() {
	m.points = nil
}

// Len returns the number of markers.
func (m *Markers) Len() int {
	return len(m.points)
}

// Points returns a copy of the markers.
func (m *Markers) Points() []math.Vec3 {
	return append([]math.Vec3(nil), m.points...)
}
