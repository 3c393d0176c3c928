// Package pose holds per-frame skeleton poses produced by the animation
// backend and their string blob encoding.
package pose

import (
	"github.com/chewxy/math32"
	"github.com/jinzhu/copier"

	"github.com/Faultbox/loa-editor/pkg/math"
)

// Node is one transform of a pose tree. Names match skeleton node names.
type Node struct {
	Name     string    `json:"name" yaml:"name"`
	Position math.Vec3 `json:"position" yaml:"position"`
	Rotation math.Quat `json:"rotation" yaml:"rotation"`
	Children []Node    `json:"children,omitempty" yaml:"children,omitempty"`
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for i := range n.Children {
		n.Children[i].Walk(fn)
	}
}

// Count returns the number of nodes in the tree.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Find returns the first node named name in pre-order, or nil.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// Clone returns a deep copy of the tree.
func (n Node) Clone() Node {
	var out Node
	if err := copier.CopyWithOption(&out, &n, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched types
		panic(err)
	}
	return out
}

// Equal reports whether both trees have the same names, bit-identical
// transforms and the same shape. Nil and empty child lists are equal.
func (n Node) Equal(other Node) bool {
	if n.Name != other.Name || !sameVec3(n.Position, other.Position) || !sameQuat(n.Rotation, other.Rotation) {
		return false
	}
	if len(n.Children) != len(other.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Sequence is the ordered list of frames for a whole skeleton, plus the
// path the backend resampled while generating them.
type Sequence struct {
	Frames []Node      `json:"frames" yaml:"frames"`
	Path   []math.Vec3 `json:"path" yaml:"path"`
}

// Len returns the number of frames.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}

// Clone returns a deep copy of the sequence.
func (s *Sequence) Clone() *Sequence {
	if s == nil {
		return nil
	}
	out := &Sequence{}
	if err := copier.CopyWithOption(out, s, copier.Option{DeepCopy: true}); err != nil {
		panic(err)
	}
	return out
}

// Equal reports whether both sequences hold equal frames and paths.
func (s *Sequence) Equal(other *Sequence) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.Frames) != len(other.Frames) || len(s.Path) != len(other.Path) {
		return false
	}
	for i := range s.Frames {
		if !s.Frames[i].Equal(other.Frames[i]) {
			return false
		}
	}
	for i := range s.Path {
		if !sameVec3(s.Path[i], other.Path[i]) {
			return false
		}
	}
	return true
}

// sameVec3 and sameQuat compare bit patterns, so NaN equals itself and
// -0 differs from 0.
func sameVec3(a, b math.Vec3) bool {
	return math32.Float32bits(a.X) == math32.Float32bits(b.X) &&
		math32.Float32bits(a.Y) == math32.Float32bits(b.Y) &&
		math32.Float32bits(a.Z) == math32.Float32bits(b.Z)
}

func sameQuat(a, b math.Quat) bool {
	return math32.Float32bits(a.X) == math32.Float32bits(b.X) &&
		math32.Float32bits(a.Y) == math32.Float32bits(b.Y) &&
		math32.Float32bits(a.Z) == math32.Float32bits(b.Z) &&
		math32.Float32bits(a.W) == math32.Float32bits(b.W)
}
