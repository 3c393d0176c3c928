// Package scene is an in-memory transform hierarchy that stands in for a
// host engine's scene graph, plus the YAML scene files the CLI reads.
package scene

import (
	"github.com/Faultbox/loa-editor/pkg/math"
	"github.com/Faultbox/loa-editor/pkg/skeleton"
)

// Node is a named transform with a local position and rotation.
type Node struct {
	name     string
	position math.Vec3
	rotation math.Quat
	parent   *Node
	children []*Node
}

var _ skeleton.Transform = (*Node)(nil)

// NewNode creates a detached node.
func NewNode(name string, position math.Vec3, rotation math.Quat) *Node {
	return &Node{name: name, position: position, rotation: rotation}
}

// AddChild attaches c under n and returns c.
func (n *Node) AddChild(c *Node) *Node {
	c.parent = n
	n.children = append(n.children, c)
	return c
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child transforms in insertion order.
func (n *Node) Children() []skeleton.Transform {
	out := make([]skeleton.Transform, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Position returns the local position.
func (n *Node) Position() math.Vec3 { return n.position }

// SetPosition sets the local position.
func (n *Node) SetPosition(p math.Vec3) { n.position = p }

// Rotation returns the local rotation.
func (n *Node) Rotation() math.Quat { return n.rotation }

// SetRotation sets the local rotation.
func (n *Node) SetRotation(q math.Quat) { n.rotation = q }

// WorldPosition composes local transforms up to the root.
func (n *Node) WorldPosition() math.Vec3 {
	p := n.position
	for a := n.parent; a != nil; a = a.parent {
		p = a.rotation.Rotate(p).Add(a.position)
	}
	return p
}

// Find returns the first node named name under n in pre-order.
func (n *Node) Find(name string) *Node {
	if n.name == name {
		return n
	}
	for _, c := range n.children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}
