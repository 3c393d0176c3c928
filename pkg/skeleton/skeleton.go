// Package skeleton maps pose node names onto live transforms of a host
// scene, captures their original pose and restores it after playback.
package skeleton

import (
	"errors"
	"fmt"

	"github.com/Faultbox/loa-editor/pkg/math"
	"github.com/Faultbox/loa-editor/pkg/pose"
)

// ErrDuplicateName is returned when two transforms in one hierarchy share a name.
var ErrDuplicateName = errors.New("duplicate skeleton node name")

// Transform is a node of the host scene graph. The skeleton only holds
// references to transforms, it never owns them.
type Transform interface {
	Name() string
	Children() []Transform
	Position() math.Vec3
	SetPosition(math.Vec3)
	Rotation() math.Quat
	SetRotation(math.Quat)
}

// Bone is one captured transform with the pose it had when the map was built.
type Bone struct {
	Transform Transform
	Position  math.Vec3
	Rotation  math.Quat
}

// Map is a name lookup over a transform hierarchy.
type Map struct {
	root  Transform
	order []string
	bones map[string]Bone
}

// Build walks root and all descendants in pre-order, recording each
// transform by name along with its current position and rotation.
func Build(root Transform) (*Map, error) {
	if root == nil {
		return nil, errors.New("nil skeleton root")
	}
	m := &Map{
		root:  root,
		bones: make(map[string]Bone),
	}
	if err := m.add(root); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Map) add(t Transform) error {
	name := t.Name()
	if _, ok := m.bones[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	m.bones[name] = Bone{
		Transform: t,
		Position:  t.Position(),
		Rotation:  t.Rotation(),
	}
	m.order = append(m.order, name)

	for _, c := range t.Children() {
		if err := m.add(c); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the transform the map was built from.
func (m *Map) Root() Transform {
	return m.root
}

// Len returns the number of captured transforms.
func (m *Map) Len() int {
	return len(m.order)
}

// Names returns the captured names in pre-order.
func (m *Map) Names() []string {
	return append([]string(nil), m.order...)
}

// Lookup returns the captured bone for name.
func (m *Map) Lookup(name string) (Bone, bool) {
	b, ok := m.bones[name]
	return b, ok
}

// Apply sets position and rotation of every transform named in the pose
// tree, recursing through all of its children. Names with no matching
// transform are skipped and returned.
func (m *Map) Apply(frame *pose.Node) (missing []string) {
	frame.Walk(func(n *pose.Node) bool {
		b, ok := m.bones[n.Name]
		if !ok {
			missing = append(missing, n.Name)
			return true
		}
		b.Transform.SetPosition(n.Position)
		b.Transform.SetRotation(n.Rotation)
		return true
	})
	return missing
}

// Restore resets every captured transform to its build-time pose,
// parents before children.
func (m *Map) Restore() {
	for _, name := range m.order {
		b := m.bones[name]
		b.Transform.SetPosition(b.Position)
		b.Transform.SetRotation(b.Rotation)
	}
}

// Describe snapshots the hierarchy under root as a pose tree. The result
// is the skeleton description sent to the animation backend.
func Describe(root Transform) pose.Node {
	n := pose.Node{
		Name:     root.Name(),
		Position: root.Position(),
		Rotation: root.Rotation(),
	}
	for _, c := range root.Children() {
		n.Children = append(n.Children, Describe(c))
	}
	return n
}
