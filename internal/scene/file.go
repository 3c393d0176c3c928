package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/loa-editor/pkg/math"
)

// NodeSpec is the YAML form of a node. A missing rotation means identity.
type NodeSpec struct {
	Name     string     `yaml:"name"`
	Position math.Vec3  `yaml:"position"`
	Rotation *math.Quat `yaml:"rotation,omitempty"`
	Children []NodeSpec `yaml:"children,omitempty"`
}

// File is a scene description: the model to animate, the line of action
// and optional rotation markers.
type File struct {
	Model   NodeSpec    `yaml:"model"`
	Path    []math.Vec3 `yaml:"path"`
	Markers []math.Vec3 `yaml:"markers,omitempty"`
}

// Load reads a scene file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a scene description.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	if f.Model.Name == "" {
		return nil, fmt.Errorf("scene has no model")
	}
	return &f, nil
}

// Build instantiates the model hierarchy.
func (f *File) Build() *Node {
	return build(f.Model)
}

func build(spec NodeSpec) *Node {
	rot := math.QuatIdentity()
	if spec.Rotation != nil {
		rot = *spec.Rotation
	}
	n := NewNode(spec.Name, spec.Position, rot)
	for _, c := range spec.Children {
		n.AddChild(build(c))
	}
	return n
}
