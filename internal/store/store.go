// Package store persists editor sessions (path, markers and the encoded
// pose blob) with gdata, so frames can be restored in a later run without
// calling the backend again.
package store

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/loa-editor/pkg/math"
)

// Store errors.
var (
	ErrNotFound    = errors.New("session not found")
	ErrInvalidName = errors.New("invalid session name")
)

const sessionsObject = "sessions"

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Snapshot is the persisted state of one session. Blob is empty when the
// session has no generated frames.
type Snapshot struct {
	Path    []math.Vec3 `yaml:"path"`
	Markers []math.Vec3 `yaml:"markers,omitempty"`
	Blob    string      `yaml:"blob,omitempty"`
}

// Store saves snapshots through a gdata manager. With a nil manager it
// keeps snapshots in memory only.
type Store struct {
	manager *gdata.Manager
	memory  map[string][]byte
}

// Open opens the gdata storage of appName.
func Open(appName string) (*Store, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("opening storage for %s: %w", appName, err)
	}
	return New(m), nil
}

// New wraps an existing manager. m may be nil.
func New(m *gdata.Manager) *Store {
	return &Store{manager: m, memory: make(map[string][]byte)}
}

// Persistent reports whether snapshots outlive the process.
func (s *Store) Persistent() bool {
	return s.manager != nil
}

// Save stores snap under name, replacing any previous snapshot.
func (s *Store) Save(name string, snap Snapshot) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling session %s: %w", name, err)
	}

	if s.manager == nil {
		s.memory[name] = data
		return nil
	}
	if err := s.manager.SaveObjectProp(sessionsObject, name, data); err != nil {
		return fmt.Errorf("saving session %s: %w", name, err)
	}
	return nil
}

// Exists reports whether a snapshot is stored under name.
func (s *Store) Exists(name string) bool {
	if !validName.MatchString(name) {
		return false
	}
	if s.manager == nil {
		_, ok := s.memory[name]
		return ok
	}
	return s.manager.ObjectPropExists(sessionsObject, name)
}

// Load returns the snapshot stored under name.
func (s *Store) Load(name string) (*Snapshot, error) {
	if !s.Exists(name) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	var data []byte
	if s.manager == nil {
		data = s.memory[name]
	} else {
		var err error
		data, err = s.manager.LoadObjectProp(sessionsObject, name)
		if err != nil {
			return nil, fmt.Errorf("loading session %s: %w", name, err)
		}
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshaling session %s: %w", name, err)
	}
	return &snap, nil
}
