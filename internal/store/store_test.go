package store

import (
	"testing"

	"github.com/quasilyte/gdata/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/loa-editor/pkg/math"
)

// openTestStore opens gdata storage with every per-user data root pointed
// at a temp dir, so nothing is left behind on any OS.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	for _, env := range []string{"HOME", "XDG_DATA_HOME", "AppData", "LOCALAPPDATA", "USERPROFILE"} {
		t.Setenv(env, dir)
	}

	m, err := gdata.Open(gdata.Config{AppName: "loa_store_test"})
	if err != nil {
		t.Skipf("cannot open gdata storage: %v", err)
	}
	return New(m)
}

func sample() Snapshot {
	return Snapshot{
		Path:    []math.Vec3{{X: 0.1}, {X: 1, Y: 2, Z: 3}},
		Markers: []math.Vec3{{Y: 1}},
		Blob:    "TE9BUAEAAAAAAAAAAAA=",
	}
}

func testRoundTrip(t *testing.T, s *Store) {
	assert.False(t, s.Exists("walk"))
	_, err := s.Load("walk")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save("walk", sample()))
	assert.True(t, s.Exists("walk"))

	got, err := s.Load("walk")
	require.NoError(t, err)
	assert.Equal(t, sample(), *got)

	// Overwrite
	updated := sample()
	updated.Blob = ""
	require.NoError(t, s.Save("walk", updated))
	got, err = s.Load("walk")
	require.NoError(t, err)
	assert.Empty(t, got.Blob)
}

func TestStore_Memory(t *testing.T) {
	s := New(nil)
	assert.False(t, s.Persistent())
	testRoundTrip(t, s)
}

func TestStore_Gdata(t *testing.T) {
	s := openTestStore(t)
	assert.True(t, s.Persistent())
	testRoundTrip(t, s)
}

func TestStore_InvalidName(t *testing.T) {
	s := New(nil)
	for _, name := range []string{"", "../escape", "has space", "a/b"} {
		assert.ErrorIs(t, s.Save(name, sample()), ErrInvalidName, "name %q", name)
		assert.False(t, s.Exists(name))
	}
}
