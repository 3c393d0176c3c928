package anim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/loa-editor/pkg/math"
	"github.com/Faultbox/loa-editor/pkg/pose"
	"github.com/Faultbox/loa-editor/pkg/skeleton"
)

type bone struct {
	name     string
	pos      math.Vec3
	rot      math.Quat
	children []skeleton.Transform
}

func (b *bone) Name() string                   { return b.name }
func (b *bone) Children() []skeleton.Transform { return b.children }
func (b *bone) Position() math.Vec3            { return b.pos }
func (b *bone) SetPosition(p math.Vec3)        { b.pos = p }
func (b *bone) Rotation() math.Quat            { return b.rot }
func (b *bone) SetRotation(q math.Quat)        { b.rot = q }

func setup(t *testing.T, frames int) (*bone, *skeleton.Map, *pose.Sequence) {
	t.Helper()
	arm := &bone{name: "arm", pos: math.Vec3{X: 1}, rot: math.QuatIdentity()}
	root := &bone{name: "root", pos: math.Vec3{Y: 2}, rot: math.QuatIdentity(), children: []skeleton.Transform{arm}}

	bones, err := skeleton.Build(root)
	require.NoError(t, err)

	seq := &pose.Sequence{}
	for i := 0; i < frames; i++ {
		seq.Frames = append(seq.Frames, pose.Node{
			Name:     "root",
			Position: math.Vec3{Z: float32(i + 1)},
			Rotation: math.QuatIdentity(),
			Children: []pose.Node{{Name: "arm", Position: math.Vec3{X: float32(10 + i)}}},
		})
	}
	return root, bones, seq
}

func TestPlayer_PlayAppliesFirstFrame(t *testing.T) {
	root, bones, seq := setup(t, 3)
	p := NewPlayer(0.1)

	require.NoError(t, p.Play(seq, bones))
	assert.Equal(t, Playing, p.State())
	assert.Equal(t, 0, p.Frame())
	assert.Equal(t, math.Vec3{Z: 1}, root.pos)
	assert.Equal(t, math.Vec3{X: 10}, root.children[0].Position())
}

func TestPlayer_LargeTickStopsAndRestores(t *testing.T) {
	root, bones, seq := setup(t, 3)
	p := NewPlayer(0.1)

	var applied []int
	p.OnFrame = func(frame int, missing []string) {
		applied = append(applied, frame)
		assert.Empty(t, missing)
	}

	require.NoError(t, p.Play(seq, bones))
	n := p.Tick(0.35)

	assert.Equal(t, 2, n)
	assert.Equal(t, []int{0, 1, 2}, applied)
	assert.Equal(t, Stopped, p.State())
	assert.Equal(t, math.Vec3{Y: 2}, root.pos, "original pose restored")
	assert.Equal(t, math.Vec3{X: 1}, root.children[0].Position())
}

func TestPlayer_SmallTicks(t *testing.T) {
	_, bones, seq := setup(t, 4)
	p := NewPlayer(0.1)

	var applied []int
	p.OnFrame = func(frame int, _ []string) { applied = append(applied, frame) }
	require.NoError(t, p.Play(seq, bones))

	assert.Equal(t, 0, p.Tick(0.04))
	assert.Equal(t, 0, p.Tick(0.04))
	assert.Equal(t, 1, p.Tick(0.04)) // 0.12
	assert.Equal(t, 1, p.Frame())
	assert.Equal(t, 1, p.Tick(0.1)) // 0.02 carried over
	assert.Equal(t, 2, p.Frame())

	for i := 0; i < 10 && p.Playing(); i++ {
		p.Tick(0.05)
	}
	assert.Equal(t, Stopped, p.State())
	assert.Equal(t, []int{0, 1, 2, 3}, applied, "every frame exactly once, in order")
}

func TestPlayer_TickWhileStopped(t *testing.T) {
	p := NewPlayer(0)
	assert.Equal(t, DefaultFrameStep, p.Step)
	assert.Equal(t, 0, p.Tick(10))
}

func TestPlayer_NoFrames(t *testing.T) {
	_, bones, _ := setup(t, 0)
	p := NewPlayer(0.1)

	assert.ErrorIs(t, p.Play(&pose.Sequence{}, bones), ErrNoFrames)
	assert.ErrorIs(t, p.Play(nil, bones), ErrNoFrames)
	assert.Equal(t, Stopped, p.State())
}

func TestPlayer_StopRestores(t *testing.T) {
	root, bones, seq := setup(t, 5)
	p := NewPlayer(0.1)
	require.NoError(t, p.Play(seq, bones))
	p.Tick(0.2)
	require.True(t, p.Playing())

	p.Stop()
	assert.Equal(t, Stopped, p.State())
	assert.Equal(t, math.Vec3{Y: 2}, root.pos)

	// Stopping twice is harmless
	p.Stop()
}

func TestPlayer_Toggle(t *testing.T) {
	root, bones, seq := setup(t, 2)
	p := NewPlayer(0.1)

	require.NoError(t, p.Toggle(seq, bones))
	assert.True(t, p.Playing())

	require.NoError(t, p.Toggle(seq, bones))
	assert.False(t, p.Playing())
	assert.Equal(t, math.Vec3{Y: 2}, root.pos)
}
