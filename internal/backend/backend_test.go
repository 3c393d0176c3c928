package backend

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/loa-editor/internal/config"
	"github.com/Faultbox/loa-editor/pkg/math"
	"github.com/Faultbox/loa-editor/pkg/pose"
)

func model() ModelData {
	return ModelData{
		Skeleton: pose.Node{
			Name:     "body",
			Position: math.Vec3{Y: 1},
			Rotation: math.QuatIdentity(),
			Children: []pose.Node{
				{Name: "head", Position: math.Vec3{Y: 0.5}, Rotation: math.QuatIdentity()},
			},
		},
		Path: []math.Vec3{{X: 0}, {X: 4}, {X: 4, Z: 4}},
	}
}

func TestResampler_EvenSpacing(t *testing.T) {
	md := model()
	md.FrameCount = 5

	seq, err := Resampler{}.Generate(context.Background(), md)
	require.NoError(t, err)
	require.Equal(t, 5, seq.Len())
	require.Len(t, seq.Path, 5)

	want := []math.Vec3{{X: 0}, {X: 2}, {X: 4}, {X: 4, Z: 2}, {X: 4, Z: 4}}
	for i, w := range want {
		assert.InDelta(t, 0, seq.Path[i].Distance(w), 1e-5, "sample %d = %v", i, seq.Path[i])
		assert.Equal(t, seq.Path[i], seq.Frames[i].Position)
	}

	// Children keep their pose, only the root moves
	for _, f := range seq.Frames {
		require.Len(t, f.Children, 1)
		assert.Equal(t, math.Vec3{Y: 0.5}, f.Children[0].Position)
	}

	// Facing +X on the first leg, +Z on the second
	fwd := seq.Frames[1].Rotation.Rotate(math.Vec3{Z: 1})
	assert.InDelta(t, 1, fwd.X, 1e-5)
	fwd = seq.Frames[3].Rotation.Rotate(math.Vec3{Z: 1})
	assert.InDelta(t, 1, fwd.Z, 1e-5)
}

func TestResampler_DefaultsToPointCount(t *testing.T) {
	seq, err := Resampler{}.Generate(context.Background(), model())
	require.NoError(t, err)
	assert.Equal(t, 3, seq.Len())
	assert.Equal(t, math.Vec3{X: 4, Z: 4}, seq.Path[2])
}

func TestResampler_SingleFrame(t *testing.T) {
	md := model()
	md.FrameCount = 1

	seq, err := Resampler{}.Generate(context.Background(), md)
	require.NoError(t, err)
	require.Equal(t, 1, seq.Len())
	assert.Equal(t, math.Vec3{}, seq.Path[0])
}

func TestResampler_DoesNotMutateInput(t *testing.T) {
	md := model()
	md.FrameCount = 4
	before := md.Skeleton.Clone()

	seq, err := Resampler{}.Generate(context.Background(), md)
	require.NoError(t, err)
	seq.Frames[0].Children[0].Name = "changed"

	assert.True(t, before.Equal(md.Skeleton))
}

func TestResampler_Errors(t *testing.T) {
	md := model()
	md.Path = md.Path[:1]
	_, err := Resampler{}.Generate(context.Background(), md)
	assert.ErrorIs(t, err, ErrPathTooShort)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Resampler{}.Generate(ctx, model())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromConfig(t *testing.T) {
	gen, err := FromConfig(config.BackendConfig{Kind: "local"})
	require.NoError(t, err)
	assert.IsType(t, Resampler{}, gen)

	gen, err = FromConfig(config.BackendConfig{Kind: "websocket", URL: "ws://x/y", Timeout: config.Duration(time.Second)})
	require.NoError(t, err)
	c, ok := gen.(*Client)
	require.True(t, ok)
	assert.Equal(t, "ws://x/y", c.URL)
	assert.Equal(t, time.Second, c.Timeout)

	_, err = FromConfig(config.BackendConfig{Kind: "carrier-pigeon"})
	assert.Error(t, err)
}

func serve(t *testing.T, gen Generator) string {
	t.Helper()
	srv := httptest.NewServer(Handler(gen, nil))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClient_RoundTrip(t *testing.T) {
	url := serve(t, Resampler{})
	md := model()
	md.FrameCount = 7

	want, err := Resampler{}.Generate(context.Background(), md)
	require.NoError(t, err)

	c := &Client{URL: url, Timeout: 5 * time.Second}
	got, err := c.Generate(context.Background(), md)
	require.NoError(t, err)
	assert.True(t, want.Equal(got), "remote result differs from local:\nwant %+v\ngot  %+v", want, got)
}

func TestClient_RemoteError(t *testing.T) {
	url := serve(t, GeneratorFunc(func(context.Context, ModelData) (*pose.Sequence, error) {
		return nil, errors.New("skeleton rejected")
	}))

	c := &Client{URL: url}
	_, err := c.Generate(context.Background(), model())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skeleton rejected")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	url := serve(t, GeneratorFunc(func(ctx context.Context, _ ModelData) (*pose.Sequence, error) {
		<-release
		return &pose.Sequence{}, nil
	}))
	t.Cleanup(func() { close(release) })

	c := &Client{URL: url, Timeout: 100 * time.Millisecond}
	_, err := c.Generate(context.Background(), model())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_DialFailure(t *testing.T) {
	c := &Client{URL: "ws://127.0.0.1:1/none", Timeout: time.Second}
	_, err := c.Generate(context.Background(), model())
	assert.Error(t, err)
}
