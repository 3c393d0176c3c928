package backend

import (
	"context"
	"errors"

	"github.com/Faultbox/loa-editor/pkg/math"
	"github.com/Faultbox/loa-editor/pkg/pose"
)

// ErrPathTooShort is returned when the path has no segment to follow.
var ErrPathTooShort = errors.New("path needs at least 2 points")

// Resampler is the built-in generator. It spaces frames evenly by arc
// length along the path, moves the skeleton root to each sample and turns
// it to face the direction of travel. Child transforms keep their pose.
type Resampler struct{}

// Generate implements Generator. A non-positive frame hint yields one
// frame per path point.
func (Resampler) Generate(ctx context.Context, md ModelData) (*pose.Sequence, error) {
	if len(md.Path) < 2 {
		return nil, ErrPathTooShort
	}
	n := md.FrameCount
	if n <= 0 {
		n = len(md.Path)
	}

	samples, headings := resample(md.Path, n)
	seq := &pose.Sequence{
		Frames: make([]pose.Node, 0, n),
		Path:   samples,
	}
	for i := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame := md.Skeleton.Clone()
		frame.Position = samples[i]
		frame.Rotation = math.QuatLookYaw(headings[i]).Mul(md.Skeleton.Rotation)
		seq.Frames = append(seq.Frames, frame)
	}
	return seq, nil
}

// resample returns n points evenly spaced by arc length, both ends
// included, and the direction of the segment each point lies on.
func resample(path []math.Vec3, n int) ([]math.Vec3, []math.Vec3) {
	cum := make([]float32, len(path))
	for i := 1; i < len(path); i++ {
		cum[i] = cum[i-1] + path[i-1].Distance(path[i])
	}
	total := cum[len(cum)-1]

	points := make([]math.Vec3, n)
	dirs := make([]math.Vec3, n)
	seg := 0
	for k := 0; k < n; k++ {
		var d float32
		if n > 1 {
			d = total * float32(k) / float32(n-1)
		}
		for seg < len(path)-2 && cum[seg+1] < d {
			seg++
		}

		a, b := path[seg], path[seg+1]
		segLen := cum[seg+1] - cum[seg]
		t := float32(0)
		if segLen > 0 {
			t = (d - cum[seg]) / segLen
		}
		if t > 1 {
			t = 1
		}
		points[k] = a.Lerp(b, t)
		dirs[k] = b.Sub(a)
	}
	// Pin the last sample so float drift never leaves it short of the end
	if n > 1 {
		points[n-1] = path[len(path)-1]
	}
	return points, dirs
}
