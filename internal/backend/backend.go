// Package backend talks to the animation generator that turns a skeleton
// description and a line of action into a pose sequence.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/Faultbox/loa-editor/internal/config"
	"github.com/Faultbox/loa-editor/pkg/math"
	"github.com/Faultbox/loa-editor/pkg/pose"
)

// ErrBackend wraps every failure reported by a generator.
var ErrBackend = errors.New("animation backend failed")

// ModelData is the generator input.
type ModelData struct {
	Skeleton   pose.Node   `json:"skeleton"`
	Path       []math.Vec3 `json:"path"`
	FrameCount int         `json:"frame_count"` // hint only
}

// Generator produces frames for a model following a path. The returned
// sequence may hold a different number of frames than requested and
// carries the resampled path that replaces the caller's.
type Generator interface {
	Generate(ctx context.Context, md ModelData) (*pose.Sequence, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, md ModelData) (*pose.Sequence, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, md ModelData) (*pose.Sequence, error) {
	return f(ctx, md)
}

// FromConfig returns the generator selected by cfg.
func FromConfig(cfg config.BackendConfig) (Generator, error) {
	switch cfg.Kind {
	case "", "local":
		return Resampler{}, nil
	case "websocket":
		return &Client{URL: cfg.URL, Timeout: cfg.Timeout.Std()}, nil
	default:
		return nil, fmt.Errorf("unknown backend kind %q", cfg.Kind)
	}
}
