package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/loa-editor/internal/backend"
	"github.com/Faultbox/loa-editor/pkg/pose"
	"github.com/Faultbox/loa-editor/pkg/skeleton"
)

type result struct {
	seq      *pose.Sequence
	err      error
	revision uint64
}

// ModelData builds the backend request for the current model and path.
func (s *Session) ModelData() (backend.ModelData, error) {
	if s.model == nil {
		return backend.ModelData{}, ErrNoModel
	}
	return backend.ModelData{
		Skeleton:   skeleton.Describe(s.model),
		Path:       s.path.Points(),
		FrameCount: s.opts.FrameCount,
	}, nil
}

// begin checks that a generation may start and reserves the single slot.
func (s *Session) begin() (backend.ModelData, error) {
	if s.editor.Editing() {
		return backend.ModelData{}, ErrEditInProgress
	}
	md, err := s.ModelData()
	if err != nil {
		return md, err
	}
	if !s.inflight.TryAcquire(1) {
		return md, ErrGenerationInFlight
	}
	return md, nil
}

// Generate calls the backend and blocks until it answers. On success the
// path is replaced by the backend's resampled path and the frames are
// cached. On failure nothing changes.
func (s *Session) Generate(ctx context.Context) error {
	md, err := s.begin()
	if err != nil {
		return err
	}
	defer s.inflight.Release(1)

	rev := s.revision
	s.log.Info("generating animation",
		zap.Int("points", len(md.Path)),
		zap.Int("frame_hint", md.FrameCount))

	seq, err := s.gen.Generate(ctx, md)
	return s.accept(result{seq: seq, err: err, revision: rev})
}

// GenerateAsync starts the backend call on its own goroutine and returns
// immediately. The result is applied by Poll, Tick or Wait. Only one
// generation may be in flight; the slot frees once its result is applied.
func (s *Session) GenerateAsync(ctx context.Context) error {
	md, err := s.begin()
	if err != nil {
		return err
	}

	rev := s.revision
	s.log.Info("generating animation in background",
		zap.Int("points", len(md.Path)),
		zap.Int("frame_hint", md.FrameCount))

	go func() {
		seq, err := s.gen.Generate(ctx, md)
		s.results <- result{seq: seq, err: err, revision: rev}
	}()
	return nil
}

// Pending reports whether a generation is in flight.
func (s *Session) Pending() bool {
	if s.inflight.TryAcquire(1) {
		s.inflight.Release(1)
		return false
	}
	return true
}

// Poll applies a finished asynchronous generation without blocking.
// done reports whether a result was consumed.
func (s *Session) Poll() (done bool, err error) {
	select {
	case r := <-s.results:
		defer s.inflight.Release(1)
		return true, s.accept(r)
	default:
		return false, nil
	}
}

// Wait blocks until the asynchronous generation finishes and applies it.
func (s *Session) Wait(ctx context.Context) error {
	if !s.Pending() {
		return nil
	}
	select {
	case r := <-s.results:
		defer s.inflight.Release(1)
		return s.accept(r)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) accept(r result) error {
	if r.err != nil {
		s.log.Warn("animation generation failed", zap.Error(r.err))
		return fmt.Errorf("%w: %w", backend.ErrBackend, r.err)
	}
	if r.seq == nil {
		return fmt.Errorf("%w: empty response", backend.ErrBackend)
	}
	if s.editor.Editing() {
		s.log.Info("discarding frames generated while an edit is open")
		return ErrEditInProgress
	}
	if r.revision != s.revision {
		s.log.Info("discarding frames generated for an older path",
			zap.Uint64("generated_for", r.revision),
			zap.Uint64("current", s.revision))
		return ErrStaleSequence
	}

	// The generator may keep using its sequence.
	seq := r.seq.Clone()
	blob, err := pose.Encode(seq)
	if err != nil {
		return fmt.Errorf("encoding frames: %w", err)
	}

	if len(seq.Path) > 0 {
		s.pathChanged()
		s.path.Set(seq.Path)
	}
	s.frames = seq
	s.blob = blob
	s.blobRevision = s.revision

	s.log.Info("animation generated",
		zap.Int("frames", seq.Len()),
		zap.Int("path_points", s.path.Len()),
		zap.Int("blob_bytes", len(blob)))
	return nil
}
