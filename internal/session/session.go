// Package session ties the line-of-action editor, the animation backend
// and playback together for one model. A Session replaces the single
// global "active model / active path" state of an editor component, so
// several independent sessions can coexist.
//
// All methods must be called from one goroutine (the host's update loop).
// Asynchronous generation runs the backend elsewhere but its result is only
// applied by Poll or Tick on that goroutine.
package session

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Faultbox/loa-editor/internal/backend"
	"github.com/Faultbox/loa-editor/internal/config"
	"github.com/Faultbox/loa-editor/internal/logger"
	"github.com/Faultbox/loa-editor/internal/store"
	"github.com/Faultbox/loa-editor/pkg/anim"
	"github.com/Faultbox/loa-editor/pkg/loa"
	"github.com/Faultbox/loa-editor/pkg/math"
	"github.com/Faultbox/loa-editor/pkg/plane"
	"github.com/Faultbox/loa-editor/pkg/pose"
	"github.com/Faultbox/loa-editor/pkg/skeleton"
)

// Session errors.
var (
	ErrStaleSequence      = errors.New("pose sequence is stale: path changed since generation")
	ErrNoSequence         = errors.New("no pose sequence: generate one first")
	ErrEditInProgress     = errors.New("path edit in progress")
	ErrGenerationInFlight = errors.New("generation already in flight")
	ErrNoModel            = errors.New("no model attached")
	ErrNoPlane            = errors.New("no editor plane set")
	ErrMissedPlane        = errors.New("ray does not hit the editor plane")
)

// Options configures a session.
type Options struct {
	SelectRange float32
	FrameStep   float64
	FrameCount  int // backend frame hint
	Grid        plane.Grid
	Logger      *zap.Logger
}

// OptionsFromConfig maps editor configuration onto session options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SelectRange: cfg.Editor.SelectRange,
		FrameStep:   cfg.Playback.FrameStep,
		FrameCount:  cfg.Backend.FrameCount,
		Grid: plane.Grid{
			WidthLines:  cfg.Editor.GridWidth,
			HeightLines: cfg.Editor.GridHeight,
			CellWidth:   cfg.Editor.CellSize,
			CellHeight:  cfg.Editor.CellSize,
		},
	}
}

// Session is one line-of-action editing and playback context.
type Session struct {
	opts Options
	log  *zap.Logger

	gen   backend.Generator
	model skeleton.Transform
	plane *plane.Plane

	path    *loa.Path
	markers loa.Markers
	editor  *loa.Editor
	player  *anim.Player

	// revision counts path changes. The cached blob is valid only while
	// blobRevision equals it.
	revision     uint64
	frames       *pose.Sequence
	blob         string
	blobRevision uint64

	inflight *semaphore.Weighted
	results  chan result
}

// New creates a session animating model with frames from gen.
func New(model skeleton.Transform, gen backend.Generator, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = logger.Named("session")
	}

	s := &Session{
		opts:     opts,
		log:      log,
		gen:      gen,
		model:    model,
		path:     &loa.Path{},
		editor:   loa.NewEditor(opts.SelectRange),
		player:   anim.NewPlayer(opts.FrameStep),
		inflight: semaphore.NewWeighted(1),
		results:  make(chan result, 1),
	}
	s.player.OnFrame = s.onFrame
	return s
}

// Path returns a copy of the current path.
func (s *Session) Path() []math.Vec3 {
	return s.path.Points()
}

// Markers returns a copy of the rotation markers.
func (s *Session) Markers() []math.Vec3 {
	return s.markers.Points()
}

// Frames returns a copy of the cached sequence, or nil when none is loaded.
func (s *Session) Frames() *pose.Sequence {
	return s.frames.Clone()
}

// Blob returns the encoded form of the last generated sequence.
func (s *Session) Blob() string {
	return s.blob
}

// Stale reports whether a sequence was generated but the path changed since.
func (s *Session) Stale() bool {
	return s.blob != "" && s.blobRevision != s.revision
}

// Editor returns the path editor, for state queries.
func (s *Session) Editor() *loa.Editor {
	return s.editor
}

// Player returns the playback state machine, for state queries.
func (s *Session) Player() *anim.Player {
	return s.player
}

// SetModel attaches a different model. Playback is stopped first.
func (s *Session) SetModel(model skeleton.Transform) {
	s.player.Stop()
	s.model = model
}

// AddPoint appends a point to the path.
func (s *Session) AddPoint(p math.Vec3) {
	s.pathChanged()
	s.path.Add(p)
}

// ClearPoints empties the path and drops any cached frames.
func (s *Session) ClearPoints() {
	s.editor.Cancel()
	s.pathChanged()
	s.path.Clear()
}

// AddMarker appends a rotation marker.
func (s *Session) AddMarker(p math.Vec3) {
	s.markers.Add(p)
}

// ClearMarkers removes every rotation marker.
func (s *Session) ClearMarkers() {
	s.markers.Clear()
}

// EditStart begins re-drawing the path from the point closest to click.
// It is refused while a generation is in flight, since the result would
// replace the path under the edit.
func (s *Session) EditStart(click math.Vec3) error {
	if s.Pending() {
		return ErrGenerationInFlight
	}
	if err := s.editor.Start(s.path, click); err != nil {
		s.log.Debug("edit refused", zap.Error(err))
		return err
	}
	return nil
}

// EditAdd appends a replacement point to the edit in progress.
func (s *Session) EditAdd(p math.Vec3) error {
	return s.editor.Add(p)
}

// EditEnd finishes the edit and splices the replacement into the path.
func (s *Session) EditEnd(click math.Vec3) error {
	if !s.editor.Editing() {
		return loa.ErrNotEditing
	}
	before := s.path.Len()
	start, end, err := s.editor.End(s.path, click)
	if err != nil {
		s.log.Debug("edit aborted", zap.Error(err))
		return err
	}
	s.pathChanged()
	s.log.Debug("path spliced",
		zap.Int("start", start),
		zap.Int("end", end),
		zap.Int("before", before),
		zap.Int("after", s.path.Len()))
	return nil
}

// EditCancel abandons the edit in progress.
func (s *Session) EditCancel() {
	s.editor.Cancel()
}

// SetPlane sets the drawing plane used by the ray based helpers.
func (s *Session) SetPlane(pl plane.Plane) {
	s.plane = &pl
}

// GridLines returns the overlay lines of the drawing plane, or nil when
// no plane is set.
func (s *Session) GridLines() [][2]math.Vec3 {
	if s.plane == nil {
		return nil
	}
	g := s.opts.Grid
	if g.WidthLines <= 0 || g.HeightLines <= 0 {
		g = plane.DefaultGrid()
	}
	return s.plane.Lines(g)
}

// Pick projects a pick ray onto the drawing plane.
func (s *Session) Pick(r plane.Ray) (math.Vec3, error) {
	if s.plane == nil {
		return math.Vec3{}, ErrNoPlane
	}
	p, ok := r.Intersect(*s.plane)
	if !ok {
		return math.Vec3{}, ErrMissedPlane
	}
	return p, nil
}

// AddPointRay appends the point where r hits the drawing plane.
func (s *Session) AddPointRay(r plane.Ray) error {
	p, err := s.Pick(r)
	if err != nil {
		return err
	}
	s.AddPoint(p)
	return nil
}

// pathChanged stops playback and invalidates cached frames.
func (s *Session) pathChanged() {
	s.player.Stop()
	s.revision++
	if s.frames != nil {
		s.log.Debug("cached frames invalidated", zap.Uint64("revision", s.revision))
	}
	s.frames = nil
}

// Play starts playback. Frames are decoded from the stored blob when
// none are loaded and the path is unchanged since they were generated.
func (s *Session) Play() error {
	if s.editor.Editing() {
		return ErrEditInProgress
	}
	if s.model == nil {
		return ErrNoModel
	}

	if s.frames == nil {
		switch {
		case s.blob == "":
			return ErrNoSequence
		case s.Stale():
			return ErrStaleSequence
		}
		seq, err := pose.Decode(s.blob)
		if err != nil {
			return fmt.Errorf("restoring frames: %w", err)
		}
		s.frames = seq
		s.log.Debug("frames restored from blob", zap.Int("frames", seq.Len()))
	}

	// Capture the rest pose, not whatever frame is currently applied.
	s.player.Stop()
	bones, err := skeleton.Build(s.model)
	if err != nil {
		return fmt.Errorf("capturing skeleton: %w", err)
	}
	if err := s.player.Play(s.frames, bones); err != nil {
		return err
	}
	s.log.Info("playback started",
		zap.Int("frames", s.frames.Len()),
		zap.Int("bones", bones.Len()))
	return nil
}

// Stop ends playback and restores the model's original pose.
func (s *Session) Stop() {
	if s.player.Playing() {
		s.player.Stop()
		s.log.Info("playback stopped", zap.Int("frame", s.player.Frame()))
	}
}

// Toggle stops a running playback or starts one.
func (s *Session) Toggle() error {
	if s.player.Playing() {
		s.Stop()
		return nil
	}
	return s.Play()
}

// Tick advances the session by dt seconds: it applies a finished
// asynchronous generation, then advances playback. The returned error is
// the generation error, if one completed during this tick.
func (s *Session) Tick(dt float64) error {
	_, err := s.Poll()
	if s.player.Playing() {
		s.player.Tick(dt)
		if !s.player.Playing() {
			s.log.Debug("playback finished")
		}
	}
	return err
}

func (s *Session) onFrame(frame int, missing []string) {
	for _, name := range missing {
		s.log.Debug("frame node has no matching transform",
			zap.Int("frame", frame),
			zap.String("node", name))
	}
}

// Snapshot captures what is needed to restore the session later.
func (s *Session) Snapshot() store.Snapshot {
	snap := store.Snapshot{
		Path:    s.path.Points(),
		Markers: s.markers.Points(),
	}
	if !s.Stale() {
		snap.Blob = s.blob
	}
	return snap
}

// Restore replaces path, markers and stored frames with snap. Frames are
// decoded lazily by the next Play.
func (s *Session) Restore(snap store.Snapshot) {
	s.editor.Cancel()
	s.pathChanged()
	s.path.Set(snap.Path)
	s.markers.Clear()
	for _, m := range snap.Markers {
		s.markers.Add(m)
	}
	s.blob = snap.Blob
	s.blobRevision = s.revision
}
