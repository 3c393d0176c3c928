package loa

import (
	"fmt"
	"slices"

	"github.com/Faultbox/loa-editor/pkg/math"
)

// DefaultSelectRange is the maximum distance between a click and the path
// for the click to start an edit.
const DefaultSelectRange = 3.0

// EditState is the editor's state.
type EditState int

const (
	// Idle means no edit is in progress.
	Idle EditState = iota
	// Selecting means a start point was chosen and replacement points are
	// being collected.
	Selecting
)

// String returns the state name.
func (s EditState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	default:
		return fmt.Sprintf("EditState(%d)", int(s))
	}
}

// Editor re-draws a contiguous portion of a path. Start snaps a click onto
// the path, Add collects free points, End snaps the closing click and
// splices the collected points over the selected index range.
type Editor struct {
	SelectRange float32

	state  EditState
	start  int
	buffer []math.Vec3
}

// NewEditor creates an editor with the given select range.
// A non-positive range falls back to DefaultSelectRange.
func NewEditor(selectRange float32) *Editor {
	if selectRange <= 0 {
		selectRange = DefaultSelectRange
	}
	return &Editor{SelectRange: selectRange}
}

// State returns the current state.
func (e *Editor) State() EditState {
	return e.state
}

// Editing reports whether an edit is in progress.
func (e *Editor) Editing() bool {
	return e.state == Selecting
}

// Buffer returns a copy of the replacement points collected so far.
func (e *Editor) Buffer() []math.Vec3 {
	return slices.Clone(e.buffer)
}

// Start begins an edit at the path point closest to click. The edit is
// refused when the path has no segment or the click is farther than
// SelectRange from it; the editor is left Idle in both cases.
func (e *Editor) Start(p *Path, click math.Vec3) error {
	e.Cancel()

	snapped, idx, err := p.Nearest(click)
	if err != nil {
		return err
	}
	if d := snapped.Distance(click); d > e.SelectRange {
		return fmt.Errorf("%w: %.3f > %.3f", ErrOutOfRange, d, e.SelectRange)
	}

	e.state = Selecting
	e.start = idx
	e.buffer = []math.Vec3{snapped}
	return nil
}

// Add appends a replacement point verbatim.
func (e *Editor) Add(pt math.Vec3) error {
	if e.state != Selecting {
		return ErrNotEditing
	}
	e.buffer = append(e.buffer, pt)
	return nil
}

// End closes the edit at the path point closest to click and replaces the
// inclusive index range between the start and end segments with the
// collected points. When the end lies before the start the range is
// swapped and the points reversed so they run in path order. It returns
// the replaced range.
func (e *Editor) End(p *Path, click math.Vec3) (start, end int, err error) {
	if e.state != Selecting {
		return 0, 0, ErrNotEditing
	}
	defer e.Cancel()

	snapped, idx, err := p.Nearest(click)
	if err != nil {
		return 0, 0, err
	}

	buf := append(slices.Clone(e.buffer), snapped)
	start, end = e.start, idx
	if start > end {
		start, end = end, start
		slices.Reverse(buf)
	}
	if end >= p.Len() {
		return 0, 0, fmt.Errorf("%w: range [%d,%d] on %d points", ErrEmptyPath, start, end, p.Len())
	}

	p.splice(start, end, buf)
	return start, end, nil
}

// Cancel abandons any edit in progress.
func (e *Editor) Cancel() {
	e.state = Idle
	e.start = 0
	e.buffer = nil
}
