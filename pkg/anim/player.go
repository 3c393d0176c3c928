// Package anim plays a pose sequence back onto a skeleton at a fixed
// frame step, driven by external ticks.
package anim

import (
	"errors"
	"fmt"

	"github.com/Faultbox/loa-editor/pkg/pose"
	"github.com/Faultbox/loa-editor/pkg/skeleton"
)

// DefaultFrameStep is the time between frames in seconds.
const DefaultFrameStep = 0.1

// ErrNoFrames is returned when playback is requested without any frame.
var ErrNoFrames = errors.New("no frames to play")

// State is the playback state.
type State int

const (
	// Stopped means no frame is being applied.
	Stopped State = iota
	// Playing means ticks advance the frame cursor.
	Playing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Player advances through a sequence one frame per Step seconds of
// accumulated tick time. Frame k is applied once elapsed time reaches
// k*Step; no frame is skipped or applied twice however the ticks are sized.
type Player struct {
	Step float64

	// OnFrame, if set, is called after each applied frame with the names
	// the skeleton could not match.
	OnFrame func(frame int, missing []string)

	state   State
	seq     *pose.Sequence
	bones   *skeleton.Map
	cursor  int
	elapsed float64
}

// NewPlayer creates a stopped player. A non-positive step falls back to
// DefaultFrameStep.
func NewPlayer(step float64) *Player {
	if step <= 0 {
		step = DefaultFrameStep
	}
	return &Player{Step: step}
}

// State returns the playback state.
func (p *Player) State() State {
	return p.state
}

// Playing reports whether playback is running.
func (p *Player) Playing() bool {
	return p.state == Playing
}

// Frame returns the index of the last applied frame.
func (p *Player) Frame() int {
	return p.cursor
}

// Play starts playback from frame 0. bones must have been built right
// before, so Stop can restore the pose the model had when playback began.
func (p *Player) Play(seq *pose.Sequence, bones *skeleton.Map) error {
	if seq.Len() == 0 {
		return ErrNoFrames
	}
	if bones == nil {
		return errors.New("nil skeleton map")
	}
	if p.state == Playing {
		p.Stop()
	}

	p.seq = seq
	p.bones = bones
	p.cursor = 0
	p.elapsed = 0
	p.state = Playing
	p.apply()
	return nil
}

// Tick adds dt seconds and applies every frame that became due. Playback
// stops and the original pose is restored once the cursor runs past the
// last frame. It returns the number of frames applied.
func (p *Player) Tick(dt float64) int {
	if p.state != Playing {
		return 0
	}

	applied := 0
	p.elapsed += dt
	for p.state == Playing && p.elapsed >= p.Step {
		p.elapsed -= p.Step
		if p.cursor+1 >= p.seq.Len() {
			p.Stop()
			break
		}
		p.cursor++
		p.apply()
		applied++
	}
	return applied
}

// Stop ends playback and restores the captured pose.
func (p *Player) Stop() {
	if p.state != Playing {
		return
	}
	p.state = Stopped
	p.elapsed = 0
	p.bones.Restore()
}

// Toggle stops a running playback or starts a new one.
func (p *Player) Toggle(seq *pose.Sequence, bones *skeleton.Map) error {
	if p.state == Playing {
		p.Stop()
		return nil
	}
	return p.Play(seq, bones)
}

func (p *Player) apply() {
	missing := p.bones.Apply(&p.seq.Frames[p.cursor])
	if p.OnFrame != nil {
		p.OnFrame(p.cursor, missing)
	}
}
