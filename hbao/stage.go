package hbao

import (
	"errors"
	"fmt"
	"log/slog"

	"ao-engine/core"
	"ao-engine/math"
)

var (
	// ErrDestroyed is returned by Execute after Destroy.
	ErrDestroyed = errors.New("hbao: stage is destroyed")
	// ErrAlreadyDestroyed is returned by a second Destroy. Nothing is released.
	ErrAlreadyDestroyed = errors.New("hbao: stage already destroyed")
)

// State is the lifecycle state of a Stage's owned resources.
type State int

const (
	// StateUninitialized: nothing allocated yet.
	StateUninitialized State = iota
	// StateReady: targets match the last executed viewport.
	StateReady
	// StateStale: targets must be rebuilt before the next dispatch.
	StateStale
	// StateDestroyed is terminal.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateStale:
		return "stale"
	case StateDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// FrameState is what the host provides about the frame being rendered.
type FrameState struct {
	DrawingBufferWidth  int
	DrawingBufferHeight int
	InverseProjection   math.Mat4
}

// Viewport returns the drawing buffer size.
func (f FrameState) Viewport() core.Size {
	return core.Size{Width: f.DrawingBufferWidth, Height: f.DrawingBufferHeight}
}

// passBinding wires one program to its source and destination targets.
type passBinding struct {
	id     PassID
	source Target
	dst    Target
}

// Stage is the ambient occlusion post-process. It owns three targets sized
// to the viewport: ao (final blurred occlusion), scratch (horizontal blur
// result) and output (composite). A Stage is not safe for concurrent
// Execute calls; Params may be changed concurrently.
type Stage struct {
	backend Backend
	noise   Texture
	params  *Params

	state State
	size  core.Size

	ao      Target
	scratch Target
	output  Target
	passes  []passBinding
}

// StageOption configures a Stage.
type StageOption func(*Stage)

// WithParams shares an existing parameter surface with the stage.
func WithParams(p *Params) StageOption {
	return func(s *Stage) {
		if p != nil {
			s.params = p
		}
	}
}

// NewStage creates a disabled stage. backend and noise are required; the
// noise texture is borrowed and never released by the stage.
func NewStage(backend Backend, noise Texture, options ...StageOption) *Stage {
	if backend == nil {
		panic("hbao: NewStage requires a non-nil Backend")
	}
	if noise == nil {
		panic("hbao: NewStage requires a non-nil noise texture")
	}

	s := &Stage{
		backend: backend,
		noise:   noise,
		params:  NewParams(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Stage) Params() *Params { return s.params }
func (s *Stage) State() State    { return s.state }

// Size is the viewport the owned targets were allocated for.
func (s *Stage) Size() core.Size { return s.size }

// AO returns the blurred occlusion target, or nil before the first enabled
// execution.
func (s *Stage) AO() Target { return s.ao }

// Output returns the composite target, or nil before the first enabled
// execution.
func (s *Stage) Output() Target { return s.output }

// Execute runs the effect for one frame. When the stage is disabled it
// neither allocates nor dispatches. A dirty frame, or a drawing buffer that
// no longer matches the owned targets, rebuilds every target before any pass
// runs.
func (s *Stage) Execute(frame FrameState, color, depth Texture, dirty bool) error {
	if s.state == StateDestroyed {
		return ErrDestroyed
	}

	settings := s.params.Snapshot()
	if dirty && s.state == StateReady {
		s.state = StateStale
	}
	if !settings.Enabled {
		return nil
	}

	size := frame.Viewport()
	if s.state == StateReady && s.size != size {
		Logger().Debug("hbao: viewport changed without dirty signal",
			slog.Any("from", s.size), slog.Any("to", size))
		s.state = StateStale
	}
	if s.state != StateReady {
		if err := s.rebuild(size); err != nil {
			return err
		}
	}

	u := Uniforms{
		Settings:          settings,
		Viewport:          size,
		InverseProjection: frame.InverseProjection,
		NoiseScale:        NoiseScale(size, s.noise.Size()),
	}
	for _, p := range s.passes {
		in := Bindings{
			Color:  color,
			Depth:  depth,
			Noise:  s.noise,
			Source: p.source,
		}
		if err := s.backend.Run(p.id, u, in, p.dst); err != nil {
			return fmt.Errorf("hbao: %s pass: %w", p.id, err)
		}
	}
	return nil
}

// rebuild releases every owned target and allocates a fresh set. On failure
// the partial set is released and the stage is left uninitialized.
func (s *Stage) rebuild(size core.Size) error {
	s.release()

	targets := []struct {
		label string
		dst   *Target
	}{
		{"hbao-ao", &s.ao},
		{"hbao-scratch", &s.scratch},
		{"hbao-output", &s.output},
	}
	for _, t := range targets {
		target, err := s.backend.NewTarget(t.label, size.Width, size.Height)
		if err != nil {
			s.release()
			s.state = StateUninitialized
			return fmt.Errorf("hbao: allocate %s %dx%d: %w", t.label, size.Width, size.Height, err)
		}
		*t.dst = target
	}

	s.passes = []passBinding{
		{id: PassGenerate, dst: s.ao},
		{id: PassBlurX, source: s.ao, dst: s.scratch},
		{id: PassBlurY, source: s.scratch, dst: s.ao},
		{id: PassComposite, source: s.ao, dst: s.output},
	}
	s.size = size
	s.state = StateReady

	Logger().Debug("hbao: targets allocated",
		slog.Int("width", size.Width), slog.Int("height", size.Height))
	return nil
}

func (s *Stage) release() {
	for _, t := range []*Target{&s.ao, &s.scratch, &s.output} {
		if *t != nil {
			s.backend.DestroyTarget(*t)
			*t = nil
		}
	}
	s.passes = nil
	s.size = core.Size{}
}

// IsDestroyed reports whether Destroy has been called.
func (s *Stage) IsDestroyed() bool {
	return s.state == StateDestroyed
}

// Destroy releases every owned target. Calling it twice is a programmer
// error; the second call releases nothing and returns ErrAlreadyDestroyed.
func (s *Stage) Destroy() error {
	if s.state == StateDestroyed {
		Logger().Warn("hbao: Destroy called on a destroyed stage")
		return ErrAlreadyDestroyed
	}
	s.release()
	s.state = StateDestroyed
	return nil
}
