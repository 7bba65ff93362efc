package hbao

import "sync"

// Default tunables.
const (
	DefaultIntensity  = 4.0
	DefaultBias       = 0.0
	DefaultLenCap     = 0.25
	DefaultStepSize   = 2.0
	DefaultKernelSize = 1.0
)

// Settings is an immutable snapshot of the effect's tunables.
type Settings struct {
	// Intensity is the exponent applied to the final visibility.
	Intensity float32
	// Bias is the minimum normal alignment for a sample to occlude.
	Bias float32
	// LenCap is the view-space distance beyond which neighbours are ignored
	// and the march along that direction stops.
	LenCap float32
	// StepSize is the first step in pixels; each accepted sample grows the
	// step by the same amount.
	StepSize float32
	// KernelSize scales the blur tap spacing.
	KernelSize float32
	// AOOnly makes the composite output occlusion instead of shaded color.
	AOOnly bool
	// Enabled gates the whole stage.
	Enabled bool
}

func DefaultSettings() Settings {
	return Settings{
		Intensity:  DefaultIntensity,
		Bias:       DefaultBias,
		LenCap:     DefaultLenCap,
		StepSize:   DefaultStepSize,
		KernelSize: DefaultKernelSize,
	}
}

// Params is the host-facing parameter surface. Setters may be called from
// any goroutine; changes are picked up by the next Stage.Execute.
type Params struct {
	mu sync.RWMutex
	s  Settings
}

// NewParams returns parameters holding DefaultSettings.
func NewParams() *Params {
	return &Params{s: DefaultSettings()}
}

// Snapshot returns a copy of the current settings.
func (p *Params) Snapshot() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.s
}

// Update applies fn to the settings under the lock.
func (p *Params) Update(fn func(*Settings)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.s)
}

func (p *Params) SetIntensity(v float32)  { p.Update(func(s *Settings) { s.Intensity = v }) }
func (p *Params) SetBias(v float32)       { p.Update(func(s *Settings) { s.Bias = v }) }
func (p *Params) SetLenCap(v float32)     { p.Update(func(s *Settings) { s.LenCap = v }) }
func (p *Params) SetStepSize(v float32)   { p.Update(func(s *Settings) { s.StepSize = v }) }
func (p *Params) SetKernelSize(v float32) { p.Update(func(s *Settings) { s.KernelSize = v }) }
func (p *Params) SetAOOnly(v bool)        { p.Update(func(s *Settings) { s.AOOnly = v }) }
func (p *Params) SetEnabled(v bool)       { p.Update(func(s *Settings) { s.Enabled = v }) }
