package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"ao-engine/core"
	"ao-engine/hbao"
	"ao-engine/math"
)

// Backend names accepted by the tool.
const (
	BackendSoftware = "software"
	BackendGL       = "gl"
)

// Config holds input paths, camera and effect settings for one run.
type Config struct {
	// Paths
	Color    string `json:"color"`
	Depth    string `json:"depth"`
	Noise    string `json:"noise"`
	Output   string `json:"output"`
	SPIRVDir string `json:"spirv_dir"`

	// Execution
	Backend   string `json:"backend"`
	Workers   int    `json:"workers"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	NoiseSeed int64  `json:"noise_seed"`

	// Camera that produced the depth buffer
	FovY float32 `json:"fov_y"`
	Near float32 `json:"near"`
	Far  float32 `json:"far"`

	AO AO `json:"ao"`
}

// AO mirrors hbao.Settings in the config file.
type AO struct {
	Enabled    bool    `json:"enabled"`
	Intensity  float32 `json:"intensity"`
	Bias       float32 `json:"bias"`
	LenCap     float32 `json:"len_cap"`
	StepSize   float32 `json:"step_size"`
	KernelSize float32 `json:"kernel_size"`
	AOOnly     bool    `json:"ao_only"`
}

// Default returns the settings used when no config file is given. The
// effect is enabled since running the tool with it off is a plain copy.
func Default() Config {
	s := hbao.DefaultSettings()
	return Config{
		Backend:   BackendSoftware,
		NoiseSeed: 1,
		FovY:      60,
		Near:      0.1,
		Far:       100,
		AO: AO{
			Enabled:    true,
			Intensity:  s.Intensity,
			Bias:       s.Bias,
			LenCap:     s.LenCap,
			StepSize:   s.StepSize,
			KernelSize: s.KernelSize,
			AOOnly:     s.AOOnly,
		},
	}
}

// Load reads a JSON config file on top of Default. Fields not set in the
// file keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Relative paths in the file are relative to the file.
	base := filepath.Dir(path)
	for _, p := range []*string{&cfg.Color, &cfg.Depth, &cfg.Noise, &cfg.Output, &cfg.SPIRVDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings. A nil
// field means the flag was not given.
type Flags struct {
	Color    *string
	Depth    *string
	Noise    *string
	Output   *string
	SPIRVDir *string

	Backend   *string
	Workers   *int
	Width     *int
	Height    *int
	NoiseSeed *int64

	FovY *float32
	Near *float32
	Far  *float32

	Enabled    *bool
	Intensity  *float32
	Bias       *float32
	LenCap     *float32
	StepSize   *float32
	KernelSize *float32
	AOOnly     *bool
}

// Resolve applies flags on top of the config and fills derived defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	set(&c.Color, flags.Color)
	set(&c.Depth, flags.Depth)
	set(&c.Noise, flags.Noise)
	set(&c.Output, flags.Output)
	set(&c.SPIRVDir, flags.SPIRVDir)
	set(&c.Backend, flags.Backend)
	set(&c.Workers, flags.Workers)
	set(&c.Width, flags.Width)
	set(&c.Height, flags.Height)
	set(&c.NoiseSeed, flags.NoiseSeed)
	set(&c.FovY, flags.FovY)
	set(&c.Near, flags.Near)
	set(&c.Far, flags.Far)
	set(&c.AO.Enabled, flags.Enabled)
	set(&c.AO.Intensity, flags.Intensity)
	set(&c.AO.Bias, flags.Bias)
	set(&c.AO.LenCap, flags.LenCap)
	set(&c.AO.StepSize, flags.StepSize)
	set(&c.AO.KernelSize, flags.KernelSize)
	set(&c.AO.AOOnly, flags.AOOnly)

	c.Backend = strings.ToLower(c.Backend)
	if c.Backend == "" {
		c.Backend = BackendSoftware
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Output == "" && c.Color != "" {
		ext := filepath.Ext(c.Color)
		c.Output = strings.TrimSuffix(c.Color, ext) + "-ao.png"
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate reports the first setting that cannot produce an image.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSoftware, BackendGL:
	default:
		return fmt.Errorf("config: unknown backend %q (want %s or %s)", c.Backend, BackendSoftware, BackendGL)
	}
	if c.Color == "" || c.Depth == "" {
		return fmt.Errorf("config: color and depth inputs are required")
	}
	if (c.Width > 0) != (c.Height > 0) {
		return fmt.Errorf("config: width and height must be given together")
	}
	if c.FovY <= 0 || c.FovY >= 180 {
		return fmt.Errorf("config: fov_y %.1f out of range (0, 180)", c.FovY)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return fmt.Errorf("config: need 0 < near < far, got near=%g far=%g", c.Near, c.Far)
	}
	return nil
}

// Apply copies the effect settings into p.
func (c *Config) Apply(p *hbao.Params) {
	p.Update(func(s *hbao.Settings) {
		s.Enabled = c.AO.Enabled
		s.Intensity = c.AO.Intensity
		s.Bias = c.AO.Bias
		s.LenCap = c.AO.LenCap
		s.StepSize = c.AO.StepSize
		s.KernelSize = c.AO.KernelSize
		s.AOOnly = c.AO.AOOnly
	})
}

// InverseProjection returns the inverse of the camera projection for a
// drawing buffer of the given size.
func (c *Config) InverseProjection(size core.Size) math.Mat4 {
	aspect := float32(1)
	if size.Height > 0 {
		aspect = float32(size.Width) / float32(size.Height)
	}
	return math.Mat4Perspective(c.FovY*math.DegToRad, aspect, c.Near, c.Far).Inverse()
}
