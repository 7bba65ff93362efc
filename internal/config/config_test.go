package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"ao-engine/core"
	"ao-engine/hbao"
	"ao-engine/math"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `{"backend": "gl", "ao": {"intensity": 2.5}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Backend != BackendGL {
		t.Errorf("Backend = %q, want gl", cfg.Backend)
	}
	if cfg.AO.Intensity != 2.5 {
		t.Errorf("Intensity = %v, want 2.5", cfg.AO.Intensity)
	}
	if cfg.AO.LenCap != hbao.DefaultLenCap || cfg.AO.StepSize != hbao.DefaultStepSize {
		t.Errorf("unset fields should keep defaults, got %+v", cfg.AO)
	}
	if !cfg.AO.Enabled {
		t.Error("effect should default to enabled")
	}
	if cfg.Far != 100 || cfg.Near != 0.1 || cfg.FovY != 60 {
		t.Errorf("camera defaults lost: fov=%v near=%v far=%v", cfg.FovY, cfg.Near, cfg.Far)
	}
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	path := writeConfig(t, `{"color": "scene.png", "depth": "/abs/depth.png"}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(filepath.Dir(path), "scene.png"); cfg.Color != want {
		t.Errorf("Color = %q, want %q", cfg.Color, want)
	}
	if cfg.Depth != "/abs/depth.png" {
		t.Errorf("Depth = %q, absolute paths must be kept", cfg.Depth)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil || !strings.Contains(err.Error(), "config: read") {
		t.Errorf("missing file: err = %v", err)
	}
	if _, err := Load(writeConfig(t, `{"ao": `)); err == nil || !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("bad json: err = %v", err)
	}
}

func TestResolveFlagsOverride(t *testing.T) {
	cfg := Default()
	cfg.Color = "in/scene.tga"
	cfg.AO.Intensity = 3

	intensity := float32(1.5)
	aoOnly := true
	backend := "GL"
	cfg.Resolve(Flags{Intensity: &intensity, AOOnly: &aoOnly, Backend: &backend})

	if cfg.AO.Intensity != 1.5 || !cfg.AO.AOOnly {
		t.Errorf("flags not applied: %+v", cfg.AO)
	}
	if cfg.AO.StepSize != hbao.DefaultStepSize {
		t.Errorf("unset flag changed StepSize to %v", cfg.AO.StepSize)
	}
	if cfg.Backend != BackendGL {
		t.Errorf("Backend = %q, want gl", cfg.Backend)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d, want NumCPU", cfg.Workers)
	}
	if cfg.Output != "in/scene-ao.png" {
		t.Errorf("Output = %q, want in/scene-ao.png", cfg.Output)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Default()
		c.Color, c.Depth = "c.png", "d.png"
		c.Resolve(Flags{})
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown backend", func(c *Config) { c.Backend = "vulkan" }, false},
		{"missing depth", func(c *Config) { c.Depth = "" }, false},
		{"width only", func(c *Config) { c.Width = 64 }, false},
		{"both dims", func(c *Config) { c.Width, c.Height = 64, 32 }, true},
		{"zero fov", func(c *Config) { c.FovY = 0 }, false},
		{"far before near", func(c *Config) { c.Near, c.Far = 10, 1 }, false},
	}
	for _, tt := range tests {
		c := valid()
		tt.mutate(&c)
		if err := c.Validate(); (err == nil) != tt.ok {
			t.Errorf("%s: Validate() = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestApply(t *testing.T) {
	cfg := Default()
	cfg.AO = AO{Enabled: true, Intensity: 2, Bias: 0.1, LenCap: 0.5, StepSize: 3, KernelSize: 1.5, AOOnly: true}

	p := hbao.NewParams()
	cfg.Apply(p)

	want := hbao.Settings{Enabled: true, Intensity: 2, Bias: 0.1, LenCap: 0.5, StepSize: 3, KernelSize: 1.5, AOOnly: true}
	if got := p.Snapshot(); got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}

func TestInverseProjection(t *testing.T) {
	cfg := Default()
	size := core.Size{Width: 320, Height: 200}
	inv := cfg.InverseProjection(size)
	proj := math.Mat4Perspective(cfg.FovY*math.DegToRad, 1.6, cfg.Near, cfg.Far)

	// Each basis row of the identity must survive proj then inverse.
	for i := 0; i < 4; i++ {
		var row [4]float32
		row[i] = 1
		v := math.NewVec4(row[0], row[1], row[2], row[3]).MulMat(proj).MulMat(inv)
		got := [4]float32{v.X, v.Y, v.Z, v.W}
		for j := 0; j < 4; j++ {
			if d := got[j] - row[j]; d > 1e-4 || d < -1e-4 {
				t.Fatalf("basis %d through proj and inverse: [%d] = %v, want %v", i, j, got[j], row[j])
			}
		}
	}
}
