// Command hbao applies horizon-based ambient occlusion to a rendered frame.
//
// It reads a color image and the matching depth buffer, runs the generate,
// blur and composite passes on the CPU or with OpenGL and writes the shaded
// result as PNG or WebP:
//
//	hbao -color frame.png -depth depth16.png -fov 60 -near 0.1 -far 100 -out frame-ao.webp
//
// With -emit-spirv DIR it also writes the passes compiled to SPIR-V.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ao-engine/core"
	"ao-engine/hbao"
	"ao-engine/internal/config"
	"ao-engine/internal/opengl"
	"ao-engine/internal/software"
	"ao-engine/internal/wgsl"
	"ao-engine/textures"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	colorPath := flag.String("color", "", "Scene color image (png, jpeg, tga)")
	depthPath := flag.String("depth", "", "Depth buffer image, 16-bit grayscale png preferred")
	noisePath := flag.String("noise", "", "Noise texture (default: procedural 256x256)")
	noiseSeed := flag.Int64("noise-seed", 1, "Seed of the procedural noise texture")
	outPath := flag.String("out", "", "Output image, .png or .webp (default: <color>-ao.png)")
	spirvDir := flag.String("emit-spirv", "", "Write the passes compiled to SPIR-V into this directory")
	backend := flag.String("backend", config.BackendSoftware, "Executor: software or gl")
	workers := flag.Int("workers", 0, "Row workers for the software executor (default: NumCPU)")
	width := flag.Int("width", 0, "Resample inputs to this width before processing")
	height := flag.Int("height", 0, "Resample inputs to this height before processing")
	fov := flag.Float64("fov", 60, "Vertical field of view of the depth camera in degrees")
	near := flag.Float64("near", 0.1, "Near plane of the depth camera")
	far := flag.Float64("far", 100, "Far plane of the depth camera")
	enabled := flag.Bool("enabled", true, "Run the effect; when false the color is written unchanged")
	intensity := flag.Float64("intensity", hbao.DefaultIntensity, "Exponent applied to visibility")
	bias := flag.Float64("bias", hbao.DefaultBias, "Minimum normal alignment for a sample to occlude")
	lenCap := flag.Float64("len-cap", hbao.DefaultLenCap, "View-space distance beyond which samples are ignored")
	stepSize := flag.Float64("step-size", hbao.DefaultStepSize, "Horizon march step in pixels")
	kernelSize := flag.Float64("kernel-size", hbao.DefaultKernelSize, "Blur tap spacing in pixels")
	aoOnly := flag.Bool("ao-only", false, "Write the occlusion term instead of the shaded color")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	hbao.SetLogger(logger)

	// Only flags given on the command line override the config file.
	visited := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { visited[f.Name] = true })

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		Color:      given(visited, "color", colorPath),
		Depth:      given(visited, "depth", depthPath),
		Noise:      given(visited, "noise", noisePath),
		Output:     given(visited, "out", outPath),
		SPIRVDir:   given(visited, "emit-spirv", spirvDir),
		Backend:    given(visited, "backend", backend),
		Workers:    given(visited, "workers", workers),
		Width:      given(visited, "width", width),
		Height:     given(visited, "height", height),
		NoiseSeed:  given(visited, "noise-seed", noiseSeed),
		FovY:       given32(visited, "fov", fov),
		Near:       given32(visited, "near", near),
		Far:        given32(visited, "far", far),
		Enabled:    given(visited, "enabled", enabled),
		Intensity:  given32(visited, "intensity", intensity),
		Bias:       given32(visited, "bias", bias),
		LenCap:     given32(visited, "len-cap", lenCap),
		StepSize:   given32(visited, "step-size", stepSize),
		KernelSize: given32(visited, "kernel-size", kernelSize),
		AOOnly:     given(visited, "ao-only", aoOnly),
	})

	if cfg.SPIRVDir != "" {
		paths, err := wgsl.Emit(cfg.SPIRVDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error emitting SPIR-V: %v\n", err)
			os.Exit(1)
		}
		for _, p := range paths {
			logger.Info("wrote SPIR-V module", slog.String("path", p))
		}
		if cfg.Color == "" && cfg.Depth == "" {
			return
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	in, err := loadInputs(&cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading inputs: %v\n", err)
		os.Exit(1)
	}

	logger.Info("running ambient occlusion",
		slog.String("backend", cfg.Backend),
		slog.Int("width", in.color.Width), slog.Int("height", in.color.Height),
		slog.Bool("enabled", cfg.AO.Enabled), slog.Bool("ao_only", cfg.AO.AOOnly))

	start := time.Now()
	var result *textures.Texture
	switch cfg.Backend {
	case config.BackendGL:
		result, err = runGL(&cfg, in)
	default:
		result, err = runSoftware(&cfg, in)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := textures.Save(cfg.Output, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("done",
		slog.String("output", cfg.Output),
		slog.Duration("elapsed", time.Since(start)))
}

type inputs struct {
	color, depth, noise *textures.Texture
}

func loadInputs(cfg *config.Config, logger *slog.Logger) (inputs, error) {
	var in inputs
	var err error

	if in.color, err = textures.Load(cfg.Color); err != nil {
		return in, err
	}
	if in.depth, err = textures.LoadDepth(cfg.Depth); err != nil {
		return in, err
	}
	if cfg.Noise != "" {
		if in.noise, err = textures.LoadNoise(cfg.Noise); err != nil {
			return in, err
		}
	} else {
		in.noise = textures.NewNoise(textures.NoiseSize, cfg.NoiseSeed)
	}

	if cfg.Width > 0 && cfg.Height > 0 {
		in.color = textures.Resize(in.color, cfg.Width, cfg.Height, textures.FilterSmooth)
		in.depth = textures.Resize(in.depth, cfg.Width, cfg.Height, textures.FilterNearest)
	}
	if in.depth.Size() != in.color.Size() {
		logger.Warn("depth size differs from color, resampling depth",
			slog.String("color", sizeString(in.color.Size())),
			slog.String("depth", sizeString(in.depth.Size())))
		in.depth = textures.Resize(in.depth, in.color.Width, in.color.Height, textures.FilterNearest)
	}
	return in, nil
}

func frameFor(cfg *config.Config, color *textures.Texture) hbao.FrameState {
	size := color.Size()
	return hbao.FrameState{
		DrawingBufferWidth:  size.Width,
		DrawingBufferHeight: size.Height,
		InverseProjection:   cfg.InverseProjection(size),
	}
}

func runSoftware(cfg *config.Config, in inputs) (*textures.Texture, error) {
	stage := hbao.NewStage(software.New(software.WithWorkers(cfg.Workers)), in.noise)
	defer stage.Destroy()
	cfg.Apply(stage.Params())

	if err := stage.Execute(frameFor(cfg, in.color), in.color, in.depth, true); err != nil {
		return nil, err
	}
	if stage.Output() == nil {
		return in.color, nil
	}
	return stage.Output().(*textures.Texture).Clone(), nil
}

func runGL(cfg *config.Config, in inputs) (*textures.Texture, error) {
	ctx, err := opengl.NewContext()
	if err != nil {
		return nil, err
	}
	defer ctx.Destroy()

	backend, err := opengl.NewBackend()
	if err != nil {
		return nil, err
	}
	defer backend.Destroy()

	var uploaded [3]*opengl.Texture
	for i, t := range []*textures.Texture{in.color, in.depth, in.noise} {
		if uploaded[i], err = opengl.UploadTexture(t); err != nil {
			return nil, err
		}
		defer opengl.DeleteTexture(uploaded[i])
	}
	color, depth, noise := uploaded[0], uploaded[1], uploaded[2]

	stage := hbao.NewStage(backend, noise)
	defer stage.Destroy()
	cfg.Apply(stage.Params())

	if err := stage.Execute(frameFor(cfg, in.color), color, depth, true); err != nil {
		return nil, err
	}
	if stage.Output() == nil {
		return in.color, nil
	}
	return opengl.Download(stage.Output().(*opengl.Texture))
}

func given[T any](visited map[string]bool, name string, v *T) *T {
	if !visited[name] {
		return nil
	}
	return v
}

func given32(visited map[string]bool, name string, v *float64) *float32 {
	if !visited[name] {
		return nil
	}
	f := float32(*v)
	return &f
}

func sizeString(s core.Size) string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}
