// Package wgsl carries WGSL renditions of the ambient occlusion programs
// and compiles them to SPIR-V for WebGPU and Vulkan hosts.
//
// Every module has a fullscreen-triangle vs_main and an fs_main entry
// point. Blur X and Blur Y share one module; the axis is selected by the
// texel_dir uniform.
package wgsl

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/naga"

	"ao-engine/hbao"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

//go:embed shaders/generate.wgsl
var generateWGSL string

//go:embed shaders/blur.wgsl
var blurWGSL string

//go:embed shaders/composite.wgsl
var compositeWGSL string

// Module names the WGSL program that implements pass.
func Module(pass hbao.PassID) (string, error) {
	switch pass {
	case hbao.PassGenerate:
		return "generate", nil
	case hbao.PassBlurX, hbao.PassBlurY:
		return "blur", nil
	case hbao.PassComposite:
		return "composite", nil
	}
	return "", fmt.Errorf("wgsl: unknown pass %v", pass)
}

// Source returns the WGSL text for pass.
func Source(pass hbao.PassID) (string, error) {
	name, err := Module(pass)
	if err != nil {
		return "", err
	}
	switch name {
	case "generate":
		return generateWGSL, nil
	case "blur":
		return blurWGSL, nil
	default:
		return compositeWGSL, nil
	}
}

// Compile translates the module of pass to SPIR-V words.
func Compile(pass hbao.PassID) ([]uint32, error) {
	src, err := Source(pass)
	if err != nil {
		return nil, err
	}
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s shader: %w", pass, err)
	}
	return Words(spirvBytes)
}

// Words converts little-endian SPIR-V bytes to 32-bit words and checks the
// magic number.
func Words(b []byte) ([]uint32, error) {
	if len(b) < 4 || len(b)%4 != 0 {
		return nil, fmt.Errorf("wgsl: SPIR-V length %d is not a positive multiple of 4", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	if words[0] != SPIRVMagic {
		return nil, fmt.Errorf("wgsl: bad SPIR-V magic 0x%08X", words[0])
	}
	return words, nil
}

// Emit compiles every module and writes <module>.spv into dir. It returns
// the written paths.
func Emit(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var paths []string
	seen := make(map[string]bool)
	for _, pass := range hbao.Passes {
		name, _ := Module(pass)
		if seen[name] {
			continue
		}
		seen[name] = true

		words, err := Compile(pass)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, name+".spv")
		if err := os.WriteFile(path, bytesOf(words), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		hbao.Logger().Debug("wgsl: emitted module",
			slog.String("module", name), slog.String("path", path), slog.Int("words", len(words)))
		paths = append(paths, path)
	}
	return paths, nil
}

func bytesOf(words []uint32) []byte {
	b := make([]byte, len(words)*4)
	for i, w := range words {
		b[i*4] = byte(w)
		b[i*4+1] = byte(w >> 8)
		b[i*4+2] = byte(w >> 16)
		b[i*4+3] = byte(w >> 24)
	}
	return b
}
