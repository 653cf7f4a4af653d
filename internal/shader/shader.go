// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shader holds the GUI renderer's WGSL sources and the WGSL to SPIR-V
// translation used when a backend wants precompiled modules.
package shader

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Variant selects the color-space handling compiled into the shader.
type Variant int

const (
	// Plain passes colors through unchanged.
	Plain Variant = iota
	// Linear decodes sRGB vertex colors for an sRGB render target.
	Linear
	// Srgb keeps output sRGB encoded for a linear render target.
	Srgb
)

// Entry points shared by every variant.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

//go:embed shaders/imgui.wgsl
var plainSource string

//go:embed shaders/imgui-linear.wgsl
var linearSource string

//go:embed shaders/imgui-srgb.wgsl
var srgbSource string

// WGSL returns the WGSL source for v.
func WGSL(v Variant) string {
	switch v {
	case Linear:
		return linearSource
	case Srgb:
		return srgbSource
	default:
		return plainSource
	}
}

// CompileSPIRV translates WGSL source to SPIR-V words.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: spir-v length %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is a stream of little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// Source builds the module source for v, either as WGSL text or as
// precompiled SPIR-V.
func Source(v Variant, spirv bool) (hal.ShaderSource, error) {
	src := WGSL(v)
	if !spirv {
		return hal.ShaderSource{WGSL: src}, nil
	}
	words, err := CompileSPIRV(src)
	if err != nil {
		return hal.ShaderSource{}, err
	}
	return hal.ShaderSource{SPIRV: words}, nil
}
