// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imrender

import (
	"fmt"

	"github.com/gogpu/gputypes"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gogpu/imrender/drawdata"
	"github.com/gogpu/imrender/internal/shader"
	"github.com/gogpu/wgpu/hal"
)

// ColorSpaceMode selects how vertex colors and blending treat sRGB.
type ColorSpaceMode int

const (
	// ColorSpaceNone applies no conversion; colors are blended as given.
	ColorSpaceNone ColorSpaceMode = iota

	// ColorSpaceLinear decodes sRGB vertex colors to linear for an sRGB
	// render target.
	ColorSpaceLinear

	// ColorSpaceSrgb keeps sRGB-encoded output for a linear render target,
	// using premultiplied color blending and replacing destination alpha.
	ColorSpaceSrgb
)

// String returns the mode name.
func (m ColorSpaceMode) String() string {
	switch m {
	case ColorSpaceNone:
		return "none"
	case ColorSpaceLinear:
		return "linear"
	case ColorSpaceSrgb:
		return "srgb"
	default:
		return fmt.Sprintf("ColorSpaceMode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m ColorSpaceMode) MarshalText() ([]byte, error) {
	switch m {
	case ColorSpaceNone, ColorSpaceLinear, ColorSpaceSrgb:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("imrender: invalid color space mode %d", int(m))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ColorSpaceMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none", "":
		*m = ColorSpaceNone
	case "linear":
		*m = ColorSpaceLinear
	case "srgb":
		*m = ColorSpaceSrgb
	default:
		return fmt.Errorf("imrender: unknown color space mode %q", text)
	}
	return nil
}

func (m ColorSpaceMode) shaderVariant() shader.Variant {
	switch m {
	case ColorSpaceLinear:
		return shader.Linear
	case ColorSpaceSrgb:
		return shader.Srgb
	default:
		return shader.Plain
	}
}

// blendState returns the color target blend for the mode.
func (m ColorSpaceMode) blendState() gputypes.BlendState {
	if m == ColorSpaceSrgb {
		return gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorZero,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	}
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

// vertexLayout matches drawdata.DrawVert: pos, uv, packed RGBA8 color.
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: drawdata.VertexSize,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				{Format: gputypes.VertexFormatUnorm8x4, Offset: 16, ShaderLocation: 2},
			},
		},
	}
}

// indexFormat follows the size of drawdata.DrawIdx.
func indexFormat() gputypes.IndexFormat {
	if drawdata.IndexSize == 2 {
		return gputypes.IndexFormatUint16
	}
	return gputypes.IndexFormatUint32
}

// pipelineCache keeps one render pipeline per output format. Evicted
// pipelines are destroyed.
type pipelineCache struct {
	device hal.Device
	cache  *lru.Cache[gputypes.TextureFormat, hal.RenderPipeline]
	builds int
}

func newPipelineCache(device hal.Device, size int) (*pipelineCache, error) {
	if size < 1 {
		size = 1
	}
	pc := &pipelineCache{device: device}
	cache, err := lru.NewWithEvict[gputypes.TextureFormat, hal.RenderPipeline](size, pc.onEvict)
	if err != nil {
		return nil, fmt.Errorf("imrender: pipeline cache: %w", err)
	}
	pc.cache = cache
	return pc, nil
}

func (pc *pipelineCache) onEvict(format gputypes.TextureFormat, p hal.RenderPipeline) {
	Logger().Debug("imrender: pipeline evicted", "format", format)
	pc.device.DestroyRenderPipeline(p)
}

// get returns the cached pipeline for format or builds it with build.
func (pc *pipelineCache) get(format gputypes.TextureFormat, build func(gputypes.TextureFormat) (hal.RenderPipeline, error)) (hal.RenderPipeline, error) {
	if p, ok := pc.cache.Get(format); ok {
		Logger().Debug("imrender: pipeline cache hit", "format", format)
		return p, nil
	}
	p, err := build(format)
	if err != nil {
		return nil, err
	}
	pc.builds++
	pc.cache.Add(format, p)
	return p, nil
}

// purge destroys every cached pipeline.
func (pc *pipelineCache) purge() {
	pc.cache.Purge()
}

// pipelineState owns the layouts, shader and pipelines shared by every frame.
type pipelineState struct {
	viewLayout    hal.BindGroupLayout
	textureLayout hal.BindGroupLayout
	layout        hal.PipelineLayout
	shader        hal.ShaderModule
	pipelines     *pipelineCache
	mode          ColorSpaceMode
	label         string
}

func (s *pipelineState) create(device hal.Device, o *options) error {
	s.label = o.label
	var err error
	s.viewLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: o.label + " view",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("imrender: create view layout: %w", err)
	}

	s.textureLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: o.label + " texture",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("imrender: create texture layout: %w", err)
	}

	s.layout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            o.label,
		BindGroupLayouts: []hal.BindGroupLayout{s.viewLayout, s.textureLayout},
	})
	if err != nil {
		return fmt.Errorf("imrender: create pipeline layout: %w", err)
	}

	src, err := shader.Source(s.mode.shaderVariant(), o.shaderFormat == ShaderFormatSPIRV)
	if err != nil {
		return fmt.Errorf("imrender: %w", err)
	}
	s.shader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  o.label,
		Source: src,
	})
	if err != nil {
		return fmt.Errorf("imrender: create shader module: %w", err)
	}

	s.pipelines, err = newPipelineCache(device, o.pipelineCacheSize)
	return err
}

func (s *pipelineState) pipeline(device hal.Device, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	return s.pipelines.get(format, func(format gputypes.TextureFormat) (hal.RenderPipeline, error) {
		return s.build(device, format)
	})
}

func (s *pipelineState) build(device hal.Device, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	blend := s.mode.blendState()
	p, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  s.label,
		Layout: s.layout,
		Vertex: hal.VertexState{
			Module:     s.shader,
			EntryPoint: shader.VertexEntryPoint,
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     s.shader,
			EntryPoint: shader.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("imrender: create render pipeline for %v: %w", format, err)
	}
	Logger().Debug("imrender: pipeline built", "format", format, "mode", s.mode)
	return p, nil
}

func (s *pipelineState) destroy(device hal.Device) {
	if s.pipelines != nil {
		s.pipelines.purge()
		s.pipelines = nil
	}
	if s.shader != nil {
		device.DestroyShaderModule(s.shader)
		s.shader = nil
	}
	if s.layout != nil {
		device.DestroyPipelineLayout(s.layout)
		s.layout = nil
	}
	if s.textureLayout != nil {
		device.DestroyBindGroupLayout(s.textureLayout)
		s.textureLayout = nil
	}
	if s.viewLayout != nil {
		device.DestroyBindGroupLayout(s.viewLayout)
		s.viewLayout = nil
	}
}
