// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imrender

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/imrender/drawdata"
	"github.com/gogpu/wgpu/hal"
)

// viewUniformSize is the size of the scale/translate uniform: 4 x f32.
const viewUniformSize = 16

// Renderer draws a GUI library's DrawData with a HAL device.
//
// A Renderer owns every GPU object it creates, including the textures
// registered with it. It is not safe for concurrent use.
type Renderer struct {
	device hal.Device
	up     uploader
	ui     drawdata.Context
	opts   options

	format   gputypes.TextureFormat
	pipes    pipelineState
	pipeline hal.RenderPipeline

	viewBuf   hal.Buffer
	viewGroup hal.BindGroup

	vtx streamBuffer
	idx streamBuffer

	textures *Registry
	stats    FrameStats
}

// FrameStats describes the last rendered frame and the buffer history.
type FrameStats struct {
	DrawCalls       int
	SkippedCommands int
	Callbacks       int

	VertexBufferSize uint64
	IndexBufferSize  uint64

	// VertexReallocs and IndexReallocs count buffer creations since the
	// renderer was built.
	VertexReallocs int
	IndexReallocs  int
}

// New creates a renderer drawing into targets of the given format.
//
// New registers the renderer's capabilities with ui and uploads the font
// atlas, so the first issued texture handle belongs to the font atlas.
func New(device hal.Device, queue hal.Queue, ui drawdata.Context, format gputypes.TextureFormat, mode ColorSpaceMode, opts ...Option) (*Renderer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	return newRenderer(device, halUploader{queue}, ui, format, mode, opts...)
}

func newRenderer(device hal.Device, up uploader, ui drawdata.Context, format gputypes.TextureFormat, mode ColorSpaceMode, opts ...Option) (*Renderer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if ui == nil {
		return nil, ErrNilContext
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{
		device:   device,
		up:       up,
		ui:       ui,
		opts:     o,
		format:   format,
		pipes:    pipelineState{mode: mode},
		textures: NewRegistry(),
		vtx: streamBuffer{
			label: o.label + " vertices",
			usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		},
		idx: streamBuffer{
			label: o.label + " indices",
			usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
		},
	}

	ui.SetBackendFlags(ui.BackendFlags() | drawdata.BackendFlagRendererHasVtxOffset)

	if err := r.init(); err != nil {
		r.Destroy()
		return nil, err
	}

	Logger().Info("imrender: renderer created", "format", format, "mode", mode, "shader", o.shaderFormat)
	return r, nil
}

func (r *Renderer) init() error {
	if err := r.pipes.create(r.device, &r.opts); err != nil {
		return err
	}

	var err error
	r.viewBuf, err = r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: r.opts.label + " view",
		Size:  viewUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("imrender: create view buffer: %w", err)
	}

	r.viewGroup, err = r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  r.opts.label + " view",
		Layout: r.pipes.viewLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: r.viewBuf.NativeHandle(), Offset: 0, Size: viewUniformSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("imrender: create view bind group: %w", err)
	}

	r.pipeline, err = r.pipes.pipeline(r.device, r.format)
	if err != nil {
		return err
	}

	return r.ReloadFonts()
}

// ChangeOutputFormat switches the pipeline to targets of format. Pipelines
// for recently used formats are reused.
func (r *Renderer) ChangeOutputFormat(format gputypes.TextureFormat) error {
	p, err := r.pipes.pipeline(r.device, format)
	if err != nil {
		return err
	}
	r.pipeline = p
	r.format = format
	return nil
}

// OutputFormat returns the current render target format.
func (r *Renderer) OutputFormat() gputypes.TextureFormat { return r.format }

// ColorSpace returns the color-space mode the renderer was built with.
func (r *Renderer) ColorSpace() ColorSpaceMode { return r.pipes.mode }

// Device returns the renderer's device.
func (r *Renderer) Device() hal.Device { return r.device }

// Textures returns the renderer's texture registry.
func (r *Renderer) Textures() *Registry { return r.textures }

// Stats returns statistics of the last rendered frame.
func (r *Renderer) Stats() FrameStats { return r.stats }

// AddTexture registers t and returns its new handle. Registered textures
// are destroyed with the renderer.
func (r *Renderer) AddTexture(t Texture) drawdata.TextureID {
	return r.textures.Insert(t)
}

// CreateOwnedTexture returns an owned texture without registering it.
func (r *Renderer) CreateOwnedTexture(label string, desc TextureDescriptor, sampler SamplerDescriptor) *OwnedTexture {
	return NewOwnedTexture(label, desc, sampler)
}

// CreateAndAddOwnedTexture creates and registers an owned texture.
func (r *Renderer) CreateAndAddOwnedTexture(label string, desc TextureDescriptor, sampler SamplerDescriptor) drawdata.TextureID {
	return r.AddTexture(r.CreateOwnedTexture(label, desc, sampler))
}

// CreateTextureView wraps a caller-owned view without registering it.
func (r *Renderer) CreateTextureView(label string, view hal.TextureView, sampler SamplerDescriptor) *TextureView {
	return NewTextureView(label, view, sampler)
}

// CreateAndAddTextureView wraps and registers a caller-owned view.
func (r *Renderer) CreateAndAddTextureView(label string, view hal.TextureView, sampler SamplerDescriptor) drawdata.TextureID {
	return r.AddTexture(r.CreateTextureView(label, view, sampler))
}

// SetTextureData uploads data into an owned texture through the renderer's
// queue.
func (r *Renderer) SetTextureData(t *OwnedTexture, data []byte, rng TextureSetRange) error {
	return t.setData(r.device, r.up, data, rng)
}

// RemoveTexture unregisters id and hands the texture back to the caller,
// who becomes responsible for destroying it.
func (r *Renderer) RemoveTexture(id drawdata.TextureID) (Texture, bool) {
	return r.textures.Remove(id)
}

// Texture returns the texture registered under id. It panics for unknown ids.
func (r *Renderer) Texture(id drawdata.TextureID) Texture {
	return r.textures.Get(id)
}

// LookupTexture returns the texture registered under id, if any.
func (r *Renderer) LookupTexture(id drawdata.TextureID) (Texture, bool) {
	return r.textures.Lookup(id)
}

// ReloadFonts uploads the GUI library's current font atlas, replacing the
// texture of a previous upload under the same handle. On failure the
// previous atlas stays registered and the atlas keeps its CPU pixels.
//
// The previous atlas texture is destroyed at once, so the host must wait
// for submitted work that samples it before reloading.
func (r *Renderer) ReloadFonts() error {
	atlas := r.ui.FontAtlas()
	pixels, w, h := atlas.TextureDataRGBA32()
	if w <= 0 || h <= 0 || len(pixels) < w*h*4 {
		return fmt.Errorf("%w: %dx%d with %d bytes", ErrEmptyAtlas, w, h, len(pixels))
	}

	sampler := DefaultSamplerDescriptor()
	sampler.MinFilter = gputypes.FilterModeLinear
	sampler.MagFilter = gputypes.FilterModeLinear

	tex := NewOwnedTexture(r.opts.label+" font atlas", TextureDescriptor{
		Width:         uint32(w), //nolint:gosec // atlas dimensions are positive and small
		Height:        uint32(h), //nolint:gosec // atlas dimensions are positive and small
		MipLevelCount: 1,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
	}, sampler)

	if err := tex.setData(r.device, r.up, pixels, TextureSetRange{}); err != nil {
		tex.Destroy(r.device)
		return err
	}
	atlas.ClearTexData()

	id := atlas.TextureID()
	if id == drawdata.NullTextureID {
		id = r.textures.Insert(tex)
		atlas.SetTextureID(id)
	} else {
		if old, ok := r.textures.Lookup(id); ok {
			old.Destroy(r.device)
		}
		r.textures.Set(id, tex)
	}
	Logger().Debug("imrender: font atlas uploaded", "id", id, "width", w, "height", h)
	return nil
}

// Destroy releases every GPU object owned by the renderer, including all
// registered textures. Destroy is safe to call more than once.
func (r *Renderer) Destroy() {
	if r.device == nil {
		return
	}
	r.textures.Destroy(r.device)
	r.vtx.destroy(r.device)
	r.idx.destroy(r.device)
	if r.viewGroup != nil {
		r.device.DestroyBindGroup(r.viewGroup)
		r.viewGroup = nil
	}
	if r.viewBuf != nil {
		r.device.DestroyBuffer(r.viewBuf)
		r.viewBuf = nil
	}
	r.pipeline = nil
	r.pipes.destroy(r.device)
	r.device = nil
	Logger().Info("imrender: renderer destroyed")
}
