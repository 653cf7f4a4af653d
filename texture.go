// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imrender

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Texture is a GUI-visible texture: either an *OwnedTexture or a
// *TextureView. No other implementations exist.
type Texture interface {
	// BindGroup returns the texture's bind group for layout, creating any
	// missing GPU objects first.
	BindGroup(device hal.Device, layout hal.BindGroupLayout) (hal.BindGroup, error)

	// Destroy releases every GPU object the texture created.
	Destroy(device hal.Device)

	isTexture()
}

// AsOwned returns t as an *OwnedTexture. It panics if t is a view.
func AsOwned(t Texture) *OwnedTexture {
	o, ok := t.(*OwnedTexture)
	if !ok {
		panic(fmt.Sprintf("imrender: texture is %T, not *OwnedTexture", t))
	}
	return o
}

// AsView returns t as a *TextureView. It panics if t is an owned texture.
func AsView(t Texture) *TextureView {
	v, ok := t.(*TextureView)
	if !ok {
		panic(fmt.Sprintf("imrender: texture is %T, not *TextureView", t))
	}
	return v
}

// retired collects invalidated GPU objects until a device is available to
// destroy them.
type retired struct {
	textures []hal.Texture
	views    []hal.TextureView
	samplers []hal.Sampler
	groups   []hal.BindGroup
}

func (r *retired) flush(device hal.Device) {
	for _, g := range r.groups {
		device.DestroyBindGroup(g)
	}
	for _, s := range r.samplers {
		device.DestroySampler(s)
	}
	for _, v := range r.views {
		device.DestroyTextureView(v)
	}
	for _, t := range r.textures {
		device.DestroyTexture(t)
	}
	*r = retired{}
}

// bindState is the sampler and bind group cache shared by both texture
// variants.
type bindState struct {
	label       string
	samplerDesc SamplerDescriptor
	sampler     hal.Sampler
	bindGroup   hal.BindGroup
	groupLayout hal.BindGroupLayout
	retired     retired
}

func (s *bindState) dropSampler() {
	if s.sampler != nil {
		s.retired.samplers = append(s.retired.samplers, s.sampler)
		s.sampler = nil
	}
}

func (s *bindState) dropBindGroup() {
	if s.bindGroup != nil {
		s.retired.groups = append(s.retired.groups, s.bindGroup)
		s.bindGroup = nil
		s.groupLayout = nil
	}
}

func (s *bindState) ensureSampler(device hal.Device) error {
	if s.sampler != nil {
		return nil
	}
	d := s.samplerDesc
	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        s.label,
		AddressModeU: d.AddressModeU,
		AddressModeV: d.AddressModeV,
		AddressModeW: d.AddressModeW,
		MagFilter:    d.MagFilter,
		MinFilter:    d.MinFilter,
		MipmapFilter: d.MipmapFilter,
		LodMinClamp:  d.LodMinClamp,
		LodMaxClamp:  d.LodMaxClamp,
		Anisotropy:   d.AnisotropyClamp,
	})
	if err != nil {
		return fmt.Errorf("imrender: create sampler %q: %w", s.label, err)
	}
	s.sampler = sampler
	return nil
}

// ensureBindGroup builds the bind group over view when it is missing or was
// built for a different layout.
func (s *bindState) ensureBindGroup(device hal.Device, layout hal.BindGroupLayout, view hal.TextureView) (hal.BindGroup, error) {
	if s.bindGroup != nil && s.groupLayout == layout {
		return s.bindGroup, nil
	}
	if s.bindGroup != nil {
		device.DestroyBindGroup(s.bindGroup)
		s.bindGroup = nil
	}
	if err := s.ensureSampler(device); err != nil {
		return nil, err
	}
	group, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  s.label,
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: s.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("imrender: create bind group %q: %w", s.label, err)
	}
	s.bindGroup = group
	s.groupLayout = layout
	return group, nil
}

func (s *bindState) destroy(device hal.Device) {
	s.dropBindGroup()
	s.dropSampler()
	s.retired.flush(device)
}

// OwnedTexture is a texture whose GPU storage the renderer creates and
// destroys. The texture, its view, the sampler and the bind group are built
// lazily and rebuilt after a setter invalidates them.
type OwnedTexture struct {
	bindState

	desc        TextureDescriptor
	bytesPerRow uint32
	rowKnown    bool

	texture hal.Texture
	view    hal.TextureView
}

// NewOwnedTexture returns an owned texture with no GPU objects yet.
func NewOwnedTexture(label string, desc TextureDescriptor, sampler SamplerDescriptor) *OwnedTexture {
	t := &OwnedTexture{
		bindState: bindState{label: label, samplerDesc: sampler},
		desc:      desc,
	}
	t.bytesPerRow, t.rowKnown = desc.BytesPerRow()
	return t
}

func (*OwnedTexture) isTexture() {}

// Label returns the debug label.
func (t *OwnedTexture) Label() string { return t.label }

// SetLabel replaces the label. Every GPU object carries the label, so all of
// them are rebuilt on next use.
func (t *OwnedTexture) SetLabel(label string) {
	t.label = label
	t.dropTexture()
	t.dropSampler()
	t.dropBindGroup()
}

// TextureDesc returns the texture descriptor.
func (t *OwnedTexture) TextureDesc() TextureDescriptor { return t.desc }

// SetTextureDesc replaces the descriptor, invalidating the texture, its view
// and the bind group. The sampler is kept.
func (t *OwnedTexture) SetTextureDesc(desc TextureDescriptor) {
	t.desc = desc
	t.bytesPerRow, t.rowKnown = desc.BytesPerRow()
	t.dropTexture()
	t.dropBindGroup()
}

// BytesPerRow returns the cached row pitch of the descriptor.
func (t *OwnedTexture) BytesPerRow() (uint32, bool) { return t.bytesPerRow, t.rowKnown }

// SamplerDesc returns the sampler descriptor.
func (t *OwnedTexture) SamplerDesc() SamplerDescriptor { return t.samplerDesc }

// SetSamplerDesc replaces the sampler descriptor, invalidating the sampler
// and the bind group.
func (t *OwnedTexture) SetSamplerDesc(desc SamplerDescriptor) {
	t.samplerDesc = desc
	t.dropSampler()
	t.dropBindGroup()
}

// HalTexture returns the GPU texture, or nil if it has not been created.
func (t *OwnedTexture) HalTexture() hal.Texture { return t.texture }

// HalView returns the GPU texture view, or nil if it has not been created.
func (t *OwnedTexture) HalView() hal.TextureView { return t.view }

func (t *OwnedTexture) dropTexture() {
	if t.view != nil {
		t.retired.views = append(t.retired.views, t.view)
		t.view = nil
	}
	if t.texture != nil {
		t.retired.textures = append(t.retired.textures, t.texture)
		t.texture = nil
	}
}

func (t *OwnedTexture) ensureTexture(device hal.Device) error {
	t.retired.flush(device)
	if t.texture != nil {
		return nil
	}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         t.label,
		Size:          hal.Extent3D{Width: t.desc.Width, Height: t.desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: t.desc.MipLevelCount,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        t.desc.Format,
		Usage:         t.desc.Usage,
	})
	if err != nil {
		return fmt.Errorf("imrender: create texture %q: %w", t.label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         t.label,
		Format:        t.desc.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: t.desc.MipLevelCount,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return fmt.Errorf("imrender: create texture view %q: %w", t.label, err)
	}
	t.texture = tex
	t.view = view
	return nil
}

// SetData uploads data into the region selected by r, creating the texture
// first if needed. It never invalidates cached GPU objects. Queue write
// failures are returned.
func (t *OwnedTexture) SetData(device hal.Device, queue hal.Queue, data []byte, r TextureSetRange) error {
	return t.setData(device, halUploader{queue}, data, r)
}

func (t *OwnedTexture) setData(device hal.Device, up uploader, data []byte, r TextureSetRange) error {
	if err := t.ensureTexture(device); err != nil {
		return err
	}
	w, h := t.desc.Width, t.desc.Height
	if r.Width != nil {
		w = *r.Width
	}
	if r.Height != nil {
		h = *r.Height
	}
	// A zero pitch lets the backend derive it from the format.
	rowPitch := uint32(0)
	if t.rowKnown {
		rowPitch = t.bytesPerRow
	}
	err := up.writeTexture(
		&hal.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: r.MipLevel,
			Origin:   hal.Origin3D{X: r.X, Y: r.Y, Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{Offset: r.Offset, BytesPerRow: rowPitch, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("%w (texture %q)", err, t.label)
	}
	return nil
}

// BindGroup implements Texture.
func (t *OwnedTexture) BindGroup(device hal.Device, layout hal.BindGroupLayout) (hal.BindGroup, error) {
	if err := t.ensureTexture(device); err != nil {
		return nil, err
	}
	return t.ensureBindGroup(device, layout, t.view)
}

// Destroy implements Texture.
func (t *OwnedTexture) Destroy(device hal.Device) {
	t.dropTexture()
	t.destroy(device)
}

// TextureView wraps a texture view owned by the caller. The renderer only
// manages the sampler and the bind group.
type TextureView struct {
	bindState
	view hal.TextureView
}

// NewTextureView wraps view.
func NewTextureView(label string, view hal.TextureView, sampler SamplerDescriptor) *TextureView {
	return &TextureView{
		bindState: bindState{label: label, samplerDesc: sampler},
		view:      view,
	}
}

func (*TextureView) isTexture() {}

// Label returns the debug label.
func (v *TextureView) Label() string { return v.label }

// SetLabel replaces the label, invalidating the sampler and the bind group.
func (v *TextureView) SetLabel(label string) {
	v.label = label
	v.dropSampler()
	v.dropBindGroup()
}

// View returns the wrapped texture view.
func (v *TextureView) View() hal.TextureView { return v.view }

// SetTextureView swaps the wrapped view and returns the previous one. Only
// the bind group is invalidated; the caller still owns both views.
func (v *TextureView) SetTextureView(view hal.TextureView) hal.TextureView {
	old := v.view
	v.view = view
	v.dropBindGroup()
	return old
}

// SamplerDesc returns the sampler descriptor.
func (v *TextureView) SamplerDesc() SamplerDescriptor { return v.samplerDesc }

// SetSamplerDesc replaces the sampler descriptor, invalidating the sampler
// and the bind group.
func (v *TextureView) SetSamplerDesc(desc SamplerDescriptor) {
	v.samplerDesc = desc
	v.dropSampler()
	v.dropBindGroup()
}

// BindGroup implements Texture.
func (v *TextureView) BindGroup(device hal.Device, layout hal.BindGroupLayout) (hal.BindGroup, error) {
	v.retired.flush(device)
	return v.ensureBindGroup(device, layout, v.view)
}

// Destroy implements Texture. The wrapped view is left to its owner.
func (v *TextureView) Destroy(device hal.Device) {
	v.destroy(device)
}
