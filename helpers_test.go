package imrender

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/imrender/drawdata"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// Fake GPU objects. Each embeds its HAL interface for any method the tests
// never call and reports its tracking id as the native handle.

type fakeBuffer struct {
	hal.Buffer
	id   int
	size uint64
}

func (b *fakeBuffer) Destroy()              {}
func (b *fakeBuffer) NativeHandle() uintptr { return uintptr(b.id) }

type fakeTexture struct {
	hal.Texture
	id   int
	desc hal.TextureDescriptor
}

func (x *fakeTexture) Destroy()              {}
func (x *fakeTexture) NativeHandle() uintptr { return uintptr(x.id) }

type fakeTextureView struct {
	hal.TextureView
	id int
}

func (v *fakeTextureView) Destroy()              {}
func (v *fakeTextureView) NativeHandle() uintptr { return uintptr(v.id) }

type fakeSampler struct {
	hal.Sampler
	id   int
	desc hal.SamplerDescriptor
}

func (s *fakeSampler) Destroy()              {}
func (s *fakeSampler) NativeHandle() uintptr { return uintptr(s.id) }

type fakeBindGroupLayout struct {
	hal.BindGroupLayout
	id int
}

func (l *fakeBindGroupLayout) Destroy()              {}
func (l *fakeBindGroupLayout) NativeHandle() uintptr { return uintptr(l.id) }

type fakeBindGroup struct {
	hal.BindGroup
	id   int
	desc hal.BindGroupDescriptor
}

func (g *fakeBindGroup) Destroy()              {}
func (g *fakeBindGroup) NativeHandle() uintptr { return uintptr(g.id) }

type fakePipelineLayout struct {
	hal.PipelineLayout
	id int
}

func (l *fakePipelineLayout) Destroy()              {}
func (l *fakePipelineLayout) NativeHandle() uintptr { return uintptr(l.id) }

type fakeShaderModule struct {
	hal.ShaderModule
	id   int
	desc hal.ShaderModuleDescriptor
}

func (m *fakeShaderModule) Destroy()              {}
func (m *fakeShaderModule) NativeHandle() uintptr { return uintptr(m.id) }

type fakeRenderPipeline struct {
	hal.RenderPipeline
	id     int
	format gputypes.TextureFormat
	desc   hal.RenderPipelineDescriptor
}

func (p *fakeRenderPipeline) Destroy()              {}
func (p *fakeRenderPipeline) NativeHandle() uintptr { return uintptr(p.id) }

var errInjected = errors.New("injected failure")

// trackingDevice wraps a noop device, handing out fake objects with unique
// ids and counting creations and destructions per kind.
type trackingDevice struct {
	hal.Device

	nextID    int
	created   map[string]int
	destroyed map[string]int
	live      map[int]string

	// fail makes the next Create call of the named kind return errInjected.
	fail map[string]bool

	bindGroups []*fakeBindGroup
	samplers   []*fakeSampler
	textures   []*fakeTexture
	pipelines  []*fakeRenderPipeline
	shaders    []*fakeShaderModule
}

func newTrackingDevice(t *testing.T) *trackingDevice {
	t.Helper()
	dev, _, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)
	return &trackingDevice{
		Device:    dev,
		created:   map[string]int{},
		destroyed: map[string]int{},
		live:      map[int]string{},
		fail:      map[string]bool{},
	}
}

func (d *trackingDevice) create(kind string) (int, error) {
	if d.fail[kind] {
		d.fail[kind] = false
		return 0, errInjected
	}
	d.nextID++
	d.created[kind]++
	d.live[d.nextID] = kind
	return d.nextID, nil
}

func (d *trackingDevice) destroy(kind string, id int) {
	d.destroyed[kind]++
	delete(d.live, id)
}

// liveCount returns how many objects of kind are created and not destroyed.
func (d *trackingDevice) liveCount(kind string) int {
	return d.created[kind] - d.destroyed[kind]
}

func (d *trackingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	id, err := d.create("buffer")
	if err != nil {
		return nil, err
	}
	return &fakeBuffer{id: id, size: desc.Size}, nil
}

func (d *trackingDevice) DestroyBuffer(b hal.Buffer) { d.destroy("buffer", b.(*fakeBuffer).id) }

func (d *trackingDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	id, err := d.create("texture")
	if err != nil {
		return nil, err
	}
	tex := &fakeTexture{id: id, desc: *desc}
	d.textures = append(d.textures, tex)
	return tex, nil
}

func (d *trackingDevice) DestroyTexture(x hal.Texture) { d.destroy("texture", x.(*fakeTexture).id) }

func (d *trackingDevice) CreateTextureView(_ hal.Texture, _ *hal.TextureViewDescriptor) (hal.TextureView, error) {
	id, err := d.create("view")
	if err != nil {
		return nil, err
	}
	return &fakeTextureView{id: id}, nil
}

func (d *trackingDevice) DestroyTextureView(v hal.TextureView) {
	d.destroy("view", v.(*fakeTextureView).id)
}

func (d *trackingDevice) CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	id, err := d.create("sampler")
	if err != nil {
		return nil, err
	}
	s := &fakeSampler{id: id, desc: *desc}
	d.samplers = append(d.samplers, s)
	return s, nil
}

func (d *trackingDevice) DestroySampler(s hal.Sampler) { d.destroy("sampler", s.(*fakeSampler).id) }

func (d *trackingDevice) CreateBindGroupLayout(_ *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	id, err := d.create("bind group layout")
	if err != nil {
		return nil, err
	}
	return &fakeBindGroupLayout{id: id}, nil
}

func (d *trackingDevice) DestroyBindGroupLayout(l hal.BindGroupLayout) {
	d.destroy("bind group layout", l.(*fakeBindGroupLayout).id)
}

func (d *trackingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	id, err := d.create("bind group")
	if err != nil {
		return nil, err
	}
	g := &fakeBindGroup{id: id, desc: *desc}
	d.bindGroups = append(d.bindGroups, g)
	return g, nil
}

func (d *trackingDevice) DestroyBindGroup(g hal.BindGroup) {
	d.destroy("bind group", g.(*fakeBindGroup).id)
}

func (d *trackingDevice) CreatePipelineLayout(_ *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	id, err := d.create("pipeline layout")
	if err != nil {
		return nil, err
	}
	return &fakePipelineLayout{id: id}, nil
}

func (d *trackingDevice) DestroyPipelineLayout(l hal.PipelineLayout) {
	d.destroy("pipeline layout", l.(*fakePipelineLayout).id)
}

func (d *trackingDevice) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	id, err := d.create("shader")
	if err != nil {
		return nil, err
	}
	m := &fakeShaderModule{id: id, desc: *desc}
	d.shaders = append(d.shaders, m)
	return m, nil
}

func (d *trackingDevice) DestroyShaderModule(m hal.ShaderModule) {
	d.destroy("shader", m.(*fakeShaderModule).id)
}

func (d *trackingDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	id, err := d.create("pipeline")
	if err != nil {
		return nil, err
	}
	p := &fakeRenderPipeline{id: id, format: desc.Fragment.Targets[0].Format, desc: *desc}
	d.pipelines = append(d.pipelines, p)
	return p, nil
}

func (d *trackingDevice) DestroyRenderPipeline(p hal.RenderPipeline) {
	d.destroy("pipeline", p.(*fakeRenderPipeline).id)
}

// textureWrite is one recorded WriteTexture call.
type textureWrite struct {
	dst    hal.ImageCopyTexture
	data   []byte
	layout hal.ImageDataLayout
	size   hal.Extent3D
}

// bufferWrite is one recorded WriteBuffer call.
type bufferWrite struct {
	buf    hal.Buffer
	offset uint64
	data   []byte
}

// recordingUploader records queue writes, copying the data. A non-nil
// failBuffers or failTextures error is returned instead of recording.
type recordingUploader struct {
	buffers  []bufferWrite
	textures []textureWrite

	failBuffers  error
	failTextures error
}

func (u *recordingUploader) writeBuffer(buf hal.Buffer, offset uint64, data []byte) error {
	if u.failBuffers != nil {
		return u.failBuffers
	}
	u.buffers = append(u.buffers, bufferWrite{buf: buf, offset: offset, data: append([]byte(nil), data...)})
	return nil
}

func (u *recordingUploader) writeTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	if u.failTextures != nil {
		return u.failTextures
	}
	u.textures = append(u.textures, textureWrite{
		dst:    *dst,
		data:   append([]byte(nil), data...),
		layout: *layout,
		size:   *size,
	})
	return nil
}

// lastWriteTo returns the data of the most recent write into buf.
func (u *recordingUploader) lastWriteTo(buf hal.Buffer) []byte {
	for i := len(u.buffers) - 1; i >= 0; i-- {
		if u.buffers[i].buf == buf {
			return u.buffers[i].data
		}
	}
	return nil
}

type drawCall struct {
	indexCount, firstIndex uint32
	baseVertex             int32
}

// recordingPass implements drawdata.RenderPass by logging every call.
type recordingPass struct {
	ops        []string
	pipelines  []hal.RenderPipeline
	bindGroups map[uint32][]hal.BindGroup
	viewports  [][4]float32
	scissors   [][4]uint32
	draws      []drawCall
	indexFmt   []gputypes.IndexFormat
}

func newRecordingPass() *recordingPass {
	return &recordingPass{bindGroups: map[uint32][]hal.BindGroup{}}
}

func (p *recordingPass) SetPipeline(pipeline hal.RenderPipeline) {
	p.ops = append(p.ops, "pipeline")
	p.pipelines = append(p.pipelines, pipeline)
}

func (p *recordingPass) SetBindGroup(index uint32, group hal.BindGroup, _ []uint32) {
	p.ops = append(p.ops, "bindgroup")
	p.bindGroups[index] = append(p.bindGroups[index], group)
}

func (p *recordingPass) SetVertexBuffer(uint32, hal.Buffer, uint64) {
	p.ops = append(p.ops, "vertex")
}

func (p *recordingPass) SetIndexBuffer(_ hal.Buffer, format gputypes.IndexFormat, _ uint64) {
	p.ops = append(p.ops, "index")
	p.indexFmt = append(p.indexFmt, format)
}

func (p *recordingPass) SetViewport(x, y, w, h, _, _ float32) {
	p.ops = append(p.ops, "viewport")
	p.viewports = append(p.viewports, [4]float32{x, y, w, h})
}

func (p *recordingPass) SetScissorRect(x, y, w, h uint32) {
	p.ops = append(p.ops, "scissor")
	p.scissors = append(p.scissors, [4]uint32{x, y, w, h})
}

func (p *recordingPass) DrawIndexed(indexCount, _, firstIndex uint32, baseVertex int32, _ uint32) {
	p.ops = append(p.ops, "draw")
	p.draws = append(p.draws, drawCall{indexCount: indexCount, firstIndex: firstIndex, baseVertex: baseVertex})
}

// fakeAtlas is an in-memory font atlas.
type fakeAtlas struct {
	id      drawdata.TextureID
	pixels  []byte
	w, h    int
	cleared int
}

func newFakeAtlas(w, h int, fill byte) *fakeAtlas {
	px := make([]byte, w*h*4)
	for i := range px {
		px[i] = fill
	}
	return &fakeAtlas{pixels: px, w: w, h: h}
}

func (a *fakeAtlas) TextureID() drawdata.TextureID        { return a.id }
func (a *fakeAtlas) SetTextureID(id drawdata.TextureID)   { a.id = id }
func (a *fakeAtlas) TextureDataRGBA32() ([]byte, int, int) { return a.pixels, a.w, a.h }
func (a *fakeAtlas) ClearTexData()                        { a.cleared++ }

// fakeContext is a GUI context with one font atlas.
type fakeContext struct {
	atlas *fakeAtlas
	flags drawdata.BackendFlags
}

func (c *fakeContext) FontAtlas() drawdata.FontAtlas             { return c.atlas }
func (c *fakeContext) BackendFlags() drawdata.BackendFlags       { return c.flags }
func (c *fakeContext) SetBackendFlags(flags drawdata.BackendFlags) { c.flags = flags }

type testRig struct {
	dev  *trackingDevice
	up   *recordingUploader
	ui   *fakeContext
	r    *Renderer
	pass *recordingPass
}

func newTestRig(t *testing.T, opts ...Option) *testRig {
	t.Helper()
	rig := &testRig{
		dev:  newTrackingDevice(t),
		up:   &recordingUploader{},
		ui:   &fakeContext{atlas: newFakeAtlas(4, 2, 0xFF)},
		pass: newRecordingPass(),
	}
	r, err := newRenderer(rig.dev, rig.up, rig.ui, gputypes.TextureFormatBGRA8Unorm, ColorSpaceNone, opts...)
	if err != nil {
		t.Fatalf("newRenderer: %v", err)
	}
	rig.r = r
	t.Cleanup(r.Destroy)
	return rig
}

// quad returns a draw list with one textured quad covering (0,0)-(w,h).
func quad(tex drawdata.TextureID, w, h float32, clip [4]float32) *drawdata.DrawList {
	white := drawdata.PackColor(255, 255, 255, 255)
	l := &drawdata.DrawList{
		VtxBuffer: []drawdata.DrawVert{
			{Pos: [2]float32{0, 0}, UV: [2]float32{0, 0}, Col: white},
			{Pos: [2]float32{w, 0}, UV: [2]float32{1, 0}, Col: white},
			{Pos: [2]float32{w, h}, UV: [2]float32{1, 1}, Col: white},
			{Pos: [2]float32{0, h}, UV: [2]float32{0, 1}, Col: white},
		},
		IdxBuffer: []drawdata.DrawIdx{0, 1, 2, 0, 2, 3},
	}
	l.AddElements(tex, clip, 6, 0, 0)
	return l
}

func frame(w, h float32, lists ...*drawdata.DrawList) *drawdata.DrawData {
	d := &drawdata.DrawData{
		CmdLists:         lists,
		DisplaySize:      [2]float32{w, h},
		FramebufferScale: [2]float32{1, 1},
	}
	d.Recount()
	return d
}
