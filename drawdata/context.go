package drawdata

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// BackendFlags advertise renderer capabilities to the GUI library.
type BackendFlags uint32

const (
	// BackendFlagRendererHasVtxOffset means the renderer honors
	// DrawCmd.VtxOffset, so the library may emit lists with more vertices
	// than a DrawIdx can address.
	BackendFlagRendererHasVtxOffset BackendFlags = 1 << 3
)

// FontAtlas is the GUI library's font atlas as seen by a renderer.
type FontAtlas interface {
	// TextureID returns the handle currently assigned to the atlas.
	TextureID() TextureID
	SetTextureID(id TextureID)

	// TextureDataRGBA32 returns the rasterized atlas as tightly packed
	// RGBA8 rows.
	TextureDataRGBA32() (pixels []byte, width, height int)

	// ClearTexData releases the CPU copy of the bitmap.
	ClearTexData()
}

// Context is the subset of the GUI library's state a renderer touches.
type Context interface {
	FontAtlas() FontAtlas
	BackendFlags() BackendFlags
	SetBackendFlags(flags BackendFlags)
}

// RenderPass is the command recording surface shared by the renderer and
// raw draw callbacks. hal.RenderPassEncoder satisfies it.
type RenderPass interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32)
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	SetIndexBuffer(buffer hal.Buffer, format gputypes.IndexFormat, offset uint64)
	SetViewport(x, y, width, height, minDepth, maxDepth float32)
	SetScissorRect(x, y, width, height uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}
