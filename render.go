// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imrender

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/imrender/drawdata"
	"github.com/gogpu/wgpu/hal"
)

// Render records data into a new render pass on encoder that loads and
// stores target. The pass is ended before Render returns, also for empty
// frames.
//
// Growing the vertex or index buffer, and rebuilding a texture whose
// setters invalidated it, destroys the previous GPU objects while recording.
// Work that still references them must have completed; hosts fence each
// frame before recording the next.
func (r *Renderer) Render(encoder hal.CommandEncoder, target hal.TextureView, data *drawdata.DrawData) error {
	pass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: r.opts.label,
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:    target,
				LoadOp:  gputypes.LoadOpLoad,
				StoreOp: gputypes.StoreOpStore,
			},
		},
	})
	err := r.RenderPass(pass, data)
	pass.End()
	return err
}

// RenderPass records data into an already open render pass.
//
// Frames without vertices or indices, or with a non-positive framebuffer
// size, record nothing. Draw commands whose texture is not registered are
// skipped.
func (r *Renderer) RenderPass(pass drawdata.RenderPass, data *drawdata.DrawData) error {
	r.stats.DrawCalls, r.stats.SkippedCommands, r.stats.Callbacks = 0, 0, 0
	if data == nil || data.TotalVtxCount <= 0 || data.TotalIdxCount <= 0 {
		return nil
	}
	fbW, fbH := data.FramebufferSize()
	if !(fbW > 0) || !(fbH > 0) {
		return nil
	}

	if err := r.upload(data); err != nil {
		return err
	}
	if err := r.writeViewUniform(data); err != nil {
		return err
	}
	r.setupRenderState(pass, fbW, fbH)

	clipOff := data.DisplayPos
	clipScale := data.FramebufferScale
	// Scissor rectangles must stay inside the attachment.
	maxW, maxH := uint32(fbW), uint32(fbH)

	var vtxBase, idxBase uint32
	for _, list := range data.CmdLists {
		for i := range list.CmdBuffer {
			cmd := &list.CmdBuffer[i]
			switch cmd.Kind {
			case drawdata.DrawCmdElements:
				tex, ok := r.textures.Lookup(cmd.TextureID)
				if !ok {
					r.stats.SkippedCommands++
					Logger().Debug("imrender: draw command skipped, texture not registered", "id", cmd.TextureID)
					continue
				}

				x, y, w, h, visible := scissorRect(cmd.ClipRect, clipOff, clipScale, maxW, maxH)
				if !visible {
					r.stats.SkippedCommands++
					continue
				}

				group, err := tex.BindGroup(r.device, r.pipes.textureLayout)
				if err != nil {
					return err
				}

				pass.SetVertexBuffer(0, r.vtx.buf, 0)
				pass.SetScissorRect(x, y, w, h)
				pass.SetBindGroup(1, group, nil)
				pass.DrawIndexed(cmd.ElemCount, 1, idxBase+cmd.IdxOffset, int32(vtxBase+cmd.VtxOffset), 0) //nolint:gosec // vertex totals fit int32
				r.stats.DrawCalls++

			case drawdata.DrawCmdResetRenderState:
				r.setupRenderState(pass, fbW, fbH)

			case drawdata.DrawCmdCallback:
				if cmd.UserCallback != nil {
					cmd.UserCallback(pass, list, cmd)
					r.stats.Callbacks++
				}
			}
		}
		vtxBase += uint32(len(list.VtxBuffer)) //nolint:gosec // list sizes fit uint32
		idxBase += uint32(len(list.IdxBuffer)) //nolint:gosec // list sizes fit uint32
	}
	return nil
}

// scissorRect maps a clip rectangle from display to framebuffer space and
// intersects it with the framebuffer. visible is false when nothing of the
// rectangle remains.
func scissorRect(clip [4]float32, off, scale [2]float32, maxW, maxH uint32) (x, y, w, h uint32, visible bool) {
	x1 := (clip[0] - off[0]) * scale[0]
	y1 := (clip[1] - off[1]) * scale[1]
	x2 := (clip[2] - off[0]) * scale[0]
	y2 := (clip[3] - off[1]) * scale[1]

	if x1 >= float32(maxW) || y1 >= float32(maxH) || x2 <= 0 || y2 <= 0 {
		return 0, 0, 0, 0, false
	}

	left := uint32(math.Floor(float64(max(x1, 0))))
	top := uint32(math.Floor(float64(max(y1, 0))))
	right := min(uint32(math.Ceil(float64(x2))), maxW)
	bottom := min(uint32(math.Ceil(float64(y2))), maxH)
	if right <= left || bottom <= top {
		return 0, 0, 0, 0, false
	}
	return left, top, right - left, bottom - top, true
}

// upload grows the vertex and index buffers as needed and writes every
// list's geometry into them, concatenated in list order.
func (r *Renderer) upload(data *drawdata.DrawData) error {
	r.vtx.staging = r.vtx.staging[:0]
	r.idx.staging = r.idx.staging[:0]
	for _, list := range data.CmdLists {
		r.vtx.staging = drawdata.AppendVertexBytes(r.vtx.staging, list.VtxBuffer)
		r.idx.staging = drawdata.AppendIndexBytes(r.idx.staging, list.IdxBuffer)
	}

	vtxSize := alignCopySize(max(uint64(data.TotalVtxCount)*drawdata.VertexSize, uint64(len(r.vtx.staging)))) //nolint:gosec // counts are non-negative
	idxSize := alignCopySize(max(uint64(data.TotalIdxCount)*uint64(drawdata.IndexSize), uint64(len(r.idx.staging)))) //nolint:gosec // counts are non-negative

	grown, err := r.vtx.reserve(r.device, vtxSize)
	if err != nil {
		return err
	}
	if grown {
		Logger().Debug("imrender: vertex buffer grown", "capacity", r.vtx.capacity)
	}
	grown, err = r.idx.reserve(r.device, idxSize)
	if err != nil {
		return err
	}
	if grown {
		Logger().Debug("imrender: index buffer grown", "capacity", r.idx.capacity)
	}

	r.vtx.pad(vtxSize)
	r.idx.pad(idxSize)
	if err := r.up.writeBuffer(r.vtx.buf, 0, r.vtx.staging[:vtxSize]); err != nil {
		return err
	}
	if err := r.up.writeBuffer(r.idx.buf, 0, r.idx.staging[:idxSize]); err != nil {
		return err
	}

	r.stats.VertexBufferSize = r.vtx.capacity
	r.stats.IndexBufferSize = r.idx.capacity
	r.stats.VertexReallocs = r.vtx.reallocs
	r.stats.IndexReallocs = r.idx.reallocs
	return nil
}

// viewUniform maps display coordinates to clip space:
// scale (2/w, 2/h), translate (-1 - x*2/w, -1 - y*2/h).
func viewUniform(pos, size [2]float32) [viewUniformSize]byte {
	sx := 2 / size[0]
	sy := 2 / size[1]
	vals := [4]float32{sx, sy, -1 - pos[0]*sx, -1 - pos[1]*sy}

	var b [viewUniformSize]byte
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func (r *Renderer) writeViewUniform(data *drawdata.DrawData) error {
	u := viewUniform(data.DisplayPos, data.DisplaySize)
	return r.up.writeBuffer(r.viewBuf, 0, u[:])
}

// setupRenderState binds the pipeline, index buffer, viewport and view
// uniform. Raw callbacks may change any of them; reset markers call this
// again.
func (r *Renderer) setupRenderState(pass drawdata.RenderPass, fbW, fbH float32) {
	pass.SetPipeline(r.pipeline)
	pass.SetIndexBuffer(r.idx.buf, indexFormat(), 0)
	pass.SetViewport(0, 0, fbW, fbH, 0, 1)
	pass.SetBindGroup(0, r.viewGroup, nil)
}
