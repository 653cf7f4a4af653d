// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package drawdata

import "unsafe"

// TextureID is the opaque handle a GUI library attaches to draw commands to
// select a texture. The renderer that issued the handle decides its meaning.
type TextureID uintptr

// NullTextureID means "no texture assigned".
const NullTextureID TextureID = 0

// DrawIdx is a single index into a draw list's vertex buffer.
type DrawIdx uint16

// DrawVert is one vertex as produced by the GUI library.
//
// Col is packed 0xAABBGGRR so that its little-endian bytes read R, G, B, A.
type DrawVert struct {
	Pos [2]float32
	UV  [2]float32
	Col uint32
}

const (
	// VertexSize is the byte size of an encoded DrawVert.
	VertexSize = 20

	// IndexSize is the byte size of an encoded DrawIdx.
	IndexSize = int(unsafe.Sizeof(DrawIdx(0)))
)

// DrawCmdKind selects how a DrawCmd is interpreted.
type DrawCmdKind uint8

const (
	// DrawCmdElements draws ElemCount indices with the command's texture and clip.
	DrawCmdElements DrawCmdKind = iota

	// DrawCmdResetRenderState asks the renderer to restore its default state.
	DrawCmdResetRenderState

	// DrawCmdCallback invokes UserCallback instead of drawing.
	DrawCmdCallback
)

// String returns the command kind name.
func (k DrawCmdKind) String() string {
	switch k {
	case DrawCmdElements:
		return "Elements"
	case DrawCmdResetRenderState:
		return "ResetRenderState"
	case DrawCmdCallback:
		return "Callback"
	default:
		return "Unknown"
	}
}

// DrawCallback is a user function invoked mid-list with the active render
// pass. The callback may record arbitrary commands; a following
// DrawCmdResetRenderState restores the renderer's state.
type DrawCallback func(pass RenderPass, list *DrawList, cmd *DrawCmd)

// DrawCmd is one command of a draw list.
type DrawCmd struct {
	Kind DrawCmdKind

	// ElemCount is the number of indices to draw.
	ElemCount uint32

	// ClipRect is (x1, y1, x2, y2) in display coordinates.
	ClipRect [4]float32

	TextureID TextureID

	// VtxOffset and IdxOffset are relative to the start of the owning list.
	VtxOffset uint32
	IdxOffset uint32

	UserCallback     DrawCallback
	UserCallbackData any
}

// DrawList is an ordered batch of commands over one vertex and index array.
type DrawList struct {
	CmdBuffer []DrawCmd
	VtxBuffer []DrawVert
	IdxBuffer []DrawIdx
}

// AddElements appends an Elements command.
func (l *DrawList) AddElements(tex TextureID, clip [4]float32, elemCount, vtxOffset, idxOffset uint32) {
	l.CmdBuffer = append(l.CmdBuffer, DrawCmd{
		Kind:      DrawCmdElements,
		ElemCount: elemCount,
		ClipRect:  clip,
		TextureID: tex,
		VtxOffset: vtxOffset,
		IdxOffset: idxOffset,
	})
}

// AddCallback appends a raw callback command.
func (l *DrawList) AddCallback(fn DrawCallback, data any) {
	l.CmdBuffer = append(l.CmdBuffer, DrawCmd{
		Kind:             DrawCmdCallback,
		UserCallback:     fn,
		UserCallbackData: data,
	})
}

// AddResetRenderState appends a reset marker.
func (l *DrawList) AddResetRenderState() {
	l.CmdBuffer = append(l.CmdBuffer, DrawCmd{Kind: DrawCmdResetRenderState})
}

// DrawData is the complete output of one GUI frame.
type DrawData struct {
	CmdLists []*DrawList

	// TotalVtxCount and TotalIdxCount are the sums over CmdLists.
	TotalVtxCount int
	TotalIdxCount int

	// DisplayPos is the top-left of the visible area in display coordinates.
	DisplayPos [2]float32
	// DisplaySize is the size of the visible area in display coordinates.
	DisplaySize [2]float32
	// FramebufferScale maps display coordinates to framebuffer pixels.
	FramebufferScale [2]float32
}

// FramebufferSize returns the frame size in physical pixels.
func (d *DrawData) FramebufferSize() (w, h float32) {
	return d.DisplaySize[0] * d.FramebufferScale[0], d.DisplaySize[1] * d.FramebufferScale[1]
}

// Recount recomputes TotalVtxCount and TotalIdxCount from CmdLists.
func (d *DrawData) Recount() {
	d.TotalVtxCount, d.TotalIdxCount = 0, 0
	for _, l := range d.CmdLists {
		d.TotalVtxCount += len(l.VtxBuffer)
		d.TotalIdxCount += len(l.IdxBuffer)
	}
}
