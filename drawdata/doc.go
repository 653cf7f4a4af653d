// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package drawdata describes the per-frame output of an immediate-mode GUI
// library: vertex and index arrays grouped into draw lists, each carrying a
// sequence of draw commands.
//
// The types mirror the classic immediate-mode GUI draw model:
//
//	DrawData
//	  └── CmdLists []*DrawList
//	        ├── VtxBuffer []DrawVert   (20 bytes per vertex)
//	        ├── IdxBuffer []DrawIdx    (uint16 indices)
//	        └── CmdBuffer []DrawCmd    (elements, reset markers, callbacks)
//
// A GUI library fills DrawData once per frame; a renderer backend such as
// [github.com/gogpu/imrender] translates it into GPU commands. The package
// also defines the narrow [Context] and [FontAtlas] views of the GUI library
// that a renderer needs for backend registration and font upload.
package drawdata
