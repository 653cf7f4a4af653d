// Package imrender renders the output of an immediate-mode GUI library with
// a gogpu HAL device.
//
// # Overview
//
// Each frame the GUI library produces a [drawdata.DrawData]: draw lists of
// vertices, indices and commands. A [Renderer] uploads that geometry into
// grow-only GPU buffers and translates every command into pipeline, scissor,
// bind group and indexed draw calls within a single render pass.
//
// # Quick Start
//
//	r, err := imrender.New(device, queue, ui, gputypes.TextureFormatBGRA8Unorm, imrender.ColorSpaceNone)
//	if err != nil {
//	    return err
//	}
//	defer r.Destroy()
//
//	// Every frame, after the GUI library has built its draw data:
//	if err := r.Render(encoder, surfaceView, ui.DrawData()); err != nil {
//	    return err
//	}
//
// # Textures
//
// Draw commands reference textures through opaque handles. [Renderer.AddTexture]
// registers an [OwnedTexture] (storage created and destroyed by the renderer)
// or a [TextureView] (a view owned by the caller) and returns the handle the
// GUI library passes back in draw commands. The font atlas is uploaded by
// [Renderer.ReloadFonts] and receives the first handle.
//
// GPU objects of a texture are created lazily on first use and rebuilt after
// a setter invalidates them.
//
// # Color spaces
//
// [ColorSpaceNone] draws colors as given. [ColorSpaceLinear] decodes sRGB
// vertex colors for an sRGB render target. [ColorSpaceSrgb] writes sRGB
// encoded output into a linear target.
//
// # Host integration
//
// [NewFromProvider] builds a renderer on the device of a
// gpucontext.DeviceProvider, such as a gogpu window.
package imrender
