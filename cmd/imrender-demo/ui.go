package main

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/imrender/drawdata"
)

var face = basicfont.Face7x13

// whiteColumn is the width of the opaque strip right of the glyphs. Solid
// shapes sample it so text and shapes share one texture.
const whiteColumn = 2

// demoAtlas is a font atlas holding the basicfont 7x13 glyphs in one column.
type demoAtlas struct {
	id     drawdata.TextureID
	pixels []byte
	w, h   int
}

func newDemoAtlas() *demoAtlas {
	mb := face.Mask.Bounds()
	w, h := mb.Dx()+whiteColumn, mb.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.DrawMask(dst, mb.Sub(mb.Min), image.NewUniform(color.White), image.Point{}, face.Mask, mb.Min, draw.Src)
	draw.Draw(dst, image.Rect(mb.Dx(), 0, w, h), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &demoAtlas{pixels: dst.Pix, w: w, h: h}
}

func (a *demoAtlas) TextureID() drawdata.TextureID        { return a.id }
func (a *demoAtlas) SetTextureID(id drawdata.TextureID)   { a.id = id }
func (a *demoAtlas) TextureDataRGBA32() ([]byte, int, int) { return a.pixels, a.w, a.h }
func (a *demoAtlas) ClearTexData()                        { a.pixels = nil }

// whiteUV is the center of the opaque strip.
func (a *demoAtlas) whiteUV() [2]float32 {
	return [2]float32{(float32(a.w) - whiteColumn/2) / float32(a.w), 0.5}
}

// glyphUV returns the atlas rectangle of r.
func (a *demoAtlas) glyphUV(r rune) (uv0, uv1 [2]float32, ok bool) {
	for _, rr := range face.Ranges {
		if r < rr.Low || r >= rr.High {
			continue
		}
		y := (int(r-rr.Low) + rr.Offset) * face.Height
		uv0 = [2]float32{0, float32(y) / float32(a.h)}
		uv1 = [2]float32{float32(face.Width) / float32(a.w), float32(y+face.Height) / float32(a.h)}
		return uv0, uv1, true
	}
	return uv0, uv1, false
}

// demoUI is a stand-in for an immediate-mode GUI library. It owns the font
// atlas and produces draw data for a few animated windows.
type demoUI struct {
	atlas     *demoAtlas
	flags     drawdata.BackendFlags
	image     drawdata.TextureID
	callbacks int
}

func newDemoUI() *demoUI {
	return &demoUI{atlas: newDemoAtlas()}
}

func (u *demoUI) FontAtlas() drawdata.FontAtlas               { return u.atlas }
func (u *demoUI) BackendFlags() drawdata.BackendFlags         { return u.flags }
func (u *demoUI) SetBackendFlags(flags drawdata.BackendFlags) { u.flags = flags }

// painter appends shapes to a draw list, starting a new draw command
// whenever the texture or clip rectangle changes.
type painter struct {
	list    *drawdata.DrawList
	atlas   *demoAtlas
	tex     drawdata.TextureID
	clip    [4]float32
	idxFrom int
}

func newPainter(atlas *demoAtlas) *painter {
	return &painter{list: &drawdata.DrawList{}, atlas: atlas, tex: atlas.id}
}

func (p *painter) flush() {
	n := len(p.list.IdxBuffer) - p.idxFrom
	if n > 0 {
		p.list.AddElements(p.tex, p.clip, uint32(n), 0, uint32(p.idxFrom)) //nolint:gosec // list sizes fit uint32
	}
	p.idxFrom = len(p.list.IdxBuffer)
}

func (p *painter) use(tex drawdata.TextureID, clip [4]float32) {
	if tex == p.tex && clip == p.clip {
		return
	}
	p.flush()
	p.tex, p.clip = tex, clip
}

func (p *painter) quad(x0, y0, x1, y1 float32, uv0, uv1 [2]float32, top, bottom uint32) {
	base := drawdata.DrawIdx(len(p.list.VtxBuffer)) //nolint:gosec // demo lists stay below 64k vertices
	p.list.VtxBuffer = append(p.list.VtxBuffer,
		drawdata.DrawVert{Pos: [2]float32{x0, y0}, UV: uv0, Col: top},
		drawdata.DrawVert{Pos: [2]float32{x1, y0}, UV: [2]float32{uv1[0], uv0[1]}, Col: top},
		drawdata.DrawVert{Pos: [2]float32{x1, y1}, UV: uv1, Col: bottom},
		drawdata.DrawVert{Pos: [2]float32{x0, y1}, UV: [2]float32{uv0[0], uv1[1]}, Col: bottom},
	)
	p.list.IdxBuffer = append(p.list.IdxBuffer, base, base+1, base+2, base, base+2, base+3)
}

func (p *painter) rect(x0, y0, x1, y1 float32, top, bottom uint32) {
	p.use(p.atlas.id, p.clip)
	uv := p.atlas.whiteUV()
	p.quad(x0, y0, x1, y1, uv, uv, top, bottom)
}

// text draws s one glyph per rune. basicfont only has precomposed Latin-1
// glyphs, so combining sequences are composed first.
func (p *painter) text(x, y float32, s string, col uint32) {
	p.use(p.atlas.id, p.clip)
	for _, r := range norm.NFC.String(s) {
		if uv0, uv1, ok := p.atlas.glyphUV(r); ok {
			p.quad(x, y, x+float32(face.Width), y+float32(face.Height), uv0, uv1, col, col)
		}
		x += float32(face.Advance)
	}
}

func (p *painter) image(tex drawdata.TextureID, x0, y0, x1, y1 float32) {
	p.use(tex, p.clip)
	white := drawdata.PackColor(255, 255, 255, 255)
	p.quad(x0, y0, x1, y1, [2]float32{0, 0}, [2]float32{1, 1}, white, white)
}

func (p *painter) done() *drawdata.DrawList {
	p.flush()
	return p.list
}

// Frame builds the draw data of frame n for a w x h display.
func (u *demoUI) Frame(n, windows int, w, h, scale float32) *drawdata.DrawData {
	full := [4]float32{0, 0, w, h}

	bg := newPainter(u.atlas)
	bg.clip = full
	bg.rect(0, 0, w, h, drawdata.PackColor(30, 34, 48, 255), drawdata.PackColor(12, 14, 20, 255))
	lists := []*drawdata.DrawList{bg.done()}

	for i := range windows {
		lists = append(lists, u.window(n, i, w, h))
	}

	d := &drawdata.DrawData{
		CmdLists:         lists,
		DisplaySize:      [2]float32{w, h},
		FramebufferScale: [2]float32{scale, scale},
	}
	d.Recount()
	return d
}

func (u *demoUI) window(n, i int, w, h float32) *drawdata.DrawList {
	const ww, wh, title = 240, 160, 18

	t := float64(n)/30 + float64(i)*2.1
	x := float32(math.Round((float64(w)-ww)/2 + math.Cos(t)*float64(w)/3))
	y := float32(math.Round((float64(h)-wh)/2 + math.Sin(t)*float64(h)/3))

	p := newPainter(u.atlas)
	p.clip = [4]float32{x, y, x + ww, y + wh}

	accent := drawdata.PackColor(uint8(60+40*i%196), 110, 200, 255) //nolint:gosec // bounded by the modulo
	p.rect(x, y, x+ww, y+title, accent, accent)
	p.rect(x, y+title, x+ww, y+wh, drawdata.PackColor(40, 44, 52, 240), drawdata.PackColor(28, 30, 36, 240))
	p.text(x+6, y+3, fmt.Sprintf("window %d", i), drawdata.PackColor(255, 255, 255, 255))
	p.text(x+6, y+title+6, fmt.Sprintf("frame %d", n), drawdata.PackColor(200, 200, 200, 255))

	if u.image != drawdata.NullTextureID && i == 0 {
		p.image(u.image, x+ww-70, y+title+6, x+ww-6, y+title+70)
	}
	list := p.done()

	// Windows after the first hand the pass to caller code and ask for the
	// renderer's state back afterwards.
	if i > 0 {
		list.AddCallback(func(drawdata.RenderPass, *drawdata.DrawList, *drawdata.DrawCmd) {
			u.callbacks++
		}, i)
		list.AddResetRenderState()
	}
	return list
}
