package imrender

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// imageToRGBA returns img as tightly packed RGBA8 rows with the origin at
// (0, 0). An *image.RGBA with that layout is returned as is.
func imageToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// CreateOwnedTextureFromImage creates an RGBA8 owned texture sized to img
// and uploads its pixels. Images in other color models are converted. The
// texture is not registered.
func (r *Renderer) CreateOwnedTextureFromImage(label string, img image.Image, sampler SamplerDescriptor) (*OwnedTexture, error) {
	rgba := imageToRGBA(img)
	size := rgba.Rect.Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("imrender: image %q is empty", label)
	}

	desc := DefaultTextureDescriptor()
	desc.Width = uint32(size.X)  //nolint:gosec // positive image size
	desc.Height = uint32(size.Y) //nolint:gosec // positive image size
	desc.Format = gputypes.TextureFormatRGBA8Unorm

	tex := NewOwnedTexture(label, desc, sampler)
	if err := tex.setData(r.device, r.up, rgba.Pix, TextureSetRange{}); err != nil {
		tex.Destroy(r.device)
		return nil, err
	}
	return tex, nil
}
