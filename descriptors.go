// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imrender

import (
	"math"

	"github.com/gogpu/gputypes"
)

// TextureDescriptor describes the GPU texture behind an OwnedTexture.
type TextureDescriptor struct {
	Width         uint32
	Height        uint32
	MipLevelCount uint32
	Format        gputypes.TextureFormat
	Usage         gputypes.TextureUsage
}

// DefaultTextureDescriptor returns a 1x1 single-mip RGBA8Unorm texture
// usable as a copy destination and a shader binding.
func DefaultTextureDescriptor() TextureDescriptor {
	return TextureDescriptor{
		Width:         1,
		Height:        1,
		MipLevelCount: 1,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
	}
}

// BytesPerRow returns the row pitch of one mip-0 row of blocks, or false
// when the format has no fixed block copy size (depth/stencil formats and
// unknown formats).
func (d TextureDescriptor) BytesPerRow() (uint32, bool) {
	blockW, blockSize, ok := blockInfo(d.Format)
	if !ok {
		return 0, false
	}
	return d.Width / blockW * blockSize, true
}

// BorderColor is the color sampled outside the texture for the
// clamp-to-border address mode.
type BorderColor uint8

const (
	BorderColorTransparentBlack BorderColor = iota
	BorderColorOpaqueBlack
	BorderColorOpaqueWhite
)

// SamplerDescriptor describes the sampler attached to a texture.
type SamplerDescriptor struct {
	AddressModeU gputypes.AddressMode
	AddressModeV gputypes.AddressMode
	AddressModeW gputypes.AddressMode
	MagFilter    gputypes.FilterMode
	MinFilter    gputypes.FilterMode
	MipmapFilter gputypes.FilterMode
	LodMinClamp  float32
	LodMaxClamp  float32

	// AnisotropyClamp is the maximum anisotropy; 1 disables anisotropic
	// filtering.
	AnisotropyClamp uint16

	// BorderColor is nil when no border color is requested. The HAL sampler
	// model has no border color field, so a non-nil value is kept for
	// callers but leaves sampler creation unchanged.
	BorderColor *BorderColor
}

// DefaultSamplerDescriptor returns a clamp-to-edge, nearest-filtered sampler
// covering the full LOD range.
func DefaultSamplerDescriptor() SamplerDescriptor {
	return SamplerDescriptor{
		AddressModeU:    gputypes.AddressModeClampToEdge,
		AddressModeV:    gputypes.AddressModeClampToEdge,
		AddressModeW:    gputypes.AddressModeClampToEdge,
		MagFilter:       gputypes.FilterModeNearest,
		MinFilter:       gputypes.FilterModeNearest,
		MipmapFilter:    gputypes.FilterModeNearest,
		LodMinClamp:     0,
		LodMaxClamp:     math.MaxFloat32,
		AnisotropyClamp: 1,
	}
}

// TextureSetRange selects the region written by OwnedTexture.SetData.
// A nil Width or Height means the descriptor's full extent.
type TextureSetRange struct {
	MipLevel uint32
	X, Y     uint32
	Width    *uint32
	Height   *uint32

	// Offset is the byte offset of the first texel within the data.
	Offset uint64
}

// blockInfo returns the block width in texels and the block size in bytes
// for copyable color formats.
func blockInfo(f gputypes.TextureFormat) (width, size uint32, ok bool) {
	switch f {
	case gputypes.TextureFormatR8Unorm, gputypes.TextureFormatR8Snorm,
		gputypes.TextureFormatR8Uint, gputypes.TextureFormatR8Sint:
		return 1, 1, true

	case gputypes.TextureFormatR16Uint, gputypes.TextureFormatR16Sint,
		gputypes.TextureFormatR16Float,
		gputypes.TextureFormatRG8Unorm, gputypes.TextureFormatRG8Snorm,
		gputypes.TextureFormatRG8Uint, gputypes.TextureFormatRG8Sint:
		return 1, 2, true

	case gputypes.TextureFormatR32Uint, gputypes.TextureFormatR32Sint,
		gputypes.TextureFormatR32Float,
		gputypes.TextureFormatRG16Uint, gputypes.TextureFormatRG16Sint,
		gputypes.TextureFormatRG16Float,
		gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatRGBA8Snorm, gputypes.TextureFormatRGBA8Uint,
		gputypes.TextureFormatRGBA8Sint,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb,
		gputypes.TextureFormatRGB10A2Unorm, gputypes.TextureFormatRG11B10Ufloat,
		gputypes.TextureFormatRGB9E5Ufloat:
		return 1, 4, true

	case gputypes.TextureFormatRG32Uint, gputypes.TextureFormatRG32Sint,
		gputypes.TextureFormatRG32Float,
		gputypes.TextureFormatRGBA16Uint, gputypes.TextureFormatRGBA16Sint,
		gputypes.TextureFormatRGBA16Float:
		return 1, 8, true

	case gputypes.TextureFormatRGBA32Uint, gputypes.TextureFormatRGBA32Sint,
		gputypes.TextureFormatRGBA32Float:
		return 1, 16, true

	// 4x4 compressed blocks.
	case gputypes.TextureFormatBC1RGBAUnorm, gputypes.TextureFormatBC1RGBAUnormSrgb,
		gputypes.TextureFormatBC4RUnorm, gputypes.TextureFormatBC4RSnorm,
		gputypes.TextureFormatETC2RGB8Unorm, gputypes.TextureFormatETC2RGB8UnormSrgb,
		gputypes.TextureFormatETC2RGB8A1Unorm, gputypes.TextureFormatETC2RGB8A1UnormSrgb,
		gputypes.TextureFormatEACR11Unorm, gputypes.TextureFormatEACR11Snorm:
		return 4, 8, true

	case gputypes.TextureFormatBC2RGBAUnorm, gputypes.TextureFormatBC2RGBAUnormSrgb,
		gputypes.TextureFormatBC3RGBAUnorm, gputypes.TextureFormatBC3RGBAUnormSrgb,
		gputypes.TextureFormatBC5RGUnorm, gputypes.TextureFormatBC5RGSnorm,
		gputypes.TextureFormatBC6HRGBUfloat, gputypes.TextureFormatBC6HRGBFloat,
		gputypes.TextureFormatBC7RGBAUnorm, gputypes.TextureFormatBC7RGBAUnormSrgb,
		gputypes.TextureFormatETC2RGBA8Unorm, gputypes.TextureFormatETC2RGBA8UnormSrgb,
		gputypes.TextureFormatEACRG11Unorm, gputypes.TextureFormatEACRG11Snorm:
		return 4, 16, true
	}
	return 0, 0, false
}
