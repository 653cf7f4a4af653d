package drawdata

import (
	"encoding/binary"
	"math"
)

// AppendVertexBytes appends the little-endian encoding of verts to dst.
func AppendVertexBytes(dst []byte, verts []DrawVert) []byte {
	for i := range verts {
		v := &verts[i]
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.Pos[0]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.Pos[1]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.UV[0]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v.UV[1]))
		dst = binary.LittleEndian.AppendUint32(dst, v.Col)
	}
	return dst
}

// AppendIndexBytes appends the little-endian encoding of idx to dst.
func AppendIndexBytes(dst []byte, idx []DrawIdx) []byte {
	for _, i := range idx {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(i))
	}
	return dst
}

// PackColor packs 8-bit channels into the DrawVert.Col layout.
func PackColor(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}
