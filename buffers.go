package imrender

import (
	"fmt"
	"math/bits"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyBufferAlignment is the required alignment of buffer write sizes.
const copyBufferAlignment = 4

func alignCopySize(n uint64) uint64 {
	return (n + copyBufferAlignment - 1) &^ (copyBufferAlignment - 1)
}

// nextPowerOfTwo returns the smallest power of two >= n, with 1 for n == 0.
func nextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}

// streamBuffer is a grow-only GPU buffer refilled every frame.
type streamBuffer struct {
	label    string
	usage    gputypes.BufferUsage
	buf      hal.Buffer
	capacity uint64
	reallocs int
	staging  []byte
}

// reserve makes the buffer hold at least size bytes. It reports whether a new
// buffer was created.
func (b *streamBuffer) reserve(device hal.Device, size uint64) (bool, error) {
	if b.buf != nil && b.capacity >= size {
		return false, nil
	}
	capacity := nextPowerOfTwo(size)
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label,
		Size:  capacity,
		Usage: b.usage,
	})
	if err != nil {
		return false, fmt.Errorf("imrender: create %s buffer (%d bytes): %w", b.label, capacity, err)
	}
	if b.buf != nil {
		device.DestroyBuffer(b.buf)
	}
	b.buf = buf
	b.capacity = capacity
	b.reallocs++
	return true, nil
}

// pad zero-extends the staging bytes to size.
func (b *streamBuffer) pad(size uint64) {
	for uint64(len(b.staging)) < size {
		b.staging = append(b.staging, 0)
	}
}

func (b *streamBuffer) destroy(device hal.Device) {
	if b.buf != nil {
		device.DestroyBuffer(b.buf)
		b.buf = nil
		b.capacity = 0
	}
}
