package imrender

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// uploader is the slice of hal.Queue the renderer writes through.
type uploader interface {
	writeBuffer(buf hal.Buffer, offset uint64, data []byte) error
	writeTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error
}

type halUploader struct {
	queue hal.Queue
}

func (u halUploader) writeBuffer(buf hal.Buffer, offset uint64, data []byte) error {
	if err := u.queue.WriteBuffer(buf, offset, data); err != nil {
		return fmt.Errorf("imrender: write buffer: %w", err)
	}
	return nil
}

func (u halUploader) writeTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	if err := u.queue.WriteTexture(dst, data, layout, size); err != nil {
		return fmt.Errorf("imrender: write texture: %w", err)
	}
	return nil
}
