package imrender

import (
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/imrender/drawdata"
	"github.com/gogpu/wgpu/hal"
)

// NewFromProvider creates a renderer on a device shared by a host
// application, such as a gogpu window. The provider must expose
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
// The output format is the provider's surface format.
func NewFromProvider(provider gpucontext.DeviceProvider, ui drawdata.Context, mode ColorSpaceMode, opts ...Option) (*Renderer, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHalProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHalProvider, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHalProvider, hp.HalQueue())
	}
	return New(device, queue, ui, provider.SurfaceFormat(), mode, opts...)
}
