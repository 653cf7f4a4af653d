package imrender

import "errors"

var (
	// ErrNilDevice is returned when a renderer is created without a device.
	ErrNilDevice = errors.New("imrender: nil device")

	// ErrNilQueue is returned when a renderer is created without a queue.
	ErrNilQueue = errors.New("imrender: nil queue")

	// ErrNilContext is returned when a renderer is created without a GUI context.
	ErrNilContext = errors.New("imrender: nil GUI context")

	// ErrNoHalProvider is returned by NewFromProvider when the provider does
	// not expose HAL device and queue handles.
	ErrNoHalProvider = errors.New("imrender: provider does not expose a HAL device and queue")

	// ErrEmptyAtlas is returned by ReloadFonts when the font atlas bitmap is
	// empty or inconsistent with its dimensions.
	ErrEmptyAtlas = errors.New("imrender: empty font atlas")
)
