package imrender

// ShaderFormat selects the shader source handed to the device.
type ShaderFormat int

const (
	// ShaderFormatWGSL passes WGSL text to the device.
	ShaderFormatWGSL ShaderFormat = iota

	// ShaderFormatSPIRV translates WGSL to SPIR-V before module creation,
	// for backends that do not accept WGSL.
	ShaderFormatSPIRV
)

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := imrender.New(device, queue, ui, format, imrender.ColorSpaceLinear,
//	    imrender.WithShaderFormat(imrender.ShaderFormatSPIRV),
//	    imrender.WithPipelineCacheSize(2))
type Option func(*options)

type options struct {
	shaderFormat      ShaderFormat
	pipelineCacheSize int
	label             string
}

// defaultPipelineCacheSize covers a window switching between a couple of
// surface formats plus offscreen targets.
const defaultPipelineCacheSize = 4

func defaultOptions() options {
	return options{
		shaderFormat:      ShaderFormatWGSL,
		pipelineCacheSize: defaultPipelineCacheSize,
		label:             "imgui",
	}
}

// WithShaderFormat selects WGSL or SPIR-V shader modules.
func WithShaderFormat(f ShaderFormat) Option {
	return func(o *options) {
		o.shaderFormat = f
	}
}

// WithPipelineCacheSize sets how many output formats keep a built pipeline.
// Values below 1 are treated as 1.
func WithPipelineCacheSize(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.pipelineCacheSize = n
	}
}

// WithLabel sets the prefix of every GPU object label the renderer creates.
func WithLabel(label string) Option {
	return func(o *options) {
		if label != "" {
			o.label = label
		}
	}
}
