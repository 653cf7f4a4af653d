package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/imrender"
)

// config is the demo configuration. Every field can be set in the TOML file;
// command line flags override the file.
type config struct {
	Width            int                     `toml:"width"`
	Height           int                     `toml:"height"`
	FramebufferScale float32                 `toml:"framebuffer_scale"`
	Frames           int                     `toml:"frames"`
	Windows          int                     `toml:"windows"`
	ColorSpace       imrender.ColorSpaceMode `toml:"color_space"`
	ShaderFormat     string                  `toml:"shader_format"`
	OutputFormat     string                  `toml:"output_format"`
	PipelineCache    int                     `toml:"pipeline_cache"`
}

func defaultConfig() config {
	return config{
		Width:            800,
		Height:           600,
		FramebufferScale: 1,
		Frames:           60,
		Windows:          3,
		ColorSpace:       imrender.ColorSpaceNone,
		ShaderFormat:     "wgsl",
		OutputFormat:     "bgra8unorm",
		PipelineCache:    4,
	}
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("config %s: %s", path, strict.String())
		}
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("display size %dx%d must be positive", c.Width, c.Height)
	}
	if !(c.FramebufferScale > 0) {
		return fmt.Errorf("framebuffer scale %v must be positive", c.FramebufferScale)
	}
	if c.Frames < 0 || c.Windows < 0 {
		return errors.New("frames and windows must not be negative")
	}
	if _, err := c.shaderFormat(); err != nil {
		return err
	}
	_, err := c.outputFormat()
	return err
}

func (c config) shaderFormat() (imrender.ShaderFormat, error) {
	switch strings.ToLower(c.ShaderFormat) {
	case "wgsl", "":
		return imrender.ShaderFormatWGSL, nil
	case "spirv", "spir-v":
		return imrender.ShaderFormatSPIRV, nil
	}
	return 0, fmt.Errorf("unknown shader format %q", c.ShaderFormat)
}

var outputFormats = map[string]gputypes.TextureFormat{
	"bgra8unorm":      gputypes.TextureFormatBGRA8Unorm,
	"bgra8unorm-srgb": gputypes.TextureFormatBGRA8UnormSrgb,
	"rgba8unorm":      gputypes.TextureFormatRGBA8Unorm,
	"rgba8unorm-srgb": gputypes.TextureFormatRGBA8UnormSrgb,
	"rgba16float":     gputypes.TextureFormatRGBA16Float,
}

func (c config) outputFormat() (gputypes.TextureFormat, error) {
	f, ok := outputFormats[strings.ToLower(c.OutputFormat)]
	if !ok {
		return gputypes.TextureFormatUndefined, fmt.Errorf("unknown output format %q", c.OutputFormat)
	}
	return f, nil
}

func (c config) options() []imrender.Option {
	sf, _ := c.shaderFormat()
	return []imrender.Option{
		imrender.WithShaderFormat(sf),
		imrender.WithPipelineCacheSize(c.PipelineCache),
		imrender.WithLabel("imrender-demo"),
	}
}
