// Command imrender-demo renders synthetic GUI frames through the imrender
// backend on the noop HAL device and reports per-frame statistics.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/pkg/profile"

	"github.com/gogpu/imrender"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		width      = flag.Int("width", 0, "display width (overrides config)")
		height     = flag.Int("height", 0, "display height (overrides config)")
		frames     = flag.Int("frames", -1, "number of frames (overrides config)")
		colorSpace = flag.String("color-space", "", "none, linear or srgb (overrides config)")
		cpuProfile = flag.Bool("cpuprofile", false, "write a CPU profile to the working directory")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}
	if *frames >= 0 {
		cfg.Frames = *frames
	}
	if *colorSpace != "" {
		if err := cfg.ColorSpace.UnmarshalText([]byte(*colorSpace)); err != nil {
			log.Fatalf("Invalid -color-space: %v", err)
		}
	}
	if err := cfg.validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	imrender.SetLogger(logger)

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("demo failed", "err", err)
		os.Exit(1) //nolint:gocritic // the profile is only useful for successful runs
	}
}

// gpu is a noop HAL device with its queue.
type gpu struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
}

func openNoop() (*gpu, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("no adapters")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	return &gpu{instance: instance, device: open.Device, queue: open.Queue}, nil
}

func (g *gpu) close() {
	g.device.Destroy()
	g.instance.Destroy()
}

// target is the color attachment frames are rendered into.
type target struct {
	texture hal.Texture
	view    hal.TextureView
}

func newTarget(device hal.Device, w, h uint32, format gputypes.TextureFormat) (*target, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "demo target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create target texture: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "demo target",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create target view: %w", err)
	}
	return &target{texture: tex, view: view}, nil
}

func (t *target) destroy(device hal.Device) {
	device.DestroyTextureView(t.view)
	device.DestroyTexture(t.texture)
}

// checker is a small test image shown in the first window.
func checker(size, cell int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			c := color.NRGBA{R: uint8(255 * x / size), G: uint8(255 * y / size), B: 160, A: 255} //nolint:gosec // bounded by size
			if (x/cell+y/cell)%2 == 0 {
				c.A = 180
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func run(cfg config, logger *slog.Logger) error {
	format, err := cfg.outputFormat()
	if err != nil {
		return err
	}
	g, err := openNoop()
	if err != nil {
		return err
	}
	defer g.close()

	ui := newDemoUI()
	r, err := imrender.New(g.device, g.queue, ui, format, cfg.ColorSpace, cfg.options()...)
	if err != nil {
		return err
	}
	defer r.Destroy()

	img, err := r.CreateOwnedTextureFromImage("demo checker", checker(64, 8), imrender.DefaultSamplerDescriptor())
	if err != nil {
		return err
	}
	ui.image = r.AddTexture(img)

	fbW := uint32(float32(cfg.Width) * cfg.FramebufferScale)  //nolint:gosec // validated positive
	fbH := uint32(float32(cfg.Height) * cfg.FramebufferScale) //nolint:gosec // validated positive
	tgt, err := newTarget(g.device, fbW, fbH, format)
	if err != nil {
		return err
	}
	defer tgt.destroy(g.device)

	fence, err := g.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer g.device.DestroyFence(fence)

	start := time.Now()
	var draws, skipped int
	for n := range cfg.Frames {
		data := ui.Frame(n, cfg.Windows, float32(cfg.Width), float32(cfg.Height), cfg.FramebufferScale)

		encoder, err := g.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "demo frame"})
		if err != nil {
			return fmt.Errorf("create command encoder: %w", err)
		}
		if err := encoder.BeginEncoding("demo frame"); err != nil {
			return fmt.Errorf("begin encoding: %w", err)
		}
		if err := r.Render(encoder, tgt.view, data); err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("frame %d: %w", n, err)
		}
		cmdBuf, err := encoder.EndEncoding()
		if err != nil {
			return fmt.Errorf("end encoding: %w", err)
		}

		value := uint64(n + 1) //nolint:gosec // frame counter
		err = g.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, value)
		if err == nil {
			var ok bool
			ok, err = g.device.Wait(fence, value, 5*time.Second)
			if err == nil && !ok {
				err = errors.New("timed out")
			}
		}
		g.device.FreeCommandBuffer(cmdBuf)
		if err != nil {
			return fmt.Errorf("submit frame %d: %w", n, err)
		}

		s := r.Stats()
		draws += s.DrawCalls
		skipped += s.SkippedCommands
		logger.Debug("frame rendered", "frame", n, "draws", s.DrawCalls, "skipped", s.SkippedCommands,
			"callbacks", s.Callbacks, "vertices", data.TotalVtxCount, "indices", data.TotalIdxCount)
	}

	s := r.Stats()
	logger.Info("demo finished",
		"frames", cfg.Frames,
		"elapsed", time.Since(start),
		"draws", draws,
		"skipped", skipped,
		"callbacks", ui.callbacks,
		"vertexBuffer", s.VertexBufferSize,
		"indexBuffer", s.IndexBufferSize,
		"vertexReallocs", s.VertexReallocs,
		"indexReallocs", s.IndexReallocs,
		"textures", r.Textures().Len(),
	)
	return nil
}
