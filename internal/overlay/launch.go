package overlay

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/t4t5/hypruler/internal/capture"
	"github.com/t4t5/hypruler/internal/imaging"
	"github.com/t4t5/hypruler/internal/measure"
	"github.com/t4t5/hypruler/internal/render"
)

// SurfaceFactory maps the overlay on the captured output. width and height
// are physical pixels.
type SurfaceFactory interface {
	CreateSurface(out capture.Output, width, height int, scale imaging.ScaleFactor) (Surface, error)
}

// SurfaceFunc adapts a function to SurfaceFactory.
type SurfaceFunc func(out capture.Output, width, height int, scale imaging.ScaleFactor) (Surface, error)

func (f SurfaceFunc) CreateSurface(out capture.Output, width, height int, scale imaging.ScaleFactor) (Surface, error) {
	return f(out, width, height, scale)
}

// Deps are the collaborators Launch needs.
type Deps struct {
	Monitors capture.MonitorLister
	Backend  capture.Screencopier
	Surfaces SurfaceFactory
	Glyphs   func(ctx context.Context) (render.Glyphs, error)
	Accent   string
	Logger   *slog.Logger
}

// Launch performs the startup sequence: pick the monitor, capture it once,
// derive the luminance field and background, load glyphs and palette, and
// only then create the surface. Any failure before the surface exists
// returns without creating one.
func Launch(ctx context.Context, deps Deps) (*Session, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mon := capture.SelectMonitor(ctx, deps.Monitors, logger)

	shot, err := capture.NewService(deps.Backend, logger).Acquire(mon.Name)
	if err != nil {
		return nil, err
	}
	frame := shot.Frame
	scale, scaleKnown := shot.Scale(mon)

	field := imaging.ComputeLuminance(frame)
	background := frame.Background()

	glyphs, err := deps.Glyphs(ctx)
	if err != nil {
		return nil, err
	}

	palette, err := render.NewPalette(deps.Accent)
	if err != nil {
		logger.Warn("invalid accent color, using default", "color", deps.Accent, "error", err)
		palette = render.DefaultPalette()
	}

	renderer, err := render.New(background, frame.Width, frame.Height, scale, glyphs, palette)
	if err != nil {
		closeGlyphs(glyphs)
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	surface, err := deps.Surfaces.CreateSurface(shot.Output, frame.Width, frame.Height, scale)
	if err != nil {
		closeGlyphs(glyphs)
		return nil, err
	}

	logger.Info("overlay ready",
		"output", shot.Output.Name,
		"size", fmt.Sprintf("%dx%d", frame.Width, frame.Height),
		"format", frame.Format,
		"scale", scale.String(),
		"scale_known", scaleKnown)

	s := NewSession(surface, measure.New(field), renderer, scale, scaleKnown, logger)
	s.glyphs = glyphs
	return s, nil
}

func closeGlyphs(g render.Glyphs) {
	if c, ok := g.(io.Closer); ok {
		c.Close()
	}
}
