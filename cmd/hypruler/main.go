package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/t4t5/hypruler/internal/apperr"
	"github.com/t4t5/hypruler/internal/capture"
	"github.com/t4t5/hypruler/internal/config"
	"github.com/t4t5/hypruler/internal/font"
	"github.com/t4t5/hypruler/internal/imaging"
	"github.com/t4t5/hypruler/internal/overlay"
	"github.com/t4t5/hypruler/internal/render"
	"github.com/t4t5/hypruler/internal/wayland"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("hypruler %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("hypruler - measure anything on screen")
			fmt.Println()
			fmt.Println("Usage: hypruler [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  HYPRRULER_LOG_LEVEL=debug          Log level (debug, info, warn, error)")
			fmt.Println("  HYPRRULER_MONITOR_CMD=...          Monitor query (default: hyprctl monitors -j)")
			fmt.Println("  HYPRRULER_MONITOR_TIMEOUT=2s       Monitor query timeout")
			fmt.Println("  HYPRRULER_FONT=path|builtin        Label font (default: fc-match sans-serif)")
			fmt.Println("  HYPRRULER_COLOR=#e74c3c            Accent color")
			fmt.Println("  HYPRRULER_IMAGE=path               Measure a still image instead of the screen")
			fmt.Println()
			fmt.Println("Move to measure the gaps around the cursor, drag to measure a")
			fmt.Println("rectangle, click to clear it. Any key exits.")
			return
		}
	}

	cfg := config.Load()

	// Logging goes to stderr; the overlay has no other output.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	if err := run(cfg, logger); err != nil {
		logger.Error("hypruler failed", "code", apperr.CodeOf(err).String(), "error", err)
		os.Exit(apperr.ExitCode(err))
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	client, err := wayland.Dial(logger)
	if err != nil {
		return err
	}
	defer client.Close()

	var backend capture.Screencopier = client
	if cfg.ImagePath != "" {
		logger.Info("measuring still image", "path", cfg.ImagePath)
		backend = &capture.ImageFile{Path: cfg.ImagePath, Source: client}
	}

	session, err := overlay.Launch(ctx, overlay.Deps{
		Monitors: &capture.Hyprctl{Command: cfg.MonitorCommand, Timeout: cfg.MonitorTimeout},
		Backend:  backend,
		Surfaces: overlay.SurfaceFunc(func(out capture.Output, w, h int, scale imaging.ScaleFactor) (overlay.Surface, error) {
			o, err := client.CreateOverlay(out, w, h, scale)
			if err != nil {
				return nil, err
			}
			return o, nil
		}),
		Glyphs: func(ctx context.Context) (render.Glyphs, error) {
			face, err := font.Resolve(ctx, cfg.FontPath, logger)
			if err != nil {
				return nil, err
			}
			return face, nil
		},
		Accent: cfg.AccentColor,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	return session.Run()
}
