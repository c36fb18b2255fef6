package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Monitor is one entry of the compositor's monitor list. Width and Height
// are the physical mode size.
type Monitor struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Scale   float64 `json:"scale"`
	Focused bool    `json:"focused"`
}

// MonitorLister enumerates monitors and reports which one has focus.
type MonitorLister interface {
	Monitors(ctx context.Context) ([]Monitor, error)
}

// Hyprctl lists monitors by running a command that prints the JSON array
// produced by `hyprctl monitors -j`.
type Hyprctl struct {
	Command []string
	Timeout time.Duration
}

// Monitors runs the command and decodes its output.
func (h *Hyprctl) Monitors(ctx context.Context) ([]Monitor, error) {
	if len(h.Command) == 0 {
		return nil, fmt.Errorf("no monitor command configured")
	}
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, h.Command[0], h.Command[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", strings.Join(h.Command, " "), err, strings.TrimSpace(stderr.String()))
	}
	return ParseMonitors(out)
}

// ParseMonitors decodes a hyprctl monitor list.
func ParseMonitors(data []byte) ([]Monitor, error) {
	var monitors []Monitor
	if err := json.Unmarshal(data, &monitors); err != nil {
		return nil, fmt.Errorf("failed to decode monitor list: %w", err)
	}
	return monitors, nil
}

// SelectMonitor returns the focused monitor, or the first one when none is
// focused. Query failures and empty lists are logged and give the zero
// Monitor, which makes capture fall back to the first output.
func SelectMonitor(ctx context.Context, lister MonitorLister, logger *slog.Logger) Monitor {
	monitors, err := lister.Monitors(ctx)
	if err != nil {
		logger.Warn("monitor query failed, using first output", "error", err)
		return Monitor{}
	}
	if len(monitors) == 0 {
		logger.Warn("monitor query returned no monitors, using first output")
		return Monitor{}
	}
	for _, m := range monitors {
		if m.Focused {
			return m
		}
	}
	logger.Debug("no focused monitor, using first", "name", monitors[0].Name)
	return monitors[0]
}
