// Package capture obtains the single frozen frame the overlay measures, and
// the metadata of the monitor it came from.
package capture

import (
	"errors"
	"log/slog"

	"github.com/t4t5/hypruler/internal/apperr"
	"github.com/t4t5/hypruler/internal/imaging"
)

// Output is a compositor output as advertised over the display protocol.
type Output struct {
	ID     uint32 // registry global name
	Name   string
	Scale  int // integer buffer scale, 0 if never announced
	Width  int // current mode, physical pixels
	Height int
}

// Screencopier is the display-protocol side of a capture.
type Screencopier interface {
	// Outputs lists every output with its metadata filled in.
	Outputs() ([]Output, error)
	// CaptureOutput copies one frame of out into memory.
	CaptureOutput(out Output) (*imaging.Framebuffer, error)
}

// Capture is the frozen frame and the output it shows.
type Capture struct {
	Frame  *imaging.Framebuffer
	Output Output
}

// Scale picks the physical/logical ratio for the captured output. Monitor
// metadata is preferred because it carries fractional scales; the integer
// output scale comes next. ok is false when neither is known.
func (c *Capture) Scale(mon Monitor) (scale imaging.ScaleFactor, ok bool) {
	if mon.Name != "" && mon.Name == c.Output.Name && mon.Scale > 0 {
		return imaging.ScaleForMonitor(c.Frame.Width, mon.Scale), true
	}
	if c.Output.Scale > 0 {
		return imaging.NewScaleFactor(c.Output.Scale, 1), true
	}
	return imaging.NewScaleFactor(1, 1), false
}

// ErrAlreadyAcquired is returned by a second Acquire.
var ErrAlreadyAcquired = errors.New("capture already acquired")

// Service performs the one capture a process is allowed.
type Service struct {
	backend  Screencopier
	logger   *slog.Logger
	acquired bool
}

// NewService creates a service over backend.
func NewService(backend Screencopier, logger *slog.Logger) *Service {
	return &Service{backend: backend, logger: logger}
}

// Acquire captures the output named monitorName. An empty or unknown name
// falls back to the first output.
//
// # Errors
//
//   - MonitorNotFound if the compositor reports no outputs
//   - CaptureUnavailable (from the backend) if screencopy is absent or fails
//   - ErrAlreadyAcquired on any call after the first
func (s *Service) Acquire(monitorName string) (*Capture, error) {
	if s.acquired {
		return nil, ErrAlreadyAcquired
	}
	s.acquired = true

	outputs, err := s.backend.Outputs()
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, apperr.New(apperr.MonitorNotFound, "compositor reported no outputs")
	}

	out, found := findOutput(outputs, monitorName)
	if !found && monitorName != "" {
		s.logger.Warn("monitor not among outputs, using first", "monitor", monitorName, "output", out.Name)
	}

	fb, err := s.backend.CaptureOutput(out)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("captured output",
		"output", out.Name,
		"width", fb.Width,
		"height", fb.Height,
		"format", fb.Format.String(),
	)
	return &Capture{Frame: fb, Output: out}, nil
}

func findOutput(outputs []Output, name string) (Output, bool) {
	if name != "" {
		for _, o := range outputs {
			if o.Name == name {
				return o, true
			}
		}
	}
	return outputs[0], false
}
