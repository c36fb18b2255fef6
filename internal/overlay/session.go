// Package overlay runs the measurement session: it feeds surface events to
// the state machine and draws at most once per frame callback.
package overlay

import (
	"image"
	"log/slog"

	"github.com/t4t5/hypruler/internal/event"
	"github.com/t4t5/hypruler/internal/imaging"
	"github.com/t4t5/hypruler/internal/measure"
	"github.com/t4t5/hypruler/internal/render"
)

// Surface is the mapped overlay as seen by the session.
type Surface interface {
	// NextEvent blocks until the compositor delivers an event.
	NextEvent() (event.Event, error)
	// Buffer returns a canvas the compositor is not reading, or false if
	// none is free.
	Buffer() (render.Canvas, bool)
	// Present shows the canvas last returned by Buffer and requests a frame.
	Present() error
	// RequestFrame asks for a frame event without attaching a buffer.
	RequestFrame() error
	SetCursorShape(serial uint32) error
	Close() error
}

// Session is the event loop's whole context. Only Dispatch mutates it.
type Session struct {
	surface  Surface
	machine  *measure.Machine
	renderer *render.Renderer
	glyphs   render.Glyphs
	logger   *slog.Logger

	scale      imaging.ScaleFactor
	scaleKnown bool

	configured   bool
	dirty        bool
	framePending bool
}

// NewSession wires a session together. When scaleKnown is false the scale is
// re-derived from the first configure.
func NewSession(surface Surface, machine *measure.Machine, renderer *render.Renderer,
	scale imaging.ScaleFactor, scaleKnown bool, logger *slog.Logger) *Session {
	return &Session{
		surface:    surface,
		machine:    machine,
		renderer:   renderer,
		logger:     logger,
		scale:      scale,
		scaleKnown: scaleKnown,
	}
}

// Scale is the physical/logical factor currently applied to pointer input.
func (s *Session) Scale() imaging.ScaleFactor { return s.scale }

// Run dispatches events until the session ends. It returns nil on a normal
// exit (key press or surface closed) and the error otherwise.
func (s *Session) Run() error {
	for {
		ev, err := s.surface.NextEvent()
		if err != nil {
			return err
		}
		done, err := Dispatch(s, ev)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Close releases the surface and the glyph source.
func (s *Session) Close() error {
	err := s.surface.Close()
	closeGlyphs(s.glyphs)
	return err
}

// Dispatch handles one event to completion. done reports that the session
// should end.
func Dispatch(s *Session, ev event.Event) (done bool, err error) {
	switch e := ev.(type) {
	case event.Configure:
		s.configure(e)
		if !s.configured {
			s.configured = true
			return false, s.draw()
		}
		return false, s.invalidate()

	case event.Frame:
		s.framePending = false
		if s.dirty {
			return false, s.draw()
		}
		return false, nil

	case event.PointerEnter:
		if err := s.surface.SetCursorShape(e.Serial); err != nil {
			s.logger.Warn("failed to set cursor shape", "error", err)
		}
		return s.apply(s.machine.PointerMotion(s.toPhysical(e.X, e.Y)))

	case event.PointerMotion:
		return s.apply(s.machine.PointerMotion(s.toPhysical(e.X, e.Y)))

	case event.PointerButton:
		if e.Button != event.BtnLeft {
			return false, nil
		}
		if e.Pressed {
			return s.apply(s.machine.ButtonDown())
		}
		return s.apply(s.machine.ButtonUp())

	case event.Key:
		if !e.Pressed {
			return false, nil
		}
		return s.apply(s.machine.KeyPress())

	case event.Closed:
		s.logger.Debug("surface closed by compositor")
		return true, nil
	}
	return false, nil
}

func (s *Session) configure(e event.Configure) {
	if s.scaleKnown || e.Width <= 0 {
		return
	}
	w, _ := s.renderer.Size()
	s.scale = imaging.NewScaleFactor(w, e.Width)
	s.scaleKnown = true
	s.renderer.SetScale(s.scale)
	s.logger.Debug("scale derived from surface size", "scale", s.scale.String())
}

func (s *Session) apply(o measure.Outcome) (bool, error) {
	switch o {
	case measure.Terminate:
		return true, nil
	case measure.Changed:
		return false, s.invalidate()
	}
	return false, nil
}

// invalidate marks the overlay stale. Changes between two frames coalesce
// into the single draw made when the frame arrives.
func (s *Session) invalidate() error {
	s.dirty = true
	if !s.configured || s.framePending {
		return nil
	}
	s.framePending = true
	return s.surface.RequestFrame()
}

func (s *Session) draw() error {
	canvas, ok := s.surface.Buffer()
	if !ok {
		// Both buffers are still with the compositor; retry next frame.
		s.dirty = true
		if s.framePending {
			return nil
		}
		s.framePending = true
		return s.surface.RequestFrame()
	}
	if err := s.renderer.Draw(canvas, s.machine.State()); err != nil {
		return err
	}
	s.dirty = false
	s.framePending = true
	return s.surface.Present()
}

func (s *Session) toPhysical(x, y float64) image.Point {
	return image.Pt(s.scale.ToPhysical(x), s.scale.ToPhysical(y))
}
