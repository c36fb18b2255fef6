// Package event defines the input and refresh signals the overlay surface
// delivers to the session loop. Each signal is one variant of Event; the loop
// handles them with a single type switch.
package event

// BtnLeft is the Linux evdev code of the primary pointer button.
const BtnLeft = 0x110

// Event is a tagged variant. Only types in this package implement it.
type Event interface {
	event()
}

// Configure carries the logical surface size assigned by the compositor.
// The first one maps the surface.
type Configure struct {
	Width  int
	Height int
}

// Frame is a refresh signal: the compositor is ready for the next buffer.
type Frame struct{}

// PointerEnter reports the pointer entering the surface. X and Y are
// surface-local logical coordinates.
type PointerEnter struct {
	Serial uint32
	X, Y   float64
}

// PointerMotion reports a new pointer position in surface-local logical
// coordinates.
type PointerMotion struct {
	X, Y float64
}

// PointerButton reports a button press or release.
type PointerButton struct {
	Button  uint32
	Pressed bool
}

// Key reports a key press or release.
type Key struct {
	Key     uint32
	Pressed bool
}

// Closed means the compositor withdrew the surface.
type Closed struct{}

func (Configure) event()     {}
func (Frame) event()         {}
func (PointerEnter) event()  {}
func (PointerMotion) event() {}
func (PointerButton) event() {}
func (Key) event()           {}
func (Closed) event()        {}
