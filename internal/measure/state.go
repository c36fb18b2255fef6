// Package measure holds the interaction state machine: it turns pointer and
// keyboard input into the single MeasurementState the renderer draws.
package measure

import (
	"image"

	"github.com/t4t5/hypruler/internal/detection"
	"github.com/t4t5/hypruler/internal/imaging"
)

// State is one of Idle, Auto, DragPending, Dragging or Locked.
type State interface {
	state()
	String() string
}

// Idle shows the frozen background only.
type Idle struct{}

// Auto measures continuously around the cursor.
type Auto struct {
	Cursor image.Point
	Edges  detection.Edges
}

// DragPending is a pressed button that has not yet moved far enough to
// count as a drag. It renders like Auto.
type DragPending struct {
	Origin image.Point
	Cursor image.Point
	Edges  detection.Edges
}

// Dragging is a live rectangle between the press point and the cursor.
type Dragging struct {
	Origin  image.Point
	Current image.Point
}

// Rect returns the normalized rectangle being drawn.
func (d Dragging) Rect() imaging.Rectangle {
	return imaging.NormalizeRect(d.Origin, d.Current)
}

// Locked is a released rectangle after snapping.
type Locked struct {
	Rect imaging.Rectangle
	Snap detection.SnapResult
}

func (Idle) state()        {}
func (Auto) state()        {}
func (DragPending) state() {}
func (Dragging) state()    {}
func (Locked) state()      {}

func (Idle) String() string        { return "idle" }
func (Auto) String() string        { return "auto" }
func (DragPending) String() string { return "drag-pending" }
func (Dragging) String() string    { return "dragging" }
func (Locked) String() string      { return "locked" }
