package measure

import (
	"image"

	"github.com/t4t5/hypruler/internal/detection"
	"github.com/t4t5/hypruler/internal/imaging"
)

// MinDragDistance is how far, in physical pixels on either axis, the pointer
// must move with the button held before a press becomes a drag.
const MinDragDistance = 3

// Outcome tells the caller what an input did to the state.
type Outcome int

const (
	// Unchanged means nothing needs redrawing.
	Unchanged Outcome = iota
	// Changed means the state was replaced and the overlay is stale.
	Changed
	// Terminate means the session should end normally.
	Terminate
)

func (o Outcome) String() string {
	switch o {
	case Changed:
		return "changed"
	case Terminate:
		return "terminate"
	}
	return "unchanged"
}

// Machine owns the current State and the cursor position. It is not safe for
// concurrent use; the session loop is its only caller.
type Machine struct {
	field  *imaging.LuminanceField
	state  State
	cursor image.Point
}

// New creates a machine in Idle over the given field.
func New(field *imaging.LuminanceField) *Machine {
	return &Machine{field: field, state: Idle{}}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Cursor returns the last pointer position, clamped into the field.
func (m *Machine) Cursor() image.Point { return m.cursor }

// PointerMotion records a new cursor position in physical pixels.
func (m *Machine) PointerMotion(p image.Point) Outcome {
	p = m.field.Clamp(p)
	moved := p != m.cursor
	m.cursor = p

	switch s := m.state.(type) {
	case Idle:
		m.state = m.auto(p)
		return Changed

	case Auto:
		if !moved {
			return Unchanged
		}
		m.state = m.auto(p)
		return Changed

	case DragPending:
		if chebyshev(s.Origin, p) >= MinDragDistance {
			m.state = Dragging{Origin: s.Origin, Current: p}
			return Changed
		}
		if !moved {
			return Unchanged
		}
		m.state = DragPending{Origin: s.Origin, Cursor: p, Edges: m.detect(p)}
		return Changed

	case Dragging:
		if !moved {
			return Unchanged
		}
		m.state = Dragging{Origin: s.Origin, Current: p}
		return Changed

	case Locked:
		// Tracked for the next auto state; the locked rectangle stays put.
		return Unchanged
	}
	return Unchanged
}

// ButtonDown handles a primary-button press.
func (m *Machine) ButtonDown() Outcome {
	switch s := m.state.(type) {
	case Auto:
		m.state = DragPending{Origin: s.Cursor, Cursor: s.Cursor, Edges: s.Edges}
		return Changed
	case Locked:
		// A click only clears; it never starts a drag.
		m.state = Idle{}
		return Changed
	}
	return Unchanged
}

// ButtonUp handles a primary-button release.
func (m *Machine) ButtonUp() Outcome {
	switch s := m.state.(type) {
	case DragPending:
		m.state = Idle{}
		return Changed
	case Dragging:
		rect := s.Rect()
		m.state = Locked{
			Rect: rect,
			Snap: detection.SnapRectangle(m.field, rect, detection.SnapThreshold, detection.SnapDistance),
		}
		return Changed
	}
	return Unchanged
}

// KeyPress ends the session from any state.
func (m *Machine) KeyPress() Outcome {
	return Terminate
}

func (m *Machine) auto(p image.Point) Auto {
	return Auto{Cursor: p, Edges: m.detect(p)}
}

func (m *Machine) detect(p image.Point) detection.Edges {
	return detection.DetectEdges(m.field, p, detection.EdgeThreshold)
}

func chebyshev(a, b image.Point) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return max(dx, dy)
}
