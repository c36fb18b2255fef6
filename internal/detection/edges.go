package detection

import (
	"image"

	"github.com/t4t5/hypruler/internal/imaging"
)

// EdgeThreshold is the luminance difference a scan must exceed to report a
// boundary in auto mode. Any visible change counts.
const EdgeThreshold = 1

// Edges holds the nearest boundary in each direction from a point. A nil
// entry means the scan reached the field boundary without finding one.
type Edges struct {
	Up    *imaging.Edge
	Down  *imaging.Edge
	Left  *imaging.Edge
	Right *imaging.Edge
}

// Count returns how many directions found a boundary.
func (e Edges) Count() int {
	n := 0
	for _, edge := range []*imaging.Edge{e.Up, e.Down, e.Left, e.Right} {
		if edge != nil {
			n++
		}
	}
	return n
}

// DetectEdges scans up, down, left and right from cursor.
//
// # Algorithm
//
// Each scan starts one pixel away from the cursor and compares every sample
// against the luminance at the cursor's own pixel. The first sample whose
// absolute difference exceeds threshold is reported as the edge in that
// direction. Sampling never includes the cursor pixel, so a cursor sitting on
// a boundary does not produce a zero-length edge.
//
// A cursor outside the field yields no edges.
func DetectEdges(field *imaging.LuminanceField, cursor image.Point, threshold int) Edges {
	if !field.In(cursor.X, cursor.Y) {
		return Edges{}
	}
	ref := int(field.At(cursor.X, cursor.Y))

	return Edges{
		Up:    scan(field, cursor, 0, -1, ref, threshold),
		Down:  scan(field, cursor, 0, 1, ref, threshold),
		Left:  scan(field, cursor, -1, 0, ref, threshold),
		Right: scan(field, cursor, 1, 0, ref, threshold),
	}
}

// scan walks from p in steps of (dx, dy) until the field ends.
func scan(field *imaging.LuminanceField, p image.Point, dx, dy, ref, threshold int) *imaging.Edge {
	x, y := p.X+dx, p.Y+dy
	for field.In(x, y) {
		if differs(int(field.At(x, y)), ref, threshold) {
			if dx != 0 {
				return &imaging.Edge{Orientation: imaging.Vertical, Offset: x}
			}
			return &imaging.Edge{Orientation: imaging.Horizontal, Offset: y}
		}
		x += dx
		y += dy
	}
	return nil
}

func differs(v, ref, threshold int) bool {
	d := v - ref
	if d < 0 {
		d = -d
	}
	return d > threshold
}
