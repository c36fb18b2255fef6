package detection

import (
	"github.com/t4t5/hypruler/internal/imaging"
)

const (
	// SnapThreshold is the luminance difference that counts as a boundary
	// when snapping. Higher than EdgeThreshold so antialiasing and
	// compression noise near a drawn rectangle are ignored.
	SnapThreshold = 10

	// SnapDistance bounds how far, in physical pixels, a side may move.
	SnapDistance = 200
)

// SnapResult is the adjusted rectangle plus the boundary each side moved to.
// A nil side kept its original offset.
type SnapResult struct {
	Rect   imaging.Rectangle
	Top    *imaging.Edge
	Left   *imaging.Edge
	Bottom *imaging.Edge
	Right  *imaging.Edge
}

// Count returns how many sides were snapped.
func (r SnapResult) Count() int {
	n := 0
	for _, edge := range []*imaging.Edge{r.Top, r.Left, r.Bottom, r.Right} {
		if edge != nil {
			n++
		}
	}
	return n
}

// SnapRectangle moves each side of rect onto the nearest luminance boundary.
//
// # Algorithm
//
// For every pixel along a side (its full length within rect), two scans run
// perpendicular to the side, comparing against that pixel's own luminance:
//
//  1. Outward, up to maxDistance pixels, stopping at the field boundary
//  2. Inward, up to maxDistance pixels, never past the opposite side
//
// The first sample of a scan that differs by more than threshold is that
// scan's hit. The side moves to the hit nearest its current offset; on a tie
// the outward hit wins. With no hit the side is unchanged.
//
// Each side reads only the input rectangle, so the order in which sides are
// resolved cannot change the result. The output is normalized.
func SnapRectangle(field *imaging.LuminanceField, rect imaging.Rectangle, threshold, maxDistance int) SnapResult {
	r := clip(field, rect)
	res := SnapResult{Rect: r}
	if r.Left > r.Right || r.Top > r.Bottom {
		return res
	}

	res.Top = SnapSide(field, r, SideTop, threshold, maxDistance)
	res.Left = SnapSide(field, r, SideLeft, threshold, maxDistance)
	res.Bottom = SnapSide(field, r, SideBottom, threshold, maxDistance)
	res.Right = SnapSide(field, r, SideRight, threshold, maxDistance)

	if res.Top != nil {
		res.Rect.Top = res.Top.Offset
	}
	if res.Bottom != nil {
		res.Rect.Bottom = res.Bottom.Offset
	}
	if res.Left != nil {
		res.Rect.Left = res.Left.Offset
	}
	if res.Right != nil {
		res.Rect.Right = res.Right.Offset
	}
	res.Rect = res.Rect.Normalize()
	return res
}

// Side names one side of a Rectangle.
type Side int

const (
	SideTop Side = iota
	SideLeft
	SideBottom
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideLeft:
		return "left"
	case SideBottom:
		return "bottom"
	case SideRight:
		return "right"
	}
	return "unknown"
}

// SnapSide resolves a single side of rect as SnapRectangle does, returning
// nil when no boundary is within reach. rect is normalized and clipped to the
// field first.
func SnapSide(field *imaging.LuminanceField, rect imaging.Rectangle, which Side, threshold, maxDistance int) *imaging.Edge {
	r := clip(field, rect)
	if r.Left > r.Right || r.Top > r.Bottom {
		return nil
	}
	width, height := r.Right-r.Left, r.Bottom-r.Top

	var s side
	switch which {
	case SideTop:
		s = side{at: r.Top, from: r.Left, to: r.Right, outward: -1,
			outLimit: min(maxDistance, r.Top), inLimit: min(maxDistance, height)}
	case SideBottom:
		s = side{at: r.Bottom, from: r.Left, to: r.Right, outward: 1,
			outLimit: min(maxDistance, field.Height-1-r.Bottom), inLimit: min(maxDistance, height)}
	case SideLeft:
		s = side{at: r.Left, from: r.Top, to: r.Bottom, outward: -1, vertical: true,
			outLimit: min(maxDistance, r.Left), inLimit: min(maxDistance, width)}
	case SideRight:
		s = side{at: r.Right, from: r.Top, to: r.Bottom, outward: 1, vertical: true,
			outLimit: min(maxDistance, field.Width-1-r.Right), inLimit: min(maxDistance, width)}
	default:
		return nil
	}
	return snapSide(field, s, threshold)
}

func clip(field *imaging.LuminanceField, rect imaging.Rectangle) imaging.Rectangle {
	r := rect.Normalize()
	r.Left, r.Top = max(r.Left, 0), max(r.Top, 0)
	r.Right, r.Bottom = min(r.Right, field.Width-1), min(r.Bottom, field.Height-1)
	return r
}

// side describes one rectangle side for snapSide. at is the side's offset on
// the scan axis; from..to is its extent on the other axis. vertical sides are
// left and right, scanned along x.
type side struct {
	at, from, to int
	outward      int
	vertical     bool
	outLimit     int
	inLimit      int
}

func (s side) lum(field *imaging.LuminanceField, offset, along int) int {
	if s.vertical {
		return int(field.At(offset, along))
	}
	return int(field.At(along, offset))
}

func snapSide(field *imaging.LuminanceField, s side, threshold int) *imaging.Edge {
	bestStep, bestOffset := -1, 0
	bestOutward := false

	better := func(step int, outward bool) bool {
		if bestStep < 0 || step < bestStep {
			return true
		}
		return step == bestStep && outward && !bestOutward
	}

	for t := s.from; t <= s.to; t++ {
		ref := s.lum(field, s.at, t)

		for step := 1; step <= s.outLimit; step++ {
			if !better(step, true) {
				break
			}
			off := s.at + s.outward*step
			if differs(s.lum(field, off, t), ref, threshold) {
				bestStep, bestOffset, bestOutward = step, off, true
				break
			}
		}

		for step := 1; step <= s.inLimit; step++ {
			if !better(step, false) {
				break
			}
			off := s.at - s.outward*step
			if differs(s.lum(field, off, t), ref, threshold) {
				bestStep, bestOffset, bestOutward = step, off, false
				break
			}
		}
	}

	if bestStep < 0 {
		return nil
	}
	o := imaging.Horizontal
	if s.vertical {
		o = imaging.Vertical
	}
	return &imaging.Edge{Orientation: o, Offset: bestOffset}
}
