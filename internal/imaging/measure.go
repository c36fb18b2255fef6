package imaging

import (
	"fmt"
	"image"
	"math"
)

// Orientation of a detected boundary.
type Orientation int

const (
	// Horizontal boundaries are found by scanning up or down; Offset is a y.
	Horizontal Orientation = iota
	// Vertical boundaries are found by scanning left or right; Offset is an x.
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Edge is a content boundary: the first pixel along a scan whose luminance
// differs from the scan's starting pixel.
type Edge struct {
	Orientation Orientation
	Offset      int
}

func (e Edge) String() string {
	return fmt.Sprintf("%s@%d", e.Orientation, e.Offset)
}

// Rectangle is a region in physical pixel coordinates. All four sides are
// inclusive, so a Rectangle with Left == Right is one pixel wide.
type Rectangle struct {
	Top    int
	Left   int
	Bottom int
	Right  int
}

// NormalizeRect builds the Rectangle spanned by two corner points in any
// order, including a == b.
func NormalizeRect(a, b image.Point) Rectangle {
	return Rectangle{
		Top:    min(a.Y, b.Y),
		Left:   min(a.X, b.X),
		Bottom: max(a.Y, b.Y),
		Right:  max(a.X, b.X),
	}
}

// Normalize swaps sides so that Left <= Right and Top <= Bottom.
func (r Rectangle) Normalize() Rectangle {
	return NormalizeRect(image.Pt(r.Left, r.Top), image.Pt(r.Right, r.Bottom))
}

// Width is the inclusive pixel count between Left and Right.
func (r Rectangle) Width() int { return r.Right - r.Left + 1 }

// Height is the inclusive pixel count between Top and Bottom.
func (r Rectangle) Height() int { return r.Bottom - r.Top + 1 }

// Center returns the midpoint in pixel space.
func (r Rectangle) Center() image.Point {
	return image.Pt((r.Left+r.Right)/2, (r.Top+r.Bottom)/2)
}

// Image converts to an image.Rectangle (exclusive max corner).
func (r Rectangle) Image() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right+1, r.Bottom+1)
}

// ScaleFactor is the ratio of physical device pixels to logical pixels,
// kept as a reduced fraction so fractional monitor scales stay exact.
type ScaleFactor struct {
	Physical int
	Logical  int
}

// NewScaleFactor reduces physical/logical. Non-positive parts yield 1:1.
func NewScaleFactor(physical, logical int) ScaleFactor {
	if physical <= 0 || logical <= 0 {
		return ScaleFactor{Physical: 1, Logical: 1}
	}
	g := gcd(physical, logical)
	return ScaleFactor{Physical: physical / g, Logical: logical / g}
}

// ScaleForMonitor derives the factor from a monitor's physical width and its
// fractional scale: the logical width is the physical width divided by the
// scale, rounded, as compositors lay out outputs on integer logical sizes.
func ScaleForMonitor(physicalWidth int, scale float64) ScaleFactor {
	if physicalWidth <= 0 || scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return NewScaleFactor(1, 1)
	}
	return NewScaleFactor(physicalWidth, int(math.Round(float64(physicalWidth)/scale)))
}

// IsZero reports whether the factor is unset.
func (s ScaleFactor) IsZero() bool { return s.Physical == 0 || s.Logical == 0 }

// ToLogical converts a physical distance to logical pixels, rounded.
func (s ScaleFactor) ToLogical(px int) int {
	if s.IsZero() {
		return px
	}
	return int(math.Round(float64(px) * float64(s.Logical) / float64(s.Physical)))
}

// ToPhysical converts a surface-local logical coordinate to the physical
// pixel that contains it.
func (s ScaleFactor) ToPhysical(logical float64) int {
	if s.IsZero() {
		return int(math.Floor(logical))
	}
	return int(math.Floor(logical * float64(s.Physical) / float64(s.Logical)))
}

// Integer returns the factor rounded up to a whole buffer scale, for
// surfaces that cannot be given a viewport.
func (s ScaleFactor) Integer() int {
	if s.IsZero() {
		return 1
	}
	return max(1, (s.Physical+s.Logical-1)/s.Logical)
}

func (s ScaleFactor) String() string {
	return fmt.Sprintf("%d/%d", s.Physical, s.Logical)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// DimensionLabel formats a physical width and height as logical "W x H".
func DimensionLabel(width, height int, s ScaleFactor) string {
	return fmt.Sprintf("%d x %d", s.ToLogical(width), s.ToLogical(height))
}
