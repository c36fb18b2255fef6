package render

import (
	"image"

	"github.com/t4t5/hypruler/internal/detection"
	"github.com/t4t5/hypruler/internal/imaging"
)

// Sizes in physical pixels.
const (
	lineWidth     = 2
	endCapSize    = 16
	crosshairSize = 15

	// Summary label offset from the cursor in auto mode.
	summaryOffsetX = 95
	summaryOffsetY = 40

	// Distance from the screen edge at which the summary label flips to the
	// other side of the cursor.
	flipThresholdX = 200
	flipThresholdY = 100

	// A locked rectangle at least this large carries its label inside.
	insideMinWidth  = 150
	insideMinHeight = 50

	// Gap between a small rectangle and its label.
	outsideOffset = 30

	// Arms at least this long carry their distance label beside the
	// midpoint; shorter arms carry it just past the end cap.
	armLabelInlineLength = 60
	armLabelGap          = 10
)

// span holds the content region around the cursor. Sides without an edge fall
// back to just outside the screen, so the span covers up to the border.
type span struct {
	left, right, up, down int
}

func autoSpan(edges detection.Edges, width, height int) span {
	s := span{left: -1, right: width, up: -1, down: height}
	if edges.Left != nil {
		s.left = edges.Left.Offset
	}
	if edges.Right != nil {
		s.right = edges.Right.Offset
	}
	if edges.Up != nil {
		s.up = edges.Up.Offset
	}
	if edges.Down != nil {
		s.down = edges.Down.Offset
	}
	return s
}

// Width is the number of pixels strictly between the left and right edges.
func (s span) Width() int { return s.right - s.left - 1 }

// Height is the number of pixels strictly between the up and down edges.
func (s span) Height() int { return s.down - s.up - 1 }

// summaryLabelCenter places the auto-mode "W x H" label below and to the
// right of the cursor, flipping near the right and bottom screen edges.
func summaryLabelCenter(cursor image.Point, width, height int) image.Point {
	x := cursor.X + summaryOffsetX
	if cursor.X > width-flipThresholdX {
		x = cursor.X - summaryOffsetX
	}
	y := cursor.Y + summaryOffsetY
	if cursor.Y > height-flipThresholdY {
		y = cursor.Y - summaryOffsetY
	}
	return image.Pt(x, y)
}

// rectLabelCenter centers the label inside a large rectangle; a small one
// gets it below, or above when below would run into the bottom edge.
func rectLabelCenter(r imaging.Rectangle, height int) image.Point {
	c := r.Center()
	if r.Width() >= insideMinWidth && r.Height() >= insideMinHeight {
		return c
	}
	if r.Bottom+outsideOffset > height-flipThresholdY {
		return image.Pt(c.X, r.Top-outsideOffset)
	}
	return image.Pt(c.X, r.Bottom+outsideOffset)
}

// centered returns the top-left corner that centers a w×h box on c.
func centered(c image.Point, w, h int) image.Point {
	return image.Pt(c.X-w/2, c.Y-h/2)
}
