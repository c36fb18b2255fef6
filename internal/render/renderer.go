// Package render draws the frozen screenshot and the measurement overlay for
// the current state into an ARGB8888 surface buffer.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/t4t5/hypruler/internal/detection"
	"github.com/t4t5/hypruler/internal/imaging"
	"github.com/t4t5/hypruler/internal/measure"
)

// Renderer owns the pre-converted background and everything needed to draw
// an overlay on top of it. It is used from the session loop only.
type Renderer struct {
	background []byte
	width      int
	height     int
	scale      imaging.ScaleFactor
	palette    Palette
	labels     *labelCache
	draws      int
}

// New creates a renderer for a width×height physical surface. background
// must be packed ARGB8888 of exactly that size.
func New(background []byte, width, height int, scale imaging.ScaleFactor, glyphs Glyphs, palette Palette) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if len(background) < width*height*4 {
		return nil, fmt.Errorf("background too short: %d bytes for %dx%d", len(background), width, height)
	}
	return &Renderer{
		background: background,
		width:      width,
		height:     height,
		scale:      scale,
		palette:    palette,
		labels:     newLabelCache(glyphs, palette),
	}, nil
}

// Draws returns how many times Draw has run.
func (r *Renderer) Draws() int { return r.draws }

// Size returns the physical surface size the renderer draws.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// SetScale replaces the factor used to print logical lengths in labels.
func (r *Renderer) SetScale(s imaging.ScaleFactor) { r.scale = s }

// Draw copies the background into dst and draws the overlay for st.
func (r *Renderer) Draw(dst Canvas, st measure.State) error {
	if dst.Width != r.width || dst.Height != r.height {
		return fmt.Errorf("canvas is %dx%d, renderer expects %dx%d", dst.Width, dst.Height, r.width, r.height)
	}
	if dst.Stride < r.width*4 || len(dst.Pix) < dst.Stride*(r.height-1)+r.width*4 {
		return fmt.Errorf("canvas buffer too small for %dx%d stride %d", r.width, r.height, dst.Stride)
	}
	r.draws++

	dst.CopyRows(r.background)

	switch s := st.(type) {
	case measure.Idle, nil:
	case measure.Auto:
		r.drawAuto(dst, s.Cursor, s.Edges)
	case measure.DragPending:
		r.drawAuto(dst, s.Cursor, s.Edges)
	case measure.Dragging:
		r.drawRect(dst, s.Rect(), [4]bool{})
	case measure.Locked:
		snapped := [4]bool{s.Snap.Top != nil, s.Snap.Left != nil, s.Snap.Bottom != nil, s.Snap.Right != nil}
		r.drawRect(dst, s.Snap.Rect, snapped)
	default:
		return fmt.Errorf("unknown state %T", st)
	}
	return nil
}

// drawAuto draws the crosshair, one arm per found edge and the span label.
func (r *Renderer) drawAuto(dst Canvas, c image.Point, edges detection.Edges) {
	line := r.palette.Line
	sp := autoSpan(edges, r.width, r.height)
	left, right := edges.Left != nil, edges.Right != nil
	up, down := edges.Up != nil, edges.Down != nil

	if left {
		r.hLine(dst, sp.left, c.X, c.Y, line)
		r.vLine(dst, sp.left, c.Y-endCapSize/2, c.Y+endCapSize/2, line)
	}
	if right {
		r.hLine(dst, c.X, sp.right, c.Y, line)
		r.vLine(dst, sp.right, c.Y-endCapSize/2, c.Y+endCapSize/2, line)
	}
	if up {
		r.vLine(dst, c.X, sp.up, c.Y, line)
		r.hLine(dst, c.X-endCapSize/2, c.X+endCapSize/2, sp.up, line)
	}
	if down {
		r.vLine(dst, c.X, c.Y, sp.down, line)
		r.hLine(dst, c.X-endCapSize/2, c.X+endCapSize/2, sp.down, line)
	}

	r.hLine(dst, c.X-crosshairSize, c.X+crosshairSize, c.Y, line)
	r.vLine(dst, c.X, c.Y-crosshairSize, c.Y+crosshairSize, line)

	if left {
		r.armLabel(dst, c, image.Pt(sp.left, c.Y))
	}
	if right {
		r.armLabel(dst, c, image.Pt(sp.right, c.Y))
	}
	if up {
		r.armLabel(dst, c, image.Pt(c.X, sp.up))
	}
	if down {
		r.armLabel(dst, c, image.Pt(c.X, sp.down))
	}

	text := imaging.DimensionLabel(sp.Width(), sp.Height(), r.scale)
	r.label(dst, text, summaryLabelCenter(c, r.width, r.height))
}

// armLabel writes the logical length of the arm from the cursor c to end.
// A long arm gets it beside the midpoint: above a horizontal arm, to the
// right of a vertical one. A short arm gets it past the end cap.
func (r *Renderer) armLabel(dst Canvas, c, end image.Point) {
	d := end.Sub(c)
	horizontal := d.Y == 0
	length := abs(d.X) + abs(d.Y)

	img := r.labels.get(strconv.Itoa(r.scale.ToLogical(length)))
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	var at image.Point
	switch {
	case length >= armLabelInlineLength && horizontal:
		at = image.Pt((c.X+end.X)/2, c.Y-h/2-armLabelGap)
	case length >= armLabelInlineLength:
		at = image.Pt(c.X+w/2+armLabelGap, (c.Y+end.Y)/2)
	case horizontal:
		at = image.Pt(end.X+sign(d.X)*(w/2+armLabelGap), c.Y)
	default:
		at = image.Pt(c.X, end.Y+sign(d.Y)*(h/2+armLabelGap))
	}
	dst.DrawRGBA(img, centered(at, w, h))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

// drawRect draws a translucent rectangle with its outline and size label.
// Sides flagged in snapped (top, left, bottom, right) use the snapped colour.
func (r *Renderer) drawRect(dst Canvas, rect imaging.Rectangle, snapped [4]bool) {
	dst.FillRect(rect.Image(), r.palette.Fill)

	side := func(i int) color.NRGBA {
		if snapped[i] {
			return r.palette.Snapped
		}
		return r.palette.Line
	}
	r.hLine(dst, rect.Left, rect.Right, rect.Top, side(0))
	r.vLine(dst, rect.Left, rect.Top, rect.Bottom, side(1))
	r.hLine(dst, rect.Left, rect.Right, rect.Bottom, side(2))
	r.vLine(dst, rect.Right, rect.Top, rect.Bottom, side(3))

	text := imaging.DimensionLabel(rect.Width(), rect.Height(), r.scale)
	r.label(dst, text, rectLabelCenter(rect, r.height))
}

func (r *Renderer) label(dst Canvas, text string, center image.Point) {
	img := r.labels.get(text)
	dst.DrawRGBA(img, centered(center, img.Bounds().Dx(), img.Bounds().Dy()))
}

// hLine fills a horizontal stroke from x1 to x2 inclusive, centered on y.
func (r *Renderer) hLine(dst Canvas, x1, x2, y int, col color.NRGBA) {
	x1, x2 = min(x1, x2), max(x1, x2)
	top := y - lineWidth/2
	dst.FillRect(image.Rect(x1, top, x2+1, top+lineWidth), col)
}

// vLine fills a vertical stroke from y1 to y2 inclusive, centered on x.
func (r *Renderer) vLine(dst Canvas, x, y1, y2 int, col color.NRGBA) {
	y1, y2 = min(y1, y2), max(y1, y2)
	left := x - lineWidth/2
	dst.FillRect(image.Rect(left, y1, left+lineWidth, y2+1), col)
}
