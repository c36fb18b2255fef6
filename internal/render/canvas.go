package render

import (
	"image"
	"image/color"
)

// Canvas is a view of a surface buffer in ARGB8888 little-endian layout:
// bytes B, G, R, A per pixel. The destination is treated as opaque, so
// blending never changes alpha.
type Canvas struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
}

// NewCanvas allocates a packed canvas.
func NewCanvas(width, height int) Canvas {
	return Canvas{
		Pix:    make([]byte, width*height*4),
		Width:  width,
		Height: height,
		Stride: width * 4,
	}
}

// Bounds returns the canvas rectangle anchored at the origin.
func (c Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

// At returns the pixel at (x, y). Used by tests and debugging.
func (c Canvas) At(x, y int) color.NRGBA {
	if !(image.Point{x, y}.In(c.Bounds())) {
		return color.NRGBA{}
	}
	i := y*c.Stride + x*4
	return color.NRGBA{R: c.Pix[i+2], G: c.Pix[i+1], B: c.Pix[i], A: c.Pix[i+3]}
}

// CopyRows fills the canvas from packed ARGB8888 rows of the same size.
func (c Canvas) CopyRows(src []byte) {
	row := c.Width * 4
	for y := 0; y < c.Height; y++ {
		copy(c.Pix[y*c.Stride:y*c.Stride+row], src[y*row:(y+1)*row])
	}
}

// FillRect blends col over every pixel of r that lies on the canvas.
func (c Canvas) FillRect(r image.Rectangle, col color.NRGBA) {
	r = r.Intersect(c.Bounds())
	if r.Empty() || col.A == 0 {
		return
	}
	a := uint32(col.A)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := y*c.Stride + r.Min.X*4
		for x := r.Min.X; x < r.Max.X; x++ {
			c.blend(i, col, a)
			i += 4
		}
	}
}

// DrawRGBA composites a premultiplied image with its Min corner at at.
func (c Canvas) DrawRGBA(src *image.RGBA, at image.Point) {
	sb := src.Bounds()
	dst := sb.Sub(sb.Min).Add(at).Intersect(c.Bounds())
	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		for x := dst.Min.X; x < dst.Max.X; x++ {
			s := src.PixOffset(x-at.X+sb.Min.X, y-at.Y+sb.Min.Y)
			sa := uint32(src.Pix[s+3])
			if sa == 0 {
				continue
			}
			i := y*c.Stride + x*4
			inv := 255 - sa
			c.Pix[i] = uint8(uint32(src.Pix[s+2]) + uint32(c.Pix[i])*inv/255)
			c.Pix[i+1] = uint8(uint32(src.Pix[s+1]) + uint32(c.Pix[i+1])*inv/255)
			c.Pix[i+2] = uint8(uint32(src.Pix[s]) + uint32(c.Pix[i+2])*inv/255)
		}
	}
}

// blend mixes col at coverage a (0-255) into the pixel at byte offset i.
func (c Canvas) blend(i int, col color.NRGBA, a uint32) {
	if a >= 255 {
		c.Pix[i], c.Pix[i+1], c.Pix[i+2] = col.B, col.G, col.R
		return
	}
	inv := 255 - a
	c.Pix[i] = uint8((uint32(col.B)*a + uint32(c.Pix[i])*inv) / 255)
	c.Pix[i+1] = uint8((uint32(col.G)*a + uint32(c.Pix[i+1])*inv) / 255)
	c.Pix[i+2] = uint8((uint32(col.R)*a + uint32(c.Pix[i+2])*inv) / 255)
}
