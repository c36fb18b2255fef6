package imaging

import "image"

// LuminanceField is a per-pixel brightness map with the same dimensions as
// the Framebuffer it was computed from. It is read-only after construction
// and is the substrate for every edge query.
type LuminanceField struct {
	Width  int
	Height int
	Pix    []uint8 // row-major, Width*Height entries
}

// ComputeLuminance derives the brightness map in a single pass.
//
// # Algorithm
//
// Each element is the ITU-R BT.601 weighted sum of the pixel's channels,
// computed in integer arithmetic:
//
//	Y = (299*R + 587*G + 114*B) / 1000
//
// The weights sum to 1000, so Y never exceeds 255; the result is clamped
// regardless.
func ComputeLuminance(fb *Framebuffer) *LuminanceField {
	f := &LuminanceField{
		Width:  fb.Width,
		Height: fb.Height,
		Pix:    make([]uint8, fb.Width*fb.Height),
	}
	for y := 0; y < fb.Height; y++ {
		row := f.Pix[y*fb.Width : (y+1)*fb.Width]
		for x := range row {
			r, g, b := fb.RGB(x, y)
			row[x] = luma(r, g, b)
		}
	}
	return f
}

func luma(r, g, b uint8) uint8 {
	v := (299*int(r) + 587*int(g) + 114*int(b)) / 1000
	return uint8(clamp(v, 0, 255))
}

// At returns the luminance at (x, y), or 0 outside the field.
func (f *LuminanceField) At(x, y int) uint8 {
	if !f.In(x, y) {
		return 0
	}
	return f.Pix[y*f.Width+x]
}

// In reports whether (x, y) lies inside the field.
func (f *LuminanceField) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.Width && y < f.Height
}

// Clamp moves p to the nearest point inside the field.
func (f *LuminanceField) Clamp(p image.Point) image.Point {
	return image.Pt(clamp(p.X, 0, f.Width-1), clamp(p.Y, 0, f.Height-1))
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
