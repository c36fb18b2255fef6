package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"
)

// Glyphs turns a string into a coverage mask at a fixed size. The mask's
// bounds are the tight text box.
type Glyphs interface {
	Rasterize(text string) *image.Alpha
}

const (
	labelPadX      = 12
	labelPadY      = 6
	labelRadius    = 6
	labelMinHeight = 36
	labelCacheSize = 256
)

// labelCache keeps rendered pills by text; auto mode redraws the same few
// numbers many times per second.
type labelCache struct {
	glyphs  Glyphs
	palette Palette
	entries map[string]*image.RGBA
}

func newLabelCache(glyphs Glyphs, palette Palette) *labelCache {
	return &labelCache{glyphs: glyphs, palette: palette, entries: make(map[string]*image.RGBA)}
}

// get returns the premultiplied label image for text, anchored at (0,0).
func (c *labelCache) get(text string) *image.RGBA {
	if img, ok := c.entries[text]; ok {
		return img
	}
	if len(c.entries) >= labelCacheSize {
		clear(c.entries)
	}
	img := c.build(text)
	c.entries[text] = img
	return img
}

func (c *labelCache) build(text string) *image.RGBA {
	var glyph *image.Alpha
	if c.glyphs != nil {
		glyph = c.glyphs.Rasterize(text)
	}
	tw, th := 0, 0
	if glyph != nil {
		tw, th = glyph.Bounds().Dx(), glyph.Bounds().Dy()
	}

	w := tw + 2*labelPadX
	h := max(labelMinHeight, th+2*labelPadY)

	canvas := imaging.New(w, h, color.NRGBA{})
	pill := roundedRect(w, h, labelRadius)
	draw.DrawMask(canvas, canvas.Bounds(), image.NewUniform(c.palette.LabelBackground), image.Point{}, pill, image.Point{}, draw.Over)

	if glyph != nil {
		at := image.Pt(labelPadX, (h-th)/2)
		dst := image.Rectangle{Min: at, Max: at.Add(image.Pt(tw, th))}
		draw.DrawMask(canvas, dst, image.NewUniform(c.palette.LabelText), image.Point{}, glyph, glyph.Bounds().Min, draw.Over)
	}

	return clone.AsShallowRGBA(canvas)
}

// roundedRect rasterizes an anti-aliased pill covering a w×h box.
func roundedRect(w, h, radius int) *image.Alpha {
	fw, fh, r := float32(w), float32(h), float32(radius)

	z := vector.NewRasterizer(w, h)
	z.MoveTo(r, 0)
	z.LineTo(fw-r, 0)
	z.QuadTo(fw, 0, fw, r)
	z.LineTo(fw, fh-r)
	z.QuadTo(fw, fh, fw-r, fh)
	z.LineTo(r, fh)
	z.QuadTo(0, fh, 0, fh-r)
	z.LineTo(0, r)
	z.QuadTo(0, 0, r, 0)
	z.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}
