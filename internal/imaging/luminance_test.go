package imaging

import (
	"image"
	"image/color"
	"testing"
)

var allFormats = []PixelFormat{FormatARGB8888, FormatXRGB8888, FormatABGR8888, FormatXBGR8888}

type pattern func(x, y int) color.RGBA

func solid(c color.RGBA) pattern {
	return func(int, int) color.RGBA { return c }
}

// quadrants is red top left, green top right, blue bottom left and white
// bottom right.
func quadrants(width, height int) pattern {
	return func(x, y int) color.RGBA {
		left, top := x < width/2, y < height/2
		switch {
		case left && top:
			return color.RGBA{255, 0, 0, 255}
		case top:
			return color.RGBA{0, 255, 0, 255}
		case left:
			return color.RGBA{0, 0, 255, 255}
		}
		return color.RGBA{255, 255, 255, 255}
	}
}

// frameIn lays p out in format's byte order, the way a compositor hands
// over a screencopy buffer.
func frameIn(t *testing.T, format PixelFormat, width, height int, p pattern) *Framebuffer {
	t.Helper()
	stride := width * 4
	pix := make([]byte, stride*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := p(x, y)
			px := pix[y*stride+x*4:]
			if format.Native() {
				px[0], px[1], px[2] = c.B, c.G, c.R
			} else {
				px[0], px[1], px[2] = c.R, c.G, c.B
			}
			if format == FormatARGB8888 || format == FormatABGR8888 {
				px[3] = c.A
			}
		}
	}
	fb, err := NewFramebuffer(width, height, stride, format, pix)
	if err != nil {
		t.Fatalf("NewFramebuffer(%s): %v", format, err)
	}
	return fb
}

// rgbaImage is p as a Go image, for the FromImage path.
func rgbaImage(width, height int, p pattern) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, p(x, y))
		}
	}
	return img
}

func TestComputeLuminance_Dimensions(t *testing.T) {
	sizes := []struct{ w, h int }{{1, 1}, {10, 10}, {37, 5}, {3, 64}}

	for _, sz := range sizes {
		field := ComputeLuminance(frameIn(t, FormatXRGB8888, sz.w, sz.h, quadrants(sz.w, sz.h)))

		if field.Width != sz.w || field.Height != sz.h {
			t.Errorf("dimensions: got %dx%d, want %dx%d", field.Width, field.Height, sz.w, sz.h)
		}
		if len(field.Pix) != sz.w*sz.h {
			t.Errorf("len(Pix): got %d, want %d", len(field.Pix), sz.w*sz.h)
		}
	}
}

func TestComputeLuminance_KnownColors(t *testing.T) {
	tests := []struct {
		name  string
		color color.RGBA
		want  uint8
	}{
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"pure red", color.RGBA{255, 0, 0, 255}, 76},
		{"pure green", color.RGBA{0, 255, 0, 255}, 149},
		{"pure blue", color.RGBA{0, 0, 255, 255}, 29},
		{"gray", color.RGBA{128, 128, 128, 255}, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, format := range allFormats {
				field := ComputeLuminance(frameIn(t, format, 4, 4, solid(tt.color)))
				if got := field.At(2, 2); got != tt.want {
					t.Errorf("%s luminance: got %d, want %d", format, got, tt.want)
				}
			}
		})
	}
}

func TestComputeLuminance_FormatsAgree(t *testing.T) {
	// The same picture stored in each byte order must give the same field.
	const w, h = 6, 4
	want := ComputeLuminance(FromImage(rgbaImage(w, h, quadrants(w, h))))

	for _, format := range allFormats {
		t.Run(format.String(), func(t *testing.T) {
			got := ComputeLuminance(frameIn(t, format, w, h, quadrants(w, h)))
			for i := range want.Pix {
				if got.Pix[i] != want.Pix[i] {
					t.Fatalf("Pix[%d] (%d,%d): got %d, want %d", i, i%w, i/w, got.Pix[i], want.Pix[i])
				}
			}
			if v := got.At(w-1, 0); v != luma(0, 255, 0) {
				t.Errorf("green quadrant: got %d, want %d", v, luma(0, 255, 0))
			}
		})
	}
}

func TestComputeLuminance_Stride(t *testing.T) {
	// Two pixels per row with 4 bytes of row padding.
	pix := []byte{
		0, 0, 0, 0, 255, 255, 255, 0, 9, 9, 9, 9,
		255, 255, 255, 0, 0, 0, 0, 0, 9, 9, 9, 9,
	}
	fb, err := NewFramebuffer(2, 2, 12, FormatXRGB8888, pix)
	if err != nil {
		t.Fatalf("NewFramebuffer failed: %v", err)
	}
	field := ComputeLuminance(fb)

	want := []uint8{0, 255, 255, 0}
	for i, v := range want {
		if field.Pix[i] != v {
			t.Errorf("Pix[%d]: got %d, want %d", i, field.Pix[i], v)
		}
	}
}

func TestLuminanceField_At_OutOfBounds(t *testing.T) {
	field := ComputeLuminance(frameIn(t, FormatXRGB8888, 5, 5, solid(color.RGBA{255, 255, 255, 255})))

	points := []image.Point{{-1, 0}, {0, -1}, {5, 0}, {0, 5}, {100, 100}}
	for _, p := range points {
		if got := field.At(p.X, p.Y); got != 0 {
			t.Errorf("At(%d,%d): got %d, want 0", p.X, p.Y, got)
		}
		if field.In(p.X, p.Y) {
			t.Errorf("In(%d,%d) should be false", p.X, p.Y)
		}
	}
}

func TestLuminanceField_Clamp(t *testing.T) {
	field := &LuminanceField{Width: 10, Height: 4, Pix: make([]uint8, 40)}

	tests := []struct {
		in, want image.Point
	}{
		{image.Pt(-5, -5), image.Pt(0, 0)},
		{image.Pt(3, 2), image.Pt(3, 2)},
		{image.Pt(10, 4), image.Pt(9, 3)},
		{image.Pt(50, 1), image.Pt(9, 1)},
	}

	for _, tt := range tests {
		if got := field.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}
