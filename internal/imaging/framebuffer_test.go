package imaging

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestNewFramebuffer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		w, h, s int
		format  PixelFormat
		n       int
		wantErr bool
	}{
		{"valid", 2, 2, 8, FormatXRGB8888, 16, false},
		{"padded stride", 2, 2, 12, FormatARGB8888, 20, false},
		{"unsupported format", 2, 2, 8, PixelFormat(0x30323452), 16, true},
		{"zero width", 0, 2, 8, FormatXRGB8888, 16, true},
		{"short stride", 2, 2, 4, FormatXRGB8888, 16, true},
		{"short data", 2, 2, 8, FormatXRGB8888, 15, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFramebuffer(tt.w, tt.h, tt.s, tt.format, make([]byte, tt.n))
			if (err != nil) != tt.wantErr {
				t.Errorf("error: got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromImage(t *testing.T) {
	img := rgbaImage(4, 4, quadrants(4, 4))
	fb := FromImage(img)

	if fb.Width != 4 || fb.Height != 4 || fb.Stride != 16 {
		t.Fatalf("geometry: got %dx%d stride %d", fb.Width, fb.Height, fb.Stride)
	}
	if fb.Format != FormatABGR8888 {
		t.Errorf("Format: got %s, want abgr8888", fb.Format)
	}

	r, g, b := fb.RGB(3, 0) // green quadrant
	if r != 0 || g != 255 || b != 0 {
		t.Errorf("RGB(3,0): got (%d,%d,%d), want (0,255,0)", r, g, b)
	}
}

func TestFromImage_SubImageOrigin(t *testing.T) {
	img := rgbaImage(8, 8, quadrants(8, 8))
	sub := img.SubImage(image.Rect(4, 4, 8, 8)) // white quadrant only

	fb := FromImage(sub)
	if fb.Width != 4 || fb.Height != 4 {
		t.Fatalf("geometry: got %dx%d", fb.Width, fb.Height)
	}
	if r, g, b := fb.RGB(0, 0); r != 255 || g != 255 || b != 255 {
		t.Errorf("RGB(0,0): got (%d,%d,%d), want white", r, g, b)
	}
}

func TestBackground_NativeIsRowCopy(t *testing.T) {
	pix := []byte{
		1, 2, 3, 0, 4, 5, 6, 0, 0xAA, 0xAA, 0xAA, 0xAA,
		7, 8, 9, 0, 10, 11, 12, 0, 0xAA, 0xAA, 0xAA, 0xAA,
	}
	fb, err := NewFramebuffer(2, 2, 12, FormatXRGB8888, pix)
	if err != nil {
		t.Fatalf("NewFramebuffer failed: %v", err)
	}

	got := fb.Background()
	want := []byte{
		1, 2, 3, 255, 4, 5, 6, 255,
		7, 8, 9, 255, 10, 11, 12, 255,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Background:\n got %v\nwant %v", got, want)
	}
}

func TestBackground_SwizzlesBGROrder(t *testing.T) {
	fb := FromImage(rgbaImage(1, 1, solid(color.RGBA{10, 20, 30, 255})))

	got := fb.Background()
	want := []byte{30, 20, 10, 255}
	if !bytes.Equal(got, want) {
		t.Errorf("Background: got %v, want %v", got, want)
	}
}

func TestFlipVertical(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 3))
	img.Set(0, 0, color.RGBA{1, 1, 1, 255})
	img.Set(0, 1, color.RGBA{2, 2, 2, 255})
	img.Set(0, 2, color.RGBA{3, 3, 3, 255})

	flipped := FromImage(img).FlipVertical()

	for y, want := range []uint8{3, 2, 1} {
		if r, _, _ := flipped.RGB(0, y); r != want {
			t.Errorf("row %d: got %d, want %d", y, r, want)
		}
	}
}

func TestPixelFormat_String(t *testing.T) {
	if FormatXBGR8888.String() != "xbgr8888" {
		t.Errorf("got %s", FormatXBGR8888)
	}
	if PixelFormat(7).String() != "format(0x00000007)" {
		t.Errorf("got %s", PixelFormat(7))
	}
}
