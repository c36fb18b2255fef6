package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
)

// PixelFormat identifies the byte layout of a Framebuffer. Values are the
// wl_shm format codes, which for these formats match the DRM fourcc codes.
type PixelFormat uint32

const (
	FormatARGB8888 PixelFormat = 0
	FormatXRGB8888 PixelFormat = 1
	FormatABGR8888 PixelFormat = 0x34324241
	FormatXBGR8888 PixelFormat = 0x34324258
)

// Supported reports whether the format can be converted to luminance and to
// a display background.
func (f PixelFormat) Supported() bool {
	switch f {
	case FormatARGB8888, FormatXRGB8888, FormatABGR8888, FormatXBGR8888:
		return true
	}
	return false
}

// Native reports whether the format has the same memory layout as the
// overlay's ARGB8888 surface buffer (B, G, R, A/X in memory order).
func (f PixelFormat) Native() bool {
	return f == FormatARGB8888 || f == FormatXRGB8888
}

func (f PixelFormat) String() string {
	switch f {
	case FormatARGB8888:
		return "argb8888"
	case FormatXRGB8888:
		return "xrgb8888"
	case FormatABGR8888:
		return "abgr8888"
	case FormatXBGR8888:
		return "xbgr8888"
	}
	return fmt.Sprintf("format(0x%08x)", uint32(f))
}

// Framebuffer is a physical-resolution pixel grid captured from an output.
// It is never mutated after construction.
type Framebuffer struct {
	Width  int
	Height int
	Stride int
	Format PixelFormat
	Pix    []byte
}

// NewFramebuffer validates the geometry against the pixel data.
//
// # Errors
//
//   - Returns error if the format is not one of the four 32-bit formats
//   - Returns error if width or height is not positive
//   - Returns error if stride is smaller than width*4 or Pix is too short
func NewFramebuffer(width, height, stride int, format PixelFormat, pix []byte) (*Framebuffer, error) {
	if !format.Supported() {
		return nil, fmt.Errorf("unsupported pixel format %s", format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid framebuffer size %dx%d", width, height)
	}
	if stride < width*4 {
		return nil, fmt.Errorf("stride %d smaller than row size %d", stride, width*4)
	}
	if len(pix) < stride*(height-1)+width*4 {
		return nil, fmt.Errorf("pixel data too short: %d bytes for %dx%d stride %d", len(pix), width, height, stride)
	}
	return &Framebuffer{Width: width, Height: height, Stride: stride, Format: format, Pix: pix}, nil
}

// FromImage copies any image into a Framebuffer in ABGR8888 layout (R, G, B,
// A in memory order, which is the layout of *image.RGBA).
func FromImage(img image.Image) *Framebuffer {
	rgba := clone.AsShallowRGBA(img)
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		copy(pix[y*w*4:], src)
	}
	return &Framebuffer{Width: w, Height: h, Stride: w * 4, Format: FormatABGR8888, Pix: pix}
}

// RGB returns the colour channels of the pixel at (x, y). The caller must
// keep (x, y) inside Width x Height.
func (fb *Framebuffer) RGB(x, y int) (r, g, b uint8) {
	i := y*fb.Stride + x*4
	p := fb.Pix[i : i+4 : i+4]
	if fb.Format.Native() {
		return p[2], p[1], p[0]
	}
	return p[0], p[1], p[2]
}

// Background converts the framebuffer once into the packed ARGB8888 layout
// the overlay surface is submitted in, with every pixel fully opaque. Native
// formats are copied row by row; the BGR-ordered ones are swizzled.
func (fb *Framebuffer) Background() []byte {
	row := fb.Width * 4
	out := make([]byte, row*fb.Height)
	for y := 0; y < fb.Height; y++ {
		src := fb.Pix[y*fb.Stride : y*fb.Stride+row]
		dst := out[y*row : (y+1)*row]
		if fb.Format.Native() {
			copy(dst, src)
			for i := 3; i < row; i += 4 {
				dst[i] = 0xff
			}
			continue
		}
		for i := 0; i < row; i += 4 {
			dst[i] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i]
			dst[i+3] = 0xff
		}
	}
	return out
}

// FlipVertical returns a copy with the row order reversed. Screencopy frames
// flagged y_invert are stored bottom-up.
func (fb *Framebuffer) FlipVertical() *Framebuffer {
	pix := make([]byte, len(fb.Pix))
	for y := 0; y < fb.Height; y++ {
		src := fb.Pix[y*fb.Stride : y*fb.Stride+fb.Width*4]
		copy(pix[(fb.Height-1-y)*fb.Stride:], src)
	}
	return &Framebuffer{Width: fb.Width, Height: fb.Height, Stride: fb.Stride, Format: fb.Format, Pix: pix}
}
