package capture

import (
	"image"

	imgio "github.com/disintegration/imaging"

	"github.com/t4t5/hypruler/internal/apperr"
	"github.com/t4t5/hypruler/internal/imaging"
)

// ImageFile replaces the live frame with a still image from disk, so a saved
// screenshot can be measured on a real output. Outputs still come from
// Source; the image is stretched to the output's mode when the sizes differ.
type ImageFile struct {
	Path   string
	Source Screencopier
}

var _ Screencopier = (*ImageFile)(nil)

// Outputs delegates to the live source.
func (f *ImageFile) Outputs() ([]Output, error) {
	return f.Source.Outputs()
}

// CaptureOutput decodes the file (PNG, JPEG, GIF, BMP or TIFF, honouring EXIF
// orientation) instead of copying out.
func (f *ImageFile) CaptureOutput(out Output) (*imaging.Framebuffer, error) {
	img, err := imgio.Open(f.Path, imgio.AutoOrientation(true))
	if err != nil {
		return nil, apperr.Wrap(apperr.CaptureUnavailable, err, "load %s", f.Path)
	}
	return imaging.FromImage(fitOutput(img, out)), nil
}

func fitOutput(img image.Image, out Output) image.Image {
	b := img.Bounds()
	if out.Width <= 0 || out.Height <= 0 || (b.Dx() == out.Width && b.Dy() == out.Height) {
		return img
	}
	return imgio.Resize(img, out.Width, out.Height, imgio.Lanczos)
}
