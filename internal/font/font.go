// Package font loads the face used for overlay labels and rasterizes label
// text into coverage masks.
package font

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/t4t5/hypruler/internal/apperr"
)

// Size is the label text size in pixels.
const Size = 24

// BuiltinName selects the embedded Go Regular face instead of a system font.
const BuiltinName = "builtin"

// discoverCommand asks fontconfig for the default sans-serif file.
var discoverCommand = []string{"fc-match", "-f", "%{file}", "sans-serif"}

// Face rasterizes text at Size. It implements render.Glyphs.
type Face struct {
	face   xfont.Face
	ascent int
	height int
}

// Resolve picks the face named by setting: BuiltinName, a font file path, or
// (when empty) whatever fontconfig reports for sans-serif.
func Resolve(ctx context.Context, setting string, logger *slog.Logger) (*Face, error) {
	switch setting {
	case BuiltinName:
		logger.Debug("using builtin font")
		return Builtin()
	case "":
		path, err := Discover(ctx)
		if err != nil {
			return nil, err
		}
		logger.Debug("discovered font", "path", path)
		return Load(path)
	default:
		return Load(setting)
	}
}

// Discover returns the path of the system's default sans-serif font.
func Discover(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, discoverCommand[0], discoverCommand[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", apperr.Wrap(apperr.FontUnavailable, err, "font discovery failed: %s", strings.TrimSpace(stderr.String()))
	}
	path := strings.TrimSpace(string(out))
	if path == "" {
		return "", apperr.New(apperr.FontUnavailable, "font discovery returned no file")
	}
	return path, nil
}

// Load parses a TrueType/OpenType file or the first face of a collection.
func Load(path string) (*Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.FontUnavailable, err, "failed to read font")
	}

	f, err := opentype.Parse(data)
	if err != nil {
		coll, cerr := opentype.ParseCollection(data)
		if cerr != nil {
			return nil, apperr.Wrap(apperr.FontUnavailable, err, "failed to parse font %s", path)
		}
		if f, err = coll.Font(0); err != nil {
			return nil, apperr.Wrap(apperr.FontUnavailable, err, "failed to read collection %s", path)
		}
	}
	return newFace(f)
}

// Builtin returns the embedded Go Regular face.
func Builtin() (*Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, apperr.Wrap(apperr.FontUnavailable, err, "failed to parse builtin font")
	}
	return newFace(f)
}

func newFace(f *opentype.Font) (*Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: Size, DPI: 72, Hinting: xfont.HintingFull})
	if err != nil {
		return nil, apperr.Wrap(apperr.FontUnavailable, err, "failed to create face")
	}
	m := face.Metrics()
	return &Face{
		face:   face,
		ascent: m.Ascent.Ceil(),
		height: m.Ascent.Ceil() + m.Descent.Ceil(),
	}, nil
}

// Rasterize draws text into a mask one line tall and exactly as wide as the
// text's advance.
func (f *Face) Rasterize(text string) *image.Alpha {
	d := &xfont.Drawer{Face: f.face}
	w := d.MeasureString(text).Ceil()

	mask := image.NewAlpha(image.Rect(0, 0, w, f.height))
	if w == 0 {
		return mask
	}
	d.Dst = mask
	d.Src = image.Opaque
	d.Dot = fixed.P(0, f.ascent)
	d.DrawString(text)
	return mask
}

// Height returns the line height of rasterized masks.
func (f *Face) Height() int { return f.height }

// Close releases the face.
func (f *Face) Close() error {
	if err := f.face.Close(); err != nil {
		return fmt.Errorf("close face: %w", err)
	}
	return nil
}
