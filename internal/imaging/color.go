package imaging

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a hex colour string like "#E74C3C", "#e74c3c80" or
// "#f00". A trailing two-digit alpha is optional; without it the colour is
// opaque. The returned colour is not premultiplied.
//
// # Errors
//
//   - Returns error for empty strings
//   - Returns error if the RGB part is not a valid 3- or 6-digit hex colour
//   - Returns error if the alpha suffix is not valid hex
func ParseColor(hex string) (color.NRGBA, error) {
	s := strings.TrimSpace(hex)
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in %q: %w", hex, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// WithAlpha returns c with its alpha replaced.
func WithAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}

// Lighten moves c towards white in HSL lightness by amount (0-1), keeping
// hue and saturation.
func Lighten(c color.NRGBA, amount float64) color.NRGBA {
	cf, ok := colorful.MakeColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	if !ok {
		return c
	}
	h, s, l := cf.Hsl()
	l += amount
	if l > 1 {
		l = 1
	}
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: c.A}
}
