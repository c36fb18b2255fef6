package render

import (
	"fmt"
	"image/color"

	"github.com/t4t5/hypruler/internal/imaging"
)

// Palette holds every colour the overlay draws with.
type Palette struct {
	Line            color.NRGBA
	Fill            color.NRGBA
	Snapped         color.NRGBA
	LabelBackground color.NRGBA
	LabelText       color.NRGBA
}

const fillAlpha = 60

// NewPalette derives the palette from one accent colour in hex.
func NewPalette(accent string) (Palette, error) {
	line, err := imaging.ParseColor(accent)
	if err != nil {
		return Palette{}, fmt.Errorf("accent color: %w", err)
	}
	line.A = 255
	return Palette{
		Line:            line,
		Fill:            imaging.WithAlpha(line, fillAlpha),
		Snapped:         imaging.Lighten(line, 0.15),
		LabelBackground: color.NRGBA{R: 40, G: 40, B: 40, A: 230},
		LabelText:       color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}, nil
}

// DefaultPalette uses the built-in red accent.
func DefaultPalette() Palette {
	p, _ := NewPalette("#e74c3c")
	return p
}
