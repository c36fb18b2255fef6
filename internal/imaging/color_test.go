package imaging

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  color.NRGBA
	}{
		{"accent", "#e74c3c", color.NRGBA{231, 76, 60, 255}},
		{"uppercase", "#E74C3C", color.NRGBA{231, 76, 60, 255}},
		{"no hash", "e74c3c", color.NRGBA{231, 76, 60, 255}},
		{"short form", "#f00", color.NRGBA{255, 0, 0, 255}},
		{"with alpha", "#e74c3c80", color.NRGBA{231, 76, 60, 128}},
		{"surrounding space", "  #000000 ", color.NRGBA{0, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if err != nil {
				t.Fatalf("ParseColor(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseColor_Invalid(t *testing.T) {
	inputs := []string{"", "   ", "#gggggg", "#12345", "#e74c3czz", "red"}

	for _, in := range inputs {
		if _, err := ParseColor(in); err == nil {
			t.Errorf("ParseColor(%q) should fail", in)
		}
	}
}

func TestWithAlpha(t *testing.T) {
	c := WithAlpha(color.NRGBA{231, 76, 60, 255}, 60)
	if c != (color.NRGBA{231, 76, 60, 60}) {
		t.Errorf("WithAlpha: got %v", c)
	}
}

func TestLighten(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 200}

	got := Lighten(red, 0.2)
	if got.R != 255 {
		t.Errorf("R: got %d, want 255", got.R)
	}
	if got.G <= red.G || got.G != got.B {
		t.Errorf("G/B should rise together: got (%d,%d)", got.G, got.B)
	}
	if got.A != red.A {
		t.Errorf("alpha should be preserved: got %d, want %d", got.A, red.A)
	}

	if white := Lighten(color.NRGBA{255, 255, 255, 255}, 0.5); white != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("white should stay white, got %v", white)
	}
}
