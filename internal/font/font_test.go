package font

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/t4t5/hypruler/internal/apperr"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuiltin_Rasterize(t *testing.T) {
	face, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}
	defer face.Close()

	short := face.Rasterize("1")
	long := face.Rasterize("1920 x 1080")

	if short.Bounds().Dy() != face.Height() || long.Bounds().Dy() != face.Height() {
		t.Errorf("mask height: got %d and %d, want %d", short.Bounds().Dy(), long.Bounds().Dy(), face.Height())
	}
	if long.Bounds().Dx() <= short.Bounds().Dx() {
		t.Errorf("longer text should be wider: %d vs %d", long.Bounds().Dx(), short.Bounds().Dx())
	}
	if face.Height() < Size || face.Height() > 2*Size {
		t.Errorf("line height %d out of range for size %d", face.Height(), Size)
	}

	inked := 0
	for _, a := range long.Pix {
		if a > 0 {
			inked++
		}
	}
	if inked == 0 {
		t.Error("mask has no coverage")
	}
}

func TestBuiltin_EmptyText(t *testing.T) {
	face, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}
	if w := face.Rasterize("").Bounds().Dx(); w != 0 {
		t.Errorf("empty text width: got %d", w)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "go.ttf")
	if err := os.WriteFile(good, goregular.TTF, 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	bad := filepath.Join(dir, "bad.ttf")
	if err := os.WriteFile(bad, []byte("not a font"), 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid file", good, false},
		{"garbage", bad, true},
		{"missing", filepath.Join(dir, "missing.ttf"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			face, err := Load(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperr.ErrFontUnavailable) {
				t.Errorf("error should carry FONT_UNAVAILABLE, got %v", err)
			}
			if face != nil {
				face.Close()
			}
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	face, err := Resolve(ctx, BuiltinName, discardLogger())
	if err != nil || face == nil {
		t.Fatalf("Resolve(builtin): %v", err)
	}

	if _, err := Resolve(ctx, filepath.Join(t.TempDir(), "nope.otf"), discardLogger()); err == nil {
		t.Error("Resolve with a missing path should fail")
	}
}

func TestDiscover_CommandFailure(t *testing.T) {
	orig := discoverCommand
	defer func() { discoverCommand = orig }()

	discoverCommand = []string{filepath.Join(t.TempDir(), "no-such-fc-match")}

	_, err := Discover(context.Background())
	if apperr.CodeOf(err) != apperr.FontUnavailable {
		t.Errorf("expected FONT_UNAVAILABLE, got %v", err)
	}

	if _, err := Resolve(context.Background(), "", discardLogger()); err == nil {
		t.Error("Resolve should fail when discovery fails")
	}
}
