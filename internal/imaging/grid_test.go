package imaging

import (
	"image/color"
	"testing"
)

func TestGridOverlay_GridLines(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{0, 0, 0, 255})

	out, err := GridOverlay(img, 25, false, "#FF0000FF")
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", b.Dx(), b.Dy())
	}

	if got := out.NRGBAAt(25, 50); got.R != 255 || got.G != 0 || got.B != 0 {
		t.Errorf("grid line at (25,50): got %v, want red", got)
	}
	if got := out.NRGBAAt(50, 75); got.R != 255 {
		t.Errorf("grid line at (50,75): got %v, want red", got)
	}
	if got := out.NRGBAAt(15, 15); got.R != 0 || got.G != 0 || got.B != 0 {
		t.Errorf("off the grid at (15,15): got %v, want black", got)
	}
}

func TestGridOverlay_Translucent(t *testing.T) {
	img := createInMemoryImage(40, 40, color.RGBA{0, 0, 0, 255})

	out, err := GridOverlay(img, 10, false, "")
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}
	if got := out.NRGBAAt(10, 5); got.R < 100 || got.R > 160 {
		t.Errorf("half-opaque red over black: got %v, want R near 128", got)
	}
}

func TestGridOverlay_Labels(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{0, 0, 255, 255})

	out, err := GridOverlay(img, 50, true, "#00ff00")
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}

	// The label box for "50,50" starts just below and right of the crossing.
	if got := out.NRGBAAt(51, 51); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("label background at (51,51): got %v, want black", got)
	}
	// Top row of the "5" glyph is lit.
	if got := out.NRGBAAt(52, 52); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("label text at (52,52): got %v, want white", got)
	}
}

func TestGridOverlay_Errors(t *testing.T) {
	img := createInMemoryImage(10, 10, color.White)

	if _, err := GridOverlay(img, 0, false, ""); err == nil {
		t.Error("zero spacing should fail")
	}
	if _, err := GridOverlay(img, 5, false, "#zzzzzz"); err == nil {
		t.Error("a malformed color should fail")
	}
}

func TestParseGridColor(t *testing.T) {
	tests := []struct {
		hex     string
		want    color.NRGBA
		opacity float64
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, 1},
		{"#00ff0080", color.NRGBA{0, 255, 0, 255}, 128.0 / 255},
		{"", color.NRGBA{255, 0, 0, 255}, 128.0 / 255},
	}
	for _, tt := range tests {
		c, opacity, err := parseGridColor(tt.hex)
		if err != nil {
			t.Fatalf("parseGridColor(%q) failed: %v", tt.hex, err)
		}
		if c != tt.want || opacity != tt.opacity {
			t.Errorf("parseGridColor(%q): got %v %.3f, want %v %.3f", tt.hex, c, opacity, tt.want, tt.opacity)
		}
	}
}
