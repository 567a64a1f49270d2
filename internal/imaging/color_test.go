package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSampleColor(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		name    string
		x, y    int
		wantHex string
		wantRGB RGBColor
		wantHSL HSLColor
	}{
		{"red quadrant", 10, 10, "#ff0000", RGBColor{255, 0, 0}, HSLColor{0, 100, 50}},
		{"green quadrant", 75, 10, "#00ff00", RGBColor{0, 255, 0}, HSLColor{120, 100, 50}},
		{"blue quadrant", 10, 75, "#0000ff", RGBColor{0, 0, 255}, HSLColor{240, 100, 50}},
		{"white quadrant", 75, 75, "#ffffff", RGBColor{255, 255, 255}, HSLColor{0, 0, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := SampleColor(img, tt.x, tt.y)
			if err != nil {
				t.Fatalf("SampleColor failed: %v", err)
			}
			if result.Hex != tt.wantHex {
				t.Errorf("Hex: got %s, want %s", result.Hex, tt.wantHex)
			}
			if result.RGB != tt.wantRGB {
				t.Errorf("RGB: got %+v, want %+v", result.RGB, tt.wantRGB)
			}
			if result.RGBA.A != 255 {
				t.Errorf("alpha: got %d, want 255", result.RGBA.A)
			}
			if result.HSL != tt.wantHSL {
				t.Errorf("HSL: got %+v, want %+v", result.HSL, tt.wantHSL)
			}
		})
	}
}

func TestSampleColor_Translucent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 128})

	result, err := SampleColor(img, 0, 0)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if result.RGB != (RGBColor{200, 100, 50}) {
		t.Errorf("RGB should be non-premultiplied: got %+v", result.RGB)
	}
	if result.RGBA.A != 128 {
		t.Errorf("alpha: got %d, want 128", result.RGBA.A)
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(10, 10, color.Black)

	for _, pt := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if _, err := SampleColor(img, pt[0], pt[1]); err == nil {
			t.Errorf("SampleColor(%d,%d) should fail", pt[0], pt[1])
		}
	}
}
