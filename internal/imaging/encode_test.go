package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSave_RoundTrip(t *testing.T) {
	img := createPatternImage(20, 10)
	path := filepath.Join(t.TempDir(), "nested", "out.png")

	if err := Save(img, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	d, err := NewImageCache().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := d.Image().NRGBAAt(15, 8); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("bottom-right pixel: got %v, want white", got)
	}
}

func TestSave_JPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jpg")
	if err := Save(createInMemoryImage(8, 8, color.Gray{128}), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	d, err := NewImageCache().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.Format != "jpeg" {
		t.Errorf("Format: got %s, want jpeg", d.Format)
	}
}

func TestSave_RejectsWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.webp")
	err := Save(createInMemoryImage(2, 2, color.White), path)
	if !errors.Is(err, ErrUnsupportedOutput) {
		t.Fatalf("got %v, want ErrUnsupportedOutput", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("nothing should be written for a webp path")
	}
	if err := CheckOutput("out.PNG"); err != nil {
		t.Errorf("CheckOutput(out.PNG): %v", err)
	}
}

func TestSaveAnimation(t *testing.T) {
	frames := []image.Image{
		createInMemoryImage(6, 4, color.RGBA{255, 0, 0, 255}),
		createInMemoryImage(6, 4, color.RGBA{0, 0, 255, 255}),
		createInMemoryImage(6, 4, color.RGBA{0, 255, 0, 255}),
	}
	path := filepath.Join(t.TempDir(), "anim.gif")

	err := SaveAnimation(&Animation{Frames: frames, Delays: []int{5, 6, 7}, LoopCount: 2}, path)
	if err != nil {
		t.Fatalf("SaveAnimation failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open animation: %v", err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("failed to decode animation: %v", err)
	}
	if len(g.Image) != 3 {
		t.Errorf("frames: got %d, want 3", len(g.Image))
	}
	if g.Delay[2] != 7 {
		t.Errorf("delay of frame 3: got %d, want 7", g.Delay[2])
	}
	if g.LoopCount != 2 {
		t.Errorf("LoopCount: got %d, want 2", g.LoopCount)
	}
}

func TestEncodeGIF_NoFrames(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeGIF(&buf, &Animation{}); err == nil {
		t.Error("EncodeGIF without frames should fail")
	}
}

func TestEncodePNG(t *testing.T) {
	img := createPatternImage(40, 20)

	tests := []struct {
		name          string
		scale         float64
		width, height int
	}{
		{"unscaled", 1.0, 40, 20},
		{"zero scale ignored", 0, 40, 20},
		{"half", 0.5, 20, 10},
		{"double", 2.0, 80, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EncodePNG(img, tt.scale)
			if err != nil {
				t.Fatalf("EncodePNG failed: %v", err)
			}
			if result.Width != tt.width || result.Height != tt.height {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, tt.width, tt.height)
			}
			if result.MimeType != "image/png" {
				t.Errorf("MimeType: got %s, want image/png", result.MimeType)
			}

			data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
			if err != nil {
				t.Fatalf("failed to decode base64: %v", err)
			}
			decoded, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("failed to decode png: %v", err)
			}
			if b := decoded.Bounds(); b.Dx() != tt.width || b.Dy() != tt.height {
				t.Errorf("decoded dimensions: got %dx%d", b.Dx(), b.Dy())
			}
		})
	}
}
