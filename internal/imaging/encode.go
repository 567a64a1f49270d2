package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedOutput is returned for output paths no encoder can write.
// WebP can be read but not written.
var ErrUnsupportedOutput = errors.New("unsupported output format")

// CheckOutput reports whether path names a format Save can write.
func CheckOutput(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		return fmt.Errorf("%w: %s (write .png, .jpg, or .gif)", ErrUnsupportedOutput, path)
	}
	return nil
}

// Save writes img to path, choosing the encoder from the file extension.
// Missing parent directories are created.
func Save(img image.Image, path string) error {
	if err := CheckOutput(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		format = imaging.PNG
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(95)); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// Animation is a sequence of frames written as an animated GIF.
type Animation struct {
	Frames    []image.Image
	Delays    []int
	LoopCount int
}

// EncodeGIF quantizes every frame to the Plan 9 palette and writes the
// animation.
func EncodeGIF(w io.Writer, anim *Animation) error {
	if len(anim.Frames) == 0 {
		return fmt.Errorf("failed to encode animation: no frames")
	}

	out := &gif.GIF{LoopCount: anim.LoopCount}
	for i, frame := range anim.Frames {
		b := frame.Bounds()
		p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
		draw.FloydSteinberg.Draw(p, p.Bounds(), frame, b.Min)

		delay := 0
		if i < len(anim.Delays) {
			delay = anim.Delays[i]
		}
		out.Image = append(out.Image, p)
		out.Delay = append(out.Delay, delay)
	}
	if err := gif.EncodeAll(w, out); err != nil {
		return fmt.Errorf("failed to encode animation: %w", err)
	}
	return nil
}

// SaveAnimation writes anim to path as a GIF.
func SaveAnimation(anim *Animation, path string) error {
	var buf bytes.Buffer
	if err := EncodeGIF(&buf, anim); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// EncodedImage is a PNG rendition of an image, base64 encoded for transport.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG, resized by scale when scale is
// positive and not 1.
func EncodePNG(img image.Image, scale float64) (*EncodedImage, error) {
	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(img.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(img.Bounds().Dy())*scale))
		img = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
