package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Region represents a rectangular region within an image.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive). The zero Region means "the whole image".
type Region struct {
	X1 int `json:"x1" yaml:"x1"`
	Y1 int `json:"y1" yaml:"y1"`
	X2 int `json:"x2" yaml:"x2"`
	Y2 int `json:"y2" yaml:"y2"`
}

// IsZero reports whether r is the zero Region.
func (r Region) IsZero() bool { return r == Region{} }

// Rect converts r to an image.Rectangle.
func (r Region) Rect() image.Rectangle { return image.Rect(r.X1, r.Y1, r.X2, r.Y2) }

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
}

// Validate checks that r is non-empty and lies inside bounds.
func (r Region) Validate(bounds image.Rectangle) error {
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return fmt.Errorf("invalid region %s: x1 must be < x2, y1 must be < y2", r)
	}
	if !r.Rect().In(bounds) {
		return fmt.Errorf("region %s outside image bounds %v", r, bounds)
	}
	return nil
}

// NamedRegion resolves a named area of an image of the given size.
//
// Supported names are "top-left", "top-right", "bottom-left",
// "bottom-right", "top-half", "bottom-half", "left-half", "right-half",
// "center" (the middle 50%), and "full".
func NamedRegion(width, height int, name string) (Region, error) {
	midX := width / 2
	midY := height / 2

	switch name {
	case "full", "":
		return Region{0, 0, width, height}, nil
	case "top-left":
		return Region{0, 0, midX, midY}, nil
	case "top-right":
		return Region{midX, 0, width, midY}, nil
	case "bottom-left":
		return Region{0, midY, midX, height}, nil
	case "bottom-right":
		return Region{midX, midY, width, height}, nil
	case "top-half":
		return Region{0, 0, width, midY}, nil
	case "bottom-half":
		return Region{0, midY, width, height}, nil
	case "left-half":
		return Region{0, 0, midX, height}, nil
	case "right-half":
		return Region{midX, 0, width, height}, nil
	case "center":
		qW := width / 4
		qH := height / 4
		return Region{qW, qH, width - qW, height - qH}, nil
	}
	return Region{}, fmt.Errorf("unknown region: %s", name)
}

// Crop extracts r from img. The result's bounds start at (0, 0).
func Crop(img image.Image, r Region) (*image.NRGBA, error) {
	if err := r.Validate(img.Bounds()); err != nil {
		return nil, err
	}
	return imaging.Crop(img, r.Rect()), nil
}

// Paste returns a copy of background with patch drawn at the top-left corner
// of r. Pixels of patch outside r are clipped.
func Paste(background, patch image.Image, r Region) (*image.NRGBA, error) {
	if err := r.Validate(background.Bounds()); err != nil {
		return nil, err
	}
	clipped := patch
	if b := patch.Bounds(); b.Dx() > r.X2-r.X1 || b.Dy() > r.Y2-r.Y1 {
		clipped = imaging.Crop(patch, image.Rect(b.Min.X, b.Min.Y, b.Min.X+r.X2-r.X1, b.Min.Y+r.Y2-r.Y1))
	}
	return imaging.Paste(background, clipped, image.Pt(r.X1, r.Y1)), nil
}

// CarryAlpha returns a copy of dst whose alpha channel is taken from src.
// Both images must have the same size.
func CarryAlpha(dst, src image.Image) (*image.NRGBA, error) {
	db, sb := dst.Bounds(), src.Bounds()
	if db.Dx() != sb.Dx() || db.Dy() != sb.Dy() {
		return nil, fmt.Errorf("failed to carry alpha: sizes %dx%d and %dx%d differ",
			db.Dx(), db.Dy(), sb.Dx(), sb.Dy())
	}

	out := imaging.Clone(dst)
	alpha := imaging.Clone(src)
	for y := 0; y < db.Dy(); y++ {
		orow := out.Pix[y*out.Stride:]
		arow := alpha.Pix[y*alpha.Stride:]
		for x := 0; x < db.Dx(); x++ {
			orow[x*4+3] = arow[x*4+3]
		}
	}
	return out, nil
}
