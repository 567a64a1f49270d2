package glitch

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Channel indexes one color component of a Pixel.
const (
	Red = iota
	Green
	Blue

	// Channels is the number of components per pixel.
	Channels = 3
)

// Pixel holds the red, green, and blue components of one pixel.
type Pixel [Channels]uint8

// Image is a row-major RGB raster with three bytes per pixel.
//
// Image implements image.Image with fully opaque NRGBA colors so that it can
// be handed directly to encoders and to other image libraries.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewImage returns a zeroed (black) image of the given size.
func NewImage(width, height int) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}
}

// FromImage converts any decoded image into an Image, discarding alpha.
func FromImage(src image.Image) *Image {
	nrgba := imaging.Clone(src)
	b := nrgba.Bounds()
	out := NewImage(b.Dx(), b.Dy())

	for y := 0; y < out.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < out.Width; x++ {
			i := x * 4
			copy(out.Pix[out.offset(x, y):], row[i:i+Channels])
		}
	}
	return out
}

func (m *Image) offset(x, y int) int {
	return (y*m.Width + x) * Channels
}

// Value returns one channel of the pixel at (x, y). Coordinates must be in
// bounds.
func (m *Image) Value(x, y, ch int) uint8 {
	return m.Pix[m.offset(x, y)+ch]
}

// Pixel returns the pixel at (x, y).
func (m *Image) Pixel(x, y int) Pixel {
	i := m.offset(x, y)
	return Pixel{m.Pix[i], m.Pix[i+1], m.Pix[i+2]}
}

// SetPixel writes the pixel at (x, y).
func (m *Image) SetPixel(x, y int, p Pixel) {
	copy(m.Pix[m.offset(x, y):], p[:])
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	out := &Image{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// SameSize reports whether m and o have identical dimensions.
func (m *Image) SameSize(o *Image) bool {
	return m.Width == o.Width && m.Height == o.Height
}

// NRGBA returns an opaque *image.NRGBA copy of m.
func (m *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < m.Width; x++ {
			i := x * 4
			copy(row[i:i+Channels], m.Pix[m.offset(x, y):])
			row[i+3] = 0xff
		}
	}
	return out
}

func (m *Image) ColorModel() color.Model { return color.NRGBAModel }

func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

func (m *Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(m.Bounds())) {
		return color.NRGBA{}
	}
	p := m.Pixel(x, y)
	return color.NRGBA{R: p[Red], G: p[Green], B: p[Blue], A: 0xff}
}
