package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultGridColor is semi-transparent red.
const DefaultGridColor = "#ff000080"

// GridOverlay returns a copy of img with grid lines every spacing pixels,
// blended in the given "#rrggbb" or "#rrggbbaa" color. With labels set, each
// intersection is annotated with its "x,y" coordinate so regions and sample
// points can be read off a preview.
func GridOverlay(img image.Image, spacing int, labels bool, hex string) (*image.NRGBA, error) {
	if spacing <= 0 {
		return nil, fmt.Errorf("invalid grid spacing %d", spacing)
	}
	line, opacity, err := parseGridColor(hex)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	base := imaging.Clone(img)

	layer := imaging.Clone(base)
	for x := spacing; x < w; x += spacing {
		for y := 0; y < h; y++ {
			layer.SetNRGBA(x, y, line)
		}
	}
	for y := spacing; y < h; y += spacing {
		for x := 0; x < w; x++ {
			layer.SetNRGBA(x, y, line)
		}
	}
	out := imaging.Overlay(base, layer, image.Pt(0, 0), opacity)

	if labels {
		for y := spacing; y < h; y += spacing {
			for x := spacing; x < w; x += spacing {
				drawLabel(out, x+2, y+2, fmt.Sprintf("%d,%d", x, y))
			}
		}
	}
	return out, nil
}

func parseGridColor(hex string) (color.NRGBA, float64, error) {
	if hex == "" {
		hex = DefaultGridColor
	}
	alpha := 255
	if s := strings.TrimPrefix(hex, "#"); len(s) == 8 {
		if _, err := fmt.Sscanf(s[6:], "%02x", &alpha); err != nil {
			return color.NRGBA{}, 0, fmt.Errorf("invalid grid color %q: %w", hex, err)
		}
		hex = "#" + s[:6]
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, 0, fmt.Errorf("invalid grid color %q: %w", hex, err)
	}
	r, g, bl := c.RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: 255}, float64(alpha) / 255, nil
}

// glyphs is a 3x5 pixel font for coordinate labels.
var glyphs = map[rune][5]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
}

const glyphAdvance = 4

// drawLabel writes white text on a dark box with its top-left at (x, y).
// Pixels outside img are skipped.
func drawLabel(img *image.NRGBA, x, y int, text string) {
	fg := color.NRGBA{255, 255, 255, 255}
	bg := color.NRGBA{0, 0, 0, 255}
	in := func(px, py int) bool { return image.Pt(px, py).In(img.Rect) }

	for dy := -1; dy < 6; dy++ {
		for dx := -1; dx < len(text)*glyphAdvance; dx++ {
			if in(x+dx, y+dy) {
				img.SetNRGBA(x+dx, y+dy, bg)
			}
		}
	}

	for i, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			continue
		}
		cx := x + i*glyphAdvance
		for row, bits := range glyph {
			for col, bit := range bits {
				if bit == '1' && in(cx+col, y+row) {
					img.SetNRGBA(cx+col, y+row, fg)
				}
			}
		}
	}
}
