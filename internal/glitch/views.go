package glitch

import (
	"github.com/anthonynsimon/bild/blur"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-glitch/internal/expr"
)

// views holds whole-image derivatives of the source that are too costly to
// compute per pixel: Gaussian-smoothed copies keyed by radius,
// brightness-scaled copies keyed by level, and nearest-neighbor offset tables
// keyed by neighbor count. Views live for one pass and are dropped with it.
type views struct {
	smooth     map[int]*Image
	brightness map[int]*Image
	tables     map[int]*neighborTable
}

// prepareViews builds every view the tree refers to. The result is
// read-only and shared by all workers of a pass.
func prepareViews(tree *expr.Tree, source *Image) *views {
	v := &views{}
	tree.Walk(func(n *expr.Node) {
		if n.Kind != expr.ParamNode {
			return
		}
		switch n.Param {
		case expr.ParamSmooth:
			v.smoothed(source, n.Arg)
		case expr.ParamBrightness:
			v.brightened(source, saturate(n.Arg))
		case expr.ParamNeighbor:
			v.neighbors(source, n.Arg)
		case expr.ParamNeighbor16:
			v.neighbors(source, 16)
		}
	})
	return v
}

func (v *views) smoothed(source *Image, radius int) *Image {
	if img, ok := v.smooth[radius]; ok {
		return img
	}
	if v.smooth == nil {
		v.smooth = make(map[int]*Image)
	}
	img := smoothImage(source, radius)
	v.smooth[radius] = img
	return img
}

func (v *views) brightened(source *Image, level uint8) *Image {
	if img, ok := v.brightness[int(level)]; ok {
		return img
	}
	if v.brightness == nil {
		v.brightness = make(map[int]*Image)
	}
	img := brightenImage(source, level)
	v.brightness[int(level)] = img
	return img
}

// neighbors returns the offset table for count neighbors, with count capped
// at the number of other pixels in source.
func (v *views) neighbors(source *Image, count int) *neighborTable {
	count = min(count, source.Width*source.Height-1)
	if t, ok := v.tables[count]; ok {
		return t
	}
	if v.tables == nil {
		v.tables = make(map[int]*neighborTable)
	}
	if count <= 0 {
		return nil
	}
	t := neighborTableFor(count, source.Width, source.Height)
	v.tables[count] = t
	return t
}

// smoothImage applies a Gaussian blur of the given radius. A radius of zero
// leaves the image unchanged.
func smoothImage(source *Image, radius int) *Image {
	if radius <= 0 {
		return source
	}
	rgba := blur.Gaussian(source, float64(radius))
	out := NewImage(source.Width, source.Height)
	for y := 0; y < out.Height; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < out.Width; x++ {
			i := x * 4
			copy(out.Pix[out.offset(x, y):], row[i:i+Channels])
		}
	}
	return out
}

// brightenImage scales the HSV value of every pixel by level/255.
func brightenImage(source *Image, level uint8) *Image {
	out := NewImage(source.Width, source.Height)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			out.SetPixel(x, y, brighten(source.Pixel(x, y), level))
		}
	}
	return out
}

func brighten(p Pixel, level uint8) Pixel {
	c := colorful.Color{
		R: float64(p[Red]) / 255,
		G: float64(p[Green]) / 255,
		B: float64(p[Blue]) / 255,
	}
	h, s, v := c.Hsv()
	r, g, b := colorful.Hsv(h, s, v*float64(level)/255).Clamped().RGB255()
	return Pixel{r, g, b}
}

// context-level accessors; a Context evaluated outside a Transformer builds
// its views lazily.

func (c *Context) ensureViews() *views {
	if c.views == nil {
		c.views = &views{}
	}
	return c.views
}

func (c *Context) smooth(radius int) uint8 {
	return c.ensureViews().smoothed(c.Source, radius).Value(c.X, c.Y, c.Channel)
}

func (c *Context) brightness(level uint8) uint8 {
	return c.ensureViews().brightened(c.Source, level).Value(c.X, c.Y, c.Channel)
}
