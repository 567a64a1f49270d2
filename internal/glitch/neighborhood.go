package glitch

import (
	"math"

	"github.com/emirpasic/gods/trees/binaryheap"
)

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// window calls fn for each of the 8 neighbors of the context pixel, with
// coordinates clamped to the image so border pixels are replicated.
func (c *Context) window(fn func(v uint8)) {
	src := c.Source
	for dy := -1; dy <= 1; dy++ {
		y := clamp(c.Y+dy, 0, src.Height-1)
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			x := clamp(c.X+dx, 0, src.Width-1)
			fn(src.Value(x, y, c.Channel))
		}
	}
}

// blur is the mean of the 3x3 window centered on the pixel.
func (c *Context) blur() uint8 {
	sum := int(c.current())
	c.window(func(v uint8) { sum += int(v) })
	return uint8(sum / 9)
}

// edge sums the absolute differences between the pixel and its neighbors.
func (c *Context) edge() uint8 {
	center := int(c.current())
	sum := 0
	c.window(func(v uint8) {
		d := center - int(v)
		if d < 0 {
			d = -d
		}
		sum += d
	})
	return saturate(sum)
}

func (c *Context) extremes() (lo, hi uint8) {
	lo = 255
	c.window(func(v uint8) {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	})
	return lo, hi
}

func (c *Context) flipH() uint8 {
	return c.Source.Value(c.Source.Width-1-c.X, c.Y, c.Channel)
}

func (c *Context) flipV() uint8 {
	return c.Source.Value(c.X, c.Source.Height-1-c.Y, c.Channel)
}

func (c *Context) flipD() uint8 {
	return c.Source.Value(c.Source.Width-1-c.X, c.Source.Height-1-c.Y, c.Channel)
}

// scaled rescales a coordinate in [0, n) onto [0, 255].
func scaled(v, n int) uint8 {
	if n <= 1 {
		return 0
	}
	return uint8(255 * v / (n - 1))
}

func (c *Context) luma() uint8 {
	p := c.Source.Pixel(c.X, c.Y)
	return uint8((299*int(p[Red]) + 587*int(p[Green]) + 114*int(p[Blue])) / 1000)
}

func (c *Context) anywhere(leaf int) uint8 {
	src := c.Source
	i := uniform(c.random(c.drawSite(siteAnywhere, leaf)), src.Width*src.Height)
	return src.Value(i%src.Width, i/src.Width, c.Channel)
}

// neighbor picks uniformly among the count nearest in-bounds neighbors.
func (c *Context) neighbor(count, leaf int) uint8 {
	src := c.Source
	count = min(count, src.Width*src.Height-1)
	if count <= 0 {
		return c.current()
	}
	table := c.ensureViews().neighbors(src, count)
	r := c.random(c.drawSite(siteNeighbor|uint64(count), leaf))

	// Interior pixels have every one of the first count offsets in bounds.
	if e := table.extent[count-1]; c.X-e >= 0 && c.Y-e >= 0 && c.X+e < src.Width && c.Y+e < src.Height {
		o := table.offsets[uniform(r, count)]
		return src.Value(c.X+o.dx, c.Y+o.dy, c.Channel)
	}

	n := 0
	for _, o := range table.offsets {
		if c.inBounds(o) {
			n++
			if n == count {
				break
			}
		}
	}
	if n == 0 {
		return c.current()
	}

	k := uniform(r, n)
	for _, o := range table.offsets {
		if !c.inBounds(o) {
			continue
		}
		if k == 0 {
			return src.Value(c.X+o.dx, c.Y+o.dy, c.Channel)
		}
		k--
	}
	return c.current()
}

func (c *Context) inBounds(o offset) bool {
	x, y := c.X+o.dx, c.Y+o.dy
	return x >= 0 && y >= 0 && x < c.Source.Width && y < c.Source.Height
}

type offset struct {
	dx, dy int
}

func (o offset) dist2() int { return o.dx*o.dx + o.dy*o.dy }

// neighborTable lists neighbor offsets nearest first: by squared distance,
// then row offset, then column offset. extent[i] is the largest |dx| or |dy|
// among offsets[:i+1].
type neighborTable struct {
	offsets []offset
	extent  []int
}

func compareOffsets(a, b interface{}) int {
	oa, ob := a.(offset), b.(offset)
	switch {
	case oa.dist2() != ob.dist2():
		return oa.dist2() - ob.dist2()
	case oa.dy != ob.dy:
		return oa.dy - ob.dy
	}
	return oa.dx - ob.dx
}

// newNeighborTable orders every offset within the disc of the given radius
// whose |dx| and |dy| stay within maxDX and maxDY. Offsets beyond those never
// land inside the image, so the table holds at most
// min(pi*radius^2, (2*maxDX+1)*(2*maxDY+1)) entries.
func newNeighborTable(radius, maxDX, maxDY int) *neighborTable {
	heap := binaryheap.NewWith(compareOffsets)
	r2 := radius * radius
	for dy := -min(radius, maxDY); dy <= min(radius, maxDY); dy++ {
		for dx := -min(radius, maxDX); dx <= min(radius, maxDX); dx++ {
			o := offset{dx: dx, dy: dy}
			if d := o.dist2(); d > 0 && d <= r2 {
				heap.Push(o)
			}
		}
	}

	t := &neighborTable{
		offsets: make([]offset, 0, heap.Size()),
		extent:  make([]int, 0, heap.Size()),
	}
	ext := 0
	for {
		v, ok := heap.Pop()
		if !ok {
			break
		}
		o := v.(offset)
		ext = max(ext, abs(o.dx), abs(o.dy))
		t.offsets = append(t.offsets, o)
		t.extent = append(t.extent, ext)
	}
	return t
}

// neighborRadius returns a disc radius in which every pixel of a
// width x height image, corners and one-pixel-wide strips included, finds
// count in-bounds offsets. count must be below width*height.
//
// Around any pixel the square of half-side l holds at least
// min(l+1, width) * min(l+1, height) image pixels, and a disc of radius
// l*sqrt(2) covers that square.
func neighborRadius(count, width, height int) int {
	l := 1
	for min(l+1, width)*min(l+1, height)-1 < count && l < max(width, height) {
		l++
	}
	r := int(math.Ceil(float64(l) * math.Sqrt2))
	diag := int(math.Ceil(math.Hypot(float64(width-1), float64(height-1))))
	return max(1, min(r, diag))
}

// neighborTableFor builds the offset table that serves r{count} on a
// width x height image.
func neighborTableFor(count, width, height int) *neighborTable {
	return newNeighborTable(neighborRadius(count, width, height), width-1, height-1)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
