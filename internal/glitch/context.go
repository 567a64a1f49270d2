package glitch

import (
	"math/bits"
	"math/rand/v2"
)

// Context is the sampling state for one evaluation: the frozen source and
// saved images, the pixel coordinate, the channel, and the run seed.
//
// A Context is owned by a single goroutine. The Transformer reuses one per
// worker and moves it across pixels by updating X, Y, and Channel.
type Context struct {
	Source *Image
	Saved  *Image

	X, Y    int
	Channel int

	Seed uint64

	// NoState gives every r, t and g leaf of an expression its own draw.
	// By default leaves of the same kind share one draw per pixel.
	NoState bool

	views *views
}

// NewContext returns a Context positioned at (0, 0) on the red channel. A nil
// saved image reads as zero everywhere.
func NewContext(source, saved *Image, seed uint64) *Context {
	return &Context{Source: source, Saved: saved, Seed: seed}
}

// Move positions the context at (x, y, ch).
func (c *Context) Move(x, y, ch int) {
	c.X, c.Y, c.Channel = x, y, ch
}

func (c *Context) current() uint8 {
	return c.Source.Value(c.X, c.Y, c.Channel)
}

func (c *Context) saved() uint8 {
	if c.Saved == nil {
		return 0
	}
	return c.Saved.Value(c.X, c.Y, c.Channel)
}

// Draw sites separate the random streams of different parameters.
const (
	siteNeighbor uint64 = 1 << 32
	siteAnywhere uint64 = 2 << 32
	siteNoise    uint64 = 3 << 32
)

// drawSite returns site, separated per leaf when the context keeps no state.
func (c *Context) drawSite(site uint64, leaf int) uint64 {
	if !c.NoState {
		return site
	}
	return site ^ uint64(leaf+1)<<40
}

// random returns a pseudo-random value fixed by the seed, the coordinate,
// the channel, and the draw site. Evaluation order never matters.
func (c *Context) random(site uint64) uint64 {
	var p rand.PCG
	p.Seed(c.Seed^site*0x9E3779B97F4A7C15, uint64(c.X)|uint64(c.Y)<<28|uint64(c.Channel)<<56)
	return p.Uint64()
}

// uniform maps a random value onto [0, n).
func uniform(r uint64, n int) int {
	hi, _ := bits.Mul64(r, uint64(n))
	return int(hi)
}
