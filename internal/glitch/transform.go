package glitch

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-glitch/internal/expr"
)

var (
	// ErrNilSource is returned when Apply is given no source image.
	ErrNilSource = errors.New("source image is nil")
	// ErrNilTree is returned when Apply is given no compiled expression.
	ErrNilTree = errors.New("expression tree is nil")
	// ErrSizeMismatch is returned when the saved image and the source differ
	// in size.
	ErrSizeMismatch = errors.New("saved image size does not match source")
)

// Transformer renders compiled expressions over images, splitting rows
// across a fixed number of workers.
type Transformer struct {
	workers int
	noState bool
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithWorkers sets the number of rendering goroutines. Values below 1 mean
// runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(t *Transformer) { t.workers = n }
}

// WithNoState makes every random leaf of an expression draw independently
// instead of sharing one draw per pixel with leaves of the same kind.
func WithNoState(noState bool) Option {
	return func(t *Transformer) { t.noState = noState }
}

// NewTransformer returns a Transformer configured by opts.
func NewTransformer(opts ...Option) *Transformer {
	t := &Transformer{}
	for _, opt := range opts {
		opt(t)
	}
	if t.workers < 1 {
		t.workers = runtime.GOMAXPROCS(0)
	}
	return t
}

// Workers returns the configured worker count.
func (t *Transformer) Workers() int { return t.workers }

// Apply renders tree over every pixel and channel of source with the default
// Transformer.
func Apply(tree *expr.Tree, source, saved *Image, seed uint64) (*Image, error) {
	return NewTransformer().Apply(tree, source, saved, seed)
}

// Apply evaluates tree once per (pixel, channel) of source and returns the
// resulting image, which always has the dimensions of source.
//
// saved is exposed to the expression through the s parameter; nil reads as
// a zero image. Neither source nor saved is modified. The output depends only
// on the inputs and seed, never on the worker count.
func (t *Transformer) Apply(tree *expr.Tree, source, saved *Image, seed uint64) (*Image, error) {
	if err := validate(tree, source, saved); err != nil {
		return nil, err
	}

	out := NewImage(source.Width, source.Height)
	if source.Width == 0 || source.Height == 0 {
		return out, nil
	}
	shared := prepareViews(tree, source)

	workers := min(t.workers, source.Height)
	chunk := (source.Height + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < source.Height; start += chunk {
		end := min(start+chunk, source.Height)
		g.Go(func() error {
			ctx := &Context{Source: source, Saved: saved, Seed: seed, NoState: t.noState, views: shared}
			renderRows(tree.Root, ctx, out, start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func renderRows(root *expr.Node, ctx *Context, out *Image, start, end int) {
	for y := start; y < end; y++ {
		for x := 0; x < out.Width; x++ {
			i := out.offset(x, y)
			for ch := 0; ch < Channels; ch++ {
				ctx.Move(x, y, ch)
				out.Pix[i+ch] = Evaluate(root, ctx)
			}
		}
	}
}

// EvaluatePixel evaluates tree at a single coordinate for all three channels.
func EvaluatePixel(tree *expr.Tree, source, saved *Image, x, y int, seed uint64) (Pixel, error) {
	if err := validate(tree, source, saved); err != nil {
		return Pixel{}, err
	}
	if x < 0 || y < 0 || x >= source.Width || y >= source.Height {
		return Pixel{}, fmt.Errorf("coordinate (%d, %d) outside %dx%d image", x, y, source.Width, source.Height)
	}

	var p Pixel
	ctx := NewContext(source, saved, seed)
	for ch := 0; ch < Channels; ch++ {
		ctx.Move(x, y, ch)
		p[ch] = Evaluate(tree.Root, ctx)
	}
	return p, nil
}

func validate(tree *expr.Tree, source, saved *Image) error {
	if tree == nil || tree.Root == nil {
		return ErrNilTree
	}
	if source == nil {
		return ErrNilSource
	}
	if saved != nil && !saved.SameSize(source) {
		return fmt.Errorf("%w: saved is %dx%d, source is %dx%d",
			ErrSizeMismatch, saved.Width, saved.Height, source.Width, source.Height)
	}
	return nil
}
