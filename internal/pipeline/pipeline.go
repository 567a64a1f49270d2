package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/ironsheep/image-glitch/internal/expr"
	"github.com/ironsheep/image-glitch/internal/glitch"
	"github.com/ironsheep/image-glitch/internal/imaging"
)

// Pipeline runs a chain of compiled expressions over an image.
type Pipeline struct {
	cfg         *Config
	trees       []*expr.Tree
	seed        uint64
	cache       *imaging.ImageCache
	transformer *glitch.Transformer
}

// Result summarizes a finished run.
type Result struct {
	Output  string
	Seed    uint64
	Frames  int
	Passes  int
	Width   int
	Height  int
	Elapsed time.Duration
}

// New validates cfg and compiles every expression. Nothing is decoded yet,
// so a malformed expression fails before any image work or output.
func New(cfg *Config, cache *imaging.ImageCache) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	exprs, err := cfg.AllExpressions()
	if err != nil {
		return nil, err
	}
	trees, err := CompileAll(exprs)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache = imaging.NewImageCache()
	}

	p := &Pipeline{
		cfg:   cfg,
		trees: trees,
		cache: cache,
	}
	if cfg.Seed != nil {
		p.seed = *cfg.Seed
	} else {
		p.seed = uint64(time.Now().UnixNano())
	}

	opts := []glitch.Option{glitch.WithNoState(cfg.NoState)}
	if cfg.Workers > 0 {
		opts = append(opts, glitch.WithWorkers(cfg.Workers))
	}
	p.transformer = glitch.NewTransformer(opts...)
	return p, nil
}

// Seed returns the seed of the run.
func (p *Pipeline) Seed() uint64 { return p.seed }

// Trees returns the compiled chain.
func (p *Pipeline) Trees() []*expr.Tree { return p.trees }

// Passes is the number of transformer passes per frame.
func (p *Pipeline) Passes() int { return len(p.trees) * p.cfg.Iterations }

// Run decodes the input, renders every frame, and writes the output.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	klog.Infof("glitching %s with %d expression(s), seed %d", p.cfg.Input, len(p.trees), p.seed)
	if p.cfg.Verbose {
		for i, tree := range p.trees {
			klog.Infof("expression %d: %s\n%s", i+1, tree.Source, tree.Describe())
		}
	}

	decoded, err := p.cache.Load(p.cfg.Input)
	if err != nil {
		return nil, errors.Wrap(err, "loading input")
	}

	frames := make([]image.Image, 0, len(decoded.Frames))
	for i, frame := range decoded.Frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := p.Render(ctx, frame)
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", i)
		}
		frames = append(frames, out)
		klog.V(2).Infof("frame %d/%d done", i+1, len(decoded.Frames))
	}

	output := p.cfg.Output
	if output == "" {
		output = DefaultOutput(decoded.Format)
	}
	if err := save(decoded, frames, output); err != nil {
		return nil, err
	}

	b := decoded.Image().Bounds()
	res := &Result{
		Output:  output,
		Seed:    p.seed,
		Frames:  len(frames),
		Passes:  p.Passes(),
		Width:   b.Dx(),
		Height:  b.Dy(),
		Elapsed: time.Since(start),
	}
	klog.Infof("wrote %s (%dx%d, %d frame(s)) in %v", res.Output, res.Width, res.Height, res.Frames, res.Elapsed)
	return res, nil
}

func save(decoded *imaging.Decoded, frames []image.Image, output string) error {
	if decoded.Animated() {
		if imaging.FormatFromPath(output) == "gif" {
			anim := &imaging.Animation{Frames: frames, Delays: decoded.Delays, LoopCount: decoded.LoopCount}
			return errors.Wrap(imaging.SaveAnimation(anim, output), "saving output")
		}
		klog.Warningf("%s is not a GIF; writing only the first of %d frames", output, len(frames))
	}
	return errors.Wrap(imaging.Save(frames[0], output), "saving output")
}

// Render glitches a single frame: the configured region (or the whole frame)
// runs through the expression chain, is pasted back, and keeps the frame's
// alpha channel.
func (p *Pipeline) Render(ctx context.Context, frame image.Image) (*image.NRGBA, error) {
	work := frame
	region := p.cfg.Region
	if !region.IsZero() {
		cropped, err := imaging.Crop(frame, region)
		if err != nil {
			return nil, err
		}
		work = cropped
	}

	out, err := p.chain(ctx, glitch.FromImage(work))
	if err != nil {
		return nil, err
	}

	result := out.NRGBA()
	if !region.IsZero() {
		if result, err = imaging.Paste(frame, result, region); err != nil {
			return nil, err
		}
	}
	return imaging.CarryAlpha(result, frame)
}

// chain applies every expression Iterations times. Each pass's output becomes
// the saved image of the next pass; without feedback it is also the next
// source, with feedback every pass reads the original.
func (p *Pipeline) chain(ctx context.Context, original *glitch.Image) (*glitch.Image, error) {
	source := original
	var saved *glitch.Image
	pass := 0
	for it := 0; it < p.cfg.Iterations; it++ {
		for _, tree := range p.trees {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out, err := p.transformer.Apply(tree, source, saved, passSeed(p.seed, pass))
			if err != nil {
				return nil, err
			}
			saved = out
			if !p.cfg.Feedback {
				source = out
			}
			pass++
		}
	}
	return saved, nil
}

// passSeed gives every pass of a frame its own random stream while every
// frame replays the same streams.
func passSeed(seed uint64, pass int) uint64 {
	return seed + uint64(pass)
}
