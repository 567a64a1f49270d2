package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/ironsheep/image-glitch/internal/imaging"
	"github.com/ironsheep/image-glitch/internal/pipeline"
	"github.com/ironsheep/image-glitch/internal/repl"
	"github.com/ironsheep/image-glitch/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `image-glitch - expression-driven image glitching

Usage:
  image-glitch [flags] <input>     render once
  image-glitch watch [flags] [input]  re-render when inputs change
  image-glitch repl                try expressions interactively
  image-glitch mcp                 serve MCP over stdin/stdout
  image-glitch version             print version information
  image-glitch help                print this help

Flags:
`

const envHelp = `
Environment variables:
  GLITCH_CONFIG=<path>       config file used when -config is not given
  GLITCH_LOG_LEVEL=debug     enable debug logging

Without -config or GLITCH_CONFIG, ./glitch.yaml is read when present.
Flags override values from the config file.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := "render"
	if len(args) > 0 {
		switch args[0] {
		case "--version", "version":
			fmt.Fprintf(stdout, "image-glitch %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return 0
		case "repl", "watch", "mcp", "render":
			cmd = args[0]
			args = args[1:]
		}
	}

	fset := flag.NewFlagSet("image-glitch", flag.ContinueOnError)
	fset.SetOutput(stderr)
	opts := registerFlags(fset)
	fset.Usage = func() {
		fmt.Fprint(stderr, usage)
		fset.PrintDefaults()
		fmt.Fprint(stderr, envHelp)
	}
	if len(args) > 0 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
		fmt.Fprint(stdout, usage)
		fset.SetOutput(stdout)
		fset.PrintDefaults()
		fmt.Fprint(stdout, envHelp)
		return 0
	}

	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	if os.Getenv("GLITCH_LOG_LEVEL") == "debug" {
		fset.Set("v", "2")
	}
	if err := fset.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})
	defer klog.Flush()

	klog.V(2).Infof("image-glitch %s (built %s, commit %s)", Version, BuildTime, GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "repl":
		repl.Start(stdout, Version)
	case "mcp":
		err = server.New(Version).Run()
	case "watch":
		err = watch(ctx, fset, opts)
	default:
		err = render(ctx, fset, opts)
	}
	if err != nil {
		klog.Errorf("%v", err)
		return 1
	}
	return 0
}

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, "; ") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

type options struct {
	config     string
	output     string
	exprs      stringList
	exprFile   string
	seed       uint64
	workers    int
	iterations int
	feedback   bool
	region     string
	verbose    bool
	noState    bool
	open       bool
}

func registerFlags(fset *flag.FlagSet) *options {
	o := &options{}
	fset.StringVar(&o.config, "config", "", "YAML config file")
	fset.StringVar(&o.output, "o", "", "output path; the extension picks the format (default "+pipeline.DefaultOutputName+".<input format>)")
	fset.Var(&o.exprs, "e", "expression to apply; repeat to chain passes")
	fset.StringVar(&o.exprFile, "f", "", "file with one expression per line")
	fset.Uint64Var(&o.seed, "seed", 0, "random seed (default: from the clock)")
	fset.IntVar(&o.workers, "workers", 0, "parallel workers (default: GOMAXPROCS)")
	fset.IntVar(&o.iterations, "iterations", 0, "times to repeat the chain (default 1)")
	fset.BoolVar(&o.feedback, "feedback", false, "every pass reads the original image")
	fset.StringVar(&o.region, "region", "", "glitch only x1,y1,x2,y2")
	fset.BoolVar(&o.verbose, "verbose", false, "list every token of every expression")
	fset.BoolVar(&o.noState, "no-state", false, "every random leaf (r, t, g) draws on its own")
	fset.BoolVar(&o.open, "open", false, "open the output with the default viewer when done")
	return o
}

// apply overrides cfg with the flags that were given on the command line.
func (o *options) apply(fset *flag.FlagSet, cfg *pipeline.Config) error {
	var err error
	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.Output = o.output
		case "e":
			cfg.Expressions = o.exprs
		case "f":
			cfg.ExpressionFile = o.exprFile
		case "seed":
			cfg.SetSeed(o.seed)
		case "workers":
			cfg.Workers = o.workers
		case "iterations":
			cfg.Iterations = o.iterations
		case "feedback":
			cfg.Feedback = o.feedback
		case "verbose":
			cfg.Verbose = o.verbose
		case "no-state":
			cfg.NoState = o.noState
		case "open":
			cfg.Open = o.open
		case "region":
			cfg.Region, err = parseRegion(o.region)
		}
	})
	if fset.NArg() > 0 {
		cfg.Input = fset.Arg(0)
	}
	return err
}

func parseRegion(s string) (imaging.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return imaging.Region{}, errors.Errorf("region %q: want x1,y1,x2,y2", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return imaging.Region{}, errors.Wrapf(err, "region %q", s)
		}
		v[i] = n
	}
	return imaging.Region{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

func loadConfig(fset *flag.FlagSet, o *options) (*pipeline.Config, error) {
	cfg, err := pipeline.Load(o.config, os.Getenv)
	if err != nil {
		return nil, err
	}
	if err := o.apply(fset, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func render(ctx context.Context, fset *flag.FlagSet, o *options) error {
	cfg, err := loadConfig(fset, o)
	if err != nil {
		return err
	}
	if cfg.Input == "" {
		fset.Usage()
		return errors.New("no input image")
	}
	p, err := pipeline.New(cfg, nil)
	if err != nil {
		return err
	}
	res, err := p.Run(ctx)
	if err != nil {
		return err
	}
	if cfg.Open {
		if err := openFile(res.Output); err != nil {
			klog.Warningf("failed to open %s: %v", res.Output, err)
		}
	}
	return nil
}

func watch(ctx context.Context, fset *flag.FlagSet, o *options) error {
	w, err := pipeline.NewWatcher(func() (*pipeline.Config, error) {
		return loadConfig(fset, o)
	}, nil)
	if err != nil {
		return err
	}
	klog.Infof("watching for changes; Ctrl+C to stop")
	return w.Run(ctx)
}
