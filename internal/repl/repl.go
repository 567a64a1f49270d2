// Package repl is an interactive prompt for trying glitch expressions: it
// shows how an expression parses and what it produces at one pixel of a
// loaded image.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/ironsheep/image-glitch/internal/expr"
	"github.com/ironsheep/image-glitch/internal/glitch"
	"github.com/ironsheep/image-glitch/internal/imaging"
)

const prompt = "glitch> "

var commands = []string{":load", ":at", ":seed", ":tokens", ":help", ":quit"}

const helpText = `Commands:
  :load <path|url>   load an image to evaluate against
  :at <x> <y>        choose the pixel to evaluate
  :seed <n>          set the random seed
  :tokens            toggle the verbose token listing
  :help              show this help
  :quit              leave (Ctrl+D works too)

Anything else is compiled as an expression. The parenthesized tree is
printed and, with an image loaded, the RGB value at the chosen pixel.
`

// Session holds the REPL state between lines.
type Session struct {
	out   io.Writer
	cache *imaging.ImageCache

	source string
	image  *glitch.Image
	x, y   int
	seed   uint64
	tokens bool
}

// NewSession creates a session writing to out.
func NewSession(out io.Writer, cache *imaging.ImageCache) *Session {
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	return &Session{out: out, cache: cache, seed: 1}
}

// Handle runs one input line and reports whether the session should end.
func (s *Session) Handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ":") {
		return s.command(line)
	}
	s.evaluate(line)
	return false
}

func (s *Session) command(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true

	case ":help":
		fmt.Fprint(s.out, helpText)

	case ":tokens":
		s.tokens = !s.tokens
		fmt.Fprintf(s.out, "token listing %s\n", onOff(s.tokens))

	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, "usage: :load <path|url>")
			return false
		}
		s.load(fields[1])

	case ":at":
		if len(fields) != 3 {
			fmt.Fprintln(s.out, "usage: :at <x> <y>")
			return false
		}
		x, errX := strconv.Atoi(fields[1])
		y, errY := strconv.Atoi(fields[2])
		if errX != nil || errY != nil {
			fmt.Fprintln(s.out, "coordinates must be integers")
			return false
		}
		if s.image != nil && (x < 0 || y < 0 || x >= s.image.Width || y >= s.image.Height) {
			fmt.Fprintf(s.out, "(%d, %d) is outside the %dx%d image\n", x, y, s.image.Width, s.image.Height)
			return false
		}
		s.x, s.y = x, y
		fmt.Fprintf(s.out, "evaluating at (%d, %d)\n", x, y)

	case ":seed":
		if len(fields) != 2 {
			fmt.Fprintf(s.out, "seed %d\n", s.seed)
			return false
		}
		seed, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			fmt.Fprintf(s.out, "invalid seed: %s\n", fields[1])
			return false
		}
		s.seed = seed
		fmt.Fprintf(s.out, "seed %d\n", seed)

	default:
		fmt.Fprintf(s.out, "unknown command %s (try :help)\n", fields[0])
	}
	return false
}

func (s *Session) load(source string) {
	d, err := s.cache.Load(source)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	s.source = source
	s.image = glitch.FromImage(d.Image())
	s.x, s.y = 0, 0
	fmt.Fprintf(s.out, "loaded %s (%dx%d %s, %d frame(s))\n",
		source, s.image.Width, s.image.Height, d.Format, len(d.Frames))
}

func (s *Session) evaluate(text string) {
	tree, err := expr.Compile(text)
	if err != nil {
		s.printError(text, err)
		return
	}

	fmt.Fprintln(s.out, tree.String())
	if s.tokens {
		fmt.Fprint(s.out, tree.Describe())
	}
	if s.image == nil {
		return
	}

	p, err := glitch.EvaluatePixel(tree, s.image, nil, s.x, s.y, s.seed)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "(%d, %d) -> %d %d %d\n", s.x, s.y, p[glitch.Red], p[glitch.Green], p[glitch.Blue])
}

// printError points a caret at the failing offset.
func (s *Session) printError(text string, err error) {
	var ce *expr.Error
	if !errors.As(err, &ce) {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "  %s\n  %s^\n%v\n", text, strings.Repeat(" ", ce.Offset), err)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func complete(line string) []string {
	var out []string
	for _, c := range commands {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

// Start runs the interactive prompt until :quit or Ctrl+D.
func Start(out io.Writer, version string) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	historyFile := filepath.Join(os.TempDir(), ".image_glitch_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(out, "image-glitch %s\nType :help for commands, Ctrl+D to quit\n\n", version)

	session := NewSession(out, nil)
	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out)
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if session.Handle(input) {
			return
		}
	}
}
