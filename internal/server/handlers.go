package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/plan-systems/klog"

	"github.com/ironsheep/image-glitch/internal/expr"
	"github.com/ironsheep/image-glitch/internal/imaging"
	"github.com/ironsheep/image-glitch/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "glitch_apply").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	klog.V(2).Infof("tool call: %s", params.Name)
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		klog.V(2).Infof("tool %s failed: %v", params.Name, err)
		return errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return reply(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": mustMarshalJSON(result),
			},
		},
	})
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	// Glitch Operations
	case "glitch_compile":
		return s.handleGlitchCompile(args)
	case "glitch_apply":
		return s.handleGlitchApply(args)
	case "glitch_compare":
		return s.handleGlitchCompare(args)
	case "glitch_reference":
		return glitchReference(), nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(d.Image(), a.X, a.Y)
}

// === Glitch Handlers ===

type glitchCompileArgs struct {
	Expression string `json:"expression"`
}

// CompileError locates a compile failure in the expression text.
type CompileError struct {
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	Token  int    `json:"token"`
	Reason string `json:"reason"`
}

// CompileResult describes a compiled expression.
type CompileResult struct {
	Valid  bool          `json:"valid"`
	Tree   string        `json:"tree,omitempty"`
	Leaves int           `json:"leaves,omitempty"`
	Tokens []string      `json:"tokens,omitempty"`
	Error  *CompileError `json:"error,omitempty"`
}

// handleGlitchCompile reports malformed expressions in the result rather than
// as a tool failure, so clients can show where the text went wrong.
func (s *Server) handleGlitchCompile(args json.RawMessage) (interface{}, error) {
	var a glitchCompileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	tree, err := expr.Compile(a.Expression)
	if err != nil {
		var ce *expr.Error
		if !errors.As(err, &ce) {
			return nil, err
		}
		return &CompileResult{Error: &CompileError{
			Kind:   ce.Kind.String(),
			Offset: ce.Offset,
			Token:  ce.Token,
			Reason: ce.Reason,
		}}, nil
	}

	res := &CompileResult{Valid: true, Tree: tree.String(), Leaves: tree.Leaves()}
	for _, tok := range tree.Tokens {
		if tok.Kind != expr.TokenEOF {
			res.Tokens = append(res.Tokens, tok.Describe())
		}
	}
	return res, nil
}

type glitchApplyArgs struct {
	Path        string          `json:"path"`
	Expressions []string        `json:"expressions"`
	Output      string          `json:"output"`
	Seed        *uint64         `json:"seed"`
	Iterations  int             `json:"iterations"`
	Feedback    bool            `json:"feedback"`
	NoState     bool            `json:"no_state"`
	Region      *imaging.Region `json:"region,omitempty"`
	NamedRegion string          `json:"named_region"`
	Preview     bool            `json:"preview"`
	Scale       float64         `json:"scale"`
	GridSpacing int             `json:"grid_spacing"`
}

// ApplyResult describes a glitch run.
type ApplyResult struct {
	Output  string                `json:"output,omitempty"`
	Seed    uint64                `json:"seed"`
	Passes  int                   `json:"passes"`
	Frames  int                   `json:"frames"`
	Width   int                   `json:"width"`
	Height  int                   `json:"height"`
	Preview *imaging.EncodedImage `json:"preview,omitempty"`
}

// handleGlitchApply runs the expression chain over an image. With an output
// path every frame is rendered and written; without one only the first frame
// is rendered and returned as a preview, optionally under a labeled
// coordinate grid.
func (s *Server) handleGlitchApply(args json.RawMessage) (interface{}, error) {
	var a glitchApplyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Iterations == 0 {
		a.Iterations = 1
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	d, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	b := d.Image().Bounds()

	cfg := pipeline.Defaults()
	cfg.Input = a.Path
	cfg.Output = a.Output
	cfg.Expressions = a.Expressions
	cfg.Seed = a.Seed
	cfg.Iterations = a.Iterations
	cfg.Feedback = a.Feedback
	cfg.NoState = a.NoState
	switch {
	case a.Region != nil:
		cfg.Region = *a.Region
	case a.NamedRegion != "":
		if cfg.Region, err = imaging.NamedRegion(b.Dx(), b.Dy(), a.NamedRegion); err != nil {
			return nil, err
		}
	}

	p, err := pipeline.New(cfg, s.cache)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()

	res := &ApplyResult{
		Seed:   p.Seed(),
		Passes: p.Passes(),
		Width:  b.Dx(),
		Height: b.Dy(),
	}
	if a.Output != "" {
		run, err := p.Run(ctx)
		if err != nil {
			return nil, err
		}
		res.Output = run.Output
		res.Frames = run.Frames
		if !a.Preview {
			return res, nil
		}
	}

	frame, err := p.Render(ctx, d.Image())
	if err != nil {
		return nil, err
	}
	if res.Frames == 0 {
		res.Frames = 1
	}
	if a.GridSpacing > 0 {
		if frame, err = imaging.GridOverlay(frame, a.GridSpacing, true, imaging.DefaultGridColor); err != nil {
			return nil, err
		}
	}
	if res.Preview, err = imaging.EncodePNG(frame, a.Scale); err != nil {
		return nil, err
	}
	return res, nil
}

type glitchCompareArgs struct {
	Path1  string          `json:"path1"`
	Path2  string          `json:"path2"`
	Region *imaging.Region `json:"region,omitempty"`
}

func (s *Server) handleGlitchCompare(args json.RawMessage) (interface{}, error) {
	var a glitchCompareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d1, err := s.cache.Load(a.Path1)
	if err != nil {
		return nil, err
	}
	d2, err := s.cache.Load(a.Path2)
	if err != nil {
		return nil, err
	}

	img1, img2 := d1.Image(), d2.Image()
	if a.Region != nil {
		if img1, err = imaging.Crop(img1, *a.Region); err != nil {
			return nil, err
		}
		if img2, err = imaging.Crop(img2, *a.Region); err != nil {
			return nil, err
		}
	}
	return imaging.Compare(img1, img2)
}

// OperatorInfo documents one binary operator.
type OperatorInfo struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	Precedence int    `json:"precedence"`
}

// ParamInfo documents one parameter letter.
type ParamInfo struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	TakesArg   bool   `json:"takes_arg"`
	DefaultArg int    `json:"default_arg,omitempty"`
}

// Reference is the expression language summary returned by glitch_reference.
type Reference struct {
	Operators  []OperatorInfo `json:"operators"`
	Parameters []ParamInfo    `json:"parameters"`
	Notes      []string       `json:"notes"`
}

func glitchReference() *Reference {
	ref := &Reference{
		Notes: []string{
			"Values are 8-bit channel values; results saturate to 0..255.",
			"Integer literals above 255 clamp to 255.",
			"Division and modulo by zero give 0.",
			"Higher precedence binds tighter; equal precedence is left-associative.",
			"A numeric suffix on R, G, B, V, r or u overrides its default argument.",
		},
	}
	for _, op := range expr.Operators {
		ref.Operators = append(ref.Operators, OperatorInfo{
			Symbol:     op.String(),
			Name:       op.Describe(),
			Precedence: op.Precedence(),
		})
	}
	for _, p := range expr.Params {
		info := ParamInfo{Symbol: p.String(), Name: p.Describe(), TakesArg: p.TakesArg()}
		if p.TakesArg() {
			info.DefaultArg = p.DefaultArg()
		}
		ref.Parameters = append(ref.Parameters, info)
	}
	return ref
}
