package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var regionSchema = map[string]interface{}{
	"type":        "object",
	"description": "Rectangle to restrict the operation to; (x1,y1) inclusive, (x2,y2) exclusive",
	"properties": map[string]interface{}{
		"x1": map[string]interface{}{"type": "integer"},
		"y1": map[string]interface{}{"type": "integer"},
		"x2": map[string]interface{}{"type": "integer"},
		"y2": map[string]interface{}{"type": "integer"},
	},
	"required": []string{"x1", "y1", "x2", "y2"},
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path or http(s) URL of the image",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file or URL and return its dimensions, format, frame count, and whether it has transparency.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color value at a specific pixel coordinate as hex, RGB, RGBA, and HSL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},

		// Glitch Operations
		{
			Name:        "glitch_compile",
			Description: "Compile a glitch expression without running it. Returns the fully parenthesized tree and a token listing, or the kind, offset, and reason of the first error.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"expression": map[string]interface{}{
						"type":        "string",
						"description": "Expression text, e.g. \"c + 10\" or \"(r16 @ b) ^ N\"",
					},
				},
				"required": []string{"expression"},
			},
		},
		{
			Name:        "glitch_apply",
			Description: "Run a chain of glitch expressions over an image. With an output path all frames are written to disk; otherwise the first frame is returned as a base64-encoded PNG preview. The seed used is always reported so results can be reproduced.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"expressions": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Expressions applied in order; each pass feeds the next",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Optional output path; the extension picks the format (.gif keeps animation)",
					},
					"seed": map[string]interface{}{
						"type":        "integer",
						"description": "Optional random seed. Default: derived from the clock",
					},
					"iterations": map[string]interface{}{
						"type":        "integer",
						"description": "Times to repeat the whole chain. Default 1",
						"default":     1,
					},
					"feedback": map[string]interface{}{
						"type":        "boolean",
						"description": "Every pass reads the original image; only the saved image (s) advances",
						"default":     false,
					},
					"no_state": map[string]interface{}{
						"type":        "boolean",
						"description": "Give every random leaf (r, t, g) its own draw instead of sharing one per pixel",
						"default":     false,
					},
					"region": regionSchema,
					"named_region": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"full", "top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"},
						"description": "Named region to glitch instead of explicit coordinates",
					},
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return a preview when writing an output file",
						"default":     false,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Preview scale factor. Default 1.0",
						"default":     1.0,
					},
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Draw a labeled coordinate grid every N pixels on the preview. Default 0 (no grid)",
						"default":     0,
					},
				},
				"required": []string{"path", "expressions"},
			},
		},
		{
			Name:        "glitch_compare",
			Description: "Compare two images pixel by pixel (for example before and after a glitch) and report similarity, differing pixels, and average color difference.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path1":  pathProperty,
					"path2":  pathProperty,
					"region": regionSchema,
				},
				"required": []string{"path1", "path2"},
			},
		},
		{
			Name:        "glitch_reference",
			Description: "List the expression language: operators with precedence and every parameter letter with its meaning and default argument.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return reply(req.ID, map[string]interface{}{
		"tools": GetToolDefinitions(),
	})
}
