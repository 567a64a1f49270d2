package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/plan-systems/klog"

	"github.com/ironsheep/image-glitch/internal/imaging"
)

// ProtocolVersion is the MCP revision the server speaks.
const ProtocolVersion = "2024-11-05"

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// Server answers MCP requests against one shared image cache, so an image
// loaded by one tool call is decoded only once for the session.
type Server struct {
	cache   *imaging.ImageCache
	version string
}

// MCPRequest is an incoming JSON-RPC request. Requests without an ID are
// notifications.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse carries either a Result or an Error.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError is a JSON-RPC error object.
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ServerInfo identifies the server in the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult answers the initialize request.
type InitializeResult struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities"`
	ServerInfo      ServerInfo             `json:"serverInfo"`
	Instructions    string                 `json:"instructions,omitempty"`
}

const instructions = `Glitch images with per-pixel expressions.
Start with glitch_reference for the operator and parameter list, check an
expression with glitch_compile, then run it with glitch_apply. Reuse the
reported seed to reproduce a result.`

// New returns a server reporting version in its handshake.
func New(version string) *Server {
	return &Server{
		cache:   imaging.NewImageCache(),
		version: version,
	}
}

// Run serves requests from stdin until it is closed.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from in and writes responses to
// out. Lines that are not JSON get a parse error with a null ID.
func (s *Server) Serve(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Requests carry expression lists, not image data.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp *MCPResponse
		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			klog.Warningf("failed to parse request: %v", err)
			resp = errorResponse(nil, codeParseError, "Parse error", err.Error())
		} else {
			klog.V(2).Infof("request %v: %s", req.ID, req.Method)
			resp = s.handleRequest(&req)
		}
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			klog.Errorf("failed to encode response: %v", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}
	return nil
}

// methods routes request methods to their handlers.
var methods = map[string]func(*Server, *MCPRequest) *MCPResponse{
	"initialize": (*Server).handleInitialize,
	"ping":       func(_ *Server, req *MCPRequest) *MCPResponse { return reply(req.ID, struct{}{}) },
	"tools/list": (*Server).handleToolsList,
	"tools/call": (*Server).handleToolsCall,
}

// handleRequest dispatches req. Notifications never get a response.
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	if strings.HasPrefix(req.Method, "notifications/") {
		return nil
	}
	handler, ok := methods[req.Method]
	if !ok {
		return errorResponse(req.ID, codeMethodNotFound, "Method not found: "+req.Method, "")
	}
	return handler(s, req)
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return reply(req.ID, &InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		ServerInfo:   ServerInfo{Name: "image-glitch", Version: s.version},
		Instructions: instructions,
	})
}

func reply(id, result interface{}) *MCPResponse {
	return &MCPResponse{JSONRPC: "2.0", ID: id, Result: result}
}

// errorResponse builds a JSON-RPC error. An empty data string is omitted.
func errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: e}
}
