// Package server implements the MCP (Model Context Protocol) server for the
// glitch engine.
//
// This package provides a JSON-RPC 2.0 server that lets MCP clients load
// images, check expressions, run glitch chains, and compare the results.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Load an image and get metadata
//   - image_dimensions: Get width and height
//   - image_sample_color: Get color at pixel
//
// Glitch Operations:
//   - glitch_compile: Parse an expression and report its tree or error position
//   - glitch_apply: Run an expression chain, writing a file or returning a preview
//   - glitch_compare: Compare two images, typically before and after
//   - glitch_reference: List operators and parameters
//
// # Image Caching
//
// The server keeps one image cache for its lifetime. Images are cached by
// path or URL and reused across tool calls.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A malformed expression passed to glitch_compile is not a tool failure: the
// result carries the error kind, offset, and token index instead.
package server
