package mcpserver

import "context"

// Tool is the interface every registered tool implements.
type Tool interface {
	// Name returns the unique tool name.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// InputSchema returns the JSON Schema for the tool's arguments.
	InputSchema() map[string]any

	// Call executes the tool. A returned error becomes an internal-error
	// result; tools that want a structured failure payload should return
	// a FailureResult instead.
	Call(ctx context.Context, args map[string]any) (*ToolResult, error)
}

// ToolSpec carries the static fields of a tool. Embed it and implement Call.
type ToolSpec struct {
	ToolName        string
	ToolDescription string
	ToolSchema      map[string]any
}

func (t *ToolSpec) Name() string                { return t.ToolName }
func (t *ToolSpec) Description() string         { return t.ToolDescription }
func (t *ToolSpec) InputSchema() map[string]any { return t.ToolSchema }

// HandlerFunc processes a single JSON-RPC request.
type HandlerFunc func(ctx context.Context, req *Request) *Response

// Middleware wraps a HandlerFunc with cross-cutting behavior.
type Middleware func(next HandlerFunc) HandlerFunc
