package mcpserver

import "encoding/json"

// JSON-RPC 2.0 wire types.

// Request is a JSON-RPC 2.0 request or notification.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON-RPC error codes used by this server.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInternalError  = -32603
)

// MCP protocol types.

// InitializeResult answers an initialize request.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
	SessionID       string       `json:"sessionId,omitempty"`
}

// Capabilities describes what the server supports.
type Capabilities struct {
	Tools ToolsCapability `json:"tools"`
}

// ToolsCapability describes the tools capability.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// ServerInfo identifies the server to the client.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolInfo is one entry of a tools/list response.
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ListToolsResult answers a tools/list request.
type ListToolsResult struct {
	Tools []ToolInfo `json:"tools"`
}

// ToolResult is the outcome of a tools/call invocation.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content is one block of tool output.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ErrorDetail is the structured failure payload carried in error results,
// so callers can branch on the kind instead of parsing prose.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// JSONResult marshals v as indented JSON into a successful text result.
func JSONResult(v any) *ToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return FailureResult("internal", "encode result: "+err.Error())
	}
	return &ToolResult{Content: []Content{{Type: "text", Text: string(data)}}}
}

// TextResult wraps plain text in a successful result.
func TextResult(text string) *ToolResult {
	return &ToolResult{Content: []Content{{Type: "text", Text: text}}}
}

// FailureResult builds an error result carrying a structured
// {kind, message} payload.
func FailureResult(kind, message string) *ToolResult {
	detail, err := json.Marshal(ErrorDetail{Kind: kind, Message: message})
	if err != nil {
		detail = []byte(`{"kind":"internal","message":"encode error detail"}`)
	}
	return &ToolResult{
		Content: []Content{{Type: "text", Text: string(detail)}},
		IsError: true,
	}
}

// ErrorDetailOf parses the structured payload out of an error result.
// It returns false for success results or unstructured content.
func ErrorDetailOf(res *ToolResult) (ErrorDetail, bool) {
	if res == nil || !res.IsError || len(res.Content) == 0 {
		return ErrorDetail{}, false
	}
	var detail ErrorDetail
	if err := json.Unmarshal([]byte(res.Content[0].Text), &detail); err != nil || detail.Kind == "" {
		return ErrorDetail{}, false
	}
	return detail, true
}
