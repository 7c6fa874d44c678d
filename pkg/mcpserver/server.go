// Package mcpserver implements a small MCP (Model Context Protocol) server:
// JSON-RPC 2.0 over stdio or HTTP/SSE, a tool registration interface, a
// middleware chain, and session tracking for the HTTP transport.
//
// Typical use:
//
//	srv := mcpserver.New("my-server", "1.0.0")
//	srv.Register(&MyTool{})
//	srv.RunStdio(ctx)
package mcpserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

const protocolVersion = "2024-11-05"

// Server dispatches JSON-RPC requests to registered tools.
type Server struct {
	name    string
	version string

	tools map[string]Tool
	order []string // registration order, for stable tools/list output

	middleware []Middleware

	sessionMu sync.RWMutex
	sessions  map[string]time.Time

	logger *slog.Logger
}

// New creates a server with the given identity.
func New(name, version string) *Server {
	return &Server{
		name:     name,
		version:  version,
		tools:    make(map[string]Tool),
		sessions: make(map[string]time.Time),
		logger:   slog.Default(),
	}
}

// SetLogger replaces the server's logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Register adds a tool. Registering a name twice replaces the earlier tool.
func (s *Server) Register(tool Tool) {
	if _, exists := s.tools[tool.Name()]; !exists {
		s.order = append(s.order, tool.Name())
	}
	s.tools[tool.Name()] = tool
	s.logger.Info("registered tool", "name", tool.Name())
}

// RegisterAll adds multiple tools in order.
func (s *Server) RegisterAll(tools ...Tool) {
	for _, tool := range tools {
		s.Register(tool)
	}
}

// Use appends middleware to the processing chain.
func (s *Server) Use(mw Middleware) {
	s.middleware = append(s.middleware, mw)
}

// RunStdio serves requests from stdin and writes responses to stdout until
// EOF or ctx cancellation. Logs must go to stderr; stdout carries only
// protocol frames.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("starting MCP server (stdio)",
		"name", s.name, "version", s.version, "tools", len(s.tools))
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads newline-delimited JSON-RPC requests from r and writes
// responses to w. Exposed separately from RunStdio for tests.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	decoder := json.NewDecoder(r)
	encoder := json.NewEncoder(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req Request
		if err := decoder.Decode(&req); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("decode request: %w", err)
		}

		resp := s.Handle(ctx, &req)
		if resp == nil {
			continue // notification
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
	}
}

// Handle runs a single request through the middleware chain.
func (s *Server) Handle(ctx context.Context, req *Request) *Response {
	handler := s.dispatch
	for i := len(s.middleware) - 1; i >= 0; i-- {
		handler = s.middleware[i](handler)
	}
	return handler(ctx, req)
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	resp := &Response{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		resp.Result = s.initialize()
	case "notifications/initialized":
		s.logger.Info("client initialized")
		return nil
	case "tools/list":
		resp.Result = s.listTools()
	case "tools/call":
		resp.Result = s.callTool(ctx, req.Params)
	default:
		resp.Error = &RPCError{
			Code:    codeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
	}
	return resp
}

func (s *Server) initialize() *InitializeResult {
	return &InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: Capabilities{
			Tools: ToolsCapability{ListChanged: false},
		},
		ServerInfo: ServerInfo{Name: s.name, Version: s.version},
		SessionID:  s.createSession(),
	}
}

func (s *Server) listTools() *ListToolsResult {
	tools := make([]ToolInfo, 0, len(s.order))
	for _, name := range s.order {
		tool := s.tools[name]
		tools = append(tools, ToolInfo{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.InputSchema(),
		})
	}
	return &ListToolsResult{Tools: tools}
}

func (s *Server) callTool(ctx context.Context, params any) any {
	raw, err := json.Marshal(params)
	if err != nil {
		return FailureResult("internal", "parse params: "+err.Error())
	}

	var call struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(raw, &call); err != nil {
		return FailureResult("internal", "unmarshal params: "+err.Error())
	}

	tool, ok := s.tools[call.Name]
	if !ok {
		return FailureResult("invalid_argument", fmt.Sprintf("tool not found: %s", call.Name))
	}

	result, err := tool.Call(ctx, call.Arguments)
	if err != nil {
		return FailureResult("internal", err.Error())
	}
	return result
}

// Session tracking (HTTP transport only; the stdio transport is one client).

func (s *Server) createSession() string {
	id := newSessionID()
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	s.sessions[id] = time.Now()
	return id
}

// ValidSession reports whether id belongs to an initialized session.
func (s *Server) ValidSession(id string) bool {
	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("sess-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
