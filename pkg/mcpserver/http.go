package mcpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HTTPOptions configures the HTTP transport.
type HTTPOptions struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// AuthToken, when set, requires "Authorization: Bearer <AuthToken>"
	// on every request.
	AuthToken string

	// JWTSecret, when set, instead accepts any bearer token that is a
	// valid HS256 JWT signed with this secret.
	JWTSecret []byte

	// Extra handlers mounted on the mux, e.g. a Prometheus /metrics
	// endpoint. Paths here must not collide with /mcp, /api or /health.
	Extra map[string]http.Handler
}

// HTTPServer serves the MCP protocol over HTTP with SSE support.
type HTTPServer struct {
	server *Server
	opts   HTTPOptions
	logger *slog.Logger
}

// RunHTTP starts the server on an HTTP endpoint and blocks.
func (s *Server) RunHTTP(opts HTTPOptions) error {
	hs := &HTTPServer{server: s, opts: opts, logger: s.logger}
	return hs.ListenAndServe()
}

// ListenAndServe starts the HTTP listener.
func (hs *HTTPServer) ListenAndServe() error {
	hs.logger.Info("starting MCP server (http)",
		"addr", hs.opts.Addr, "tools", len(hs.server.tools), "auth", hs.opts.AuthToken != "" || len(hs.opts.JWTSecret) > 0)
	return http.ListenAndServe(hs.opts.Addr, hs.Handler())
}

// Handler builds the HTTP handler; exposed separately for httptest.
func (hs *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/mcp", hs.handleRPC)
	mux.HandleFunc("GET /api/tools", hs.handleListTools)
	mux.HandleFunc("POST /api/tools/{name}", hs.handleCallTool)
	mux.HandleFunc("/health", hs.handleHealth)
	for path, h := range hs.opts.Extra {
		mux.Handle(path, h)
	}

	return hs.cors(hs.auth(mux))
}

func (hs *HTTPServer) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Mcp-Session-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// auth enforces bearer-token or JWT authentication when configured.
// The health endpoint stays open for probes.
func (hs *HTTPServer) auth(next http.Handler) http.Handler {
	if hs.opts.AuthToken == "" && len(hs.opts.JWTSecret) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		switch {
		case hs.opts.AuthToken != "" && token == hs.opts.AuthToken:
			// static token match
		case len(hs.opts.JWTSecret) > 0 && hs.validJWT(token):
			// signed token match
		default:
			http.Error(w, "invalid bearer token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (hs *HTTPServer) validJWT(tokenString string) bool {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return hs.opts.JWTSecret, nil
	})
	return err == nil && token.Valid
}

func (hs *HTTPServer) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		hs.writeRPCError(w, codeParseError, "Parse error")
		return
	}

	// Every method other than initialize needs a session from a prior
	// initialize exchange.
	if req.Method != "initialize" {
		sessionID := r.Header.Get("Mcp-Session-Id")
		if sessionID == "" || !hs.server.ValidSession(sessionID) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
	}

	resp := hs.server.Handle(r.Context(), &req)

	if req.Method == "initialize" && resp != nil && resp.Error == nil {
		if result, ok := resp.Result.(*InitializeResult); ok && result.SessionID != "" {
			w.Header().Set("Mcp-Session-Id", result.SessionID)
		}
	}

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		hs.writeSSE(w, resp)
		return
	}
	hs.writeJSON(w, resp)
}

func (hs *HTTPServer) handleListTools(w http.ResponseWriter, r *http.Request) {
	hs.writeJSON(w, hs.server.listTools())
}

func (hs *HTTPServer) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		http.Error(w, "Tool name required", http.StatusBadRequest)
		return
	}

	var args map[string]any
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := hs.server.callTool(r.Context(), map[string]any{
		"name":      name,
		"arguments": args,
	})
	hs.writeJSON(w, result)
}

func (hs *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	hs.writeJSON(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"server":    hs.server.name,
		"version":   hs.server.version,
	})
}

func (hs *HTTPServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (hs *HTTPServer) writeSSE(w http.ResponseWriter, resp *Response) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		hs.writeJSON(w, resp)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: endpoint\ndata: %s\n\n", "/mcp")
	flusher.Flush()

	data, _ := json.Marshal(resp)
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

func (hs *HTTPServer) writeRPCError(w http.ResponseWriter, code int, message string) {
	hs.writeJSON(w, Response{
		JSONRPC: "2.0",
		Error:   &RPCError{Code: code, Message: message},
	})
}
