package mcpserver

import (
	"context"
	"log/slog"
	"time"
)

// Logging logs every request, its outcome, and its duration.
func Logging(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *Response {
			start := time.Now()
			resp := next(ctx, req)
			elapsed := time.Since(start)
			if resp != nil && resp.Error != nil {
				logger.Error("mcp request failed", "method", req.Method, "id", req.ID,
					"code", resp.Error.Code, "message", resp.Error.Message, "elapsed", elapsed)
				return resp
			}
			logger.Info("mcp request", "method", req.Method, "id", req.ID, "elapsed", elapsed)
			return resp
		}
	}
}

// Recovery converts a handler panic into a JSON-RPC internal error.
func Recovery(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (resp *Response) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic in MCP handler", "method", req.Method, "panic", r)
					resp = &Response{
						JSONRPC: "2.0",
						ID:      req.ID,
						Error:   &RPCError{Code: codeInternalError, Message: "Internal error"},
					}
				}
			}()
			return next(ctx, req)
		}
	}
}
