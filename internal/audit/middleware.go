package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oakmere/nhsmcp/pkg/mcpserver"
)

// Middleware records every tools/call request with its outcome: "ok",
// the structured error kind, or "internal" for unstructured failures.
func Middleware(store *Store) mcpserver.Middleware {
	return func(next mcpserver.HandlerFunc) mcpserver.HandlerFunc {
		return func(ctx context.Context, req *mcpserver.Request) *mcpserver.Response {
			if req.Method != "tools/call" {
				return next(ctx, req)
			}

			start := time.Now()
			resp := next(ctx, req)
			store.Record(ctx, toolName(req), outcome(resp), time.Since(start))
			return resp
		}
	}
}

func toolName(req *mcpserver.Request) string {
	raw, err := json.Marshal(req.Params)
	if err != nil {
		return "unknown"
	}
	var call struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &call); err != nil || call.Name == "" {
		return "unknown"
	}
	return call.Name
}

func outcome(resp *mcpserver.Response) string {
	if resp == nil {
		return "ok"
	}
	if resp.Error != nil {
		return "internal"
	}
	result, ok := resp.Result.(*mcpserver.ToolResult)
	if !ok || !result.IsError {
		return "ok"
	}
	if detail, ok := mcpserver.ErrorDetailOf(result); ok {
		return detail.Kind
	}
	return "internal"
}
