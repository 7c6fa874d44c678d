// Package metrics exposes Prometheus counters for tool invocations.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oakmere/nhsmcp/pkg/mcpserver"
)

// Collectors holds the server's metric instruments.
type Collectors struct {
	registry *prometheus.Registry

	toolCalls   *prometheus.CounterVec
	toolLatency *prometheus.HistogramVec
}

// New creates the collectors on their own registry.
func New() *Collectors {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collectors{
		registry: registry,
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nhsmcp",
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name and outcome",
		}, []string{"tool", "outcome"}),
		toolLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nhsmcp",
			Name:      "tool_latency_ms",
			Help:      "Tool invocation duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"tool"}),
	}
}

// Handler serves the /metrics scrape endpoint.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware instruments every tools/call request.
func (c *Collectors) Middleware() mcpserver.Middleware {
	return func(next mcpserver.HandlerFunc) mcpserver.HandlerFunc {
		return func(ctx context.Context, req *mcpserver.Request) *mcpserver.Response {
			if req.Method != "tools/call" {
				return next(ctx, req)
			}

			start := time.Now()
			resp := next(ctx, req)

			tool, outcome := observe(req, resp)
			c.toolCalls.WithLabelValues(tool, outcome).Inc()
			c.toolLatency.WithLabelValues(tool).Observe(float64(time.Since(start).Milliseconds()))
			return resp
		}
	}
}

func observe(req *mcpserver.Request, resp *mcpserver.Response) (tool, outcome string) {
	tool = "unknown"
	if params, ok := req.Params.(map[string]any); ok {
		if name, ok := params["name"].(string); ok && name != "" {
			tool = name
		}
	}

	outcome = "ok"
	if resp == nil {
		return tool, outcome
	}
	if resp.Error != nil {
		return tool, "internal"
	}
	if result, ok := resp.Result.(*mcpserver.ToolResult); ok && result.IsError {
		outcome = "internal"
		if detail, ok := mcpserver.ErrorDetailOf(result); ok {
			outcome = detail.Kind
		}
	}
	return tool, outcome
}
