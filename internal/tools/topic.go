package tools

import (
	"context"

	"github.com/oakmere/nhsmcp/internal/nhs"
	"github.com/oakmere/nhsmcp/pkg/mcpserver"
)

// HealthTopicTool looks up an NHS condition page by its URL slug.
// Only the full deployment profile registers it.
type HealthTopicTool struct {
	mcpserver.ToolSpec
	svc SearchService
}

func NewHealthTopicTool(svc SearchService) *HealthTopicTool {
	return &HealthTopicTool{
		ToolSpec: mcpserver.ToolSpec{
			ToolName:        "get_health_topic",
			ToolDescription: "Get NHS health condition information by topic slug (e.g., 'asthma', 'diabetes', 'flu')",
			ToolSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"topic": map[string]any{
						"type":        "string",
						"description": "URL slug of the health topic (e.g., 'asthma')",
					},
				},
				"required": []string{"topic"},
			},
		},
		svc: svc,
	}
}

func (t *HealthTopicTool) Call(ctx context.Context, args map[string]any) (*mcpserver.ToolResult, error) {
	slug, ok := stringArg(args, "topic")
	if !ok {
		return failure(nhs.InvalidArgument("topic", "parameter is required")), nil
	}

	topic, err := t.svc.GetHealthTopic(ctx, slug)
	if err != nil {
		return failure(err), nil
	}
	return mcpserver.JSONResult(topic), nil
}
