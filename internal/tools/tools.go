// Package tools defines the MCP tools exposed by the NHS search server and
// their parameter contracts.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/oakmere/nhsmcp/internal/nhs"
	"github.com/oakmere/nhsmcp/pkg/mcpserver"
)

// SearchService is the slice of the NHS client the tools depend on.
// *nhs.Client satisfies it; tests substitute a fake.
type SearchService interface {
	GeocodePostcode(ctx context.Context, postcode string) (nhs.PostcodeResult, error)
	SearchByOrigin(ctx context.Context, typeCode string, origin nhs.Coordinates, limit int) ([]nhs.Organization, error)
	GetHealthTopic(ctx context.Context, slug string) (nhs.HealthTopic, error)
}

// Deployment profiles. The organisations profile exposes the four
// service-search tools; the full profile adds health-topic lookup.
const (
	ProfileOrganisations = "organisations"
	ProfileFull          = "full"
)

// ForProfile returns the tool set for a deployment profile.
func ForProfile(svc SearchService, profile string) ([]mcpserver.Tool, error) {
	base := []mcpserver.Tool{
		NewOrganizationTypesTool(),
		NewConvertPostcodeTool(svc),
		NewSearchByPostcodeTool(svc),
		NewSearchByCoordinatesTool(svc),
	}
	switch profile {
	case ProfileOrganisations:
		return base, nil
	case ProfileFull:
		return append(base, NewHealthTopicTool(svc)), nil
	default:
		return nil, fmt.Errorf("unknown profile %q (expected %q or %q)",
			profile, ProfileOrganisations, ProfileFull)
	}
}

// failure maps a domain error into a structured tool error result.
// Anything that is not an *nhs.Error is surfaced as an internal failure.
func failure(err error) *mcpserver.ToolResult {
	var nerr *nhs.Error
	if errors.As(err, &nerr) {
		return mcpserver.FailureResult(string(nerr.Kind), nerr.Message)
	}
	return mcpserver.FailureResult("internal", err.Error())
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok
}

func numberArg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key].(float64)
	return v, ok
}
