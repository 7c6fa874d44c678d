package tools

import (
	"context"

	"github.com/oakmere/nhsmcp/internal/nhs"
	"github.com/oakmere/nhsmcp/pkg/mcpserver"
)

// OrganizationTypesTool lists the fixed table of NHS organization types.
// It never touches the network.
type OrganizationTypesTool struct {
	mcpserver.ToolSpec
}

func NewOrganizationTypesTool() *OrganizationTypesTool {
	return &OrganizationTypesTool{
		ToolSpec: mcpserver.ToolSpec{
			ToolName:        "get_organization_types",
			ToolDescription: "Get a list of all available NHS organization types with their descriptions",
			ToolSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
				"required":   []string{},
			},
		},
	}
}

func (t *OrganizationTypesTool) Call(ctx context.Context, args map[string]any) (*mcpserver.ToolResult, error) {
	return mcpserver.JSONResult(nhs.OrganizationTypes), nil
}

// ConvertPostcodeTool geocodes a UK postcode.
type ConvertPostcodeTool struct {
	mcpserver.ToolSpec
	svc SearchService
}

func NewConvertPostcodeTool(svc SearchService) *ConvertPostcodeTool {
	return &ConvertPostcodeTool{
		ToolSpec: mcpserver.ToolSpec{
			ToolName:        "convert_postcode_to_coordinates",
			ToolDescription: "Convert a UK postcode to latitude and longitude coordinates",
			ToolSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"postcode": map[string]any{
						"type":        "string",
						"description": "UK postcode to convert (e.g., 'SW1A 1AA')",
					},
				},
				"required": []string{"postcode"},
			},
		},
		svc: svc,
	}
}

func (t *ConvertPostcodeTool) Call(ctx context.Context, args map[string]any) (*mcpserver.ToolResult, error) {
	raw, ok := stringArg(args, "postcode")
	if !ok {
		return failure(nhs.InvalidArgument("postcode", "parameter is required")), nil
	}
	postcode, err := nhs.ValidatePostcode(raw)
	if err != nil {
		return failure(err), nil
	}

	result, err := t.svc.GeocodePostcode(ctx, postcode)
	if err != nil {
		return failure(err), nil
	}
	return mcpserver.JSONResult(result), nil
}

// SearchByPostcodeTool geocodes a postcode and then searches for nearby
// organizations of a given type. Both search tools converge on
// SearchByOrigin, so results match the coordinate variant.
type SearchByPostcodeTool struct {
	mcpserver.ToolSpec
	svc SearchService
}

func NewSearchByPostcodeTool(svc SearchService) *SearchByPostcodeTool {
	return &SearchByPostcodeTool{
		ToolSpec: mcpserver.ToolSpec{
			ToolName:        "search_organizations_by_postcode",
			ToolDescription: "Search for NHS organizations by type and postcode. First converts the postcode to coordinates, then searches for nearby organizations.",
			ToolSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"organizationType": map[string]any{
						"type":        "string",
						"description": "NHS organization type code (e.g., 'PHA', 'GPP', 'HOS'). Use get_organization_types to see all available types.",
					},
					"postcode": map[string]any{
						"type":        "string",
						"description": "UK postcode to search near (e.g., 'SW1A 1AA')",
					},
					"maxResults": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results to return (1-50, default: 10)",
						"default":     nhs.DefaultResultLimit,
						"minimum":     1,
						"maximum":     nhs.MaxResultLimit,
					},
				},
				"required": []string{"organizationType", "postcode"},
			},
		},
		svc: svc,
	}
}

func (t *SearchByPostcodeTool) Call(ctx context.Context, args map[string]any) (*mcpserver.ToolResult, error) {
	rawType, _ := stringArg(args, "organizationType")
	typeCode, err := nhs.ValidateOrganizationType(rawType)
	if err != nil {
		return failure(err), nil
	}

	rawPostcode, _ := stringArg(args, "postcode")
	postcode, err := nhs.ValidatePostcode(rawPostcode)
	if err != nil {
		return failure(err), nil
	}

	limit, err := nhs.ValidateResultLimit(args["maxResults"])
	if err != nil {
		return failure(err), nil
	}

	coords, err := t.svc.GeocodePostcode(ctx, postcode)
	if err != nil {
		return failure(err), nil
	}

	organizations, err := t.svc.SearchByOrigin(ctx, typeCode, coords.Coordinates(), limit)
	if err != nil {
		return failure(err), nil
	}
	return mcpserver.JSONResult(organizations), nil
}

// SearchByCoordinatesTool searches for organizations near explicit
// coordinates.
type SearchByCoordinatesTool struct {
	mcpserver.ToolSpec
	svc SearchService
}

func NewSearchByCoordinatesTool(svc SearchService) *SearchByCoordinatesTool {
	return &SearchByCoordinatesTool{
		ToolSpec: mcpserver.ToolSpec{
			ToolName:        "search_organizations_by_coordinates",
			ToolDescription: "Search for NHS organizations by type and coordinates (latitude/longitude)",
			ToolSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"organizationType": map[string]any{
						"type":        "string",
						"description": "NHS organization type code (e.g., 'PHA', 'GPP', 'HOS'). Use get_organization_types to see all available types.",
					},
					"latitude": map[string]any{
						"type":        "number",
						"description": "Latitude coordinate",
					},
					"longitude": map[string]any{
						"type":        "number",
						"description": "Longitude coordinate",
					},
					"maxResults": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results to return (1-50, default: 10)",
						"default":     nhs.DefaultResultLimit,
						"minimum":     1,
						"maximum":     nhs.MaxResultLimit,
					},
				},
				"required": []string{"organizationType", "latitude", "longitude"},
			},
		},
		svc: svc,
	}
}

func (t *SearchByCoordinatesTool) Call(ctx context.Context, args map[string]any) (*mcpserver.ToolResult, error) {
	rawType, _ := stringArg(args, "organizationType")
	typeCode, err := nhs.ValidateOrganizationType(rawType)
	if err != nil {
		return failure(err), nil
	}

	lat, ok := numberArg(args, "latitude")
	if !ok {
		return failure(nhs.InvalidArgument("latitude", "parameter is required and must be a number")), nil
	}
	lon, ok := numberArg(args, "longitude")
	if !ok {
		return failure(nhs.InvalidArgument("longitude", "parameter is required and must be a number")), nil
	}
	origin, err := nhs.ValidateCoordinates(lat, lon)
	if err != nil {
		return failure(err), nil
	}

	limit, err := nhs.ValidateResultLimit(args["maxResults"])
	if err != nil {
		return failure(err), nil
	}

	organizations, err := t.svc.SearchByOrigin(ctx, typeCode, origin, limit)
	if err != nil {
		return failure(err), nil
	}
	return mcpserver.JSONResult(organizations), nil
}
