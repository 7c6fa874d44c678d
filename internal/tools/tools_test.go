package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/oakmere/nhsmcp/internal/nhs"
	"github.com/oakmere/nhsmcp/pkg/mcpserver"
)

// fakeService is an in-memory SearchService. It records calls so tests can
// assert that invalid input never reaches the backend.
type fakeService struct {
	geocodeCalls int
	searchCalls  int

	postcodes map[string]nhs.PostcodeResult
	results   []nhs.Organization
	topics    map[string]nhs.HealthTopic
}

func newFakeService() *fakeService {
	westminster := nhs.PostcodeResult{Postcode: "SW1A 1AA", Latitude: 51.5007, Longitude: -0.1246}
	return &fakeService{
		postcodes: map[string]nhs.PostcodeResult{"SW1A 1AA": westminster},
		results: []nhs.Organization{
			{ODSCode: "FA100", Name: "Westminster Pharmacy", TypeCode: "PHA", DistanceMiles: 0.12},
			{ODSCode: "FA200", Name: "Camden Pharmacy", TypeCode: "PHA", DistanceMiles: 2.4},
		},
		topics: map[string]nhs.HealthTopic{
			"asthma": {Name: "Asthma", Sections: []nhs.ContentSection{{Headline: "Overview", Text: "..."}}},
		},
	}
}

func (f *fakeService) GeocodePostcode(ctx context.Context, postcode string) (nhs.PostcodeResult, error) {
	f.geocodeCalls++
	result, ok := f.postcodes[postcode]
	if !ok {
		return nhs.PostcodeResult{}, nhs.NotFound("postcode %q not found", postcode)
	}
	return result, nil
}

func (f *fakeService) SearchByOrigin(ctx context.Context, typeCode string, origin nhs.Coordinates, limit int) ([]nhs.Organization, error) {
	f.searchCalls++
	if limit < len(f.results) {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func (f *fakeService) GetHealthTopic(ctx context.Context, slug string) (nhs.HealthTopic, error) {
	topic, ok := f.topics[slug]
	if !ok {
		return nhs.HealthTopic{}, nhs.NotFound("health topic %q not found", slug)
	}
	return topic, nil
}

func call(t *testing.T, tool mcpserver.Tool, args map[string]any) *mcpserver.ToolResult {
	t.Helper()
	result, err := tool.Call(context.Background(), args)
	if err != nil {
		t.Fatalf("%s returned transport error: %v", tool.Name(), err)
	}
	return result
}

func decodeJSON(t *testing.T, result *mcpserver.ToolResult, out any) {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error result: %+v", result)
	}
	if err := json.Unmarshal([]byte(result.Content[0].Text), out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func wantKind(t *testing.T, result *mcpserver.ToolResult, kind nhs.ErrorKind) {
	t.Helper()
	detail, ok := mcpserver.ErrorDetailOf(result)
	if !ok {
		t.Fatalf("expected structured error, got: %+v", result)
	}
	if detail.Kind != string(kind) {
		t.Fatalf("expected kind %q, got %q (%s)", kind, detail.Kind, detail.Message)
	}
}

func TestForProfile(t *testing.T) {
	svc := newFakeService()

	base, err := ForProfile(svc, ProfileOrganisations)
	if err != nil {
		t.Fatal(err)
	}
	if len(base) != 4 {
		t.Fatalf("expected 4 tools for organisations profile, got %d", len(base))
	}

	full, err := ForProfile(svc, ProfileFull)
	if err != nil {
		t.Fatal(err)
	}
	if len(full) != 5 {
		t.Fatalf("expected 5 tools for full profile, got %d", len(full))
	}
	if full[4].Name() != "get_health_topic" {
		t.Fatalf("expected health topic tool last, got %q", full[4].Name())
	}

	if _, err := ForProfile(svc, "both"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestOrganizationTypesTool(t *testing.T) {
	result := call(t, NewOrganizationTypesTool(), nil)

	var table map[string]string
	decodeJSON(t, result, &table)
	if len(table) != len(nhs.OrganizationTypes) {
		t.Fatalf("expected %d types, got %d", len(nhs.OrganizationTypes), len(table))
	}
	if table["PHA"] != "Pharmacy" {
		t.Fatalf("expected PHA => Pharmacy, got %q", table["PHA"])
	}
}

func TestConvertPostcodeTool(t *testing.T) {
	svc := newFakeService()
	tool := NewConvertPostcodeTool(svc)

	var result nhs.PostcodeResult
	decodeJSON(t, call(t, tool, map[string]any{"postcode": "sw1a 1aa"}), &result)
	if result.Latitude != 51.5007 || result.Longitude != -0.1246 {
		t.Fatalf("unexpected coordinates: %+v", result)
	}

	wantKind(t, call(t, tool, map[string]any{"postcode": "ZZ99 9ZZ"}), nhs.KindNotFound)
	wantKind(t, call(t, tool, map[string]any{}), nhs.KindInvalidArgument)

	// Malformed postcodes are rejected before any backend call.
	before := svc.geocodeCalls
	wantKind(t, call(t, tool, map[string]any{"postcode": "nonsense"}), nhs.KindInvalidArgument)
	if svc.geocodeCalls != before {
		t.Fatal("validation failure must not reach the backend")
	}
}

func TestSearchByPostcodeTool(t *testing.T) {
	svc := newFakeService()
	tool := NewSearchByPostcodeTool(svc)

	var organizations []nhs.Organization
	decodeJSON(t, call(t, tool, map[string]any{
		"organizationType": "PHA",
		"postcode":         "SW1A 1AA",
		"maxResults":       float64(5),
	}), &organizations)

	if len(organizations) != 2 {
		t.Fatalf("expected 2 results, got %d", len(organizations))
	}
	for i, org := range organizations {
		if org.TypeCode != "PHA" {
			t.Fatalf("result %d has type %q, want PHA", i, org.TypeCode)
		}
		if i > 0 && org.DistanceMiles < organizations[i-1].DistanceMiles {
			t.Fatal("results must be sorted by non-decreasing distance")
		}
	}

	wantKind(t, call(t, tool, map[string]any{
		"organizationType": "XXX", "postcode": "SW1A 1AA",
	}), nhs.KindInvalidArgument)

	wantKind(t, call(t, tool, map[string]any{
		"organizationType": "PHA", "postcode": "ZZ99 9ZZ",
	}), nhs.KindNotFound)

	before := svc.searchCalls
	wantKind(t, call(t, tool, map[string]any{
		"organizationType": "PHA", "postcode": "SW1A 1AA", "maxResults": float64(51),
	}), nhs.KindInvalidArgument)
	if svc.searchCalls != before {
		t.Fatal("limit validation failure must not reach the backend")
	}
}

func TestSearchByCoordinatesTool(t *testing.T) {
	svc := newFakeService()
	tool := NewSearchByCoordinatesTool(svc)

	var organizations []nhs.Organization
	decodeJSON(t, call(t, tool, map[string]any{
		"organizationType": "PHA",
		"latitude":         51.5007,
		"longitude":        -0.1246,
	}), &organizations)
	if len(organizations) != 2 {
		t.Fatalf("expected 2 results, got %d", len(organizations))
	}

	wantKind(t, call(t, tool, map[string]any{
		"organizationType": "PHA", "latitude": 90.0001, "longitude": 0.0,
	}), nhs.KindInvalidArgument)

	wantKind(t, call(t, tool, map[string]any{
		"organizationType": "PHA", "latitude": 51.5,
	}), nhs.KindInvalidArgument)
}

// Both search paths converge on SearchByOrigin, so a postcode search and a
// coordinate search from the geocoded point return the same records.
func TestSearchPathsConverge(t *testing.T) {
	svc := newFakeService()

	var byPostcode []nhs.Organization
	decodeJSON(t, call(t, NewSearchByPostcodeTool(svc), map[string]any{
		"organizationType": "PHA", "postcode": "SW1A 1AA",
	}), &byPostcode)

	coords := svc.postcodes["SW1A 1AA"]
	var byCoords []nhs.Organization
	decodeJSON(t, call(t, NewSearchByCoordinatesTool(svc), map[string]any{
		"organizationType": "PHA",
		"latitude":         coords.Latitude,
		"longitude":        coords.Longitude,
	}), &byCoords)

	if len(byPostcode) != len(byCoords) {
		t.Fatalf("paths diverged: %d vs %d results", len(byPostcode), len(byCoords))
	}
	for i := range byPostcode {
		if byPostcode[i].ODSCode != byCoords[i].ODSCode {
			t.Fatalf("paths diverged at %d: %q vs %q",
				i, byPostcode[i].ODSCode, byCoords[i].ODSCode)
		}
	}
}

func TestHealthTopicTool(t *testing.T) {
	svc := newFakeService()
	tool := NewHealthTopicTool(svc)

	var topic nhs.HealthTopic
	decodeJSON(t, call(t, tool, map[string]any{"topic": "asthma"}), &topic)
	if topic.Name != "Asthma" || len(topic.Sections) == 0 {
		t.Fatalf("unexpected topic: %+v", topic)
	}

	wantKind(t, call(t, tool, map[string]any{"topic": "not-a-real-topic"}), nhs.KindNotFound)
	wantKind(t, call(t, tool, map[string]any{}), nhs.KindInvalidArgument)
}
