package nhs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oakmere/nhsmcp/pkg/config"
)

const apiVersion = "2"

// Config holds the backend-specific configuration for the search client.
// Query-parameter names and index identifiers are configuration data, not
// part of the client's contract.
type Config struct {
	// Endpoint is the API Management base URL,
	// e.g. "https://nhsuk-apim-int-uks.azure-api.net".
	Endpoint string `yaml:"endpoint" json:"endpoint" env:"NHS_API_ENDPOINT"`

	// SubscriptionKey authenticates requests via the subscription-key header.
	SubscriptionKey string `yaml:"subscription_key" json:"subscription_key" env:"NHS_API_SUBSCRIPTION_KEY"`

	// PostcodeIndex is the geocoding index path segment.
	PostcodeIndex string `yaml:"postcode_index" json:"postcode_index" env:"NHS_API_POSTCODE_INDEX"`

	// ServiceIndex is the proximity-search index path segment.
	ServiceIndex string `yaml:"service_index" json:"service_index" env:"NHS_API_SERVICE_INDEX"`

	// Timeout applies to the default HTTP transport. The client itself
	// enforces no deadline beyond what the transport and ctx provide.
	Timeout config.Duration `yaml:"timeout" json:"timeout" env:"NHS_API_TIMEOUT"`
}

// DefaultConfig returns a Config pointing at the public NHS API Management
// endpoint. The subscription key must still be supplied.
func DefaultConfig() Config {
	return Config{
		Endpoint:      "https://nhsuk-apim-int-uks.azure-api.net",
		PostcodeIndex: "postcodesandplaces",
		ServiceIndex:  "service-search",
		Timeout:       config.Duration(30 * time.Second),
	}
}

// Client issues requests to the NHS service-search and conditions APIs.
// Configuration is captured once at construction and treated as read-only;
// the client holds no other state, so concurrent use needs no locking.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient builds a Client from cfg. An httpClient may be supplied for
// testing; pass nil to use a default client with cfg.Timeout applied.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("nhs: endpoint is required")
	}
	if cfg.SubscriptionKey == "" {
		return nil, fmt.Errorf("nhs: subscription key is required")
	}
	if cfg.PostcodeIndex == "" {
		cfg.PostcodeIndex = "postcodesandplaces"
	}
	if cfg.ServiceIndex == "" {
		cfg.ServiceIndex = "service-search"
	}
	if httpClient == nil {
		timeout := cfg.Timeout.Std()
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: slog.Default(),
	}, nil
}

// geocodeDocument is the backend's postcode hit. The API has returned both a
// wrapped {"value":[...]} list and a bare object over time, so both are
// handled.
type geocodeDocument struct {
	Latitude  *float64 `json:"Latitude"`
	Longitude *float64 `json:"Longitude"`
}

type geocodeResponse struct {
	Value []geocodeDocument `json:"value"`
	geocodeDocument
}

// GeocodePostcode converts a validated UK postcode into coordinates.
// It returns a not_found error when the index has no match.
func (c *Client) GeocodePostcode(ctx context.Context, postcode string) (PostcodeResult, error) {
	query := url.Values{
		"search":      {strings.ReplaceAll(postcode, " ", "")},
		"api-version": {apiVersion},
	}
	endpoint := fmt.Sprintf("%s/%s/%s/?%s",
		strings.TrimSuffix(c.cfg.Endpoint, "/"), c.cfg.ServiceIndex, c.cfg.PostcodeIndex, query.Encode())

	c.logger.Info("geocoding postcode", "postcode", postcode)

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return PostcodeResult{}, NotFound("postcode %q not found", postcode)
		}
		return PostcodeResult{}, err
	}

	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return PostcodeResult{}, UpstreamProtocolError("decode geocode response", err)
	}

	doc := resp.geocodeDocument
	if len(resp.Value) > 0 {
		doc = resp.Value[0]
	}
	if doc.Latitude == nil || doc.Longitude == nil {
		if len(resp.Value) == 0 && resp.geocodeDocument.Latitude == nil {
			return PostcodeResult{}, NotFound("postcode %q not found", postcode)
		}
		return PostcodeResult{}, UpstreamProtocolError("geocode response missing coordinates", nil)
	}

	return PostcodeResult{
		Postcode:  postcode,
		Latitude:  *doc.Latitude,
		Longitude: *doc.Longitude,
	}, nil
}

// searchRequest is the Azure Search query body for a proximity search.
type searchRequest struct {
	Search     string `json:"search"`
	Filter     string `json:"filter"`
	SearchMode string `json:"searchMode"`
	OrderBy    string `json:"orderby"`
	Top        int    `json:"top"`
	Count      bool   `json:"count"`
}

// searchDocument covers the two geocode layouts the service index has used:
// flat Latitude/Longitude fields and a nested Geocode object.
type searchDocument struct {
	ODSCode            string   `json:"ODSCode"`
	OrganisationName   string   `json:"OrganisationName"`
	OrganisationTypeID string   `json:"OrganisationTypeID"`
	Address1           string   `json:"Address1"`
	Address2           string   `json:"Address2"`
	Address3           string   `json:"Address3"`
	City               string   `json:"City"`
	County             string   `json:"County"`
	Postcode           string   `json:"Postcode"`
	Latitude           *float64 `json:"Latitude"`
	Longitude          *float64 `json:"Longitude"`
	Geocode            *struct {
		Latitude  float64 `json:"Latitude"`
		Longitude float64 `json:"Longitude"`
	} `json:"Geocode"`
}

type searchResponse struct {
	Value []searchDocument `json:"value"`
}

// SearchByOrigin runs a proximity query for organizations of the given type,
// ordered by ascending distance from origin and truncated to limit entries.
// Zero matches yield an empty slice, not an error.
func (c *Client) SearchByOrigin(ctx context.Context, typeCode string, origin Coordinates, limit int) ([]Organization, error) {
	if limit < 1 {
		limit = DefaultResultLimit
	}
	if limit > MaxResultLimit {
		limit = MaxResultLimit
	}

	reqBody := searchRequest{
		Search:     "*",
		Filter:     fmt.Sprintf("OrganisationTypeID eq '%s'", typeCode),
		SearchMode: "all",
		OrderBy: fmt.Sprintf("geo.distance(Geocode, geography'POINT(%v %v)')",
			origin.Longitude, origin.Latitude),
		Top:   limit,
		Count: true,
	}

	endpoint := fmt.Sprintf("%s/%s/search?api-version=%s",
		strings.TrimSuffix(c.cfg.Endpoint, "/"), c.cfg.ServiceIndex, apiVersion)

	c.logger.Info("searching organizations", "type", typeCode,
		"latitude", origin.Latitude, "longitude", origin.Longitude, "limit", limit)

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, UpstreamProtocolError("decode search response", err)
	}

	organizations := make([]Organization, 0, len(resp.Value))
	for _, doc := range resp.Value {
		organizations = append(organizations, doc.toOrganization(origin))
	}

	c.logger.Info("search complete", "type", typeCode, "results", len(organizations))
	return organizations, nil
}

func (d searchDocument) toOrganization(origin Coordinates) Organization {
	org := Organization{
		ODSCode:  d.ODSCode,
		Name:     d.OrganisationName,
		TypeCode: d.OrganisationTypeID,
		Town:     d.City,
		County:   d.County,
		Postcode: d.Postcode,
	}

	var parts []string
	for _, p := range []string{d.Address1, d.Address2, d.Address3, d.City, d.County} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	org.Address = strings.Join(parts, ", ")

	var lat, lon float64
	switch {
	case d.Geocode != nil:
		lat, lon = d.Geocode.Latitude, d.Geocode.Longitude
	case d.Latitude != nil && d.Longitude != nil:
		lat, lon = *d.Latitude, *d.Longitude
	default:
		return org
	}
	org.Latitude = &lat
	org.Longitude = &lon
	org.DistanceMiles = round2(haversineMiles(origin.Latitude, origin.Longitude, lat, lon))
	return org
}

// haversineMiles returns the great-circle distance between two points.
func haversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusMiles = 3959

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// do performs one request and maps transport and status failures into the
// client error taxonomy. No retries: the backend is the source of truth and
// repeated queries re-issue the call.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("subscription-key", c.cfg.SubscriptionKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, UpstreamUnavailable("request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, UpstreamUnavailable("read response body", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NotFound("resource not found")
	case resp.StatusCode >= 500:
		return nil, UpstreamUnavailable(fmt.Sprintf("backend returned %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return nil, UpstreamProtocolError(fmt.Sprintf("backend rejected request with %d", resp.StatusCode), nil)
	}

	return respBody, nil
}
