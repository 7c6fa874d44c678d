// Package nhs implements a typed client for the NHS service-search and
// conditions APIs: postcode geocoding, proximity search for NHS
// organizations, and health-topic lookup.
//
// The client is stateless beyond its configuration. Every operation is a
// single synchronous request with no retries and no caching; repeated
// identical queries re-issue the network call.
package nhs

// Coordinates is a validated latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PostcodeResult is the outcome of geocoding a UK postcode.
type PostcodeResult struct {
	Postcode  string  `json:"postcode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Coordinates returns the result's location as a Coordinates value.
func (p PostcodeResult) Coordinates() Coordinates {
	return Coordinates{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Organization is a single proximity-search hit, constructed fresh per
// response item and never mutated afterwards.
type Organization struct {
	ODSCode       string   `json:"odsCode"`
	Name          string   `json:"name"`
	TypeCode      string   `json:"organizationType"`
	Address       string   `json:"address,omitempty"`
	Town          string   `json:"town,omitempty"`
	County        string   `json:"county,omitempty"`
	Postcode      string   `json:"postcode,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	DistanceMiles float64  `json:"distanceMiles"`
}

// ContentSection is one heading/body pair of a health topic page.
type ContentSection struct {
	Headline string `json:"headline,omitempty"`
	Text     string `json:"text,omitempty"`
}

// HealthTopic is a condition page from the NHS content API.
type HealthTopic struct {
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	URL          string           `json:"url,omitempty"`
	DateModified string           `json:"dateModified,omitempty"`
	LastReviewed []string         `json:"lastReviewed,omitempty"`
	Genre        []string         `json:"genre,omitempty"`
	Sections     []ContentSection `json:"sections"`
}
