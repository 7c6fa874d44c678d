package nhs

import (
	"math"
	"regexp"
	"strings"
)

// DefaultResultLimit is used when a search does not specify maxResults.
const DefaultResultLimit = 10

// MaxResultLimit caps how many organizations a single search may return.
const MaxResultLimit = 50

// UK postcode shape: one or two letter outward area, district number with
// optional letter/digit suffix, then a space-separated inward "NAA" group.
// Shape only; existence is the geocoder's problem.
var postcodePattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]?\s?[0-9][A-Z]{2}$`)

// ValidateOrganizationType uppercases code and checks it against the fixed
// table of recognized organization types.
func ValidateOrganizationType(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return "", InvalidArgument("organizationType", "must not be empty")
	}
	if _, ok := OrganizationTypes[normalized]; !ok {
		return "", InvalidArgument("organizationType", "unrecognized code %q, expected one of %s",
			code, strings.Join(OrganizationTypeCodes(), ", "))
	}
	return normalized, nil
}

// ValidatePostcode trims and uppercases text and checks it against the UK
// postcode shape. It does not verify that the postcode exists.
func ValidatePostcode(text string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(text))
	if normalized == "" {
		return "", InvalidArgument("postcode", "must not be empty")
	}
	if !postcodePattern.MatchString(normalized) {
		return "", InvalidArgument("postcode", "%q is not a valid UK postcode", text)
	}
	return normalized, nil
}

// ValidateCoordinates checks that lat and lon are finite and within range.
// The boundary values themselves (±90, ±180) are accepted.
func ValidateCoordinates(lat, lon float64) (Coordinates, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return Coordinates{}, InvalidArgument("latitude", "must be a finite number")
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return Coordinates{}, InvalidArgument("longitude", "must be a finite number")
	}
	if lat < -90 || lat > 90 {
		return Coordinates{}, InvalidArgument("latitude", "%v is outside [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return Coordinates{}, InvalidArgument("longitude", "%v is outside [-180, 180]", lon)
	}
	return Coordinates{Latitude: lat, Longitude: lon}, nil
}

// ValidateResultLimit coerces a JSON maxResults value to an int. A nil value
// means the caller omitted it and the default applies. Fractional numbers are
// rejected rather than truncated.
func ValidateResultLimit(v any) (int, error) {
	if v == nil {
		return DefaultResultLimit, nil
	}

	var n int
	switch value := v.(type) {
	case int:
		n = value
	case float64:
		if value != math.Trunc(value) {
			return 0, InvalidArgument("maxResults", "must be an integer, got %v", value)
		}
		n = int(value)
	default:
		return 0, InvalidArgument("maxResults", "must be an integer, got %T", v)
	}

	if n < 1 || n > MaxResultLimit {
		return 0, InvalidArgument("maxResults", "%d is outside [1, %d]", n, MaxResultLimit)
	}
	return n, nil
}
