// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/jcodagnone/landing/spatial"
	"github.com/jcodagnone/landing/utils/httputils"
	"googlemaps.github.io/maps"
)

// GoogleMapsOptions configuration for the Google Maps geocoder.
type GoogleMapsOptions struct {
	// APIKey for the Geocoding API
	APIKey string

	// BaseURL overrides the Google Maps endpoint, used by tests
	BaseURL string

	// CountryCodes restricts results, only the first code is used as a
	// component filter
	CountryCodes string

	// UserAgent identifies the client
	UserAgent string

	// Timeout of the whole HTTP transaction
	Timeout time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool
}

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	client  *maps.Client
	country string
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder.
func NewGoogleMapsGeocoder(options *GoogleMapsOptions) (*GoogleMapsGeocoder, error) {
	if options == nil || options.APIKey == "" {
		return nil, fmt.Errorf("google maps geocoder requires an API key")
	}

	var trace io.Writer
	if options.EnableHTTPTrace {
		trace = os.Stderr
	}

	timeout := options.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	clientOptions := []maps.ClientOption{
		maps.WithAPIKey(options.APIKey),
		maps.WithHTTPClient(httputils.NewClient(
			timeout,
			map[string]string{"User-Agent": firstNonEmpty(options.UserAgent, DefaultUserAgent)},
			trace,
			false,
		)),
	}
	if options.BaseURL != "" {
		clientOptions = append(clientOptions, maps.WithBaseURL(options.BaseURL))
	}

	client, err := maps.NewClient(clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("creating google maps client: %w", err)
	}

	country, _, _ := strings.Cut(firstNonEmpty(options.CountryCodes, DefaultCountryCodes), ",")

	return &GoogleMapsGeocoder{
		client:  client,
		country: strings.ToUpper(strings.TrimSpace(country)),
	}, nil
}

// Suggest implements Geocoder.
func (g *GoogleMapsGeocoder) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	req := &maps.GeocodingRequest{
		Address: query,
		Region:  strings.ToLower(g.country),
		Components: map[maps.Component]string{
			maps.ComponentCountry: g.country,
		},
	}

	results, err := g.client.Geocode(ctx, req)
	if err != nil {
		return nil, classifyMapsError(err)
	}

	suggestions := make([]Suggestion, 0, min(len(results), MaxSuggestions))
	for _, r := range results {
		suggestions = append(suggestions, suggestionFromGoogle(r))
	}

	return capSuggestions(suggestions), nil
}

// suggestionFromGoogle extracts the suggestion fields out of the address
// components; locality wins over postal_town, which wins over sublocality.
func suggestionFromGoogle(r maps.GeocodingResult) Suggestion {
	component := func(kind string) string {
		for _, c := range r.AddressComponents {
			if slices.Contains(c.Types, kind) {
				return c.LongName
			}
		}

		return ""
	}

	s := Suggestion{
		Display: r.FormattedAddress,
		City:    firstNonEmpty(component("locality"), component("postal_town"), component("sublocality")),
		State:   component("administrative_area_level_1"),
		Postal:  component("postal_code"),
	}

	loc := r.Geometry.Location
	if loc.Lat != 0 || loc.Lng != 0 {
		s.Point = &spatial.Point{Lat: loc.Lat, Lng: loc.Lng}
	}

	return s
}

// classifyMapsError the maps client reports API statuses inside the error text.
func classifyMapsError(err error) error {
	lookupErr, _ := Unavailable("google maps geocoding failed", err).(*LookupError)
	if lookupErr.Type != ErrorTypeUnknown {
		return lookupErr
	}

	msg := err.Error()

	switch {
	case strings.Contains(msg, "OVER_QUERY_LIMIT"), strings.Contains(msg, "OVER_DAILY_LIMIT"),
		strings.Contains(msg, "REQUEST_DENIED"):
		lookupErr.Type = ErrorTypeQuotaExceeded
	case strings.Contains(msg, "INVALID_REQUEST"):
		lookupErr.Type = ErrorTypeInvalidRequest
	}

	return lookupErr
}
