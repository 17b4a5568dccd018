// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jcodagnone/landing/spatial"
	"github.com/jcodagnone/landing/utils/httputils"
)

// Nominatim defaults.
const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	DefaultUserAgent    = "ContactSection/1.0 (mail@example.com)"
	DefaultCountryCodes = "us"
)

// NominatimOptions configuration for the Nominatim geocoder.
type NominatimOptions struct {
	// BaseURL of the Nominatim instance, without the /search path
	BaseURL string

	// UserAgent identifies the client, as required by the usage policy
	UserAgent string

	// CountryCodes restricts results, comma separated ISO 3166-1 alpha2 codes
	CountryCodes string

	// Limit is the number of results requested, at most MaxSuggestions
	Limit int

	// Timeout of the whole HTTP transaction. Zero means no timeout besides
	// the caller's context.
	Timeout time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool
}

// Nominatim looks up addresses in an OpenStreetMap Nominatim instance.
type Nominatim struct {
	searchURL    string
	countryCodes string
	limit        int
	httpClient   *http.Client
}

// NewNominatim creates a new Nominatim geocoder.
func NewNominatim(options *NominatimOptions) *Nominatim {
	if options == nil {
		options = &NominatimOptions{}
	}

	baseURL := strings.TrimRight(firstNonEmpty(options.BaseURL, DefaultNominatimURL), "/")
	userAgent := firstNonEmpty(options.UserAgent, DefaultUserAgent)

	limit := options.Limit
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	var trace io.Writer
	if options.EnableHTTPTrace || options.EnableHTTPBodyTrace {
		trace = os.Stderr
	}

	return &Nominatim{
		searchURL:    baseURL + "/search",
		countryCodes: firstNonEmpty(options.CountryCodes, DefaultCountryCodes),
		limit:        limit,
		httpClient: httputils.NewClient(
			options.Timeout,
			map[string]string{"User-Agent": userAgent, "Accept": "application/json"},
			trace,
			options.EnableHTTPBodyTrace,
		),
	}
}

type nominatimAddress struct {
	City     string `json:"city"`
	Town     string `json:"town"`
	Village  string `json:"village"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
}

type nominatimPlace struct {
	DisplayName string            `json:"display_name"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Address     *nominatimAddress `json:"address"`
}

var errMissingAddress = errors.New("record without address details")

func (p *nominatimPlace) toSuggestion() (Suggestion, error) {
	if p.Address == nil {
		return Suggestion{}, errMissingAddress
	}

	s := Suggestion{
		Display: p.DisplayName,
		City:    firstNonEmpty(p.Address.City, p.Address.Town, p.Address.Village),
		State:   strings.TrimSpace(p.Address.State),
		Postal:  strings.TrimSpace(p.Address.Postcode),
	}

	// coordinates are a nice to have
	if pt, err := spatial.ParsePoint(p.Lat, p.Lon); err == nil {
		s.Point = pt
	}

	return s, nil
}

// Suggest implements Geocoder.
func (n *Nominatim) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(n.limit))
	params.Set("countrycodes", n.countryCodes)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &LookupError{Type: ErrorTypeInvalidRequest, Message: "building nominatim request", Err: err}
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, Unavailable("nominatim request failed", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		lookupErr := ClassifyHTTPError(resp.StatusCode)
		lookupErr.Message = "nominatim: " + lookupErr.Message

		return nil, lookupErr
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, Unavailable("reading nominatim response", ctxErr)
		}

		return nil, &LookupError{Type: ErrorTypeMalformed, Message: "decoding nominatim response", Err: err}
	}

	places = places[:min(len(places), MaxSuggestions)]
	suggestions := make([]Suggestion, 0, len(places))

	for i := range places {
		s, err := places[i].toSuggestion()
		if err != nil {
			return nil, &LookupError{
				Type:    ErrorTypeMalformed,
				Message: fmt.Sprintf("nominatim result %d", i),
				Err:     err,
			}
		}

		suggestions = append(suggestions, s)
	}

	return suggestions, nil
}
