// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode queries address search services and normalizes their
// results into address suggestions.
package geocode

import (
	"context"
	"strings"
	"unicode"

	"github.com/jcodagnone/landing/spatial"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSuggestions is the most results a lookup ever yields.
const MaxSuggestions = 5

// Suggestion is one normalized address search result. Missing upstream
// fields are empty strings.
type Suggestion struct {
	Display string         `json:"display"`
	City    string         `json:"city"`
	State   string         `json:"state"`
	Postal  string         `json:"postal"`
	Point   *spatial.Point `json:"point,omitempty"`
}

// Geocoder is implemented by every address search provider.
//
// Any error returned by Suggest belongs to the LookupUnavailable class, see
// LookupError.
type Geocoder interface {
	Suggest(ctx context.Context, query string) ([]Suggestion, error)
}

// GeocoderFunc adapts a function to the Geocoder interface.
type GeocoderFunc func(ctx context.Context, query string) ([]Suggestion, error)

// Suggest implements Geocoder.
func (f GeocoderFunc) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	return f(ctx, query)
}

// firstNonEmpty returns the first non blank value, trimmed.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}

	return ""
}

// capSuggestions enforces MaxSuggestions preserving upstream order.
func capSuggestions(s []Suggestion) []Suggestion {
	if len(s) > MaxSuggestions {
		return s[:MaxSuggestions]
	}

	return s
}

// FoldQuery normalizes a query by removing accents, lowercasing and
// collapsing spaces, so equivalent queries share a cache entry.
func FoldQuery(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.ToLower(s),
	)

	return strings.Join(strings.Fields(s), " ")
}
