// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/landing/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const springfieldResponse = `[
  {
    "place_id": 1,
    "lat": "39.7817",
    "lon": "-89.6501",
    "display_name": "123 Main St, Springfield, IL, 62704",
    "address": {"road": "Main St", "city": "Springfield", "state": "IL", "postcode": "62704"}
  },
  {
    "lat": "33.9533",
    "lon": "-117.3961",
    "display_name": "123 Main St, Riverside, California, 92501",
    "address": {"town": "Riverside", "village": "Ignored", "state": "California", "postcode": "92501"}
  },
  {
    "display_name": "Main St, Smallville, Kansas",
    "address": {"village": "Smallville", "state": "Kansas"}
  }
]`

func newTestNominatim(t *testing.T, handler http.HandlerFunc) *Nominatim {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return NewNominatim(&NominatimOptions{BaseURL: ts.URL, UserAgent: "landing-test/1.0 (qa@example.com)"})
}

func TestNominatimSuggest(t *testing.T) {
	var got *http.Request

	n := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(springfieldResponse))
	})

	suggestions, err := n.Suggest(context.Background(), "123 Main St")
	require.NoError(t, err)

	want := []Suggestion{
		{
			Display: "123 Main St, Springfield, IL, 62704",
			City:    "Springfield",
			State:   "IL",
			Postal:  "62704",
			Point:   &spatial.Point{Lat: 39.7817, Lng: -89.6501},
		},
		{
			Display: "123 Main St, Riverside, California, 92501",
			City:    "Riverside",
			State:   "California",
			Postal:  "92501",
			Point:   &spatial.Point{Lat: 33.9533, Lng: -117.3961},
		},
		{
			Display: "Main St, Smallville, Kansas",
			City:    "Smallville",
			State:   "Kansas",
		},
	}
	if diff := cmp.Diff(want, suggestions); diff != "" {
		t.Errorf("Suggest() mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, got)
	assert.Equal(t, "/search", got.URL.Path)

	q := got.URL.Query()
	assert.Equal(t, "123 Main St", q.Get("q"))
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "1", q.Get("addressdetails"))
	assert.Equal(t, "5", q.Get("limit"))
	assert.Equal(t, "us", q.Get("countrycodes"))
	assert.Equal(t, "landing-test/1.0 (qa@example.com)", got.Header.Get("User-Agent"))
}

func TestNominatimSuggestCapsResults(t *testing.T) {
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"display_name": "1", "address": {}}, {"display_name": "2", "address": {}},
			{"display_name": "3", "address": {}}, {"display_name": "4", "address": {}},
			{"display_name": "5", "address": {}}, {"display_name": "6", "address": {}},
			{"display_name": "7", "address": {}}
		]`))
	})

	suggestions, err := n.Suggest(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, suggestions, MaxSuggestions)
	assert.Equal(t, "1", suggestions[0].Display)
	assert.Equal(t, "5", suggestions[4].Display)
}

func TestNominatimSuggestEmpty(t *testing.T) {
	for _, body := range []string{"[]", "null"} {
		n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		})

		suggestions, err := n.Suggest(context.Background(), "nowhere at all")
		require.NoError(t, err, body)
		assert.Empty(t, suggestions, body)
	}
}

func TestNominatimSuggestFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType ErrorType
	}{
		{name: "throttled", status: http.StatusTooManyRequests, body: "", wantType: ErrorTypeRateLimit},
		{name: "blocked", status: http.StatusForbidden, body: "", wantType: ErrorTypeQuotaExceeded},
		{name: "outage", status: http.StatusBadGateway, body: "<html>", wantType: ErrorTypeNetworkError},
		{name: "not json", status: http.StatusOK, body: "<html>oops</html>", wantType: ErrorTypeMalformed},
		{name: "object instead of list", status: http.StatusOK, body: `{"error": "x"}`, wantType: ErrorTypeMalformed},
		{name: "missing address", status: http.StatusOK, body: `[{"display_name": "x"}]`, wantType: ErrorTypeMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			suggestions, err := n.Suggest(context.Background(), "123 Main St")
			require.Error(t, err)
			assert.Nil(t, suggestions)
			assert.ErrorIs(t, err, ErrLookupUnavailable)
			assert.Equal(t, tt.wantType, TypeOf(err))
		})
	}
}

func TestNominatimSuggestNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	n := NewNominatim(&NominatimOptions{BaseURL: url})

	_, err := n.Suggest(context.Background(), "123 Main St")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLookupUnavailable)
	assert.Equal(t, ErrorTypeNetworkError, TypeOf(err))
}

func TestNominatimSuggestTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	n := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := n.Suggest(ctx, "123 Main St")
	require.Error(t, err)
	assert.True(t, IsTimeoutError(err), "got %v", err)
}

func TestNewNominatimDefaults(t *testing.T) {
	n := NewNominatim(nil)

	assert.Equal(t, DefaultNominatimURL+"/search", n.searchURL)
	assert.Equal(t, DefaultCountryCodes, n.countryCodes)
	assert.Equal(t, MaxSuggestions, n.limit)

	n = NewNominatim(&NominatimOptions{BaseURL: "http://localhost:8088/", Limit: 50, CountryCodes: "us,ca"})
	assert.Equal(t, "http://localhost:8088/search", n.searchURL)
	assert.Equal(t, "us,ca", n.countryCodes)
	assert.Equal(t, MaxSuggestions, n.limit)
}
