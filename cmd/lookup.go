// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jcodagnone/landing/geocode"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	providerNominatim = "nominatim"
	providerGoogle    = "google"
)

// lookupConfig how addresses are looked up.
type lookupConfig struct {
	Provider      string
	NominatimURL  string
	UserAgent     string
	CountryCodes  string
	GoogleAPIKey  string
	GoogleProject string
	RedisURL      string
	CacheTTL      time.Duration
	Interval      time.Duration
	Timeout       time.Duration
	HTTPTrace     bool
	HTTPBodyTrace bool
}

var lookupOptions = &lookupConfig{}

// env variables backing flags that were not set explicitly.
var lookupEnv = map[string]string{
	"provider":       "LANDING_PROVIDER",
	"nominatim-url":  "NOMINATIM_URL",
	"user-agent":     "LANDING_USER_AGENT",
	"country-codes":  "LANDING_COUNTRY_CODES",
	"google-api-key": "GOOGLE_MAPS_API_KEY",
	"google-project": "GOOGLE_CLOUD_PROJECT",
	"redis-url":      "REDIS_URL",
}

func addLookupFlags(flags *pflag.FlagSet) {
	flags.StringVar(&lookupOptions.Provider, "provider", providerNominatim,
		"address search provider: nominatim or google (env LANDING_PROVIDER)")
	flags.StringVar(&lookupOptions.NominatimURL, "nominatim-url", geocode.DefaultNominatimURL,
		"Nominatim base URL (env NOMINATIM_URL)")
	flags.StringVar(&lookupOptions.UserAgent, "user-agent", geocode.DefaultUserAgent,
		"identifying User-Agent sent to the provider (env LANDING_USER_AGENT)")
	flags.StringVar(&lookupOptions.CountryCodes, "country-codes", geocode.DefaultCountryCodes,
		"comma separated ISO 3166-1 countries searched (env LANDING_COUNTRY_CODES)")
	flags.StringVar(&lookupOptions.GoogleAPIKey, "google-api-key", "",
		"Google Maps API key; discovered through ADC when empty (env GOOGLE_MAPS_API_KEY)")
	flags.StringVar(&lookupOptions.GoogleProject, "google-project", "",
		"project holding the Google Maps key when ADC has none (env GOOGLE_CLOUD_PROJECT)")
	flags.StringVar(&lookupOptions.RedisURL, "redis-url", "",
		"redis URL caching lookups, disabled when empty (env REDIS_URL)")
	flags.DurationVar(&lookupOptions.CacheTTL, "cache-ttl", geocode.DefaultCacheTTL, "how long lookups stay cached")
	flags.DurationVar(&lookupOptions.Interval, "rate-interval", time.Second,
		"minimum interval between provider requests, 0 disables the limit")
	flags.DurationVar(&lookupOptions.Timeout, "lookup-timeout", 5*time.Second, "timeout of a single lookup")
	flags.BoolVar(&lookupOptions.HTTPTrace, "http-trace", false, "dump provider HTTP traffic to stderr")
	flags.BoolVar(&lookupOptions.HTTPBodyTrace, "http-body-trace", false, "include bodies in the HTTP dump")
}

// applyEnv fills flags that were not given on the command line from the
// environment.
func applyEnv(cmd *cobra.Command, env map[string]string) error {
	for flag, name := range env {
		f := cmd.Flags().Lookup(flag)
		if f == nil || f.Changed {
			continue
		}

		if v, ok := os.LookupEnv(name); ok && v != "" {
			if err := f.Value.Set(v); err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
		}
	}

	return nil
}

// newGeocoder assembles the provider with its rate limit and cache. The
// returned function releases what was opened.
func newGeocoder(ctx context.Context, c *lookupConfig) (geocode.Geocoder, func(), error) {
	var (
		g       geocode.Geocoder
		cleanup = func() {}
	)

	switch c.Provider {
	case providerNominatim:
		fmt.Fprintln(os.Stderr, "📍 Geocoding: Nominatim")

		g = geocode.NewNominatim(&geocode.NominatimOptions{
			BaseURL:             c.NominatimURL,
			UserAgent:           c.UserAgent,
			CountryCodes:        c.CountryCodes,
			Timeout:             c.Timeout,
			EnableHTTPTrace:     c.HTTPTrace,
			EnableHTTPBodyTrace: c.HTTPBodyTrace,
		})
	case providerGoogle:
		fmt.Fprintln(os.Stderr, "📍 Geocoding: Google Maps")

		apiKey := c.GoogleAPIKey
		if apiKey == "" {
			log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

			var err error

			apiKey, err = geocode.APIKeyFromADC(ctx, c.GoogleProject, geocode.DefaultKeyDisplayName)
			if err != nil {
				return nil, cleanup, fmt.Errorf("retrieving Google Maps API key via ADC: %w", err)
			}

			log.Println("✅ Successfully retrieved Google Maps API Key via ADC")
		}

		gm, err := geocode.NewGoogleMapsGeocoder(&geocode.GoogleMapsOptions{
			APIKey:          apiKey,
			CountryCodes:    c.CountryCodes,
			UserAgent:       c.UserAgent,
			Timeout:         c.Timeout,
			EnableHTTPTrace: c.HTTPTrace,
		})
		if err != nil {
			return nil, cleanup, fmt.Errorf("creating Google Maps geocoder: %w", err)
		}

		g = gm
	default:
		return nil, cleanup, fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.Interval > 0 {
		g = geocode.NewRateLimited(g, c.Interval, 1)
	}

	if c.RedisURL != "" {
		rdb, err := geocode.NewRedisClient(ctx, c.RedisURL)
		if err != nil {
			log.Printf("⚠️ Redis unavailable, lookups will not be cached: %v", err)
		} else {
			log.Println("✅ Caching lookups in redis")

			g = geocode.NewCached(g, rdb, "landing:"+c.Provider+":"+c.CountryCodes+":", c.CacheTTL)
			cleanup = func() { rdb.Close() }
		}
	}

	return g, cleanup, nil
}
