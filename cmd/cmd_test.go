// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jcodagnone/landing/contact"
	"github.com/jcodagnone/landing/geocode"
	"github.com/jcodagnone/landing/suggest"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEachQuery(t *testing.T) {
	var got []string

	collect := func(q string) error {
		got = append(got, q)

		return nil
	}

	require.NoError(t, eachQuery([]string{"a", "b"}, strings.NewReader("ignored\n"), collect))
	assert.Equal(t, []string{"a", "b"}, got)

	got = nil
	require.NoError(t, eachQuery(nil, strings.NewReader("123 Main\n\nElm St\n"), collect))
	assert.Equal(t, []string{"123 Main", "", "Elm St"}, got)

	stop := errors.New("stop")
	err := eachQuery(nil, strings.NewReader("x\ny\n"), func(string) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("LANDING_TEST_LOADED=yes\nLANDING_TEST_KEPT=file\n"), 0o600))

	t.Setenv("LANDING_TEST_KEPT", "process")
	t.Cleanup(func() { os.Unsetenv("LANDING_TEST_LOADED") })

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "yes", os.Getenv("LANDING_TEST_LOADED"))
	assert.Equal(t, "process", os.Getenv("LANDING_TEST_KEPT"), "the environment wins")

	require.NoError(t, loadEnv(filepath.Join(dir, "missing.env")))
	require.NoError(t, loadEnv(""))
}

func TestApplyEnv(t *testing.T) {
	var provider, addr string

	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&provider, "provider", "nominatim", "")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--addr", ":9090"}))

	t.Setenv("TEST_PROVIDER", "google")
	t.Setenv("TEST_ADDR", ":7070")

	require.NoError(t, applyEnv(cmd, map[string]string{
		"provider": "TEST_PROVIDER",
		"addr":     "TEST_ADDR",
		"missing":  "TEST_MISSING",
	}))

	assert.Equal(t, "google", provider)
	assert.Equal(t, ":9090", addr, "explicit flags win")
}

func TestNewGeocoderUnknownProvider(t *testing.T) {
	_, cleanup, err := newGeocoder(context.Background(), &lookupConfig{Provider: "bing"})
	require.Error(t, err)
	cleanup()
}

func TestNewGeocoderRedisUnavailable(t *testing.T) {
	g, cleanup, err := newGeocoder(context.Background(), &lookupConfig{
		Provider: providerNominatim,
		RedisURL: "redis://127.0.0.1:1/0",
		Interval: time.Second,
	})
	require.NoError(t, err)
	defer cleanup()

	_, cached := g.(*geocode.Cached)
	assert.False(t, cached, "lookups work without the cache")

	_, limited := g.(*geocode.RateLimited)
	assert.True(t, limited)
}

func TestRunQuery(t *testing.T) {
	g := geocode.GeocoderFunc(func(_ context.Context, q string) ([]geocode.Suggestion, error) {
		if q == "broken" {
			return nil, errors.New("boom")
		}

		return []geocode.Suggestion{{Display: q + ", Springfield", City: "Springfield"}}, nil
	})

	results := make(chan suggest.LookupResult, 8)
	engine := suggest.NewEngine(g, &suggest.Options{
		QuietPeriod: time.Millisecond,
		OnLookup:    func(r suggest.LookupResult) { results <- r },
	})
	defer engine.Close()

	assert.Equal(t, "ab\t\"too short\"", runQuery(engine, results, "ab"))
	assert.Equal(t,
		"123 Main\t\t[{\"display\":\"123 Main, Springfield\",\"city\":\"Springfield\",\"state\":\"\",\"postal\":\"\"}]",
		runQuery(engine, results, "123 Main"))
	assert.Contains(t, runQuery(engine, results, "broken"), "broken\t\"")
}

func TestPrintToast(t *testing.T) {
	require.NoError(t, printToast(contact.Toast{Kind: contact.ToastSuccess, Message: contact.MessageSendSuccess}))

	err := printToast(contact.Toast{Kind: contact.ToastInfo, Message: contact.MessageQuestionTooShort})
	assert.ErrorIs(t, err, errNotSent)
}
