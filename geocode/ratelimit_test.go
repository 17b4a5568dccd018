// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitedSpacesRequests(t *testing.T) {
	next := &countingGeocoder{}
	limited := NewRateLimited(next, 100*time.Millisecond, 1)

	start := time.Now()

	for range 3 {
		_, err := limited.Suggest(context.Background(), "123 Main St")
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), 190*time.Millisecond)
	assert.Equal(t, int32(3), next.calls.Load())
}

func TestRateLimitedHonorsContext(t *testing.T) {
	next := &countingGeocoder{}
	limited := NewRateLimited(next, time.Hour, 1)

	_, err := limited.Suggest(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = limited.Suggest(ctx, "second")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLookupUnavailable)
	assert.Equal(t, ErrorTypeRateLimit, TypeOf(err))
	assert.Equal(t, int32(1), next.calls.Load())

	ctx, cancel = context.WithCancel(context.Background())
	cancel()

	_, err = limited.Suggest(ctx, "third")
	require.Error(t, err)
	assert.Equal(t, ErrorTypeCanceled, TypeOf(err))
}
