// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited spaces out requests to an upstream that enforces a usage
// policy (public Nominatim allows one request per second).
type RateLimited struct {
	next    Geocoder
	limiter *rate.Limiter
}

// NewRateLimited allows one request every interval with the given burst.
func NewRateLimited(next Geocoder, interval time.Duration, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}

	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(interval), burst),
	}
}

// Suggest implements Geocoder.
func (r *RateLimited) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, Unavailable("waiting for rate limiter", ctx.Err())
		}

		// the deadline expires before a token would be available
		return nil, &LookupError{Type: ErrorTypeRateLimit, Message: "rate limit reached", Err: err}
	}

	return r.next.Suggest(ctx, query)
}
