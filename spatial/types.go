// Copyright 2025 The Landing Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"strconv"
	"strings"
)

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// ParsePoint builds a Point out of the decimal strings address search
// services use for coordinates. Both values must be present and within range.
func ParsePoint(lat, lng string) (*Point, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" || lng == "" {
		return nil, fmt.Errorf("spatial: missing coordinate (lat=%q lng=%q)", lat, lng)
	}

	y, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("spatial: parsing latitude: %w", err)
	}

	x, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, fmt.Errorf("spatial: parsing longitude: %w", err)
	}

	if y < -90 || y > 90 {
		return nil, fmt.Errorf("spatial: latitude out of range: %f", y)
	}

	if x < -180 || x > 180 {
		return nil, fmt.Errorf("spatial: longitude out of range: %f", x)
	}

	return &Point{Lat: y, Lng: x}, nil
}
