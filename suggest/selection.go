// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package suggest

import (
	"strings"

	"github.com/jcodagnone/landing/geocode"
)

// Selection holds the fields written back into the form when a suggestion
// is chosen.
type Selection struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Postal  string `json:"postal"`
}

// SelectionFrom derives the form fields of s: the address line is the first
// comma separated segment of the display string.
func SelectionFrom(s geocode.Suggestion) Selection {
	address, _, _ := strings.Cut(s.Display, ",")

	return Selection{
		Address: strings.TrimSpace(address),
		City:    s.City,
		State:   s.State,
		Postal:  s.Postal,
	}
}
