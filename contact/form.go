// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

// Package contact holds the hosting contact form: its state, the address
// selection commit, the required-field check and the prospect submission.
package contact

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jcodagnone/landing/suggest"
)

// Form is the state of the contact form.
type Form struct {
	Name     string `json:"name"     validate:"required"`
	LastName string `json:"lastName" validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Message  string `json:"message"`
	State    string `json:"state"`
	City     string `json:"city"`
	Postal   string `json:"postal"`
}

// FieldErrors flags the required fields that are missing.
type FieldErrors struct {
	Name     bool `json:"name"`
	LastName bool `json:"lastName"`
	Email    bool `json:"email"`
}

// Any reports whether at least one field is flagged.
func (e FieldErrors) Any() bool {
	return e.Name || e.LastName || e.Email
}

// Metadata travels with every prospect.
type Metadata struct {
	Message     string `json:"message"`
	ContactDate string `json:"contactDate"`
	PagePath    string `json:"pagePath,omitempty"`
}

// Prospect is the body posted to the prospect endpoint.
type Prospect struct {
	Name     string   `json:"name"`
	LastName string   `json:"lastName"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Address  string   `json:"address"`
	State    string   `json:"state"`
	City     string   `json:"city"`
	Postal   string   `json:"postal"`
	Metadata Metadata `json:"metadata"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")

		return name
	})
	registerQuestionValidations(v)

	return v
}

// Apply stores a committed address selection in the form.
func (f *Form) Apply(sel suggest.Selection) {
	f.Address = sel.Address
	f.City = sel.City
	f.State = sel.State
	f.Postal = sel.Postal
}

// Validate checks the required fields. Blank values count as missing.
func (f *Form) Validate() FieldErrors {
	trimmed := Form{
		Name:     strings.TrimSpace(f.Name),
		LastName: strings.TrimSpace(f.LastName),
		Email:    strings.TrimSpace(f.Email),
	}

	var fe FieldErrors

	var verrs validator.ValidationErrors
	if err := validate.Struct(&trimmed); errors.As(err, &verrs) {
		for _, ve := range verrs {
			switch ve.Field() {
			case "name":
				fe.Name = true
			case "lastName":
				fe.LastName = true
			case "email":
				fe.Email = true
			}
		}
	}

	return fe
}

// Reset clears every field.
func (f *Form) Reset() {
	*f = Form{}
}

// Prospect builds the payload for a submission made at now from pagePath.
func (f *Form) Prospect(now time.Time, pagePath string) Prospect {
	return Prospect{
		Name:     f.Name,
		LastName: f.LastName,
		Email:    f.Email,
		Phone:    f.Phone,
		Address:  f.Address,
		State:    f.State,
		City:     f.City,
		Postal:   f.Postal,
		Metadata: Metadata{
			Message:     f.Message,
			ContactDate: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			PagePath:    pagePath,
		},
	}
}
