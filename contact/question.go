// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package contact

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinQuestionLength is the shortest trimmed question that can be sent.
const MinQuestionLength = 5

var (
	questionEmailRegex = regexp.MustCompile(`\S+@\S+\.\S+`)
	questionPhoneRegex = regexp.MustCompile(`^[0-9+\-\s()]{7,}$`)
)

// Question is a visitor question asked from the FAQ section. At least one
// valid way to reach the visitor back is required.
type Question struct {
	Question string `json:"question"        validate:"min=5"`
	Email    string `json:"email,omitempty" validate:"omitempty,contact_email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,contact_phone"`
}

// QuestionErrors flags what keeps a question from being sent. An invalid
// email or phone only blocks when no other contact is valid.
type QuestionErrors struct {
	Question bool `json:"question"`
	Email    bool `json:"email"`
	Phone    bool `json:"phone"`
	Contact  bool `json:"contact"`
}

// Any reports whether the question cannot be sent.
func (e QuestionErrors) Any() bool {
	return e.Question || e.Contact
}

func registerQuestionValidations(v *validator.Validate) {
	_ = v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return questionEmailRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("contact_phone", func(fl validator.FieldLevel) bool {
		return questionPhoneRegex.MatchString(fl.Field().String())
	})
}

func (q *Question) trimmed() Question {
	return Question{
		Question: strings.TrimSpace(q.Question),
		Email:    strings.TrimSpace(q.Email),
		Phone:    strings.TrimSpace(q.Phone),
	}
}

// Validate checks the question length and the contact fields.
func (q *Question) Validate() QuestionErrors {
	t := q.trimmed()

	var qe QuestionErrors

	var verrs validator.ValidationErrors
	if err := validate.Struct(&t); errors.As(err, &verrs) {
		for _, ve := range verrs {
			switch ve.Field() {
			case "question":
				qe.Question = true
			case "email":
				qe.Email = true
			case "phone":
				qe.Phone = true
			}
		}
	}

	hasEmail := t.Email != "" && !qe.Email
	hasPhone := t.Phone != "" && !qe.Phone
	qe.Contact = !hasEmail && !hasPhone

	return qe
}

// payload is what gets posted: the question as typed and the valid
// contacts only.
func (q *Question) payload(qe QuestionErrors) Question {
	p := Question{Question: q.Question}

	if t := q.trimmed(); !qe.Email {
		p.Email = t.Email
	}

	if t := q.trimmed(); !qe.Phone {
		p.Phone = t.Phone
	}

	return p
}

// Reset clears every field.
func (q *Question) Reset() {
	*q = Question{}
}
