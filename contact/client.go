// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jcodagnone/landing/utils/httputils"
)

// ToastKind tells how a toast is rendered.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Message keys resolved by the page translations.
const (
	MessageRequiredField = "common.requiredField"
	MessageSendSuccess   = "dataSendSuccess"
	MessageSendFailure   = "dataSendFailure"

	MessageQuestionTooShort = "questionForm.tooShort"
	MessageAtLeastOneField  = "questionForm.atLeastOneField"
)

// Toast is the transient notice shown after a submit attempt. Fields holds
// the FieldErrors or QuestionErrors that prevented sending.
type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
	Fields  any       `json:"fields,omitempty"`
}

// ClientOptions configuration options for the submit client
type ClientOptions struct {
	// BaseURL of the site receiving prospects
	BaseURL string

	// Timeout for the whole request
	Timeout time.Duration

	// enables http tracing
	EnableHTTPTrace bool
}

// Client posts contact forms to the prospect endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a submit client. A nil options posts to localhost.
func NewClient(options *ClientOptions) *Client {
	if options == nil {
		options = &ClientOptions{}
	}

	base := options.BaseURL
	if base == "" {
		base = "http://localhost:8080"
	}

	timeout := options.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	var trace io.Writer
	if options.EnableHTTPTrace {
		trace = os.Stderr
	}

	return &Client{
		url: strings.TrimSuffix(base, "/") + Path,
		httpClient: httputils.NewClient(timeout, map[string]string{
			"Content-Type":  "application/json",
			"Cache-Control": "no-store",
		}, trace, true),
		now: time.Now,
	}
}

// Submit validates f and posts it. On success the form is reset. The
// returned toast describes the outcome; failures are never returned as
// errors.
func (c *Client) Submit(ctx context.Context, f *Form, pagePath string) Toast {
	if fe := f.Validate(); fe.Any() {
		return Toast{Kind: ToastError, Message: MessageRequiredField, Fields: fe}
	}

	if err := c.post(ctx, f.Prospect(c.now(), pagePath)); err != nil {
		log.Printf("⚠️ submitting contact form: %v", err)

		return Toast{Kind: ToastError, Message: MessageSendFailure}
	}

	f.Reset()

	return Toast{Kind: ToastSuccess, Message: MessageSendSuccess}
}

// Ask posts a question from the FAQ section. A question that is still too
// short only gets an informative toast; on success the question is reset.
func (c *Client) Ask(ctx context.Context, q *Question) Toast {
	qe := q.Validate()

	switch {
	case qe.Question:
		return Toast{Kind: ToastInfo, Message: MessageQuestionTooShort, Fields: qe}
	case qe.Contact:
		return Toast{Kind: ToastError, Message: MessageAtLeastOneField, Fields: qe}
	}

	if err := c.post(ctx, q.payload(qe)); err != nil {
		log.Printf("⚠️ sending question: %v", err)

		return Toast{Kind: ToastError, Message: MessageSendFailure}
	}

	q.Reset()

	return Toast{Kind: ToastSuccess, Message: MessageSendSuccess}
}

func (c *Client) post(ctx context.Context, p any) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding prospect: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting prospect: %w", err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return nil
}
