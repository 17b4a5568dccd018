// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides utility functions for working with HTTP.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"regexp"
	"strings"
	"time"
)

// secrets that must never reach a trace.
var (
	redactQueryRegex  = regexp.MustCompile(`([?&]key=)[^&\s]+`)
	redactHeaderRegex = regexp.MustCompile(`(?i)^(authorization|x-goog-api-key):.*$`)
)

// LoggingRoundTripper adds a very primitive logging to a http transaction.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Writer    io.Writer
	DumpBody  bool
}

func redact(line string) string {
	line = redactQueryRegex.ReplaceAllString(line, "${1}…")

	return redactHeaderRegex.ReplaceAllStringFunc(line, func(h string) string {
		name, _, _ := strings.Cut(h, ":")

		return name + ": …"
	})
}

// abbreviate prefixes every line and caps the amount of lines and their width.
func abbreviate(lines []string, prefix rune) []string {
	const maxLines, maxChars = 256, 512

	if len(lines) > maxLines {
		lines = append(lines[:maxLines], "…")
	}

	for i, line := range lines {
		line = fmt.Sprintf("%c %s", prefix, redact(strings.TrimRight(line, "\r")))
		if len(line) > maxChars {
			line = line[0:maxChars] + "…"
		}

		lines[i] = line
	}

	return lines
}

func (t *LoggingRoundTripper) transport() http.RoundTripper {
	if t.Transport == nil {
		return http.DefaultTransport
	}

	return t.Transport
}

func (t *LoggingRoundTripper) dumpRequest(req *http.Request) error {
	dump, err := httputil.DumpRequestOut(req, t.DumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	lines := abbreviate(strings.Split(string(dump), "\n"), '>')
	lines = append(lines, "")
	_, err = fmt.Fprint(t.Writer, strings.Join(lines, "\n"))

	return err
}

func (t *LoggingRoundTripper) dumpResponse(resp *http.Response, duration time.Duration) error {
	dump, err := httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	if _, err := fmt.Fprintf(t.Writer, "< RESPONSE: [%v]\n", duration); err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	lines := abbreviate(strings.Split(string(dump), "\n"), '<')
	lines = append(lines, "")
	_, err = fmt.Fprint(t.Writer, strings.Join(lines, "\n"))

	return err
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.transport().RoundTrip(req)
	}

	if err := t.dumpRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := t.transport().RoundTrip(req)
	if err != nil {
		fmt.Fprintf(t.Writer, "< ERROR: [%v] %v\n", time.Since(start), err)

		return nil, err
	}

	if err := t.dumpResponse(resp, time.Since(start)); err != nil {
		resp.Body.Close()

		return nil, err
	}

	return resp, nil
}

// AppendRequestHeadersRoundTripper adds headers to the request.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return transport.RoundTrip(req)
}

// NewClient builds an http.Client that sets headers on every request and,
// when trace is not nil, dumps each transaction to it.
func NewClient(timeout time.Duration, headers map[string]string, trace io.Writer, traceBody bool) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &AppendRequestHeadersRoundTripper{
			Headers: headers,
			Transport: &LoggingRoundTripper{
				Transport: http.DefaultTransport,
				Writer:    trace,
				DumpBody:  traceBody,
			},
		},
	}
}
