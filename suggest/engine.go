// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

// Package suggest turns free text typed into an address field into a short
// list of structured address suggestions.
//
// An Engine belongs to a single input field. Text changes are debounced, so
// only the text the user settles on is looked up, and every lookup carries a
// token: a response is committed only if its token is still the latest one,
// which keeps a slow answer for an old query from replacing the list of a
// newer one. Lookup failures never reach the caller; they clear the list and
// are reported as OutcomeFailed.
package suggest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jcodagnone/landing/geocode"
)

// Defaults used when the corresponding Options field is zero.
const (
	DefaultQuietPeriod   = 450 * time.Millisecond
	DefaultBlurDelay     = 150 * time.Millisecond
	DefaultLookupTimeout = 5 * time.Second
)

// MinQueryLength is the shortest trimmed text that is looked up.
const MinQueryLength = 3

// Outcome of a lookup.
type Outcome int

const (
	// OutcomeSucceeded the result was committed, possibly an empty list.
	OutcomeSucceeded Outcome = iota
	// OutcomeFailed the lookup was unavailable; the list was cleared.
	OutcomeFailed
	// OutcomeStale a newer text superseded the lookup; its result was dropped.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// LookupResult describes how an issued lookup ended.
type LookupResult struct {
	Token    uint64
	Query    string
	Outcome  Outcome
	Count    int
	Err      error
	Duration time.Duration
}

// State is a snapshot of what a renderer needs. Version grows with every
// change, so renderers receiving states out of band can drop old ones.
type State struct {
	Text        string               `json:"text"`
	Suggestions []geocode.Suggestion `json:"suggestions"`
	Visible     bool                 `json:"visible"`
	Version     uint64               `json:"version"`
}

// Options configuration for an Engine.
type Options struct {
	// QuietPeriod without text changes before a lookup is issued
	QuietPeriod time.Duration

	// BlurDelay before the panel hides once the input loses focus
	BlurDelay time.Duration

	// LookupTimeout bounds every lookup
	LookupTimeout time.Duration

	// ShowEmptyPanel reveals the panel when a lookup finds nothing
	ShowEmptyPanel bool

	// OnChange receives every new state. It runs with the engine lock held
	// and must not call back into the engine.
	OnChange func(State)

	// OnLookup receives the outcome of every issued lookup, under the same
	// rules as OnChange.
	OnLookup func(LookupResult)

	// Metrics shared between engines, optional
	Metrics *Metrics
}

// Engine is the address suggestion state machine of one input field.
type Engine struct {
	geocoder    geocode.Geocoder
	quietPeriod time.Duration
	blurDelay   time.Duration
	timeout     time.Duration
	showEmpty   bool
	onChange    func(State)
	onLookup    func(LookupResult)
	metrics     *Metrics

	mu          sync.Mutex
	text        string
	suggestions []geocode.Suggestion // nil when there is no list
	visible     bool
	version     uint64
	closed      bool

	// token identifies the latest scheduled lookup; anything else is stale.
	token    uint64
	debounce *time.Timer
	cancel   context.CancelFunc

	blurToken uint64
	blur      *time.Timer
}

// NewEngine creates an engine looking addresses up in g.
func NewEngine(g geocode.Geocoder, options *Options) *Engine {
	if options == nil {
		options = &Options{}
	}

	e := &Engine{
		geocoder:    g,
		quietPeriod: options.QuietPeriod,
		blurDelay:   options.BlurDelay,
		timeout:     options.LookupTimeout,
		showEmpty:   options.ShowEmptyPanel,
		onChange:    options.OnChange,
		onLookup:    options.OnLookup,
		metrics:     options.Metrics,
	}

	if e.quietPeriod <= 0 {
		e.quietPeriod = DefaultQuietPeriod
	}

	if e.blurDelay <= 0 {
		e.blurDelay = DefaultBlurDelay
	}

	if e.timeout <= 0 {
		e.timeout = DefaultLookupTimeout
	}

	return e
}

// TextChanged stores text as the current value and reschedules the lookup.
// Texts shorter than MinQueryLength once trimmed clear the list right away.
func (e *Engine) TextChanged(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.metrics.keystroke()
	e.text = text
	e.supersede()

	query := strings.TrimSpace(text)
	if utf8.RuneCountInString(query) >= MinQueryLength {
		token := e.token
		e.debounce = time.AfterFunc(e.quietPeriod, func() {
			e.lookup(token, query)
		})
	} else {
		e.suggestions = nil
		e.visible = false
	}

	e.changed()
}

// supersede invalidates the pending and in-flight lookups.
func (e *Engine) supersede() {
	if e.debounce != nil {
		e.debounce.Stop()
		e.debounce = nil
	}

	e.token++

	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) lookup(token uint64, query string) {
	e.mu.Lock()

	// the timer fired while TextChanged was replacing it
	if token != e.token || e.closed {
		e.mu.Unlock()

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	e.debounce = nil
	e.cancel = cancel
	e.mu.Unlock()

	start := time.Now()
	suggestions, err := e.suggest(ctx, query)
	cancel()

	result := LookupResult{
		Token:    token,
		Query:    query,
		Err:      err,
		Duration: time.Since(start),
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if token != e.token || e.closed {
		result.Outcome = OutcomeStale
		e.report(result)

		return
	}

	e.cancel = nil

	if err != nil {
		log.Printf("address lookup for %q failed: %v", query, err)

		result.Outcome = OutcomeFailed
		e.suggestions = nil
		e.visible = false
	} else {
		suggestions = suggestions[:min(len(suggestions), geocode.MaxSuggestions)]

		result.Outcome = OutcomeSucceeded
		result.Count = len(suggestions)
		e.suggestions = append(make([]geocode.Suggestion, 0, len(suggestions)), suggestions...)
		e.visible = len(suggestions) > 0 || e.showEmpty
	}

	e.report(result)
	e.changed()
}

// suggest calls the geocoder making sure every failure, panics included,
// ends up as a geocode.LookupError.
func (e *Engine) suggest(ctx context.Context, query string) (suggestions []geocode.Suggestion, err error) {
	defer func() {
		if r := recover(); r != nil {
			suggestions = nil
			err = &geocode.LookupError{
				Type:    geocode.ErrorTypeUnknown,
				Message: "address lookup panicked",
				Err:     fmt.Errorf("%v", r),
			}
		}
	}()

	suggestions, err = e.geocoder.Suggest(ctx, query)
	if err != nil {
		return nil, geocode.Unavailable("address lookup", err)
	}

	return suggestions, nil
}

// Select commits s: the returned Selection is what the form stores. The
// panel is hidden, the list dropped and pending lookups canceled.
func (e *Engine) Select(s geocode.Suggestion) Selection {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.selectLocked(s)
}

// SelectIndex selects the i-th suggestion of the visible panel. It fails
// when the panel is hidden or i is out of range.
func (e *Engine) SelectIndex(i int) (Selection, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.visible || i < 0 || i >= len(e.suggestions) {
		return Selection{}, false
	}

	return e.selectLocked(e.suggestions[i]), true
}

func (e *Engine) selectLocked(s geocode.Suggestion) Selection {
	sel := SelectionFrom(s)

	if e.closed {
		return sel
	}

	e.supersede()
	e.stopBlur()
	e.text = sel.Address
	e.suggestions = nil
	e.visible = false
	e.changed()

	return sel
}

// Focus reveals an existing list again. It never issues a lookup.
func (e *Engine) Focus() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.stopBlur()

	if e.visible || e.suggestions == nil || utf8.RuneCountInString(e.text) < MinQueryLength {
		return
	}

	if len(e.suggestions) > 0 || e.showEmpty {
		e.visible = true
		e.changed()
	}
}

// Blur hides the panel after the blur delay, leaving time for a click on a
// suggestion, which arrives after the blur, to be processed.
func (e *Engine) Blur() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.stopBlur()

	token := e.blurToken
	e.blur = time.AfterFunc(e.blurDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		if token != e.blurToken || e.closed {
			return
		}

		e.blur = nil

		if e.visible {
			e.visible = false
			e.changed()
		}
	})
}

func (e *Engine) stopBlur() {
	if e.blur != nil {
		e.blur.Stop()
		e.blur = nil
	}

	e.blurToken++
}

// State returns a snapshot of the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshot()
}

// Close stops the timers and abandons the in-flight lookup. Further calls
// are ignored.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.supersede()
	e.stopBlur()
	e.closed = true
}

func (e *Engine) snapshot() State {
	s := State{
		Text:    e.text,
		Visible: e.visible,
		Version: e.version,
	}

	if e.suggestions != nil {
		s.Suggestions = append(make([]geocode.Suggestion, 0, len(e.suggestions)), e.suggestions...)
	}

	return s
}

func (e *Engine) changed() {
	e.version++

	if e.onChange != nil {
		e.onChange(e.snapshot())
	}
}

func (e *Engine) report(r LookupResult) {
	e.metrics.lookup(r)

	if e.onLookup != nil {
		e.onLookup(r)
	}
}
