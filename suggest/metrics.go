// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package suggest

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks the activity of every engine sharing it.
type Metrics struct {
	Keystrokes     prometheus.Counter
	Lookups        *prometheus.CounterVec
	LookupDuration prometheus.Histogram
}

// NewMetrics creates the engine metrics and registers them in reg, when not
// nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Keystrokes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "landing",
			Subsystem: "address",
			Name:      "keystrokes_total",
			Help:      "Address text changes received by suggestion engines.",
		}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landing",
			Subsystem: "address",
			Name:      "lookups_total",
			Help:      "Address lookups issued after debouncing, by outcome.",
		}, []string{"outcome"}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "landing",
			Subsystem: "address",
			Name:      "lookup_duration_seconds",
			Help:      "Round trip time of address lookups.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Keystrokes, m.Lookups, m.LookupDuration)
	}

	return m
}

func (m *Metrics) keystroke() {
	if m != nil {
		m.Keystrokes.Inc()
	}
}

func (m *Metrics) lookup(r LookupResult) {
	if m == nil {
		return
	}

	m.Lookups.WithLabelValues(r.Outcome.String()).Inc()

	if r.Outcome != OutcomeStale {
		m.LookupDuration.Observe(r.Duration.Seconds())
	}
}
