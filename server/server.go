// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the landing page, the address suggestion API and
// the prospect endpoint over HTTP.
package server

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jcodagnone/landing/contact"
	"github.com/jcodagnone/landing/geocode"
	"github.com/jcodagnone/landing/suggest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templates embed.FS

// Options configuration options for the server
type Options struct {
	// Engine settings for every websocket session. Callbacks are ignored.
	Engine suggest.Options

	// Registry for the exported metrics; a private one is created when nil
	Registry *prometheus.Registry

	// Title of the landing page
	Title string
}

// Server serves the landing page and its APIs.
type Server struct {
	geocoder geocode.Geocoder
	engine   suggest.Options
	registry *prometheus.Registry
	sessions prometheus.Gauge
	title    string
	upgrader websocket.Upgrader
}

// NewServer creates a server answering address lookups with g.
func NewServer(g geocode.Geocoder, options *Options) *Server {
	if options == nil {
		options = &Options{}
	}

	reg := options.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	engine := options.Engine
	engine.OnChange = nil
	engine.OnLookup = nil

	if engine.Metrics == nil {
		engine.Metrics = suggest.NewMetrics(reg)
	}

	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "landing",
		Subsystem: "address",
		Name:      "sessions_active",
		Help:      "Open address suggestion websocket sessions.",
	})
	reg.MustRegister(sessions)

	title := options.Title
	if title == "" {
		title = "Managed hosting"
	}

	return &Server{
		geocoder: g,
		engine:   engine,
		registry: reg,
		sessions: sessions,
		title:    title,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Router builds the gin engine with every route.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templates, "templates/*.html")))

	r.GET("/", s.landingView)
	r.GET("/api/address/suggest", s.suggestAddress)
	r.GET("/ws/address", s.addressSession)
	r.POST(contact.Path, contact.Handler)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	return r
}

// Run listens on addr until the server fails.
func (s *Server) Run(addr string) error {
	log.Printf("🌐 Listening on %s", addr)

	return s.Router().Run(addr)
}

func (s *Server) landingView(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "index.html", gin.H{"Title": s.title})
}

// suggestAddress is a one-shot lookup. It degrades to an empty list.
func (s *Server) suggestAddress(ctx *gin.Context) {
	query := strings.TrimSpace(ctx.Query("q"))
	if utf8.RuneCountInString(query) < suggest.MinQueryLength {
		ctx.JSON(http.StatusOK, []geocode.Suggestion{})

		return
	}

	timeout := s.engine.LookupTimeout
	if timeout <= 0 {
		timeout = suggest.DefaultLookupTimeout
	}

	c, cancel := context.WithTimeout(ctx.Request.Context(), timeout)
	defer cancel()

	suggestions, err := s.geocoder.Suggest(c, query)
	if err != nil {
		log.Printf("⚠️ address lookup for %q failed: %v", query, err)
		ctx.JSON(http.StatusOK, []geocode.Suggestion{})

		return
	}

	if suggestions == nil {
		suggestions = []geocode.Suggestion{}
	}

	ctx.JSON(http.StatusOK, suggestions[:min(len(suggestions), geocode.MaxSuggestions)])
}
