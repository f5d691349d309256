// Package httpapi is the primary HTTP adapter: it translates requests
// into MessagingService calls and application errors into the uniform
// response envelope.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/courier/internal/identity"
	"github.com/example/courier/internal/ports/primary"
)

// Server wires the messaging service to HTTP routes.
type Server struct {
	service     primary.MessagingService
	logger      *slog.Logger
	development bool
}

// Options configure the HTTP surface.
type Options struct {
	Verifier    identity.Verifier
	Logger      *slog.Logger
	Development bool
	RateRPS     float64
	RateBurst   int
}

// NewRouter builds the full route table with middleware applied.
// Health and metrics bypass identity and rate limiting; the messaging
// routes require an asserted viewer.
func NewRouter(service primary.MessagingService, opts Options) http.Handler {
	server := &Server{
		service:     service,
		logger:      opts.Logger,
		development: opts.Development,
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}

	metrics := NewMetrics()
	limiter := newClientLimiter(opts.RateRPS, opts.RateBurst)

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(metrics.Middleware)
	router.Use(loggingMiddleware(server.logger))

	router.HandleFunc("/health", server.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/messages").Subrouter()
	api.Use(rateLimitMiddleware(limiter))
	api.Use(identityMiddleware(opts.Verifier))

	api.HandleFunc("", server.handleInbox).Methods(http.MethodGet)
	api.HandleFunc("", server.handleSend).Methods(http.MethodPost)
	api.HandleFunc("/{counterpartId}", server.handleThread).Methods(http.MethodGet)
	api.HandleFunc("/{id}", server.handleDelete).Methods(http.MethodDelete)

	return router
}
