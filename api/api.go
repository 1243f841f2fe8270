// Package api provides the HTTP API for the ReviewMaestro payments backend.
// It forwards payment operations to Stripe and receives its webhook
// deliveries; no billing state is held here.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/reviewmaestro/payments-backend/errors"
	"github.com/reviewmaestro/payments-backend/log"
	"github.com/reviewmaestro/payments-backend/stripe"
	"github.com/reviewmaestro/payments-backend/validator"
)

// ServiceName identifies this service in health responses.
const ServiceName = "ReviewMaestro Payment API"

// Config contains the API server configuration, read once at startup.
type Config struct {
	Host        string
	Port        int
	CORSOrigins []string
	Stripe      *stripe.Service
}

// API type represents the API HTTP server.
type API struct {
	host      string
	port      int
	origins   []string
	stripe    *stripe.Service
	validator *validator.Validator
	router    *chi.Mux
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) *API {
	if conf == nil {
		return nil
	}
	return &API{
		host:      conf.Host,
		port:      conf.Port,
		origins:   conf.CORSOrigins,
		stripe:    conf.Stripe,
		validator: validator.New(),
	}
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.initRouter()); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// Router returns the fully initialized router, for use in tests.
func (a *API) Router() http.Handler {
	return a.initRouter()
}

// initRouter creates the router with all the routes and middleware. The
// router is built once; subsequent calls return the same instance.
func (a *API) initRouter() http.Handler {
	if a.router != nil {
		return a.router
	}
	origins := a.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Create the router with a basic middleware stack
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(100))
	r.Use(middleware.Timeout(45 * time.Second))

	// health check
	log.Infow("new route", "method", "GET", "path", healthEndpoint)
	r.Get(healthEndpoint, a.healthHandler)
	// public configuration for the frontend
	log.Infow("new route", "method", "GET", "path", configEndpoint)
	r.Get(configEndpoint, a.configHandler)
	// create a customer and subscription
	log.Infow("new route", "method", "POST", "path", createSubscriptionEndpoint)
	r.Post(createSubscriptionEndpoint, a.createSubscriptionHandler)
	// create a customer portal session
	log.Infow("new route", "method", "POST", "path", createPortalSessionEndpoint)
	r.Post(createPortalSessionEndpoint, a.createPortalSessionHandler)
	// subscription status lookup
	log.Infow("new route", "method", "GET", "path", subscriptionStatusEndpoint)
	r.Get(subscriptionStatusEndpoint, a.subscriptionStatusHandler)
	// handle stripe webhook deliveries
	log.Infow("new route", "method", "POST", "path", webhookEndpoint)
	r.Post(webhookEndpoint, a.handleWebhook)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errors.ErrEndpointNotFound.Write(w)
	})

	a.router = r
	return r
}
