// Package handler provides the HTTP API of the marketplace.
package handler

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/prn-tf/marketplace/internal/auth"
	"github.com/prn-tf/marketplace/internal/metrics"
	"github.com/prn-tf/marketplace/internal/service"
)

// Router wires the API handlers behind the shared middleware stack.
type Router struct {
	responder *responder
	accounts  *AccountHandler
	products  *ProductHandler
	login     *AuthHandler
	authn     *auth.Authenticator
	metrics   *metrics.Metrics
	cfg       RouterConfig
	logger    zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	AccountService *service.AccountService
	ProductService *service.ProductService
	AuthService    *service.AuthService
	Authenticator  *auth.Authenticator

	// Metrics is optional. When set, requests are instrumented and the
	// registry is served on MetricsPath.
	Metrics     *metrics.Metrics
	MetricsPath string

	// Health is optional.
	Health HealthChecker

	MaxBodySize int64
	PageSize    int
	Logger      zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	if config.PageSize <= 0 {
		config.PageSize = 10
	}
	logger := config.Logger.With().Str("component", "router").Logger()
	rs := &responder{
		metrics:     config.Metrics,
		maxBodySize: config.MaxBodySize,
		logger:      logger,
	}

	return &Router{
		responder: rs,
		accounts:  &AccountHandler{responder: rs, accounts: config.AccountService, pageSize: config.PageSize},
		products:  &ProductHandler{responder: rs, products: config.ProductService, pageSize: config.PageSize},
		login:     &AuthHandler{responder: rs, auth: config.AuthService},
		authn:     config.Authenticator,
		metrics:   config.Metrics,
		cfg:       config,
		logger:    logger,
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.StripSlashes)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(rt.logger))
	r.Use(hlog.RequestIDHandler("request_id", middleware.RequestIDHeader))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(rt.recoverer)
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, DetailNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf(DetailMethodNotAllowed, r.Method))
	})

	r.Get("/health", handleHealth(rt.cfg.Health))
	if rt.metrics != nil && rt.cfg.MetricsPath != "" {
		r.Method(http.MethodGet, rt.cfg.MetricsPath, rt.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(rt.authn, rt.responder.handleError, rt.observeAuth))
		rt.accounts.RegisterRoutes(r)
		rt.products.RegisterRoutes(r)
		rt.login.RegisterRoutes(r)
	})

	return r
}

func (rt *Router) observeAuth(t auth.AuthType) {
	rt.metrics.RecordAuth(t.String())
}

// recoverer turns a panic into a logged 500.
func (rt *Router) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				hlog.FromRequest(r).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")
				writeDetail(w, http.StatusInternalServerError, DetailServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
