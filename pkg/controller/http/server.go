package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carrel-app/carrel/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	maxUpload     int64
	mimeOverrides map[string]string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithMaxUpload caps the accepted archive size in bytes
func WithMaxUpload(n int64) Option {
	return func(c *config) {
		c.maxUpload = n
	}
}

// WithMIMEOverrides adds extension→MIME entries consulted before the
// built-in table. Keys must include the leading dot.
func WithMIMEOverrides(overrides map[string]string) Option {
	return func(c *config) {
		c.mimeOverrides = overrides
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer wires the viewer interceptor, the content control API and the
// embedded UI shell into one HTTP server.
func NewServer(
	ctx context.Context,
	content interfaces.ContentStore,
	loader interfaces.PackageLoader,
	fetcher interfaces.Fetcher,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr: "localhost:8080",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// The viewer interceptor sees every request; paths containing the
	// virtual prefix never reach the routes below.
	viewer := NewViewerHandler(content, cfg.mimeOverrides)
	router.Use(viewer.Middleware)

	// Health check
	router.Get("/health", handleHealth)

	// Content control API
	contentHandler := NewContentHandler(content, loader, fetcher, cfg.maxUpload)
	router.Route("/api", func(r chi.Router) {
		r.Get("/status", contentHandler.HandleStatus)
		r.Post("/content", contentHandler.HandleUpload)
		r.Post("/content/fetch", contentHandler.HandleFetch)
		r.Delete("/content", contentHandler.HandleClear)
	})

	// Everything else is the UI shell
	assets := NewAssetHandler()
	router.NotFound(assets.ServeHTTP)

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
