// Package server exposes the search and shortlist operations over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/findmydaycare/daycare-server/internal/config"
	"github.com/findmydaycare/daycare-server/internal/search"
	"github.com/findmydaycare/daycare-server/internal/shortlist"
)

// Server is the HTTP front end.
type Server struct {
	cfg       config.ServerConfig
	router    chi.Router
	search    *search.Service
	shortlist *shortlist.Service
	http      *http.Server
}

// New creates a Server with its routes mounted.
func New(cfg config.ServerConfig, searchSvc *search.Service, shortlistSvc *shortlist.Service) *Server {
	s := &Server{
		cfg:       cfg,
		search:    searchSvc,
		shortlist: shortlistSvc,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests)
	r.Use(recoverPanics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/shortlist/email", s.handleShortlistEmail)
	})

	s.router = r
	return s
}

// Handler returns the mounted router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server listening", zap.Int("port", s.cfg.Port))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return eris.Wrap(err, "server: listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	zap.L().Info("server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}
