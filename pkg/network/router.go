// Package network provides the server's HTTP surface.
// This file builds the chi router that exposes the WebSocket upgrade
// endpoint alongside operator-facing health and metrics routes, in the
// same pure-constructor style the pack's HTTP games use so it stays
// testable with httptest without starting a real listener.
package network

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter constructs the server's HTTP router. It has no side effects:
// no listeners are opened and no goroutines are started, so it is safe to
// exercise with httptest.NewServer in tests.
func (s *Server) newRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	corsOrigins := s.config.AllowedOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET"},
		AllowCredentials: false,
	}))

	r.Get("/ws", s.handleWebSocket)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
