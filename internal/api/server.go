// Package api provides the HTTP server for Twin. It exposes the user
// state, habit, day-plan, inbox and auth endpoints the companion UI
// consumes.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/twinlab/twin/internal/health"
	"github.com/twinlab/twin/internal/persist"
	"github.com/twinlab/twin/internal/suggest"
)

// Server is the Twin HTTP API server.
type Server struct {
	session        *persist.Session
	svc            *persist.Service
	suggest        *suggest.Client // nil = suggestions disabled
	checker        *health.Checker // nil = basic health only
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(session *persist.Session, svc *persist.Service, sugg *suggest.Client) *Server {
	return &Server{session: session, svc: svc, suggest: sugg}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealthChecker sets the background health checker feeding /health.
func (s *Server) SetHealthChecker(c *health.Checker) { s.checker = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/energy", s.handleEnergy)

		r.Get("/inbox", s.handleInbox)
		r.Post("/inbox/{id}/read", s.handleInboxRead)

		r.Post("/habits", s.handleCreateHabit)
		r.Post("/habits/{id}/toggle", s.handleToggleHabit)
		r.Delete("/habits/{id}", s.handleDeleteHabit)

		r.Post("/plan/blocks", s.handleAddBlock)
		r.Post("/plan/blocks/{id}/toggle", s.handleToggleBlock)
		r.Delete("/plan/blocks/{id}", s.handleDeleteBlock)
		r.Post("/plan/generate", s.handleGeneratePlan)
		r.Post("/plan/clear", s.handleClearPlan)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/register", s.handleRegister)
			r.Post("/logout", s.handleLogout)
		})
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for the local companion UI.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
