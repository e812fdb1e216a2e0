// Package api exposes the simulator over HTTP: one-shot simulation runs,
// stored run retrieval, and scenario script execution.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dicelab/montecarlo/internal/store"
)

// defaultRequestTimeout bounds request handling when no timeout is
// configured.
const defaultRequestTimeout = 60 * time.Second

// Server handles HTTP requests.
type Server struct {
	db             store.DB
	logger         *log.Logger
	requestTimeout time.Duration
	scriptTimeout  time.Duration
	startTime      time.Time
}

// NewServer creates an API server over the given store. requestTimeout
// bounds request handling; scriptTimeout bounds scenario script
// execution. Zero selects the respective default.
func NewServer(db store.DB, requestTimeout, scriptTimeout time.Duration) *Server {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return &Server{
		db:             db,
		logger:         log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile),
		requestTimeout: requestTimeout,
		scriptTimeout:  scriptTimeout,
		startTime:      time.Now(),
	}
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/simulate", s.handleSimulate)
		r.Post("/script", s.handleScript)
		r.Get("/sims", s.handleListSims)
		r.Get("/sims/{id}", s.handleGetSim)
	})

	return r
}

// writeJSON writes a JSON response with proper headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Simulator-Version", Version)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
