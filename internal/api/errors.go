package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dicelab/montecarlo/internal/dice"
	"github.com/dicelab/montecarlo/internal/game"
)

// statusForError maps core error kinds onto HTTP statuses: validation
// 400, lookup 404, state 409, everything else 500.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, dice.ErrUnknownFace):
		return http.StatusNotFound, ErrTypeLookup
	case errors.Is(err, dice.ErrValidation):
		return http.StatusBadRequest, ErrTypeValidation
	case errors.Is(err, game.ErrNotPlayed):
		return http.StatusConflict, ErrTypeState
	default:
		return http.StatusInternalServerError, ErrTypeInternal
	}
}

// handleCoreError writes the envelope for an error bubbling out of the
// dice/game/analysis core.
func (s *Server) handleCoreError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := statusForError(err)
	s.writeAPIError(w, r, status, errType, err.Error())
}

// writeAPIError logs and writes a structured error response.
func (s *Server) writeAPIError(w http.ResponseWriter, r *http.Request, status int, errType, message string) {
	requestID := middleware.GetReqID(r.Context())

	level := "ERROR"
	if status < 500 {
		level = "WARN"
	}
	s.logger.Printf(
		"error_occurred level=%s type=%s status=%d request_id=%s method=%s path=%s message=%q",
		level, errType, status, requestID, r.Method, r.URL.Path, message,
	)

	s.writeJSON(w, status, APIError{
		Type:      errType,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// recoverer converts panics into structured 500s instead of dropped
// connections.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				requestID := middleware.GetReqID(r.Context())
				s.logger.Printf(
					"panic_recovered request_id=%s method=%s path=%s panic=%v",
					requestID, r.Method, r.URL.Path, rvr,
				)
				s.writeAPIError(w, r, http.StatusInternalServerError, ErrTypeInternal,
					fmt.Sprintf("internal server error: %v", rvr))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
