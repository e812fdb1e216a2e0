package api

import (
	"github.com/dicelab/montecarlo/internal/scripting"
	"github.com/dicelab/montecarlo/internal/sim"
	"github.com/dicelab/montecarlo/internal/store"
)

// APIError represents a structured error response.
type APIError struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Error implements the error interface.
func (e APIError) Error() string {
	return e.Message
}

// Error types returned in the envelope.
const (
	ErrTypeValidation = "validation_error"
	ErrTypeLookup     = "lookup_error"
	ErrTypeState      = "state_error"
	ErrTypeNotFound   = "not_found"
	ErrTypeScript     = "script_error"
	ErrTypeInternal   = "internal_error"
)

// SimulateResponse is returned by POST /simulate.
type SimulateResponse struct {
	ID      string      `json:"id"`
	Report  *sim.Report `json:"report"`
	Version string      `json:"version"`
}

// SimResponse is one stored run with its results table.
type SimResponse struct {
	Sim     *store.Sim      `json:"sim"`
	Rolls   []store.SimRoll `json:"rolls"`
	Version string          `json:"version"`
}

// ScriptRequest is the body of POST /script.
type ScriptRequest struct {
	Source string `json:"source"`
	Seed   string `json:"seed,omitempty"`
}

// ScriptResponse is returned by POST /script.
type ScriptResponse struct {
	Result  *scripting.Result `json:"result"`
	Version string            `json:"version"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     string `json:"timestamp"`
}
