package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dicelab/montecarlo/internal/scripting"
	"github.com/dicelab/montecarlo/internal/sim"
	"github.com/dicelab/montecarlo/internal/store"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Version:       Version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSimulate runs a simulation spec, persists the run, and returns
// the full report.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var spec sim.Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		s.writeAPIError(w, r, http.StatusBadRequest, ErrTypeValidation,
			"invalid JSON body: "+err.Error())
		return
	}

	report, err := sim.Run(spec)
	if err != nil {
		s.handleCoreError(w, r, err)
		return
	}

	id := uuid.NewString()
	record := &store.Sim{
		ID:             id,
		NumDice:        report.NumDice,
		NumRolls:       report.NumRolls,
		SeedMode:       report.SeedMode,
		Jackpots:       report.Jackpots,
		DistinctCombos: report.DistinctCombos,
		DistinctPerms:  report.DistinctPerms,
	}
	rolls := make([]store.SimRoll, 0, report.NumRolls*report.NumDice)
	for _, row := range report.Rows {
		for die, face := range row.Faces {
			rolls = append(rolls, store.SimRoll{SimID: id, Roll: row.Roll, Die: die, Face: face})
		}
	}
	if err := s.db.SaveSim(record, rolls); err != nil {
		s.writeAPIError(w, r, http.StatusInternalServerError, ErrTypeInternal,
			"failed to persist run: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, SimulateResponse{ID: id, Report: report, Version: Version})
}

// handleScript executes a scenario script in a fresh sandboxed VM.
func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	var req ScriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeAPIError(w, r, http.StatusBadRequest, ErrTypeValidation,
			"invalid JSON body: "+err.Error())
		return
	}
	if req.Source == "" {
		s.writeAPIError(w, r, http.StatusBadRequest, ErrTypeValidation,
			"script source must not be empty")
		return
	}

	result, err := scripting.NewVM(req.Seed).Run(req.Source, s.scriptTimeout)
	if err != nil {
		s.writeAPIError(w, r, http.StatusUnprocessableEntity, ErrTypeScript, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, ScriptResponse{Result: result, Version: Version})
}

// handleListSims returns stored runs, newest first.
func (s *Server) handleListSims(w http.ResponseWriter, r *http.Request) {
	query := store.SimsQuery{Page: 1, PerPage: 20}
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		query.Page = p
	}
	if pp, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil {
		query.PerPage = pp
	}

	list, err := s.db.ListSims(query)
	if err != nil {
		s.writeAPIError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

// handleGetSim returns one stored run with its results table.
func (s *Server) handleGetSim(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := s.db.GetSim(id)
	if err != nil {
		s.writeAPIError(w, r, http.StatusNotFound, ErrTypeNotFound, err.Error())
		return
	}
	rolls, err := s.db.GetSimRolls(id)
	if err != nil {
		s.writeAPIError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, SimResponse{Sim: record, Rolls: rolls, Version: Version})
}
