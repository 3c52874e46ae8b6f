package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/store"
	"github.com/MJE43/colorway-poker/internal/table"
)

func (s *Server) table(w http.ResponseWriter, r *http.Request) (*table.Table, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "id", "table id must be a UUID")
		return nil, false
	}
	t, err := s.tables.Get(id)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return t, true
}

// POST /api/v1/tables
func (s *Server) handleOpenTable(w http.ResponseWriter, r *http.Request) {
	var req OpenTableRequest
	if !s.decodeJSON(w, r, &req, true) {
		return
	}
	t, err := s.tables.Open(req.ClientSeed)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, t.Snapshot())
}

// GET /api/v1/tables/{id}
func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, t.Snapshot())
}

// DELETE /api/v1/tables/{id}
func (s *Server) handleCloseTable(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	if err := s.tables.Close(t.ID()); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/tables/{id}/deal
func (s *Server) handleDeal(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	var req DealRequest
	if !s.decodeJSON(w, r, &req, true) {
		return
	}
	snap, err := t.Deal(req.Difficulty)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// POST /api/v1/tables/{id}/toggle
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	var req ToggleRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "card_id", "card_id must be a UUID")
		return
	}
	snap, err := t.Toggle(cardID)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// POST /api/v1/tables/{id}/submit
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	snap, err := t.Submit()
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// POST /api/v1/tables/{id}/rotate
func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	var req RotateRequest
	if !s.decodeJSON(w, r, &req, true) {
		return
	}
	revealed, snap, err := t.Rotate(req.ClientSeed)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.securityLogger.LogSeedReveal(middleware.GetReqID(r.Context()), snap.ID.String(), snap.Generation, revealed)
	s.writeJSON(w, http.StatusOK, RotateResponse{RevealedServerSeed: revealed, Table: snap})
}

func qInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (s *Server) ledgerDisabled(w http.ResponseWriter, r *http.Request) bool {
	if s.db != nil {
		return false
	}
	engineErr := NewError(ErrTypeServiceUnavailable, "Round ledger is not configured").
		WithContext("path", r.URL.Path).
		Build()
	s.errorHandler.writeErrorResponse(w, http.StatusServiceUnavailable, engineErr)
	return true
}

// GET /api/v1/rounds?table=&goal=&page=&per_page=
func (s *Server) handleListRounds(w http.ResponseWriter, r *http.Request) {
	if s.ledgerDisabled(w, r) {
		return
	}
	q := store.RoundsQuery{
		TableID: r.URL.Query().Get("table"),
		Page:    qInt(r, "page", 1),
		PerPage: qInt(r, "per_page", 50),
	}
	if q.TableID != "" {
		if _, err := uuid.Parse(q.TableID); err != nil {
			s.errorHandler.HandleValidationError(w, r, "table", "table must be a UUID")
			return
		}
	}
	if goal := r.URL.Query().Get("goal"); goal != "" {
		g, err := rules.ParseGoalType(goal)
		if err != nil {
			s.errorHandler.HandleValidationError(w, r, "goal", err.Error())
			return
		}
		q.Goal = string(g)
	}

	list, err := s.db.ListRounds(r.Context(), q)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

// GET /api/v1/rounds/{id}
func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	if s.ledgerDisabled(w, r) {
		return
	}
	round, err := s.db.GetRound(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, round)
}
