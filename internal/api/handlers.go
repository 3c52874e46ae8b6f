package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/colorway-poker/internal/engine"
	"github.com/MJE43/colorway-poker/internal/games"
	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/scan"
	"github.com/MJE43/colorway-poker/internal/table"
	"github.com/MJE43/colorway-poker/internal/wheel"
)

func toHues(xs []int) []wheel.Hue {
	hs := make([]wheel.Hue, len(xs))
	for i, x := range xs {
		hs[i] = wheel.Hue(x)
	}
	return hs
}

func (s *Server) handleWheel(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, WheelResponse{Colors: wheel.Colors(), EngineVersion: EngineVersion})
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	game := &games.ColorwayGame{}
	s.writeJSON(w, http.StatusOK, GamesResponse{Games: []games.GameSpec{game.Spec()}, EngineVersion: EngineVersion})
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GoalsResponse{Goals: rules.Goals(), EngineVersion: EngineVersion})
}

func (s *Server) handleDifficulties(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, DifficultiesResponse{Difficulties: table.Difficulties(), EngineVersion: EngineVersion})
}

// POST /api/v1/validate
//
// An unknown goal is a verdict, not a request error.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	goal, err := rules.ParseGoalType(req.Goal)
	if err != nil {
		goal = rules.GoalType(req.Goal)
	}
	hues := toHues(req.Hues)
	names := make([]string, len(hues))
	for i, h := range hues {
		names[i] = h.Name()
	}
	s.writeJSON(w, http.StatusOK, ValidateResponse{
		ValidationResult: rules.Validate(goal, hues),
		Goal:             goal,
		Names:            names,
		EngineVersion:    EngineVersion,
		Echo:             req,
	})
}

// POST /api/v1/solve
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	goal, err := rules.ParseGoalType(req.Goal)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "goal", err.Error())
		return
	}
	hues := toHues(req.Hues)
	first, ok := rules.FindSolution(goal, hues)
	all := rules.Solutions(goal, hues)
	if all == nil {
		all = [][]wheel.Hue{}
	}
	s.writeJSON(w, http.StatusOK, SolveResponse{
		Goal:          goal,
		Found:         ok,
		Solution:      first,
		Solutions:     all,
		EngineVersion: EngineVersion,
		Echo:          req,
	})
}

// POST /api/v1/hands
func (s *Server) handleHand(w http.ResponseWriter, r *http.Request) {
	var req HandRequest
	if !s.decodeJSON(w, r, &req, true) {
		return
	}
	seed := req.Seed
	if seed == 0 {
		seed = s.handSeed()
	}
	src := games.SeededSource(seed)

	var goal rules.GoalType
	if strings.TrimSpace(req.Goal) == "" {
		goal = games.PickGoal(src, "").Type
	} else {
		parsed, err := rules.ParseGoalType(req.Goal)
		if err != nil {
			s.errorHandler.HandleValidationError(w, r, "goal", err.Error())
			return
		}
		goal = parsed
	}

	deal, err := games.DealGoal(src, goal)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	solution, _ := rules.FindSolution(goal, deal.Hues())
	s.writeJSON(w, http.StatusOK, HandResponse{
		Seed:          seed,
		Deal:          deal,
		Hues:          deal.Hues(),
		Solution:      solution,
		EngineVersion: EngineVersion,
		Echo:          req,
	})
}

// POST /api/v1/seed/hash
func (s *Server) handleSeedHash(w http.ResponseWriter, r *http.Request) {
	var req SeedHashRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	if err := ValidateSeedHashRequest(&req); err != nil {
		s.handleRequestError(w, r, err)
		return
	}
	hash := engine.HashServerSeed(req.ServerSeed)
	s.securityLogger.LogSeedHashOperation(middleware.GetReqID(r.Context()), req.ServerSeed, hash)
	s.writeJSON(w, http.StatusOK, SeedHashResponse{
		Hash:          hash,
		EngineVersion: EngineVersion,
		Echo:          req,
	})
}

// POST /api/v1/verify
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	if err := ValidateVerifyRequest(&req); err != nil {
		s.handleRequestError(w, r, err)
		return
	}

	var game games.ColorwayGame
	deal, err := game.Evaluate(req.Seeds, req.Nonce, req.PreviousGoal)
	if err != nil {
		engineErr := NewError(ErrTypeGameEvaluation, "Deal replay failed").
			WithRequestID(middleware.GetReqID(r.Context())).
			WithContext("nonce", req.Nonce).
			WithCause(err).
			Build()
		s.errorHandler.HandleError(w, r, engineErr)
		return
	}
	s.securityLogger.LogVerifyOperation(middleware.GetReqID(r.Context()), req.Seeds, req.Nonce, deal.Goal.Type)

	solution, _ := rules.FindSolution(deal.Goal.Type, deal.Hues())
	s.writeJSON(w, http.StatusOK, VerifyResponse{
		Nonce:          req.Nonce,
		ServerSeedHash: engine.HashServerSeed(req.Seeds.Server),
		Deal:           deal,
		Solution:       solution,
		EngineVersion:  EngineVersion,
		Echo:           req,
	})
}

// POST /api/v1/scan
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scan.ScanRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	if err := ValidateScanRequest(&req); err != nil {
		s.handleRequestError(w, r, err)
		return
	}
	s.securityLogger.LogScanOperation(middleware.GetReqID(r.Context()), req)

	start := time.Now()
	result, err := s.scanner.Scan(r.Context(), req)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	// The request itself ran out of time while scanning.
	if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		s.errorHandler.HandleTimeoutError(w, r, "scan", req.TimeoutMs)
		return
	}
	result.EngineVersion = EngineVersion
	s.logger.Printf("scan_completed nonces=%d-%d hits=%d timed_out=%t duration=%s",
		req.NonceStart, req.NonceEnd, result.Summary.HitsFound, result.Summary.TimedOut, time.Since(start))
	s.writeJSON(w, http.StatusOK, result)
}

// handleRequestError reports a FieldError as a validation failure and
// anything else through the error handler.
func (s *Server) handleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var fe *FieldError
	if errors.As(err, &fe) {
		s.errorHandler.HandleValidationError(w, r, fe.Field, fe.Message)
		return
	}
	s.errorHandler.HandleError(w, r, err)
}
