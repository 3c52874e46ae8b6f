package api

import (
	"github.com/MJE43/colorway-poker/internal/engine"
	"github.com/MJE43/colorway-poker/internal/games"
	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/table"
	"github.com/MJE43/colorway-poker/internal/wheel"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types
const (
	// Input validation errors
	ErrTypeInvalidSeed   = "invalid_seed"
	ErrTypeInvalidNonce  = "invalid_nonce"
	ErrTypeInvalidParams = "invalid_params"
	ErrTypeValidation    = "validation_error"

	// Game errors
	ErrTypeTableNotFound  = "table_not_found"
	ErrTypeRoundNotFound  = "round_not_found"
	ErrTypeRoundState     = "round_state"
	ErrTypeGameEvaluation = "game_evaluation_error"

	// System errors
	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory groups error types for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryGame       ErrorCategory = "game"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeInvalidSeed, ErrTypeInvalidNonce, ErrTypeInvalidParams, ErrTypeValidation:
		return CategoryValidation
	case ErrTypeTableNotFound, ErrTypeRoundNotFound, ErrTypeRoundState, ErrTypeGameEvaluation:
		return CategoryGame
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// WheelResponse lists the hues of the color wheel
type WheelResponse struct {
	Colors        []wheel.Color `json:"colors"`
	EngineVersion string        `json:"engine_version"`
}

// GamesResponse lists the games this engine deals.
type GamesResponse struct {
	Games         []games.GameSpec `json:"games"`
	EngineVersion string           `json:"engine_version"`
}

// GoalsResponse lists the goal catalog
type GoalsResponse struct {
	Goals         []rules.Goal `json:"goals"`
	EngineVersion string       `json:"engine_version"`
}

// DifficultiesResponse lists the difficulty table
type DifficultiesResponse struct {
	Difficulties  []table.Difficulty `json:"difficulties"`
	EngineVersion string             `json:"engine_version"`
}

// SelectionRequest is a goal plus hues, used by validate and solve
type SelectionRequest struct {
	Goal string `json:"goal"`
	Hues []int  `json:"hues"`
}

// ValidateResponse is the verdict for a selection
type ValidateResponse struct {
	rules.ValidationResult
	Goal          rules.GoalType   `json:"goal"`
	Names         []string         `json:"names"`
	EngineVersion string           `json:"engine_version"`
	Echo          SelectionRequest `json:"echo"`
}

// SolveResponse reports the first solution and every solution of a hand
type SolveResponse struct {
	Goal          rules.GoalType   `json:"goal"`
	Found         bool             `json:"found"`
	Solution      []wheel.Hue      `json:"solution"`
	Solutions     [][]wheel.Hue    `json:"solutions"`
	EngineVersion string           `json:"engine_version"`
	Echo          SelectionRequest `json:"echo"`
}

// HandRequest asks for a solvable hand. Seed 0 picks a random seed.
type HandRequest struct {
	Goal string `json:"goal"`
	Seed uint64 `json:"seed"`
}

// HandResponse is a generated hand
type HandResponse struct {
	Seed          uint64      `json:"seed"`
	Deal          games.Deal  `json:"deal"`
	Hues          []wheel.Hue `json:"hues"`
	Solution      []wheel.Hue `json:"solution"`
	EngineVersion string      `json:"engine_version"`
	Echo          HandRequest `json:"echo"`
}

// VerifyRequest replays one deal
type VerifyRequest struct {
	Seeds        engine.Seeds   `json:"seeds"`
	Nonce        uint64         `json:"nonce"`
	PreviousGoal rules.GoalType `json:"previous_goal,omitempty"`
}

// VerifyResponse is a replayed deal
type VerifyResponse struct {
	Nonce          uint64        `json:"nonce"`
	ServerSeedHash string        `json:"server_seed_hash"`
	Deal           games.Deal    `json:"deal"`
	Solution       []wheel.Hue   `json:"solution"`
	EngineVersion  string        `json:"engine_version"`
	Echo           VerifyRequest `json:"echo"`
}

// SeedHashRequest represents a seed hashing request
type SeedHashRequest struct {
	ServerSeed string `json:"server_seed"`
}

// SeedHashResponse represents a seed hashing response
type SeedHashResponse struct {
	Hash          string          `json:"hash"`
	EngineVersion string          `json:"engine_version"`
	Echo          SeedHashRequest `json:"echo"`
}

// OpenTableRequest opens a table. An empty client seed gets a random one.
type OpenTableRequest struct {
	ClientSeed string `json:"client_seed"`
}

// DealRequest deals a round at the given difficulty
type DealRequest struct {
	Difficulty string `json:"difficulty"`
}

// ToggleRequest flips one card's selection
type ToggleRequest struct {
	CardID string `json:"card_id"`
}

// RotateRequest reveals the server seed. An empty client seed keeps the
// current one.
type RotateRequest struct {
	ClientSeed string `json:"client_seed"`
}

// RotateResponse carries the revealed seed and the table after rotation
type RotateResponse struct {
	RevealedServerSeed string         `json:"revealed_server_seed"`
	Table              table.Snapshot `json:"table"`
}
