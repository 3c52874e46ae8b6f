package api

import (
	"fmt"

	"github.com/MJE43/colorway-poker/internal/engine"
	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/scan"
)

// FieldError is a request validation failure on one field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func fieldErr(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func validateSeeds(seeds engine.Seeds) error {
	if seeds.Server == "" {
		return fieldErr("seeds.server_seed", "server seed is required")
	}
	if seeds.Client == "" {
		return fieldErr("seeds.client_seed", "client seed is required")
	}
	return nil
}

// normalizeGoal parses an optional goal field in place.
func normalizeGoal(field string, g *rules.GoalType) error {
	if *g == "" {
		return nil
	}
	parsed, err := rules.ParseGoalType(string(*g))
	if err != nil {
		return fieldErr(field, "unknown goal %q", string(*g))
	}
	*g = parsed
	return nil
}

// ValidateVerifyRequest checks a verify request and normalizes its goal.
func ValidateVerifyRequest(req *VerifyRequest) error {
	if err := validateSeeds(req.Seeds); err != nil {
		return err
	}
	if req.Nonce == 0 {
		return fieldErr("nonce", "nonce must be >= 1")
	}
	return normalizeGoal("previous_goal", &req.PreviousGoal)
}

// ValidateScanRequest checks a scan request and normalizes its goals.
// Range and target checks are left to the scanner's own errors.
func ValidateScanRequest(req *scan.ScanRequest) error {
	if err := validateSeeds(req.Seeds); err != nil {
		return err
	}
	if req.NonceStart == 0 {
		return fieldErr("nonce_start", "nonce_start must be >= 1")
	}
	if err := normalizeGoal("previous_goal", &req.PreviousGoal); err != nil {
		return err
	}
	return normalizeGoal("goal", &req.Goal)
}

// ValidateSeedHashRequest checks a seed hash request.
func ValidateSeedHashRequest(req *SeedHashRequest) error {
	if req.ServerSeed == "" {
		return fieldErr("server_seed", "server_seed is required")
	}
	return nil
}
