package api

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"os"
	"time"

	"github.com/MJE43/colorway-poker/internal/engine"
	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/scan"
)

// SecurityLogger records audit events without ever writing a raw seed.
type SecurityLogger struct {
	logger *log.Logger
}

// NewSecurityLogger wraps logger, or a stdout "[SECURITY] " logger when nil.
func NewSecurityLogger(logger *log.Logger) *SecurityLogger {
	if logger == nil {
		logger = log.New(os.Stdout, "[SECURITY] ", log.LstdFlags|log.LUTC)
	}
	return &SecurityLogger{logger: logger}
}

// LogScanOperation logs a scan with hashed seeds.
func (sl *SecurityLogger) LogScanOperation(requestID string, req scan.ScanRequest) {
	sl.logger.Printf(
		"scan_operation request_id=%s server_hash=%s client_hash=%s nonce_range=%d-%d goal=%s target_op=%s target_val=%g limit=%d timeout_ms=%d engine_version=%s timestamp=%s",
		requestID, hashSeed(req.Seeds.Server), hashSeed(req.Seeds.Client), req.NonceStart, req.NonceEnd,
		req.Goal, req.TargetOp, req.TargetVal, req.Limit, req.TimeoutMs,
		EngineVersion, time.Now().UTC().Format(time.RFC3339),
	)
}

// LogVerifyOperation logs a deal replay with hashed seeds.
func (sl *SecurityLogger) LogVerifyOperation(requestID string, seeds engine.Seeds, nonce uint64, goal rules.GoalType) {
	sl.logger.Printf(
		"verify_operation request_id=%s server_hash=%s client_hash=%s nonce=%d goal=%s engine_version=%s timestamp=%s",
		requestID, hashSeed(seeds.Server), hashSeed(seeds.Client), nonce, goal,
		EngineVersion, time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSeedHashOperation logs only the hash of the input and the result.
func (sl *SecurityLogger) LogSeedHashOperation(requestID, serverSeed, resultHash string) {
	sl.logger.Printf(
		"seed_hash_operation request_id=%s input_hash=%s result_hash=%s engine_version=%s timestamp=%s",
		requestID, hashSeed(serverSeed), resultHash, EngineVersion, time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSeedReveal logs a table rotation. The revealed seed is public from
// this point on, but only its hash goes to the log.
func (sl *SecurityLogger) LogSeedReveal(requestID, tableID string, generation int, revealed string) {
	sl.logger.Printf(
		"seed_reveal request_id=%s table=%s generation=%d revealed_hash=%s timestamp=%s",
		requestID, tableID, generation, engine.HashServerSeed(revealed), time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSecurityEvent logs failed validations and similar events.
func (sl *SecurityLogger) LogSecurityEvent(requestID, eventType, description string, context map[string]any, remoteAddr string) {
	sl.logger.Printf(
		"security_event request_id=%s type=%s description=%q context=%+v remote_addr=%s engine_version=%s timestamp=%s",
		requestID, eventType, description, sanitizeContext(context), remoteAddr,
		EngineVersion, time.Now().UTC().Format(time.RFC3339),
	)
}

// hashSeed shortens a seed's SHA-256 for log correlation.
func hashSeed(seed string) string {
	if seed == "" {
		return "empty"
	}
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:16]
}

func sanitizeContext(context map[string]any) map[string]any {
	out := make(map[string]any, len(context))
	for k, v := range context {
		switch k {
		case "server_seed", "client_seed", "seed", "secret":
			if s, ok := v.(string); ok {
				out[k+"_hash"] = hashSeed(s)
			}
		default:
			out[k] = v
		}
	}
	return out
}
