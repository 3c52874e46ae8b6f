package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/scan"
	"github.com/MJE43/colorway-poker/internal/store"
	"github.com/MJE43/colorway-poker/internal/table"
)

// ErrorBuilder helps construct structured errors with context
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]any
	requestID string
}

// NewError creates a new error builder
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]any),
	}
}

// WithContext adds context information to the error
func (eb *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID adds request ID to the error
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// WithCause records the underlying error message
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

// Build creates the final EngineError
func (eb *ErrorBuilder) Build() EngineError {
	return EngineError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   eb.context,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger         *log.Logger
	securityLogger *SecurityLogger
}

// NewErrorHandler creates a new error handler. A nil security logger
// gets the default one.
func NewErrorHandler(logger *log.Logger, security *SecurityLogger) *ErrorHandler {
	if security == nil {
		security = NewSecurityLogger(nil)
	}
	return &ErrorHandler{logger: logger, securityLogger: security}
}

// classify maps package sentinel errors to an HTTP status and error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, table.ErrTableNotFound):
		return http.StatusNotFound, ErrTypeTableNotFound
	case errors.Is(err, store.ErrRoundNotFound):
		return http.StatusNotFound, ErrTypeRoundNotFound
	case errors.Is(err, table.ErrCardNotFound):
		return http.StatusNotFound, ErrTypeInvalidParams
	case errors.Is(err, table.ErrNotPlaying), errors.Is(err, table.ErrRoundInProgress):
		return http.StatusConflict, ErrTypeRoundState
	case errors.Is(err, table.ErrEmptySelection):
		return http.StatusUnprocessableEntity, ErrTypeValidation
	case errors.Is(err, table.ErrUnknownDifficulty), errors.Is(err, rules.ErrUnknownGoal):
		return http.StatusBadRequest, ErrTypeInvalidParams
	case errors.Is(err, scan.ErrInvalidRange), errors.Is(err, scan.ErrRangeTooLarge):
		return http.StatusBadRequest, ErrTypeInvalidNonce
	case errors.Is(err, scan.ErrInvalidTarget):
		return http.StatusBadRequest, ErrTypeInvalidParams
	default:
		return http.StatusInternalServerError, ErrTypeInternal
	}
}

// HandleError converts err to an EngineError and writes it. Known
// sentinel errors get their own status; anything else is a 500.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var engineErr EngineError
	if errors.As(err, &engineErr) {
		status := http.StatusInternalServerError
		if GetErrorCategory(engineErr.Type) == CategoryValidation {
			status = http.StatusBadRequest
		}
		eh.logError(r, engineErr, status)
		eh.writeErrorResponse(w, status, engineErr)
		return
	}

	status, errType := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	engineErr = NewError(errType, message).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		WithCause(err).
		Build()

	eh.logError(r, engineErr, status)
	eh.writeErrorResponse(w, status, engineErr)
}

// HandleValidationError handles request validation failures
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	requestID := middleware.GetReqID(r.Context())
	engineErr := NewError(ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message)).
		WithRequestID(requestID).
		WithContext("field", field).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		Build()

	eh.securityLogger.LogSecurityEvent(requestID, "validation_failure", message,
		map[string]any{"field": field, "path": r.URL.Path}, r.RemoteAddr)

	eh.logError(r, engineErr, http.StatusBadRequest)
	eh.writeErrorResponse(w, http.StatusBadRequest, engineErr)
}

// HandleTimeoutError handles timeout-specific errors
func (eh *ErrorHandler) HandleTimeoutError(w http.ResponseWriter, r *http.Request, operation string, timeoutMs int) {
	engineErr := NewError(ErrTypeTimeout, fmt.Sprintf("Operation timed out: %s", operation)).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("operation", operation).
		WithContext("timeout_ms", timeoutMs).
		WithContext("path", r.URL.Path).
		Build()

	eh.logError(r, engineErr, http.StatusRequestTimeout)
	eh.writeErrorResponse(w, http.StatusRequestTimeout, engineErr)
}

func (eh *ErrorHandler) logError(r *http.Request, engineErr EngineError, status int) {
	category := GetErrorCategory(engineErr.Type)
	level := "ERROR"
	if category == CategoryValidation || status < 500 {
		level = "WARN"
	}

	fields := make(map[string]any, len(engineErr.Context))
	for key, value := range engineErr.Context {
		// Never log raw seeds - only hashes
		if key == "server_seed" || key == "client_seed" {
			continue
		}
		fields[key] = value
	}

	eh.logger.Printf(
		"error_occurred level=%s type=%s category=%s status=%d request_id=%s path=%s message=%q context=%+v",
		level, engineErr.Type, category, status, engineErr.RequestID, r.URL.Path, engineErr.Message, fields,
	)
}

func (eh *ErrorHandler) writeErrorResponse(w http.ResponseWriter, status int, engineErr EngineError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", engineErr.Type)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(engineErr.Type)))
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(engineErr); err != nil {
		eh.logger.Printf("error_encode_failed request_id=%s err=%v", engineErr.RequestID, err)
	}
}

// RecoveryHandler provides panic recovery with structured error logging
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				requestID := middleware.GetReqID(r.Context())
				eh.logger.Printf(
					"panic_recovered request_id=%s path=%s method=%s panic=%v",
					requestID, r.URL.Path, r.Method, rvr,
				)

				engineErr := NewError(ErrTypeInternal, "Internal server error").
					WithRequestID(requestID).
					WithContext("panic", fmt.Sprintf("%v", rvr)).
					WithContext("path", r.URL.Path).
					WithContext("method", r.Method).
					Build()

				eh.writeErrorResponse(w, http.StatusInternalServerError, engineErr)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
