package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/colorway-poker/internal/events"
	"github.com/MJE43/colorway-poker/internal/scan"
	"github.com/MJE43/colorway-poker/internal/store"
	"github.com/MJE43/colorway-poker/internal/table"
)

const maxBodyBytes = 1 << 20

// Options wire a Server to its collaborators. DB may be nil, in which
// case ledger routes report 503.
type Options struct {
	DB      store.DB
	Tables  *table.Manager
	Broker  *events.Broker
	Scanner *scan.Scanner
	Logger  *log.Logger
	// Security receives audit lines; nil means a "[SECURITY] " stdout logger.
	Security *log.Logger
	// HandSeed picks the seed for /hands requests that leave it at 0.
	HandSeed func() uint64
}

// Server handles HTTP requests
type Server struct {
	db             store.DB
	tables         *table.Manager
	broker         *events.Broker
	scanner        *scan.Scanner
	handSeed       func() uint64
	errorHandler   *ErrorHandler
	securityLogger *SecurityLogger
	logger         *log.Logger
	startTime      time.Time
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile)
	}
	if opts.Tables == nil {
		opts.Tables = table.NewManager(table.Options{})
	}
	if opts.Broker == nil {
		opts.Broker = events.NewBroker(16)
	}
	if opts.Scanner == nil {
		opts.Scanner = scan.NewScanner()
	}
	if opts.HandSeed == nil {
		opts.HandSeed = rand.Uint64
	}

	security := NewSecurityLogger(opts.Security)
	s := &Server{
		db:             opts.DB,
		tables:         opts.Tables,
		broker:         opts.Broker,
		scanner:        opts.Scanner,
		handSeed:       opts.HandSeed,
		errorHandler:   NewErrorHandler(logger, security),
		securityLogger: security,
		logger:         logger,
		startTime:      time.Now(),
	}
	logger.Printf("server_started version=%s ledger=%t", EngineVersion, s.db != nil)
	return s
}

// Routes sets up the HTTP routes with middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(s.CORSMiddleware)

	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/health/live", s.handleLiveness)

	r.Route("/api/v1", func(r chi.Router) {
		// The event feed is long-lived and stays outside the request timeout.
		r.Get("/tables/{id}/events", s.handleTableEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/games", s.handleGames)
			r.Get("/wheel", s.handleWheel)
			r.Get("/goals", s.handleGoals)
			r.Get("/difficulties", s.handleDifficulties)
			r.Post("/validate", s.handleValidate)
			r.Post("/solve", s.handleSolve)
			r.Post("/hands", s.handleHand)
			r.Post("/seed/hash", s.handleSeedHash)
			r.Post("/verify", s.handleVerify)
			r.Post("/scan", s.handleScan)

			r.Post("/tables", s.handleOpenTable)
			r.Get("/tables/{id}", s.handleGetTable)
			r.Delete("/tables/{id}", s.handleCloseTable)
			r.Post("/tables/{id}/deal", s.handleDeal)
			r.Post("/tables/{id}/toggle", s.handleToggle)
			r.Post("/tables/{id}/submit", s.handleSubmit)
			r.Post("/tables/{id}/rotate", s.handleRotate)

			r.Get("/rounds", s.handleListRounds)
			r.Get("/rounds/{id}", s.handleGetRound)
		})
	})

	return r
}

// writeJSON writes a JSON response with engine headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("response_encode_failed status=%d err=%v", status, err)
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst at its
// zero value when allowEmpty is set.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && err == io.EOF {
			return true
		}
		s.errorHandler.HandleValidationError(w, r, "body", fmt.Sprintf("invalid JSON: %v", err))
		return false
	}
	return true
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Printf("request method=%s path=%s status=%d bytes=%d duration=%s request_id=%s",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

// CORSMiddleware allows browser clients on any origin.
func (s *Server) CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		w.Header().Set("Access-Control-Expose-Headers", "X-Engine-Version, X-Error-Type, X-Error-Category")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
