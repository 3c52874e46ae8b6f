// Package store is the round ledger: an append-only record of resolved
// rounds that lets a player audit any deal once its server seed is
// revealed. Bankrolls are never stored.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRoundNotFound is returned by GetRound for unknown ids.
var ErrRoundNotFound = errors.New("round not found")

// DB is the ledger interface shared by the SQLite and Postgres backends.
type DB interface {
	Close() error
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	SaveRound(ctx context.Context, r *Round) error
	GetRound(ctx context.Context, id string) (*Round, error)
	ListRounds(ctx context.Context, q RoundsQuery) (*RoundsList, error)
}

// Round is one resolved round as recorded in the ledger.
type Round struct {
	ID             string    `json:"id" db:"id"`
	TableID        string    `json:"table_id" db:"table_id"`
	ServerSeedHash string    `json:"server_seed_hash" db:"server_seed_hash"`
	ClientSeed     string    `json:"client_seed" db:"client_seed"`
	Nonce          uint64    `json:"nonce" db:"nonce"`
	PreviousGoal   string    `json:"previous_goal,omitempty" db:"previous_goal"`
	Goal           string    `json:"goal" db:"goal"`
	Difficulty     string    `json:"difficulty" db:"difficulty"`
	Hand           []int     `json:"hand" db:"hand"`
	Selection      []int     `json:"selection" db:"selection"`
	Solution       []int     `json:"solution" db:"solution"`
	Outcome        string    `json:"outcome" db:"outcome"`
	Valid          bool      `json:"valid" db:"valid"`
	Message        string    `json:"message" db:"message"`   // verdict, empty on timeout
	Feedback       string    `json:"feedback" db:"feedback"` // line shown to the player
	DealtAt        time.Time `json:"dealt_at" db:"dealt_at"`
	ResolvedAt     time.Time `json:"resolved_at" db:"resolved_at"`
	EngineVersion  string    `json:"engine_version" db:"engine_version"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// RoundsQuery filters and pages ListRounds.
type RoundsQuery struct {
	TableID string `json:"table_id,omitempty"`
	Goal    string `json:"goal,omitempty"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
}

// RoundsList is one page of rounds, newest first.
type RoundsList struct {
	Rounds     []Round `json:"rounds"`
	TotalCount int     `json:"totalCount"`
	Page       int     `json:"page"`
	PerPage    int     `json:"perPage"`
	TotalPages int     `json:"totalPages"`
}

// Open connects to the backend named by driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, dsn string) (DB, error) {
	switch driver {
	case "", "sqlite":
		db, err := NewSQLiteDB(dsn)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		db, err := NewPostgresDB(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

func normalizePaging(q *RoundsQuery) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 50
	}
	if q.PerPage > 500 {
		q.PerPage = 500
	}
}
