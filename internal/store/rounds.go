package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// sqlRounds holds the ledger queries. Queries are written with '?' and
// rebound for dialects that number their placeholders.
type sqlRounds struct {
	db       *sql.DB
	numbered bool
}

func (s *sqlRounds) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const roundColumns = `id, table_id, server_seed_hash, client_seed, nonce, previous_goal, goal,
	difficulty, hand, selection, solution, outcome, valid, message, feedback,
	dealt_at, resolved_at, engine_version, created_at`

// Ping checks the connection.
func (s *sqlRounds) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveRound appends a resolved round.
func (s *sqlRounds) SaveRound(ctx context.Context, r *Round) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	hand, err := encodeHues(r.Hand)
	if err != nil {
		return err
	}
	selection, err := encodeHues(r.Selection)
	if err != nil {
		return err
	}
	solution, err := encodeHues(r.Solution)
	if err != nil {
		return err
	}

	query := s.rebind(`INSERT INTO rounds (` + roundColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = s.db.ExecContext(ctx, query,
		r.ID, r.TableID, r.ServerSeedHash, r.ClientSeed, int64(r.Nonce), r.PreviousGoal, r.Goal,
		r.Difficulty, hand, selection, solution, r.Outcome, r.Valid, r.Message, r.Feedback,
		r.DealtAt.UTC(), r.ResolvedAt.UTC(), r.EngineVersion, r.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}
	return nil
}

// GetRound fetches one round by id.
func (s *sqlRounds) GetRound(ctx context.Context, id string) (*Round, error) {
	query := s.rebind(`SELECT ` + roundColumns + ` FROM rounds WHERE id = ?`)
	r, err := scanRound(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return r, nil
}

// ListRounds pages through rounds, newest first.
func (s *sqlRounds) ListRounds(ctx context.Context, q RoundsQuery) (*RoundsList, error) {
	normalizePaging(&q)

	var where []string
	var args []any
	if q.TableID != "" {
		where = append(where, "table_id = ?")
		args = append(args, q.TableID)
	}
	if q.Goal != "" {
		where = append(where, "goal = ?")
		args = append(args, q.Goal)
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := s.rebind("SELECT COUNT(*) FROM rounds" + whereClause)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count rounds: %w", err)
	}

	offset := (q.Page - 1) * q.PerPage
	listQuery := s.rebind(`SELECT ` + roundColumns + ` FROM rounds` + whereClause +
		` ORDER BY dealt_at DESC, nonce DESC LIMIT ? OFFSET ?`)
	rows, err := s.db.QueryContext(ctx, listQuery, append(args, q.PerPage, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	rounds := []Round{}
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &RoundsList{
		Rounds:     rounds,
		TotalCount: total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: (total + q.PerPage - 1) / q.PerPage,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRound(row rowScanner) (*Round, error) {
	var (
		r                         Round
		nonce                     int64
		hand, selection, solution string
	)
	err := row.Scan(
		&r.ID, &r.TableID, &r.ServerSeedHash, &r.ClientSeed, &nonce, &r.PreviousGoal, &r.Goal,
		&r.Difficulty, &hand, &selection, &solution, &r.Outcome, &r.Valid, &r.Message, &r.Feedback,
		&r.DealtAt, &r.ResolvedAt, &r.EngineVersion, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Nonce = uint64(nonce)
	if r.Hand, err = decodeHues(hand); err != nil {
		return nil, err
	}
	if r.Selection, err = decodeHues(selection); err != nil {
		return nil, err
	}
	if r.Solution, err = decodeHues(solution); err != nil {
		return nil, err
	}
	return &r, nil
}

func encodeHues(hs []int) (string, error) {
	if hs == nil {
		hs = []int{}
	}
	b, err := json.Marshal(hs)
	if err != nil {
		return "", fmt.Errorf("encode hues: %w", err)
	}
	return string(b), nil
}

func decodeHues(s string) ([]int, error) {
	out := []int{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode hues: %w", err)
	}
	return out, nil
}
