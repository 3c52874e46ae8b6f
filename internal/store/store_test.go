package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func testRound(i int, table, goal string) *Round {
	dealt := base.Add(time.Duration(i) * time.Minute)
	return &Round{
		ID:             fmt.Sprintf("round-%02d", i),
		TableID:        table,
		ServerSeedHash: "eb77ec5a3023a8e7b03251ef245f7195447b1f932f327a1c78f583565a361797",
		ClientSeed:     "colorway-client",
		Nonce:          uint64(i + 1),
		Goal:           goal,
		Difficulty:     "real",
		Hand:           []int{11, 11, 0, 2, 9, 7, 4},
		Selection:      []int{2, 7, 9},
		Solution:       nil,
		Outcome:        "win",
		Valid:          true,
		Message:        "Success! A dynamic split harmony.",
		Feedback:       "JACKPOT! +46. Success! A dynamic split harmony.",
		DealtAt:        dealt,
		ResolvedAt:     dealt.Add(12 * time.Second),
		EngineVersion:  "test",
	}
}

func exercise(t *testing.T, db DB) {
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		table, goal := "table-a", "TRIADIC"
		if i%2 == 1 {
			table = "table-b"
		}
		if i%3 == 0 {
			goal = "TETRADIC"
		}
		if err := db.SaveRound(ctx, testRound(i, table, goal)); err != nil {
			t.Fatalf("SaveRound %d: %v", i, err)
		}
	}

	got, err := db.GetRound(ctx, "round-00")
	if err != nil {
		t.Fatalf("GetRound: %v", err)
	}
	want := testRound(0, "table-a", "TETRADIC")
	if got.TableID != want.TableID || got.Nonce != 1 || got.Goal != want.Goal || !got.Valid {
		t.Errorf("GetRound = %+v", got)
	}
	if !slices.Equal(got.Hand, want.Hand) || !slices.Equal(got.Selection, want.Selection) || len(got.Solution) != 0 {
		t.Errorf("hues hand=%v selection=%v solution=%v", got.Hand, got.Selection, got.Solution)
	}
	if !got.DealtAt.Equal(want.DealtAt) || !got.ResolvedAt.Equal(want.ResolvedAt) {
		t.Errorf("times dealt=%v resolved=%v", got.DealtAt, got.ResolvedAt)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
	if got.Message != want.Message || got.Feedback != want.Feedback {
		t.Errorf("message=%q feedback=%q", got.Message, got.Feedback)
	}

	if _, err := db.GetRound(ctx, "missing"); !errors.Is(err, ErrRoundNotFound) {
		t.Errorf("GetRound(missing) err = %v", err)
	}
	if err := db.SaveRound(ctx, testRound(0, "table-a", "TRIADIC")); err == nil {
		t.Error("duplicate id accepted")
	}

	tests := []struct {
		name      string
		query     RoundsQuery
		wantIDs   []string
		wantTotal int
		wantPages int
	}{
		{"all newest first", RoundsQuery{PerPage: 3}, []string{"round-06", "round-05", "round-04"}, 7, 3},
		{"last page", RoundsQuery{Page: 3, PerPage: 3}, []string{"round-00"}, 7, 3},
		{"by table", RoundsQuery{TableID: "table-b"}, []string{"round-05", "round-03", "round-01"}, 3, 1},
		{"by goal", RoundsQuery{Goal: "TETRADIC"}, []string{"round-06", "round-03", "round-00"}, 3, 1},
		{"table and goal", RoundsQuery{TableID: "table-a", Goal: "TETRADIC"}, []string{"round-06", "round-00"}, 2, 1},
		{"no match", RoundsQuery{TableID: "nope"}, nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := db.ListRounds(ctx, tt.query)
			if err != nil {
				t.Fatalf("ListRounds: %v", err)
			}
			var ids []string
			for _, r := range list.Rounds {
				ids = append(ids, r.ID)
			}
			if !slices.Equal(ids, tt.wantIDs) {
				t.Errorf("ids %v, want %v", ids, tt.wantIDs)
			}
			if list.TotalCount != tt.wantTotal || list.TotalPages != tt.wantPages {
				t.Errorf("total %d pages %d, want %d %d", list.TotalCount, list.TotalPages, tt.wantTotal, tt.wantPages)
			}
			if list.Rounds == nil {
				t.Error("rounds should be an empty slice, not nil")
			}
		})
	}
}

func TestSQLiteLedger(t *testing.T) {
	exercise(t, newTestDB(t))
}

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestPagingDefaults(t *testing.T) {
	q := RoundsQuery{Page: -1, PerPage: 10000}
	normalizePaging(&q)
	if q.Page != 1 || q.PerPage != 500 {
		t.Errorf("normalized %+v", q)
	}
	q = RoundsQuery{}
	normalizePaging(&q)
	if q.PerPage != 50 {
		t.Errorf("default per page %d", q.PerPage)
	}
}

func TestRebind(t *testing.T) {
	s := &sqlRounds{numbered: true}
	got := s.rebind("SELECT * FROM rounds WHERE table_id = ? AND goal = ? LIMIT ? OFFSET ?")
	want := "SELECT * FROM rounds WHERE table_id = $1 AND goal = $2 LIMIT $3 OFFSET $4"
	if got != want {
		t.Errorf("rebind = %q", got)
	}
	if q := (&sqlRounds{}).rebind("a = ?"); q != "a = ?" {
		t.Errorf("sqlite rebind = %q", q)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", ""); err == nil {
		t.Error("expected error")
	}
}

func TestPostgresLedger(t *testing.T) {
	dsn := os.Getenv("COLORWAY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("COLORWAY_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	db, err := NewPostgresDB(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	if _, err := db.db.ExecContext(ctx, "DROP TABLE IF EXISTS rounds; DROP TABLE IF EXISTS goose_db_version"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	exercise(t, db)
}
