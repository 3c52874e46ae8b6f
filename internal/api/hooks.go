package api

import (
	"context"
	"log"
	"time"

	"github.com/MJE43/colorway-poker/internal/events"
	"github.com/MJE43/colorway-poker/internal/store"
	"github.com/MJE43/colorway-poker/internal/table"
	"github.com/MJE43/colorway-poker/internal/wheel"
)

const hookTimeout = 5 * time.Second

// TableHooks records resolved rounds in db and publishes every lifecycle
// change to pub. Either may be nil.
func TableHooks(db store.DB, pub events.Publisher, logger *log.Logger) table.Hooks {
	publish := func(typ string, snap table.Snapshot, data any) {
		if pub == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
		defer cancel()
		ev := events.Event{Type: typ, TableID: snap.ID.String(), At: time.Now().UTC(), Data: data}
		if err := pub.Publish(ctx, ev); err != nil {
			logger.Printf("event_publish_failed type=%s table=%s err=%v", typ, snap.ID, err)
		}
	}

	return table.Hooks{
		OnDealt: func(snap table.Snapshot) {
			publish(events.TypeRoundDealt, snap, snap)
		},
		OnResolved: func(snap table.Snapshot) {
			if db != nil && snap.Round != nil {
				ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
				round := ledgerRound(snap)
				if err := db.SaveRound(ctx, &round); err != nil {
					logger.Printf("ledger_save_failed table=%s nonce=%d err=%v", snap.ID, snap.Round.Nonce, err)
				}
				cancel()
			}
			publish(events.TypeRoundResolved, snap, snap)
		},
		OnRotated: func(snap table.Snapshot, revealed string) {
			publish(events.TypeTableRotated, snap, RotateResponse{RevealedServerSeed: revealed, Table: snap})
		},
	}
}

func ledgerRound(snap table.Snapshot) store.Round {
	r := snap.Round
	out := store.Round{
		ID:             r.ID.String(),
		TableID:        snap.ID.String(),
		ServerSeedHash: snap.ServerSeedHash,
		ClientSeed:     snap.ClientSeed,
		Nonce:          r.Nonce,
		PreviousGoal:   string(r.PreviousGoal),
		Goal:           string(r.Goal.Type),
		Difficulty:     r.Difficulty.ID,
		Hand:           hueInts(r.Hues()),
		Selection:      hueInts(r.Selection),
		Solution:       hueInts(r.Solution),
		Outcome:        string(r.Outcome),
		Feedback:       r.Feedback,
		DealtAt:        r.DealtAt,
		EngineVersion:  EngineVersion,
		CreatedAt:      time.Now().UTC(),
	}
	if r.Verdict != nil {
		out.Valid = r.Verdict.Valid
		out.Message = r.Verdict.Message
	}
	if r.ResolvedAt != nil {
		out.ResolvedAt = *r.ResolvedAt
	}
	return out
}

func hueInts(hs []wheel.Hue) []int {
	out := make([]int, len(hs))
	for i, h := range hs {
		out[i] = int(h)
	}
	return out
}
