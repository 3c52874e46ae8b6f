// Package table runs single-player Colorway sessions: deal, select,
// submit or time out, and settle the bankroll.
package table

import (
	"fmt"
	"log"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MJE43/colorway-poker/internal/engine"
	"github.com/MJE43/colorway-poker/internal/games"
	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/wheel"
)

// Status is the table's position in the round lifecycle.
type Status string

const (
	StatusIdle     Status = "IDLE"
	StatusPlaying  Status = "PLAYING"
	StatusFinished Status = "FINISHED"
)

// Outcome is how a round ended.
type Outcome string

const (
	OutcomeWin     Outcome = "win"
	OutcomeBust    Outcome = "bust"
	OutcomeTimeout Outcome = "timeout"
)

// Round is one dealt hand and, once resolved, its verdict.
type Round struct {
	ID           uuid.UUID               `json:"id"`
	Nonce        uint64                  `json:"nonce"`
	PreviousGoal rules.GoalType          `json:"previous_goal,omitempty"`
	Goal         rules.Goal              `json:"goal"`
	Difficulty   Difficulty              `json:"difficulty"`
	Cards        []games.Card            `json:"cards"`
	DealtAt      time.Time               `json:"dealt_at"`
	Deadline     time.Time               `json:"deadline"`
	Outcome      Outcome                 `json:"outcome,omitempty"`
	Verdict      *rules.ValidationResult `json:"verdict,omitempty"`
	Delta        decimal.Decimal         `json:"delta"`
	Feedback     string                  `json:"feedback,omitempty"`
	Selection    []wheel.Hue             `json:"selection,omitempty"`
	Solution     []wheel.Hue             `json:"solution,omitempty"`
	ResolvedAt   *time.Time              `json:"resolved_at,omitempty"`
}

// Hues returns the hand's hues in deal order.
func (r *Round) Hues() []wheel.Hue {
	out := make([]wheel.Hue, len(r.Cards))
	for i, c := range r.Cards {
		out[i] = c.Hue
	}
	return out
}

func (r *Round) selected() []wheel.Hue {
	var out []wheel.Hue
	for _, c := range r.Cards {
		if c.Selected {
			out = append(out, c.Hue)
		}
	}
	return out
}

func (r *Round) clone() *Round {
	c := *r
	c.Cards = slices.Clone(r.Cards)
	c.Selection = slices.Clone(r.Selection)
	c.Solution = slices.Clone(r.Solution)
	if r.Verdict != nil {
		v := *r.Verdict
		c.Verdict = &v
	}
	if r.ResolvedAt != nil {
		at := *r.ResolvedAt
		c.ResolvedAt = &at
	}
	return &c
}

// Snapshot is a copy of a table's state that is safe to hand out. The
// server seed itself is only ever shown as its hash.
type Snapshot struct {
	ID             uuid.UUID       `json:"id"`
	Status         Status          `json:"status"`
	Bankroll       decimal.Decimal `json:"bankroll"`
	ServerSeedHash string          `json:"server_seed_hash"`
	ClientSeed     string          `json:"client_seed"`
	Nonce          uint64          `json:"nonce"`
	Generation     int             `json:"generation"`
	Feedback       string          `json:"feedback,omitempty"`
	SecondsLeft    int             `json:"seconds_left"`
	Round          *Round          `json:"round,omitempty"`
}

// Hooks observe round lifecycle changes. They run after the table lock is
// released, on the goroutine that caused the change.
type Hooks struct {
	OnDealt    func(Snapshot)
	OnResolved func(Snapshot)
	OnRotated  func(s Snapshot, revealedServerSeed string)
}

// Table is one player's session.
type Table struct {
	mu sync.Mutex

	id         uuid.UUID
	seeds      engine.Seeds
	generation int
	nonce      uint64
	bankroll   decimal.Decimal
	status     Status
	feedback   string
	round      *Round
	timer      Timer

	game     games.ColorwayGame
	clock    Clock
	hooks    Hooks
	nextSeed func(generation int) (string, error)
	logger   *log.Logger
}

// ID returns the table id.
func (t *Table) ID() uuid.UUID {
	return t.id
}

// Snapshot returns the current state.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Table) snapshotLocked() Snapshot {
	s := Snapshot{
		ID:             t.id,
		Status:         t.status,
		Bankroll:       t.bankroll,
		ServerSeedHash: engine.HashServerSeed(t.seeds.Server),
		ClientSeed:     t.seeds.Client,
		Nonce:          t.nonce,
		Generation:     t.generation,
		Feedback:       t.feedback,
	}
	if t.round != nil {
		s.Round = t.round.clone()
		if t.status == StatusPlaying {
			s.SecondsLeft = t.secondsLeft(t.clock.Now())
		}
	}
	return s
}

// Deal starts a new round at the next nonce.
func (t *Table) Deal(difficulty string) (Snapshot, error) {
	d, err := LookupDifficulty(difficulty)
	if err != nil {
		return Snapshot{}, err
	}

	t.mu.Lock()
	if t.status == StatusPlaying {
		t.mu.Unlock()
		return Snapshot{}, ErrRoundInProgress
	}

	nonce := t.nonce + 1
	var previous rules.GoalType
	if t.round != nil {
		previous = t.round.Goal.Type
	}
	deal, err := t.game.Evaluate(t.seeds, nonce, previous)
	if err != nil {
		t.mu.Unlock()
		return Snapshot{}, fmt.Errorf("deal nonce %d: %w", nonce, err)
	}

	now := t.clock.Now()
	round := &Round{
		ID:           uuid.New(),
		Nonce:        nonce,
		PreviousGoal: previous,
		Goal:         deal.Goal,
		Difficulty:   d,
		Cards:        deal.Cards,
		DealtAt:      now,
		Deadline:     now.Add(d.Duration()),
		Delta:        decimal.Zero,
	}
	t.nonce = nonce
	t.round = round
	t.status = StatusPlaying
	t.feedback = ""
	t.timer = t.clock.AfterFunc(d.Duration(), func() { t.expire(round.ID) })
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.logger.Printf("table=%s nonce=%d goal=%s difficulty=%s dealt", t.id, nonce, deal.Goal.Type, d.ID)
	if t.hooks.OnDealt != nil {
		t.hooks.OnDealt(snap)
	}
	return snap, nil
}

// Toggle flips the selection of one card in the current hand.
func (t *Table) Toggle(cardID uuid.UUID) (Snapshot, error) {
	t.mu.Lock()
	if t.status != StatusPlaying {
		t.mu.Unlock()
		return Snapshot{}, ErrNotPlaying
	}
	if now := t.clock.Now(); !now.Before(t.round.Deadline) {
		snap := t.resolveTimeoutLocked(now)
		t.mu.Unlock()
		t.resolved(snap)
		return Snapshot{}, ErrNotPlaying
	}

	i := slices.IndexFunc(t.round.Cards, func(c games.Card) bool { return c.ID == cardID })
	if i < 0 {
		t.mu.Unlock()
		return Snapshot{}, ErrCardNotFound
	}
	t.round.Cards[i].Selected = !t.round.Cards[i].Selected
	t.feedback = ""
	snap := t.snapshotLocked()
	t.mu.Unlock()
	return snap, nil
}

// Submit resolves the round with the current selection. A submission at
// or after the deadline resolves as a timeout.
func (t *Table) Submit() (Snapshot, error) {
	t.mu.Lock()
	if t.status != StatusPlaying {
		t.mu.Unlock()
		return Snapshot{}, ErrNotPlaying
	}

	now := t.clock.Now()
	if !now.Before(t.round.Deadline) {
		snap := t.resolveTimeoutLocked(now)
		t.mu.Unlock()
		t.resolved(snap)
		return snap, nil
	}

	r := t.round
	sel := r.selected()
	if len(sel) == 0 {
		t.mu.Unlock()
		return Snapshot{}, ErrEmptySelection
	}

	verdict := rules.Validate(r.Goal.Type, sel)
	r.Verdict = &verdict
	r.Selection = sel
	if verdict.Valid {
		win := Winnings(r.Goal, t.secondsLeft(now), r.Difficulty)
		t.bankroll = t.bankroll.Add(win)
		r.Outcome = OutcomeWin
		r.Delta = win
		r.Feedback = fmt.Sprintf("JACKPOT! +%s. %s", win, verdict.Message)
	} else {
		penalty := Penalty(r.Difficulty)
		t.bankroll = Debit(t.bankroll, penalty)
		r.Outcome = OutcomeBust
		r.Delta = penalty.Neg()
		r.Solution, _ = rules.FindSolution(r.Goal.Type, r.Hues())
		r.Feedback = fmt.Sprintf("BUST! -%s. Right choice: %s", penalty, solutionNames(r.Solution))
	}
	t.finishLocked(now)
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.resolved(snap)
	return snap, nil
}

// Rotate reveals the current server seed and commits to the next one. The
// nonce restarts at zero. An empty clientSeed keeps the current one.
func (t *Table) Rotate(clientSeed string) (string, Snapshot, error) {
	t.mu.Lock()
	if t.status == StatusPlaying {
		t.mu.Unlock()
		return "", Snapshot{}, ErrRoundInProgress
	}
	next, err := t.nextSeed(t.generation + 1)
	if err != nil {
		t.mu.Unlock()
		return "", Snapshot{}, fmt.Errorf("rotate seed: %w", err)
	}

	revealed := t.seeds.Server
	t.seeds.Server = next
	if clientSeed != "" {
		t.seeds.Client = clientSeed
	}
	t.generation++
	t.nonce = 0
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.logger.Printf("table=%s generation=%d rotated", t.id, snap.Generation)
	if t.hooks.OnRotated != nil {
		t.hooks.OnRotated(snap, revealed)
	}
	return revealed, snap, nil
}

// stop cancels a pending deadline timer.
func (t *Table) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Table) expire(roundID uuid.UUID) {
	t.mu.Lock()
	if t.status != StatusPlaying || t.round.ID != roundID {
		t.mu.Unlock()
		return
	}
	snap := t.resolveTimeoutLocked(t.clock.Now())
	t.mu.Unlock()
	t.resolved(snap)
}

func (t *Table) resolveTimeoutLocked(now time.Time) Snapshot {
	r := t.round
	penalty := Penalty(r.Difficulty)
	t.bankroll = Debit(t.bankroll, penalty)
	r.Outcome = OutcomeTimeout
	r.Delta = penalty.Neg()
	r.Selection = r.selected()
	r.Solution, _ = rules.FindSolution(r.Goal.Type, r.Hues())
	r.Feedback = fmt.Sprintf("TIMEOUT! -%s. Correct: %s", penalty, solutionNames(r.Solution))
	t.finishLocked(now)
	return t.snapshotLocked()
}

func (t *Table) finishLocked(now time.Time) {
	t.status = StatusFinished
	t.feedback = t.round.Feedback
	t.round.ResolvedAt = &now
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Table) resolved(snap Snapshot) {
	t.logger.Printf("table=%s nonce=%d outcome=%s bankroll=%s", t.id, snap.Round.Nonce, snap.Round.Outcome, snap.Bankroll)
	if t.hooks.OnResolved != nil {
		t.hooks.OnResolved(snap)
	}
}

// secondsLeft counts whole seconds the way the round clock displays them.
func (t *Table) secondsLeft(now time.Time) int {
	remaining := t.round.Deadline.Sub(now).Seconds()
	left := int(math.Ceil(remaining))
	return max(0, min(left, t.round.Difficulty.Seconds))
}

func solutionNames(sol []wheel.Hue) string {
	if len(sol) == 0 {
		return "None"
	}
	return wheel.Names(sol)
}
