package scripting

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MJE43/colorway-poker/internal/engine"
	"github.com/MJE43/colorway-poker/internal/games"
	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/table"
	"github.com/MJE43/colorway-poker/internal/wheel"
)

// SimConfig describes a simulated session. ThinkSeconds is how long the
// strategy is assumed to take per round; it reduces the speed bonus.
type SimConfig struct {
	Seeds        engine.Seeds
	StartNonce   uint64
	Rounds       int
	Difficulty   string
	Bankroll     decimal.Decimal
	ThinkSeconds int
	ChartPoints  int
}

// Stop reasons.
const (
	StopCompleted = "completed"
	StopScript    = "stop() called"
	StopBroke     = "bankroll exhausted"
	StopCancelled = "cancelled"
)

// SimResult is the outcome of Simulate.
type SimResult struct {
	Stats      *Statistics  `json:"stats"`
	Chart      *ChartBuffer `json:"chart"`
	Logs       []LogEntry   `json:"logs"`
	StopReason string       `json:"stop_reason"`
	LastNonce  uint64       `json:"last_nonce"`
}

// Simulate plays cfg.Rounds provably fair rounds with the strategy loaded
// in vm, settling each with the table payout rules.
func Simulate(ctx context.Context, vm *VM, cfg SimConfig) (*SimResult, error) {
	d, err := table.LookupDifficulty(cfg.Difficulty)
	if err != nil {
		return nil, err
	}
	if cfg.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
	}
	if cfg.Bankroll.IsZero() {
		cfg.Bankroll = table.DefaultBankroll
	}
	if cfg.StartNonce == 0 {
		cfg.StartNonce = 1
	}
	secondsLeft := max(0, d.Seconds-cfg.ThinkSeconds)

	stats := NewStatistics(cfg.Bankroll)
	chart := NewChartBuffer(cfg.ChartPoints)
	res := &SimResult{Stats: stats, Chart: chart, StopReason: StopCompleted}

	var previous rules.GoalType
	for i := 0; i < cfg.Rounds; i++ {
		if ctx.Err() != nil {
			res.StopReason = StopCancelled
			break
		}
		nonce := cfg.StartNonce + uint64(i)
		deal, err := games.DealRound(cfg.Seeds.Stream(nonce), previous)
		if err != nil {
			return nil, fmt.Errorf("deal nonce %d: %w", nonce, err)
		}
		previous = deal.Goal.Type
		res.LastNonce = nonce

		picks, err := vm.CallPick(deal, stats)
		if err != nil {
			return nil, fmt.Errorf("nonce %d: %w", nonce, err)
		}

		outcome, amount := settle(deal, picks, secondsLeft, d)
		stats.Record(deal.Goal.Type, outcome, amount)
		chart.Push(ChartPoint{Round: stats.Rounds, Bankroll: stats.Bankroll.InexactFloat64(), Win: outcome == table.OutcomeWin})

		if vm.StopRequested() {
			res.StopReason = StopScript
			break
		}
		if stats.Bankroll.IsZero() {
			res.StopReason = StopBroke
			break
		}
	}

	res.Logs = vm.Logs()
	return res, nil
}

// settle resolves one simulated round. No picks means the clock ran out.
func settle(deal games.Deal, picks []int, secondsLeft int, d table.Difficulty) (table.Outcome, decimal.Decimal) {
	if len(picks) == 0 {
		return table.OutcomeTimeout, table.Penalty(d)
	}
	sel := make([]wheel.Hue, len(picks))
	for i, p := range picks {
		sel[i] = deal.Cards[p].Hue
	}
	if rules.Validate(deal.Goal.Type, sel).Valid {
		return table.OutcomeWin, table.Winnings(deal.Goal, secondsLeft, d)
	}
	return table.OutcomeBust, table.Penalty(d)
}
