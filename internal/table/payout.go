package table

import (
	"github.com/shopspring/decimal"

	"github.com/MJE43/colorway-poker/internal/rules"
)

var (
	// DefaultBankroll is what a new table starts with.
	DefaultBankroll = decimal.NewFromInt(300)

	winCap      = decimal.NewFromInt(100)
	basePenalty = decimal.NewFromInt(100)
	speedBonus  = decimal.RequireFromString("1.25")
)

// Winnings for a correct selection: (base + secondsLeft*1.25) scaled by the
// difficulty, rounded, capped at 100.
func Winnings(goal rules.Goal, secondsLeft int, d Difficulty) decimal.Decimal {
	raw := decimal.NewFromInt(int64(goal.BasePoints)).
		Add(decimal.NewFromInt(int64(secondsLeft)).Mul(speedBonus)).
		Mul(d.Multiplier).
		Round(0)
	return decimal.Min(raw, winCap)
}

// Penalty for a bust or a timeout.
func Penalty(d Difficulty) decimal.Decimal {
	return basePenalty.Mul(d.Multiplier).Round(0)
}

// Debit subtracts amount from bankroll without going below zero.
func Debit(bankroll, amount decimal.Decimal) decimal.Decimal {
	return decimal.Max(bankroll.Sub(amount), decimal.Zero)
}
