package scripting

import (
	"github.com/shopspring/decimal"

	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/table"
)

// GoalStats counts rounds per goal.
type GoalStats struct {
	Played int `json:"played"`
	Won    int `json:"won"`
}

// Statistics tracks a simulated session.
type Statistics struct {
	Rounds   int `json:"rounds"`
	Wins     int `json:"wins"`
	Busts    int `json:"busts"`
	Timeouts int `json:"timeouts"`

	Bankroll        decimal.Decimal `json:"bankroll"`
	StartBankroll   decimal.Decimal `json:"start_bankroll"`
	HighestBankroll decimal.Decimal `json:"highest_bankroll"`
	LowestBankroll  decimal.Decimal `json:"lowest_bankroll"`

	// Positive = win streak, negative = losing streak.
	CurrentStreak int `json:"current_streak"`
	HighestStreak int `json:"highest_streak"`
	LowestStreak  int `json:"lowest_streak"`

	ByGoal map[rules.GoalType]*GoalStats `json:"by_goal"`
}

// NewStatistics starts a session at bankroll.
func NewStatistics(bankroll decimal.Decimal) *Statistics {
	return &Statistics{
		Bankroll:        bankroll,
		StartBankroll:   bankroll,
		HighestBankroll: bankroll,
		LowestBankroll:  bankroll,
		ByGoal:          make(map[rules.GoalType]*GoalStats),
	}
}

// Record applies one resolved round. Losses never take the bankroll below
// zero.
func (s *Statistics) Record(goal rules.GoalType, outcome table.Outcome, amount decimal.Decimal) {
	s.Rounds++
	gs := s.ByGoal[goal]
	if gs == nil {
		gs = &GoalStats{}
		s.ByGoal[goal] = gs
	}
	gs.Played++

	switch outcome {
	case table.OutcomeWin:
		s.Wins++
		gs.Won++
		s.Bankroll = s.Bankroll.Add(amount)
		if s.CurrentStreak < 0 {
			s.CurrentStreak = 0
		}
		s.CurrentStreak++
	default:
		if outcome == table.OutcomeTimeout {
			s.Timeouts++
		} else {
			s.Busts++
		}
		s.Bankroll = table.Debit(s.Bankroll, amount)
		if s.CurrentStreak > 0 {
			s.CurrentStreak = 0
		}
		s.CurrentStreak--
	}

	s.HighestBankroll = decimal.Max(s.HighestBankroll, s.Bankroll)
	s.LowestBankroll = decimal.Min(s.LowestBankroll, s.Bankroll)
	s.HighestStreak = max(s.HighestStreak, s.CurrentStreak)
	s.LowestStreak = min(s.LowestStreak, s.CurrentStreak)
}

// WinRate is wins over rounds played, 0 before the first round.
func (s *Statistics) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds)
}

// Profit is the bankroll change since the start.
func (s *Statistics) Profit() decimal.Decimal {
	return s.Bankroll.Sub(s.StartBankroll)
}

// jsView is what pick() sees as its third argument.
func (s *Statistics) jsView() map[string]any {
	return map[string]any{
		"rounds":   s.Rounds,
		"wins":     s.Wins,
		"busts":    s.Busts,
		"timeouts": s.Timeouts,
		"bankroll": s.Bankroll.InexactFloat64(),
		"streak":   s.CurrentStreak,
	}
}

// ChartPoint is the bankroll after one round.
type ChartPoint struct {
	Round    int     `json:"x"`
	Bankroll float64 `json:"y"`
	Win      bool    `json:"win"`
}

// ChartBuffer keeps a bounded bankroll history. When it reaches twice Max
// points it keeps every other point, first and last included.
type ChartBuffer struct {
	Points []ChartPoint `json:"points"`
	Max    int          `json:"-"`
}

// NewChartBuffer creates a chart buffer with the given max capacity.
func NewChartBuffer(max int) *ChartBuffer {
	if max <= 0 {
		max = 50
	}
	return &ChartBuffer{
		Points: make([]ChartPoint, 0, max),
		Max:    max,
	}
}

// Push adds a point, decimating when the buffer is full.
func (cb *ChartBuffer) Push(p ChartPoint) {
	cb.Points = append(cb.Points, p)
	if len(cb.Points) >= cb.Max*2 {
		decimated := make([]ChartPoint, 0, cb.Max)
		decimated = append(decimated, cb.Points[0])
		for i := 2; i < len(cb.Points)-1; i += 2 {
			decimated = append(decimated, cb.Points[i])
		}
		decimated = append(decimated, cb.Points[len(cb.Points)-1])
		cb.Points = decimated
	}
}
