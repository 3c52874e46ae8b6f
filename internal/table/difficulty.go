package table

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Difficulty sets the round clock and scales payouts.
type Difficulty struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Seconds    int             `json:"seconds"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// Duration is the round clock.
func (d Difficulty) Duration() time.Duration {
	return time.Duration(d.Seconds) * time.Second
}

var difficulties = []Difficulty{
	{ID: "easy", Name: "Easy Deal", Seconds: 60, Multiplier: decimal.RequireFromString("0.75")},
	{ID: "real", Name: "Real Deal", Seconds: 45, Multiplier: decimal.NewFromInt(1)},
	{ID: "pro", Name: "Color Pro", Seconds: 30, Multiplier: decimal.RequireFromString("1.5")},
}

// DefaultDifficulty is used when a deal names none.
const DefaultDifficulty = "real"

// Difficulties returns the table in ascending order of pressure.
func Difficulties() []Difficulty {
	out := make([]Difficulty, len(difficulties))
	copy(out, difficulties)
	return out
}

// LookupDifficulty finds a difficulty by id or display name.
func LookupDifficulty(key string) (Difficulty, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultDifficulty
	}
	for _, d := range difficulties {
		if strings.EqualFold(d.ID, key) || strings.EqualFold(d.Name, key) {
			return d, nil
		}
	}
	return Difficulty{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, key)
}
