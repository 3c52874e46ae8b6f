package table

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MJE43/colorway-poker/internal/rules"
)

func mustGoal(t *testing.T, gt rules.GoalType) rules.Goal {
	t.Helper()
	g, ok := rules.Lookup(gt)
	if !ok {
		t.Fatalf("no goal %s", gt)
	}
	return g
}

func mustDifficulty(t *testing.T, id string) Difficulty {
	t.Helper()
	d, err := LookupDifficulty(id)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestWinnings(t *testing.T) {
	tests := []struct {
		goal        rules.GoalType
		secondsLeft int
		difficulty  string
		want        int64
	}{
		{rules.Complementary, 45, "real", 68},
		{rules.Complementary, 60, "easy", 65},
		{rules.Tetradic, 30, "pro", 100},
		{rules.Analogous, 0, "real", 18},
		{rules.SplitComplementary, 2, "real", 34},
		{rules.Triadic, 10, "pro", 56},
	}
	for _, tt := range tests {
		got := Winnings(mustGoal(t, tt.goal), tt.secondsLeft, mustDifficulty(t, tt.difficulty))
		if !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Errorf("Winnings(%s, %d, %s) = %s, want %d", tt.goal, tt.secondsLeft, tt.difficulty, got, tt.want)
		}
	}
}

func TestPenalty(t *testing.T) {
	want := map[string]int64{"easy": 75, "real": 100, "pro": 150}
	for id, p := range want {
		if got := Penalty(mustDifficulty(t, id)); !got.Equal(decimal.NewFromInt(p)) {
			t.Errorf("Penalty(%s) = %s, want %d", id, got, p)
		}
	}
}

func TestDebitFloorsAtZero(t *testing.T) {
	if got := Debit(decimal.NewFromInt(40), decimal.NewFromInt(100)); !got.IsZero() {
		t.Errorf("Debit = %s", got)
	}
	if got := Debit(decimal.NewFromInt(300), decimal.NewFromInt(75)); !got.Equal(decimal.NewFromInt(225)) {
		t.Errorf("Debit = %s", got)
	}
}

func TestLookupDifficulty(t *testing.T) {
	for _, key := range []string{"pro", "PRO", "Color Pro"} {
		d, err := LookupDifficulty(key)
		if err != nil || d.ID != "pro" || d.Duration().Seconds() != 30 {
			t.Errorf("LookupDifficulty(%q) = %+v, %v", key, d, err)
		}
	}
	if d, _ := LookupDifficulty(""); d.ID != "real" {
		t.Errorf("default difficulty %s", d.ID)
	}
	if _, err := LookupDifficulty("nightmare"); !errors.Is(err, ErrUnknownDifficulty) {
		t.Errorf("err = %v", err)
	}
	if len(Difficulties()) != 3 {
		t.Errorf("Difficulties() = %d", len(Difficulties()))
	}
}
