package scripting

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MJE43/colorway-poker/internal/engine"
	"github.com/MJE43/colorway-poker/internal/games"
	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/table"
)

const oracleScript = `
function pick(hand, goal, stats) {
	var hues = hand.map(function (c) { return c.hue; });
	var sol = findSolution(goal.type, hues);
	if (!sol) return [];
	var out = [];
	sol.forEach(function (h) {
		for (var i = 0; i < hand.length; i++) {
			if (hand[i].hue === h && out.indexOf(i) < 0) { out.push(i); break; }
		}
	});
	return out;
}
`

var simSeeds = engine.Seeds{Server: "colorway-server", Client: "colorway-client"}

func loadVM(t *testing.T, src string) *VM {
	t.Helper()
	vm := NewVM()
	if err := vm.Execute(src); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return vm
}

func TestSimulateOracleAlwaysWins(t *testing.T) {
	vm := loadVM(t, oracleScript)
	res, err := Simulate(context.Background(), vm, SimConfig{Seeds: simSeeds, Rounds: 25, Difficulty: "real"})
	if err != nil {
		t.Fatal(err)
	}
	s := res.Stats
	if s.Rounds != 25 || s.Wins != 25 || s.Busts != 0 || s.Timeouts != 0 {
		t.Errorf("stats %+v", s)
	}
	if res.StopReason != StopCompleted || res.LastNonce != 25 {
		t.Errorf("stop %q last nonce %d", res.StopReason, res.LastNonce)
	}
	if !s.Profit().IsPositive() || s.HighestStreak != 25 {
		t.Errorf("profit %s streak %d", s.Profit(), s.HighestStreak)
	}
	if s.WinRate() != 1 {
		t.Errorf("win rate %f", s.WinRate())
	}
	if len(res.Chart.Points) == 0 {
		t.Error("empty chart")
	}
}

func TestSimulatePassingGoesBroke(t *testing.T) {
	vm := loadVM(t, `function pick() { return null; }`)
	res, err := Simulate(context.Background(), vm, SimConfig{Seeds: simSeeds, Rounds: 10, Difficulty: "real"})
	if err != nil {
		t.Fatal(err)
	}
	if res.StopReason != StopBroke || res.Stats.Timeouts != 3 || !res.Stats.Bankroll.IsZero() {
		t.Errorf("stop %q stats %+v", res.StopReason, res.Stats)
	}
	if res.Stats.LowestStreak != -3 {
		t.Errorf("lowest streak %d", res.Stats.LowestStreak)
	}
}

func TestSimulateStopFromScript(t *testing.T) {
	vm := loadVM(t, `
		var n = 0;
		function pick(hand, goal) {
			n++;
			log("round", n, goal.type);
			if (n >= 2) stop();
			return [0];
		}
	`)
	res, err := Simulate(context.Background(), vm, SimConfig{Seeds: simSeeds, Rounds: 10, Bankroll: decimal.NewFromInt(1000)})
	if err != nil {
		t.Fatal(err)
	}
	if res.StopReason != StopScript || res.Stats.Rounds != 2 || res.Stats.Busts != 2 {
		t.Errorf("stop %q stats %+v", res.StopReason, res.Stats)
	}
	if len(res.Logs) != 2 || !strings.HasPrefix(res.Logs[0].Message, "round 1 ") {
		t.Errorf("logs %+v", res.Logs)
	}
}

func TestSimulateValidation(t *testing.T) {
	vm := loadVM(t, oracleScript)
	if _, err := Simulate(context.Background(), vm, SimConfig{Rounds: 1, Difficulty: "nope"}); err == nil {
		t.Error("unknown difficulty accepted")
	}
	if _, err := Simulate(context.Background(), vm, SimConfig{Rounds: 0}); err == nil {
		t.Error("zero rounds accepted")
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := map[string]string{
		"no pick":      `var x = 1;`,
		"syntax":       `function pick( {`,
		"require":      `require("fs"); function pick() {}`,
		"eval blocked": `eval("1"); function pick() {}`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			if err := NewVM().Execute(src); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCallPickRejectsBadPositions(t *testing.T) {
	deal, err := (&games.ColorwayGame{}).Evaluate(simSeeds, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	stats := NewStatistics(table.DefaultBankroll)
	for _, src := range []string{
		`function pick() { return [99]; }`,
		`function pick() { return [-1]; }`,
		`function pick() { return [1.5]; }`,
		`function pick() { return "red"; }`,
		`function pick() { throw new Error("boom"); }`,
	} {
		vm := loadVM(t, src)
		if _, err := vm.CallPick(deal, stats); err == nil {
			t.Errorf("%s: expected error", src)
		}
	}

	vm := loadVM(t, `function pick() { return [2, 2, 0]; }`)
	got, err := vm.CallPick(deal, stats)
	if err != nil || len(got) != 2 || got[0] != 2 || got[1] != 0 {
		t.Errorf("CallPick = %v, %v", got, err)
	}
}

func TestCallPickTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the script call timeout")
	}
	deal, _ := (&games.ColorwayGame{}).Evaluate(simSeeds, 1, "")
	vm := loadVM(t, `function pick() { while (true) {} }`)
	_, err := vm.CallPick(deal, NewStatistics(table.DefaultBankroll))
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("err = %v", err)
	}

	// The runtime is usable again after an interrupt.
	if err := vm.Execute(`function pick() { return []; }`); err != nil {
		t.Fatalf("Execute after interrupt: %v", err)
	}
}

func TestValidateGlobal(t *testing.T) {
	vm := loadVM(t, `
		var r = validate("COMPLEMENTARY", [3, 9]);
		log(r.valid, r.message);
		log(WHEEL.length, GOALS[4].type);
		function pick() { return []; }
	`)
	logs := vm.Logs()
	if len(logs) != 2 {
		t.Fatalf("logs %+v", logs)
	}
	if logs[0].Message != "true Success! Perfect opposites." {
		t.Errorf("validate log %q", logs[0].Message)
	}
	if logs[1].Message != "12 "+string(rules.Tetradic) {
		t.Errorf("globals log %q", logs[1].Message)
	}
}

func TestStatisticsRecord(t *testing.T) {
	s := NewStatistics(decimal.NewFromInt(100))
	s.Record(rules.Triadic, table.OutcomeWin, decimal.NewFromInt(40))
	s.Record(rules.Triadic, table.OutcomeWin, decimal.NewFromInt(10))
	s.Record(rules.Analogous, table.OutcomeBust, decimal.NewFromInt(100))
	s.Record(rules.Analogous, table.OutcomeTimeout, decimal.NewFromInt(100))

	if !s.Bankroll.IsZero() || !s.HighestBankroll.Equal(decimal.NewFromInt(150)) {
		t.Errorf("bankroll %s highest %s", s.Bankroll, s.HighestBankroll)
	}
	if s.HighestStreak != 2 || s.LowestStreak != -2 || s.CurrentStreak != -2 {
		t.Errorf("streaks %d %d %d", s.HighestStreak, s.LowestStreak, s.CurrentStreak)
	}
	if g := s.ByGoal[rules.Triadic]; g.Played != 2 || g.Won != 2 {
		t.Errorf("triadic %+v", g)
	}
	if s.Busts != 1 || s.Timeouts != 1 {
		t.Errorf("busts %d timeouts %d", s.Busts, s.Timeouts)
	}
}

func TestChartBufferDecimates(t *testing.T) {
	cb := NewChartBuffer(4)
	for i := 1; i <= 8; i++ {
		cb.Push(ChartPoint{Round: i})
	}
	if len(cb.Points) >= 8 {
		t.Fatalf("no decimation: %d points", len(cb.Points))
	}
	if cb.Points[0].Round != 1 || cb.Points[len(cb.Points)-1].Round != 8 {
		t.Errorf("endpoints %+v", cb.Points)
	}
}
