// Package scan searches nonce ranges for deals whose solution count
// matches a target.
package scan

import (
	"context"
	"errors"
	"log"
	"math"
	"os"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/MJE43/colorway-poker/internal/engine"
	"github.com/MJE43/colorway-poker/internal/games"
	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/wheel"
)

// MaxRange bounds a single scan.
const MaxRange = 1_000_000

const batchSize = 1024

// ScanRequest describes a scan. PreviousGoal is the goal of the round just
// before NonceStart on the table being replayed, empty for a fresh table.
type ScanRequest struct {
	Seeds        engine.Seeds   `json:"seeds"`
	NonceStart   uint64         `json:"nonce_start"`
	NonceEnd     uint64         `json:"nonce_end"`
	PreviousGoal rules.GoalType `json:"previous_goal,omitempty"`
	Goal         rules.GoalType `json:"goal,omitempty"`
	TargetOp     TargetOp       `json:"target_op"`
	TargetVal    float64        `json:"target_val"`
	TargetVal2   float64        `json:"target_val2,omitempty"`
	Limit        int            `json:"limit,omitempty"`
	TimeoutMs    int            `json:"timeout_ms,omitempty"`
}

// Hit is a matching deal.
type Hit struct {
	Nonce  uint64         `json:"nonce"`
	Goal   rules.GoalType `json:"goal"`
	Metric float64        `json:"metric"`
	Hues   []wheel.Hue    `json:"hues"`
}

// Summary aggregates every evaluated deal, not only hits.
type Summary struct {
	TotalEvaluated uint64                 `json:"total_evaluated"`
	HitsFound      int                    `json:"hits_found"` // before Limit
	MinMetric      float64                `json:"min_metric"`
	MaxMetric      float64                `json:"max_metric"`
	MeanMetric     float64                `json:"mean_metric"`
	GoalCounts     map[rules.GoalType]int `json:"goal_counts"`
	TimedOut       bool                   `json:"timed_out,omitempty"`
}

// ScanResult is the scan output. Hits are in nonce order.
type ScanResult struct {
	Hits          []Hit       `json:"hits"`
	Summary       Summary     `json:"summary"`
	EngineVersion string      `json:"engine_version,omitempty"`
	Echo          ScanRequest `json:"echo"`
}

// Scanner runs scans on a bounded worker pool.
type Scanner struct {
	Workers int
	Logger  *log.Logger
}

// NewScanner sizes the pool to GOMAXPROCS.
func NewScanner() *Scanner {
	return &Scanner{
		Workers: runtime.GOMAXPROCS(0),
		Logger:  log.New(os.Stdout, "[SCAN] ", log.LstdFlags),
	}
}

type batchStats struct {
	evaluated uint64
	min, max  float64
	sum       float64
	goals     map[rules.GoalType]int
}

// Scan evaluates every nonce in [NonceStart, NonceEnd]. Each round's goal
// depends on the one before it, so goals are chained first and the hands
// are then dealt in parallel. A timeout returns the partial result.
func (s *Scanner) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	if req.NonceEnd < req.NonceStart {
		return nil, ErrInvalidRange
	}
	if req.NonceEnd-req.NonceStart >= MaxRange {
		return nil, ErrRangeTooLarge
	}
	if req.Goal != "" && !req.Goal.Valid() {
		return nil, rules.ErrUnknownGoal
	}
	if req.PreviousGoal != "" && !req.PreviousGoal.Valid() {
		return nil, rules.ErrUnknownGoal
	}
	evaluator, err := NewTargetEvaluator(req.TargetOp, req.TargetVal, req.TargetVal2, 0)
	if err != nil {
		return nil, err
	}

	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	started := time.Now()
	chain, err := goalChain(ctx, req)
	timedOut := err != nil

	var (
		mu     sync.Mutex
		hits   []Hit
		totals = batchStats{min: math.Inf(1), max: math.Inf(-1), goals: make(map[rules.GoalType]int)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.Workers))
	for off := 0; off < len(chain) && !timedOut; off += batchSize {
		end := min(off+batchSize, len(chain))
		g.Go(func() error {
			local, stats, err := scanBatch(gctx, req, evaluator, chain, off, end)
			mu.Lock()
			hits = append(hits, local...)
			merge(&totals, stats)
			mu.Unlock()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		timedOut = true
	}

	slices.SortFunc(hits, func(a, b Hit) int {
		switch {
		case a.Nonce < b.Nonce:
			return -1
		case a.Nonce > b.Nonce:
			return 1
		}
		return 0
	})
	found := len(hits)
	if req.Limit > 0 && len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}

	summary := Summary{
		TotalEvaluated: totals.evaluated,
		HitsFound:      found,
		GoalCounts:     totals.goals,
		TimedOut:       timedOut,
	}
	if totals.evaluated > 0 {
		summary.MinMetric = totals.min
		summary.MaxMetric = totals.max
		summary.MeanMetric = totals.sum / float64(totals.evaluated)
	}
	if hits == nil {
		hits = []Hit{}
	}

	s.logf("range=%d-%d evaluated=%s hits=%s timed_out=%t took=%s",
		req.NonceStart, req.NonceEnd, humanize.Comma(int64(totals.evaluated)), humanize.Comma(int64(found)),
		timedOut, time.Since(started).Round(time.Millisecond))

	return &ScanResult{Hits: hits, Summary: summary, Echo: req}, nil
}

// goalChain derives the goal of every nonce in order. On cancellation it
// returns the prefix it managed to derive.
func goalChain(ctx context.Context, req ScanRequest) ([]rules.GoalType, error) {
	n := int(req.NonceEnd-req.NonceStart) + 1
	chain := make([]rules.GoalType, 0, n)
	previous := games.PriorGoal(req.PreviousGoal)
	for i := 0; i < n; i++ {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return chain, err
			}
		}
		goal := games.PickGoal(req.Seeds.Stream(req.NonceStart+uint64(i)), previous).Type
		chain = append(chain, goal)
		previous = goal
	}
	return chain, nil
}

func scanBatch(ctx context.Context, req ScanRequest, evaluator *TargetEvaluator, chain []rules.GoalType, from, to int) ([]Hit, batchStats, error) {
	stats := batchStats{min: math.Inf(1), max: math.Inf(-1), goals: make(map[rules.GoalType]int)}
	var hits []Hit
	for i := from; i < to; i++ {
		if err := ctx.Err(); err != nil {
			return hits, stats, err
		}
		if req.Goal != "" && chain[i] != req.Goal {
			continue
		}
		previous := games.PriorGoal(req.PreviousGoal)
		if i > 0 {
			previous = chain[i-1]
		}
		nonce := req.NonceStart + uint64(i)
		deal, err := games.DealRound(req.Seeds.Stream(nonce), previous)
		if err != nil {
			return hits, stats, err
		}

		metric := float64(deal.Solutions)
		stats.evaluated++
		stats.sum += metric
		stats.min = math.Min(stats.min, metric)
		stats.max = math.Max(stats.max, metric)
		stats.goals[deal.Goal.Type]++
		if evaluator.Matches(metric) {
			hits = append(hits, Hit{Nonce: nonce, Goal: deal.Goal.Type, Metric: metric, Hues: deal.Hues()})
		}
	}
	return hits, stats, nil
}

func merge(into *batchStats, from batchStats) {
	into.evaluated += from.evaluated
	into.sum += from.sum
	into.min = math.Min(into.min, from.min)
	into.max = math.Max(into.max, from.max)
	for g, n := range from.goals {
		into.goals[g] += n
	}
}

func (s *Scanner) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}
