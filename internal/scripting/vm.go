// Package scripting runs sandboxed JavaScript autoplay strategies against
// dealt hands.
package scripting

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"

	"github.com/MJE43/colorway-poker/internal/games"
	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/wheel"
)

// LogEntry is one line written by the script.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// VM wraps a goja runtime with sandbox restrictions and the strategy API.
type VM struct {
	runtime *goja.Runtime
	mu      sync.Mutex

	logs    []LogEntry
	logsMu  sync.Mutex
	maxLogs int

	stopRequested atomic.Bool
}

const (
	scriptInitTimeout = 2 * time.Second
	scriptCallTimeout = 1 * time.Second
)

// NewVM creates a sandboxed runtime with the strategy globals injected.
func NewVM() *VM {
	vm := &VM{
		runtime: goja.New(),
		maxLogs: 500,
	}
	vm.injectGlobals()
	return vm
}

// injectGlobals registers log, console.log, stop, validate, findSolution,
// WHEEL and GOALS, and blocks host escapes.
func (vm *VM) injectGlobals() {
	rt := vm.runtime

	rt.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		vm.appendLog(strings.Join(parts, " "))
		return goja.Undefined()
	})
	console := rt.NewObject()
	console.Set("log", rt.Get("log"))
	rt.Set("console", console)

	rt.Set("stop", func(call goja.FunctionCall) goja.Value {
		vm.stopRequested.Store(true)
		return goja.Undefined()
	})

	// validate(goal, hues) -> {valid, message}
	rt.Set("validate", func(call goja.FunctionCall) goja.Value {
		goal := rules.GoalType(call.Argument(0).String())
		res := rules.Validate(goal, exportHues(call.Argument(1)))
		return rt.ToValue(map[string]any{"valid": res.Valid, "message": res.Message})
	})

	// findSolution(goal, hues) -> sorted hue array or null
	rt.Set("findSolution", func(call goja.FunctionCall) goja.Value {
		goal := rules.GoalType(call.Argument(0).String())
		sol, ok := rules.FindSolution(goal, exportHues(call.Argument(1)))
		if !ok {
			return goja.Null()
		}
		return rt.ToValue(huesToInts(sol))
	})

	colors := wheel.Colors()
	wheelJS := make([]any, len(colors))
	for i, c := range colors {
		wheelJS[i] = map[string]any{"id": int(c.Hue), "name": c.Name, "hex": c.Hex}
	}
	rt.Set("WHEEL", wheelJS)

	goalsJS := make([]any, 0, len(rules.Goals()))
	for _, g := range rules.Goals() {
		goalsJS = append(goalsJS, goalObject(g))
	}
	rt.Set("GOALS", goalsJS)

	rt.Set("require", goja.Undefined())
	rt.Set("fetch", goja.Undefined())
	rt.Set("XMLHttpRequest", goja.Undefined())
	rt.Set("eval", goja.Undefined())
	rt.Set("Function", goja.Undefined())
}

// Execute runs the strategy source once to define pick().
func (vm *VM) Execute(source string) error {
	return vm.runWithTimeout(scriptInitTimeout, func() error {
		vm.mu.Lock()
		defer vm.mu.Unlock()
		if _, err := vm.runtime.RunString(source); err != nil {
			return fmt.Errorf("script execution error: %w", err)
		}
		if !vm.hasFunc("pick") {
			return fmt.Errorf("pick() function is not defined")
		}
		return nil
	})
}

// CallPick asks the strategy which cards to submit. It returns positions in
// the hand; an empty result means the strategy lets the clock run out.
func (vm *VM) CallPick(deal games.Deal, stats *Statistics) ([]int, error) {
	var picks []int
	err := vm.runWithTimeout(scriptCallTimeout, func() error {
		vm.mu.Lock()
		defer vm.mu.Unlock()

		callable, ok := goja.AssertFunction(vm.runtime.Get("pick"))
		if !ok {
			return fmt.Errorf("pick is not a function")
		}

		hand := make([]any, len(deal.Cards))
		for i, c := range deal.Cards {
			hand[i] = map[string]any{"index": i, "id": c.ID.String(), "hue": int(c.Hue), "name": c.Name, "hex": c.Hex}
		}
		result, err := callable(goja.Undefined(),
			vm.runtime.ToValue(hand),
			vm.runtime.ToValue(goalObject(deal.Goal)),
			vm.runtime.ToValue(stats.jsView()),
		)
		if err != nil {
			return fmt.Errorf("pick() error: %w", err)
		}
		picks, err = positions(result, len(deal.Cards))
		return err
	})
	if err != nil {
		return nil, err
	}
	return picks, nil
}

// StopRequested reports whether the script called stop().
func (vm *VM) StopRequested() bool {
	return vm.stopRequested.Load()
}

// Logs returns a copy of the log buffer.
func (vm *VM) Logs() []LogEntry {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	out := make([]LogEntry, len(vm.logs))
	copy(out, vm.logs)
	return out
}

func (vm *VM) appendLog(msg string) {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	if len(vm.logs) >= vm.maxLogs {
		vm.logs = vm.logs[1:]
	}
	vm.logs = append(vm.logs, LogEntry{Time: time.Now(), Message: msg})
}

func (vm *VM) hasFunc(name string) bool {
	_, ok := goja.AssertFunction(vm.runtime.Get(name))
	return ok
}

func (vm *VM) runWithTimeout(timeout time.Duration, fn func() error) error {
	vm.runtime.ClearInterrupt()
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		vm.runtime.Interrupt("script execution timeout")
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("script timed out: %w", err)
			}
			return fmt.Errorf("script timed out")
		case <-time.After(200 * time.Millisecond):
			return fmt.Errorf("script timed out")
		}
	}
}

func goalObject(g rules.Goal) map[string]any {
	return map[string]any{
		"type":        string(g.Type),
		"label":       g.Label,
		"description": g.Description,
		"arity":       g.Arity,
		"basePoints":  g.BasePoints,
	}
}

// positions turns pick()'s return value into distinct in-range indices.
func positions(v goja.Value, handSize int) ([]int, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	raw, ok := v.Export().([]any)
	if !ok {
		return nil, fmt.Errorf("pick() must return an array of card positions, got %s", v.String())
	}
	seen := make(map[int]bool, len(raw))
	out := make([]int, 0, len(raw))
	for _, r := range raw {
		var i int
		switch n := r.(type) {
		case int:
			i = n
		case int64:
			i = int(n)
		case float64:
			i = int(n)
			if float64(i) != n {
				return nil, fmt.Errorf("pick() position %v is not an integer", n)
			}
		default:
			return nil, fmt.Errorf("pick() position %v is not a number", r)
		}
		if i < 0 || i >= handSize {
			return nil, fmt.Errorf("pick() position %d outside hand of %d", i, handSize)
		}
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	return out, nil
}

func exportHues(v goja.Value) []wheel.Hue {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	raw, _ := v.Export().([]any)
	out := make([]wheel.Hue, 0, len(raw))
	for _, r := range raw {
		switch n := r.(type) {
		case int:
			out = append(out, wheel.Hue(n))
		case int64:
			out = append(out, wheel.Hue(n))
		case float64:
			out = append(out, wheel.Hue(int(n)))
		}
	}
	return out
}

func huesToInts(hs []wheel.Hue) []any {
	out := make([]any, len(hs))
	for i, h := range hs {
		out[i] = int(h)
	}
	return out
}
