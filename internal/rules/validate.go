package rules

import (
	"fmt"
	"slices"

	"github.com/MJE43/colorway-poker/internal/wheel"
)

// ValidationResult is the verdict on a selection. A failed selection is a
// result, not an error.
type ValidationResult struct {
	Valid   bool   `json:"is_valid"`
	Message string `json:"message"`
}

const unknownGoalMessage = "Unknown goal type."

// Validate checks selected against goal: arity first, then the wheel
// relationship.
func Validate(goal GoalType, selected []wheel.Hue) ValidationResult {
	r, ok := rulebook[goal]
	if !ok {
		return ValidationResult{Message: unknownGoalMessage}
	}
	if len(selected) != r.arity {
		return ValidationResult{Message: r.wrongArity}
	}
	for _, h := range selected {
		if !h.Valid() {
			return ValidationResult{Message: fmt.Sprintf("Incorrect. %d is not on the color wheel.", int(h))}
		}
	}
	if !r.holds(sorted(selected)) {
		return ValidationResult{Message: r.failure}
	}
	return ValidationResult{Valid: true, Message: r.success}
}

func sorted(hs []wheel.Hue) []wheel.Hue {
	out := slices.Clone(hs)
	slices.Sort(out)
	return out
}

// Predicates take hues sorted ascending and of the goal's arity.

func isComplementary(s []wheel.Hue) bool {
	return s[1]-s[0] == wheel.Size/2
}

func isAnalogous(s []wheel.Hue) bool {
	if s[1] == s[0]+1 && s[2] == s[1]+1 {
		return true
	}
	// The only runs that cross 11 -> 0, in sorted form.
	return s[0] == 0 && s[1] == 10 && s[2] == 11 ||
		s[0] == 0 && s[1] == 1 && s[2] == 11
}

func isTriadic(s []wheel.Hue) bool {
	return s[1]-s[0] == 4 && s[2]-s[1] == 4
}

func isSplitComplementary(s []wheel.Hue) bool {
	for i, base := range s {
		lo := base.Complement().Step(-1)
		hi := base.Complement().Step(1)
		var others []wheel.Hue
		for j, h := range s {
			if j != i {
				others = append(others, h)
			}
		}
		if others[0] == lo && others[1] == hi || others[0] == hi && others[1] == lo {
			return true
		}
	}
	return false
}

func isTetradic(s []wheel.Hue) bool {
	return s[1]-s[0] == 3 && s[2]-s[1] == 3 && s[3]-s[2] == 3
}
