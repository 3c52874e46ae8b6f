package scan

import "math"

// TargetOp is a comparison applied to each deal's metric.
type TargetOp string

const (
	OpAny          TargetOp = "any"
	OpEqual        TargetOp = "eq"
	OpGreater      TargetOp = "gt"
	OpGreaterEqual TargetOp = "ge"
	OpLess         TargetOp = "lt"
	OpLessEqual    TargetOp = "le"
	OpBetween      TargetOp = "between"
	OpOutside      TargetOp = "outside"
)

// TargetEvaluator decides whether a metric is a hit.
type TargetEvaluator struct {
	op        TargetOp
	val1      float64
	val2      float64 // upper bound for between and outside
	tolerance float64
}

// NewTargetEvaluator validates op. An empty op matches everything.
func NewTargetEvaluator(op TargetOp, val1, val2, tolerance float64) (*TargetEvaluator, error) {
	switch op {
	case "":
		op = OpAny
	case OpAny, OpEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
	case OpBetween, OpOutside:
		if val2 < val1 {
			return nil, ErrInvalidTarget
		}
	default:
		return nil, ErrInvalidTarget
	}
	return &TargetEvaluator{op: op, val1: val1, val2: val2, tolerance: tolerance}, nil
}

// Matches checks metric against the target.
func (te *TargetEvaluator) Matches(metric float64) bool {
	switch te.op {
	case OpAny:
		return true
	case OpEqual:
		return math.Abs(metric-te.val1) <= te.tolerance
	case OpGreater:
		return metric > te.val1+te.tolerance
	case OpGreaterEqual:
		return metric >= te.val1-te.tolerance
	case OpLess:
		return metric < te.val1-te.tolerance
	case OpLessEqual:
		return metric <= te.val1+te.tolerance
	case OpBetween:
		return metric >= te.val1-te.tolerance && metric <= te.val2+te.tolerance
	case OpOutside:
		return metric < te.val1-te.tolerance || metric > te.val2+te.tolerance
	default:
		return false
	}
}
