// Package condition evaluates the colon-delimited condition strings
// content attaches to dialogue choices and quest prerequisites.
//
// Recognized forms:
//
//	flag:<key>                    truthiness of the stored flag
//	quest:<id>:completed          quest is in the completed set
//	quest:<id>:active             quest is in the active set
//	faction:<id>:<op>:<threshold> reputation comparison, op ∈ >=, <=, >, <, ==
//	item:<id>                     inventory count > 0
//
// The empty string is true. Unknown or malformed conditions log a
// warning and evaluate to true, so content referencing a removed
// condition type cannot hard-lock the player out of a branch.
package condition

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mirren/emberfall/engine/state"
)

// Evaluator evaluates condition strings against one game state.
type Evaluator struct {
	state *state.GameState
	log   *zap.Logger
}

// NewEvaluator creates an evaluator bound to the given state.
func NewEvaluator(gs *state.GameState, log *zap.Logger) *Evaluator {
	return &Evaluator{state: gs, log: log}
}

// Eval evaluates a single condition string.
func (e *Evaluator) Eval(cond string) bool {
	if cond == "" {
		return true
	}

	parts := strings.Split(cond, ":")
	switch parts[0] {
	case "flag":
		if len(parts) != 2 {
			return e.allow(cond, "flag takes one segment")
		}
		v, ok := e.state.Flag(parts[1])
		return ok && truthy(v)

	case "quest":
		if len(parts) != 3 {
			return e.allow(cond, "quest takes two segments")
		}
		switch parts[2] {
		case "completed":
			return e.state.QuestCompleted(parts[1])
		case "active":
			return e.state.QuestActive(parts[1])
		default:
			return e.allow(cond, "unknown quest check")
		}

	case "faction":
		if len(parts) != 4 {
			return e.allow(cond, "faction takes three segments")
		}
		threshold, err := strconv.Atoi(parts[3])
		if err != nil {
			return e.allow(cond, "threshold is not a number")
		}
		rep := e.state.FactionRep(parts[1])
		switch parts[2] {
		case ">=":
			return rep >= threshold
		case "<=":
			return rep <= threshold
		case ">":
			return rep > threshold
		case "<":
			return rep < threshold
		case "==":
			return rep == threshold
		default:
			return e.allow(cond, "unknown comparison operator")
		}

	case "item":
		if len(parts) != 2 {
			return e.allow(cond, "item takes one segment")
		}
		return e.state.ItemCount(parts[1]) > 0

	default:
		return e.allow(cond, "unknown condition type")
	}
}

// EvalAll returns true if every condition passes (AND logic). An empty
// list is vacuously true.
func (e *Evaluator) EvalAll(conds []string) bool {
	for _, c := range conds {
		if !e.Eval(c) {
			return false
		}
	}
	return true
}

// allow logs the fail-open warning and returns true.
func (e *Evaluator) allow(cond, reason string) bool {
	e.log.Warn("condition not understood, allowing",
		zap.String("condition", cond),
		zap.String("reason", reason))
	return true
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case nil:
		return false
	default:
		return true
	}
}

// Check validates the shape of a condition string without evaluating
// it. The loader uses it to reject typos at load time that Eval would
// silently fail-open on during play.
func Check(cond string) error {
	if cond == "" {
		return nil
	}

	parts := strings.Split(cond, ":")
	switch parts[0] {
	case "flag", "item":
		if len(parts) != 2 || parts[1] == "" {
			return fmt.Errorf("%s condition needs exactly one id segment: %q", parts[0], cond)
		}
	case "quest":
		if len(parts) != 3 || parts[1] == "" {
			return fmt.Errorf("quest condition needs id and check segments: %q", cond)
		}
		if parts[2] != "completed" && parts[2] != "active" {
			return fmt.Errorf("quest check must be completed or active: %q", cond)
		}
	case "faction":
		if len(parts) != 4 || parts[1] == "" {
			return fmt.Errorf("faction condition needs id, op and threshold segments: %q", cond)
		}
		switch parts[2] {
		case ">=", "<=", ">", "<", "==":
		default:
			return fmt.Errorf("unknown comparison operator %q in %q", parts[2], cond)
		}
		if _, err := strconv.Atoi(parts[3]); err != nil {
			return fmt.Errorf("threshold %q is not a number in %q", parts[3], cond)
		}
	default:
		return fmt.Errorf("unknown condition type %q in %q", parts[0], cond)
	}
	return nil
}
