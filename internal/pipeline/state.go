package pipeline

import "fmt"

// State is the lifecycle state of a pipeline run.
type State string

const (
	StatePending            State = "PENDING"
	StateIngesting          State = "INGESTING"
	StateTransformingSilver State = "TRANSFORMING_SILVER"
	StateTransformingGold   State = "TRANSFORMING_GOLD"
	StateValidating         State = "VALIDATING"
	StateSucceeded          State = "SUCCEEDED"
	StateFailed             State = "FAILED"
)

// transitions holds the legal forward edges of the state machine. FAILED is
// reachable from every non-terminal state and is terminal, as is SUCCEEDED.
var transitions = map[State][]State{
	StatePending:            {StateIngesting, StateFailed},
	StateIngesting:          {StateTransformingSilver, StateFailed},
	StateTransformingSilver: {StateTransformingGold, StateFailed},
	StateTransformingGold:   {StateValidating, StateFailed},
	StateValidating:         {StateSucceeded, StateFailed},
}

// Terminal reports whether the state ends the run.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// advance moves the run to the next state or panics on an illegal edge.
// An illegal transition is a programming error, not a data condition.
func advance(current, next State) State {
	if !current.CanTransition(next) {
		panic(fmt.Sprintf("illegal state transition %s -> %s", current, next))
	}
	return next
}
