package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// RunState is a step of one annotation run.
type RunState uint8

// Run states, in the order a run with a cache delta visits them.
const (
	StateRequested RunState = iota
	StateKeyComputed
	StateLookedUp
	StateHitComplete
	StateDeltaComputed
	StateFetching
	StateTransforming
	StateResolving
	StateCacheUpdated
	StateMerged
	StateDone
	StateFailed
)

var runStateNames = [...]string{
	StateRequested:     "REQUESTED",
	StateKeyComputed:   "KEY_COMPUTED",
	StateLookedUp:      "LOOKED_UP",
	StateHitComplete:   "HIT_COMPLETE",
	StateDeltaComputed: "DELTA_COMPUTED",
	StateFetching:      "FETCHING",
	StateTransforming:  "TRANSFORMING",
	StateResolving:     "RESOLVING",
	StateCacheUpdated:  "CACHE_UPDATED",
	StateMerged:        "MERGED",
	StateDone:          "DONE",
	StateFailed:        "FAILED",
}

// String returns the upper-case state name.
func (s RunState) String() string {
	if int(s) < len(runStateNames) {
		return runStateNames[s]
	}
	return "UNKNOWN"
}

// transitions lists the legal successors of each state. FAILED is reachable
// from every non-terminal state and is not repeated here.
var transitions = map[RunState][]RunState{
	StateRequested:     {StateKeyComputed},
	StateKeyComputed:   {StateLookedUp},
	StateLookedUp:      {StateHitComplete, StateDeltaComputed},
	StateHitComplete:   {StateMerged},
	StateDeltaComputed: {StateFetching},
	StateFetching:      {StateTransforming},
	StateTransforming:  {StateResolving},
	StateResolving:     {StateCacheUpdated},
	// A repaired cache re-enters the lookup.
	StateCacheUpdated: {StateMerged, StateFetching, StateLookedUp},
	StateMerged:       {StateDone},
}

// Terminal reports whether no further transition is possible.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether moving from s to next is legal.
func (s RunState) CanTransition(next RunState) bool {
	if s.Terminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	return slices.Contains(transitions[s], next)
}

// RunMachine tracks the state of one run and keeps its history.
type RunMachine struct {
	state   RunState
	history []RunState
}

// NewRunMachine returns a machine in REQUESTED.
func NewRunMachine() *RunMachine {
	return &RunMachine{state: StateRequested, history: []RunState{StateRequested}}
}

// State returns the current state.
func (m *RunMachine) State() RunState {
	return m.state
}

// History returns every state visited, in order.
func (m *RunMachine) History() []RunState {
	return slices.Clone(m.history)
}

// Advance moves to next or returns ErrIllegalTransition.
func (m *RunMachine) Advance(next RunState) error {
	if !m.state.CanTransition(next) {
		err := zerr.With(ErrIllegalTransition, "from", m.state.String())
		return zerr.With(err, "to", next.String())
	}
	m.state = next
	m.history = append(m.history, next)
	return nil
}

// Fail moves to FAILED unless the machine is already terminal.
func (m *RunMachine) Fail() {
	if m.state.Terminal() {
		return
	}
	m.state = StateFailed
	m.history = append(m.history, StateFailed)
}
