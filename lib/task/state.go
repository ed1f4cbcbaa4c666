// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"fmt"

	"github.com/packrun-dev/packrun/lib/scope"
)

// State is a canonical task lifecycle state.
type State string

const (
	// StateReady means the task is eligible to be picked up.
	StateReady State = "ready"

	// StateActive means the task is being worked; tool invocations are
	// only eligible in this state.
	StateActive State = "active"

	// StateBlocked means the task cannot proceed until a dependency
	// resolves.
	StateBlocked State = "blocked"

	// StateWaiting means the task is paused on an external event
	// (review, approval, timer).
	StateWaiting State = "waiting"

	// StateDone is terminal. No transition leaves it.
	StateDone State = "done"
)

// transitions is the full edge table. A state absent from an inner map
// is not reachable from that outer state.
var transitions = map[State]map[State]bool{
	StateReady: {
		StateActive: true,
	},
	StateActive: {
		StateBlocked: true,
		StateWaiting: true,
		StateDone:    true,
		StateReady:   true,
	},
	StateBlocked: {
		StateActive: true,
		StateDone:   true,
	},
	StateWaiting: {
		StateActive: true,
		StateDone:   true,
	},
	StateDone: {},
}

// Task is a unit of work with a lifecycle state and the scopes it
// declared for itself. StateAliases translates pack-specific status
// vocabulary (for example "in_progress") to canonical states.
type Task struct {
	ID           string           `yaml:"id" json:"id"`
	State        string           `yaml:"state" json:"state"`
	StateAliases map[string]State `yaml:"state_aliases,omitempty" json:"state_aliases,omitempty"`
	Declared     []scope.Scope    `yaml:"declared_scopes,omitempty" json:"declared_scopes,omitempty"`
}

// IllegalTransitionError reports a requested edge that is absent from
// the transition table.
type IllegalTransitionError struct {
	TaskID string
	From   State
	To     State
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("task %s: illegal transition from %q to %q", e.TaskID, e.From, e.To)
}

// TerminalStateError reports a transition attempted out of the terminal
// done state. It is the most common caller mistake, so it surfaces as
// its own type; it unwraps to the equivalent IllegalTransitionError for
// callers that only branch on the general case.
type TerminalStateError struct {
	TaskID string
	To     State
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("task %s: state %q is terminal, cannot transition to %q", e.TaskID, StateDone, e.To)
}

func (e *TerminalStateError) Unwrap() error {
	return &IllegalTransitionError{TaskID: e.TaskID, From: StateDone, To: e.To}
}

// ResolveState translates a state name to a canonical State. The alias
// map is consulted first, so a pack may shadow canonical names; absent
// an alias, the name must be canonical.
func ResolveState(name string, aliases map[string]State) (State, error) {
	if canonical, ok := aliases[name]; ok {
		name = string(canonical)
	}
	state := State(name)
	if _, ok := transitions[state]; !ok {
		return "", fmt.Errorf("unknown task state %q", name)
	}
	return state, nil
}

// AssertTransition validates the edge from → to for the given task,
// resolving both endpoints through the alias map first. It returns nil
// for a legal edge, a *TerminalStateError when from is done, and a
// *IllegalTransitionError for any other missing edge.
func AssertTransition(from, to string, taskID string, aliases map[string]State) error {
	source, err := ResolveState(from, aliases)
	if err != nil {
		return fmt.Errorf("task %s: %w", taskID, err)
	}
	target, err := ResolveState(to, aliases)
	if err != nil {
		return fmt.Errorf("task %s: %w", taskID, err)
	}

	if source == StateDone {
		return &TerminalStateError{TaskID: taskID, To: target}
	}
	if !transitions[source][target] {
		return &IllegalTransitionError{TaskID: taskID, From: source, To: target}
	}
	return nil
}

// AllowsToolCalls reports whether tool invocations are eligible in this
// state. Only active tasks run tools; the scope pipeline is never
// consulted for a task in any other state.
func (s State) AllowsToolCalls() bool {
	return s == StateActive
}
