// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

// Package task implements the task lifecycle state machine that gates
// whether the scope/sandbox pipeline runs at all for a given lifecycle
// event. Tasks move through five canonical states — ready, active,
// blocked, waiting, done — along a fixed transition table; done is
// terminal. Packs may use their own status vocabulary, translated to
// canonical states through a per-task alias map before any table
// lookup.
//
// [AssertTransition] is pure: it validates an edge and returns a typed
// error when the edge is absent. Callers that persist task state must
// serialize or optimistically retry concurrent transition attempts on
// the same task themselves — this package holds no state and enforces
// no ordering.
package task
