// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import "github.com/packrun-dev/packrun/lib/scope"

// Read builds a read path scope.
func Read(pattern string) scope.Scope {
	return scope.Path(scope.AccessRead, pattern)
}

// Write builds a write path scope.
func Write(pattern string) scope.Scope {
	return scope.Path(scope.AccessWrite, pattern)
}

// Net builds a network scope.
func Net(posture scope.Posture, entries ...string) scope.Scope {
	return scope.Network(posture, entries...)
}

// Layer builds a scope slice; reads as a literal layer in test tables.
func Layer(scopes ...scope.Scope) []scope.Scope {
	return scopes
}
