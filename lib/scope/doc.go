// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

// Package scope implements the capability model that decides what a tool
// invocation may touch. A [Scope] declares either filesystem access (an
// access mode plus a glob pattern) or network access (a posture plus an
// optional endpoint allowlist). Four independent sources declare scopes:
// the workspace configuration, the lane configuration, the task
// specification, and the tool's own manifest entry. [Intersect] combines
// the four layers into the minimal grant that all of them agree on.
//
// Pattern reasoning is built on two primitives. [Match] is the reference
// glob matcher: "*" matches within a path segment, "**" spans segments,
// braces and character classes are supported, and a malformed pattern
// matches nothing. [Contains] is a conservative subset oracle over
// pattern languages: when it reports true, every path matched by the
// nested pattern is also matched by the container pattern. The oracle is
// deliberately biased toward false negatives — full glob language
// inclusion is undecidable in general, and a missed containment only
// narrows a grant, never widens it.
//
// Everything in this package is pure and synchronous. Scopes are supplied
// fresh on every request; nothing is cached or persisted, so concurrent
// intersections never interact.
package scope
