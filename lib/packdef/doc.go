// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

// Package packdef parses the three on-disk inputs the planning
// pipeline consumes: pack manifests and workspace/lane layer files
// (YAML), and task specifications (JSONC — JSON extended with
// comments and trailing commas).
//
// Parsing here is structural only: scope kinds, access modes, and
// postures must be recognized values, patterns must be present.
// Whether a declared scope is actually granted is the intersection
// engine's decision, not the parser's.
package packdef
