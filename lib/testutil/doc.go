// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides small helpers shared by tests across the
// repository. Production code must not import it.
package testutil
