// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides deterministic CBOR encoding. The same logical
// value always encodes to the same bytes, which is what makes sandbox
// profile fingerprints comparable across processes and restarts. Use
// this package instead of importing fxamacker/cbor directly so every
// producer shares one encoder configuration.
package codec
