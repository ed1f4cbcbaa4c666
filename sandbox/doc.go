// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

// Package sandbox turns an enforced scope set into an executable
// confinement plan in two steps.
//
// [BuildProfile] maps the scopes produced by scope.Intersect to a
// [Profile]: a declarative, OS-agnostic description of read-only and
// writable bind mounts, network posture, endpoint allowlist, deny
// overlays, and environment. Profiles are plain data — they can be
// serialized, diffed, and fingerprinted ([Fingerprint]) to decide
// whether a running sandbox still matches its grant.
//
// [BuildInvocation] compiles a Profile plus a command vector into a
// concrete [Invocation]: bubblewrap (bwrap) arguments that mount a
// fresh root, layer the declared filesystem, unshare namespaces, and —
// for the allowlist network posture — wrap the command in a generated
// shell script that installs per-endpoint iptables accept rules with a
// terminal reject. The compiler performs no I/O and launches nothing;
// spawning the invocation, timing it out, and interpreting its exit
// belong to the dispatcher.
//
// Keeping the Profile→Invocation boundary means porting to another OS
// confinement mechanism replaces only the compilation step; the scope
// and profile logic stays portable.
package sandbox
