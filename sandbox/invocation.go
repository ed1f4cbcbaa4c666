// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/packrun-dev/packrun/lib/scope"
)

// Invocation is a concrete, OS-specific process-launch plan. The
// dispatcher spawns Command with Args verbatim and passes Env through
// explicitly; nothing else from the parent environment leaks in.
type Invocation struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// ValidationError reports invalid compiler input. It fails fast,
// before any plan computation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid invocation input: " + e.Reason
}

// bwrapExecutable is the namespace/bind-mount launcher the compiler
// targets.
const bwrapExecutable = "bwrap"

// systemMounts is the fixed read-only allowlist layered into every
// sandbox so dynamically linked binaries and name resolution work.
// Mounted with --ro-bind-try: a distribution lacking one of these (no
// /lib64 on arm64, say) just skips it, with no stat from the compiler.
var systemMounts = []string{"/usr", "/bin", "/sbin", "/lib", "/lib64", "/etc"}

// BuildInvocation compiles a profile and command vector into a bwrap
// invocation. The plan mounts a fresh empty root, layers the read-only
// system allowlist, auto-detected command-path parents, and the
// profile's mounts (writable wins over read-only), applies deny
// overlays, unshares namespaces, and sets the profile environment.
//
// Network posture off and allowlist both isolate the network
// namespace. A non-empty allowlist additionally swaps the direct argv
// exec for a generated shell script that installs one iptables accept
// rule per entry and a terminal reject rule, then execs the original
// command with each argument shell-escaped. Every other posture execs
// the command as a plain argument vector — no shell, no injection
// surface.
//
// The compiler performs no I/O: it only produces the plan. Execution,
// timeout, and exit-code handling belong to the dispatcher.
func BuildInvocation(profile Profile, command []string) (Invocation, error) {
	if len(command) == 0 {
		return Invocation{}, &ValidationError{Reason: "command vector is empty"}
	}

	args := []string{"--tmpfs", "/"}

	writableTargets := make(map[string]bool, len(profile.WritableBindMounts))
	for _, mount := range profile.WritableBindMounts {
		writableTargets[mount.Target] = true
	}

	// Read-only layer: system allowlist, auto-detected command-path
	// parents, then the profile's explicit read-only mounts, deduped
	// in that order. A path the profile marks writable is excluded —
	// writable wins.
	seen := make(map[string]bool)
	var readonly []string
	addReadonly := func(path string) {
		if seen[path] || writableTargets[path] {
			return
		}
		seen[path] = true
		readonly = append(readonly, path)
	}

	for _, path := range systemMounts {
		addReadonly(path)
	}

	mountPrefixes := append([]string{}, systemMounts...)
	for _, mount := range profile.ReadOnlyBindMounts {
		mountPrefixes = append(mountPrefixes, mount.Target)
	}
	for _, mount := range profile.WritableBindMounts {
		mountPrefixes = append(mountPrefixes, mount.Target)
	}
	for _, dir := range commandPathParents(command, mountPrefixes) {
		addReadonly(dir)
	}

	for _, mount := range profile.ReadOnlyBindMounts {
		addReadonly(mount.Target)
	}

	for _, path := range readonly {
		args = append(args, "--ro-bind-try", path, path)
	}

	for _, mount := range profile.WritableBindMounts {
		args = append(args, "--bind", mount.Source, mount.Target)
	}

	// Deny overlays mask paths that a broader mount above would
	// otherwise expose.
	for _, overlay := range profile.DenyOverlays {
		switch overlay.Kind {
		case DenyDirectory:
			args = append(args, "--tmpfs", overlay.Path)
		default:
			args = append(args, "--ro-bind", "/dev/null", overlay.Path)
		}
	}

	// Standard process and device filesystems.
	args = append(args, "--proc", "/proc", "--dev", "/dev")

	args = append(args,
		"--clearenv",
		"--die-with-parent",
		"--new-session",
		"--unshare-pid",
		"--unshare-ipc",
		"--unshare-uts",
	)

	// Full posture shares the host network namespace; everything else
	// isolates it.
	if profile.NetworkPosture != scope.PostureFull {
		args = append(args, "--unshare-net")
	}

	envKeys := make([]string, 0, len(profile.Env))
	for key := range profile.Env {
		envKeys = append(envKeys, key)
	}
	sort.Strings(envKeys)
	for _, key := range envKeys {
		args = append(args, "--setenv", key, profile.Env[key])
	}

	args = append(args, "--")

	if profile.NetworkPosture == scope.PostureAllowlist && len(profile.NetworkAllowlist) > 0 {
		args = append(args, "/bin/sh", "-c", firewallScript(profile.NetworkAllowlist, command))
	} else {
		args = append(args, command...)
	}

	env := make(map[string]string, len(profile.Env))
	for key, value := range profile.Env {
		env[key] = value
	}

	return Invocation{Command: bwrapExecutable, Args: args, Env: env}, nil
}

// commandPathParents returns the parent and grandparent directories of
// every absolute path in the command vector that falls under an
// already-configured mount prefix. Binaries invoked by absolute path
// frequently live in trees (version-manager shims, toolchain roots)
// that the coarse system mounts cover; surfacing the specific parents
// keeps the plan explicit about what the command touches.
func commandPathParents(command []string, prefixes []string) []string {
	var parents []string
	seen := make(map[string]bool)

	for _, arg := range command {
		if !filepath.IsAbs(arg) {
			continue
		}
		parent := filepath.Dir(filepath.Clean(arg))
		for _, dir := range []string{parent, filepath.Dir(parent)} {
			if dir == "/" || seen[dir] {
				continue
			}
			if !underAnyPrefix(dir, prefixes) {
				continue
			}
			seen[dir] = true
			parents = append(parents, dir)
		}
	}
	return parents
}

// underAnyPrefix reports whether path equals or descends from any of
// the given prefixes.
func underAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// firewallScript generates the shell script that enforces a network
// allowlist inside the sandbox's isolated network namespace: loopback
// and established/related return traffic are permitted, each allowlist
// entry gets one accept rule, and everything else hits a terminal
// reject. Reject rather than drop, so a blocked connect fails fast
// instead of hanging until timeout. The original command is exec'd at
// the end with every argument individually shell-escaped.
func firewallScript(allowlist []string, command []string) string {
	var lines []string
	lines = append(lines,
		"set -e",
		"iptables -A OUTPUT -o lo -j ACCEPT",
		"iptables -A OUTPUT -m state --state ESTABLISHED,RELATED -j ACCEPT",
	)

	for _, entry := range allowlist {
		host, port, ok := splitHostPort(entry)
		if ok {
			lines = append(lines, fmt.Sprintf(
				"iptables -A OUTPUT -p tcp -d %s --dport %s -j ACCEPT",
				shellQuote(host), shellQuote(port)))
		} else {
			lines = append(lines, fmt.Sprintf(
				"iptables -A OUTPUT -d %s -j ACCEPT", shellQuote(entry)))
		}
	}

	lines = append(lines, "iptables -A OUTPUT -j REJECT")

	quoted := make([]string, 0, len(command))
	for _, arg := range command {
		quoted = append(quoted, shellQuote(arg))
	}
	lines = append(lines, "exec "+strings.Join(quoted, " "))

	return strings.Join(lines, "\n")
}

// splitHostPort splits a "host:port" allowlist entry. The host may be
// a hostname, an IPv4 address, or a bracketed IPv6 address
// ("[::1]:443"). CIDR entries, bare hosts, and unbracketed IPv6
// addresses (any entry with more than one colon) report ok=false and
// are used unqualified — splitting an unbracketed IPv6 address at its
// last colon would truncate the address.
func splitHostPort(entry string) (host, port string, ok bool) {
	if strings.Contains(entry, "/") {
		return "", "", false // CIDR
	}
	if strings.HasPrefix(entry, "[") {
		end := strings.Index(entry, "]")
		if end < 2 || end+1 >= len(entry) || entry[end+1] != ':' {
			return "", "", false
		}
		host = entry[1:end]
		port = entry[end+2:]
		if !allDigits(port) {
			return "", "", false
		}
		return host, port, true
	}
	if strings.Count(entry, ":") != 1 {
		return "", "", false
	}
	colon := strings.Index(entry, ":")
	if colon == 0 || colon == len(entry)-1 {
		return "", "", false
	}
	port = entry[colon+1:]
	if !allDigits(port) {
		return "", "", false
	}
	return entry[:colon], port, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// shellQuote wraps s in single quotes for POSIX sh, escaping embedded
// single quotes. Single-quoted text has no other metacharacters.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
