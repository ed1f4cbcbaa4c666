// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

// packrun-plan compiles a tool invocation plan without executing it.
// It loads the four scope layers (workspace config, lane config, the
// tool's manifest entry, and the task specification), checks that the
// task's lifecycle state permits tool calls, intersects the layers,
// and prints the resulting sandbox profile, fingerprint, and bwrap
// invocation as JSON on stdout.
//
// The output is exactly what the dispatcher would spawn; printing it
// instead makes grants auditable before anything runs.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/packrun-dev/packrun/lib/packdef"
	"github.com/packrun-dev/packrun/lib/scope"
	"github.com/packrun-dev/packrun/lib/task"
	"github.com/packrun-dev/packrun/sandbox"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// plan is the JSON document printed on stdout.
type plan struct {
	Task        string             `json:"task"`
	Tool        string             `json:"tool"`
	Enforced    []scope.Scope      `json:"enforced_scopes"`
	Profile     sandbox.Profile    `json:"profile"`
	Fingerprint string             `json:"fingerprint"`
	Invocation  sandbox.Invocation `json:"invocation"`
}

func run() error {
	var (
		workspaceConfig string
		laneConfig      string
		manifestPath    string
		taskPath        string
		workspaceRoot   string
		homeDir         string
		logLevel        string
	)

	flagSet := pflag.NewFlagSet("packrun-plan", pflag.ContinueOnError)
	flagSet.StringVar(&workspaceConfig, "workspace-config", "", "path to workspace scope configuration (YAML)")
	flagSet.StringVar(&laneConfig, "lane-config", "", "path to lane scope configuration (YAML)")
	flagSet.StringVar(&manifestPath, "manifest", "", "path to pack manifest (YAML)")
	flagSet.StringVar(&taskPath, "task", "", "path to task specification (JSONC)")
	flagSet.StringVar(&workspaceRoot, "workspace-root", "", "absolute path relative scope patterns resolve against")
	flagSet.StringVar(&homeDir, "home", "", "absolute path ~/ scope patterns resolve against")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}
	if err := checkRequired([]requiredFlag{
		{"--workspace-config", workspaceConfig},
		{"--lane-config", laneConfig},
		{"--manifest", manifestPath},
		{"--task", taskPath},
		{"--workspace-root", workspaceRoot},
		{"--home", homeDir},
	}); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(logLevel),
	}))

	workspace, err := packdef.ReadLayerFile(workspaceConfig)
	if err != nil {
		return err
	}
	lane, err := packdef.ReadLayerFile(laneConfig)
	if err != nil {
		return err
	}
	manifest, err := packdef.ReadManifestFile(manifestPath)
	if err != nil {
		return err
	}
	spec, err := packdef.ReadTaskSpecFile(taskPath)
	if err != nil {
		return err
	}

	tool, ok := manifest.Tools[spec.Tool]
	if !ok {
		return fmt.Errorf("pack %q has no tool %q", manifest.Name, spec.Tool)
	}
	if len(spec.Command) == 0 {
		return fmt.Errorf("task %s: command is required", spec.ID)
	}

	// Lifecycle gate: tool calls only run for active tasks. A ready
	// task is activated first — the same ready→active edge the state
	// store would record.
	state, err := task.ResolveState(spec.State, spec.StateAliases)
	if err != nil {
		return fmt.Errorf("task %s: %w", spec.ID, err)
	}
	if state == task.StateReady {
		if err := task.AssertTransition(spec.State, string(task.StateActive), spec.ID, spec.StateAliases); err != nil {
			return err
		}
		state = task.StateActive
		logger.Info("activating task", "task", spec.ID)
	}
	if !state.AllowsToolCalls() {
		return fmt.Errorf("task %s: state %q does not permit tool calls", spec.ID, state)
	}

	enforced := scope.Intersect(scope.Layers{
		WorkspaceAllowed: workspace.Scopes,
		LaneAllowed:      lane.Scopes,
		TaskDeclared:     spec.Declared,
		ToolRequired:     tool.RequiredScopes,
	})
	logger.Info("intersected scope layers",
		"task", spec.ID,
		"tool", spec.Tool,
		"enforced", len(enforced),
	)

	profile := sandbox.BuildProfile(enforced, sandbox.Paths{
		WorkspaceRoot: workspaceRoot,
		HomeDir:       homeDir,
	})
	fingerprint, err := sandbox.Fingerprint(profile)
	if err != nil {
		return err
	}
	invocation, err := sandbox.BuildInvocation(profile, spec.Command)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(plan{
		Task:        spec.ID,
		Tool:        spec.Tool,
		Enforced:    enforced,
		Profile:     profile,
		Fingerprint: fingerprint,
		Invocation:  invocation,
	})
}

type requiredFlag struct {
	name  string
	value string
}

// checkRequired reports the first missing flag in declaration order,
// keeping the error message stable across runs.
func checkRequired(flags []requiredFlag) error {
	for _, flag := range flags {
		if flag.value == "" {
			return fmt.Errorf("%s is required", flag.name)
		}
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
