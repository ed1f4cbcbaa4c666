// Copyright 2026 The Packrun Authors
// SPDX-License-Identifier: Apache-2.0

package packdef

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/packrun-dev/packrun/lib/scope"
	"github.com/packrun-dev/packrun/lib/task"
)

// Tool is one tool entry in a pack manifest.
type Tool struct {
	// Permission is the pack-declared permission tier for the tool.
	// The planner carries it through untouched; interpretation
	// belongs to the registry that vetted the pack.
	Permission string `yaml:"permission,omitempty"`

	// RequiredScopes is the toolRequired layer for every invocation
	// of this tool.
	RequiredScopes []scope.Scope `yaml:"required_scopes"`
}

// Manifest is a parsed pack manifest.
type Manifest struct {
	Name  string          `yaml:"name"`
	Tools map[string]Tool `yaml:"tools"`
}

// LayerFile is a parsed workspace or lane configuration: a named list
// of allowed scopes.
type LayerFile struct {
	Name   string        `yaml:"name"`
	Scopes []scope.Scope `yaml:"scopes"`
}

// TaskSpec is a parsed task specification: the task itself plus the
// tool call it wants to make.
type TaskSpec struct {
	task.Task
	Tool    string   `json:"tool"`
	Command []string `json:"command"`
}

// ParseManifest parses a YAML pack manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	for name, tool := range manifest.Tools {
		for i, s := range tool.RequiredScopes {
			if err := s.Validate(); err != nil {
				return nil, fmt.Errorf("manifest tool %q, required_scopes[%d]: %w", name, i, err)
			}
		}
	}
	return &manifest, nil
}

// ReadManifestFile reads and parses a YAML pack manifest from disk.
func ReadManifestFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}

// ParseLayerFile parses a YAML workspace or lane configuration.
func ParseLayerFile(data []byte) (*LayerFile, error) {
	var layer LayerFile
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return nil, fmt.Errorf("parsing layer config: %w", err)
	}
	for i, s := range layer.Scopes {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("scopes[%d]: %w", i, err)
		}
	}
	return &layer, nil
}

// ReadLayerFile reads and parses a YAML layer configuration from disk.
func ReadLayerFile(path string) (*LayerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	layer, err := ParseLayerFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return layer, nil
}

// ParseTaskSpec strips JSONC comments and trailing commas from data,
// then unmarshals the result into a TaskSpec.
func ParseTaskSpec(data []byte) (*TaskSpec, error) {
	stripped := jsonc.ToJSON(data)

	var spec TaskSpec
	if err := json.Unmarshal(stripped, &spec); err != nil {
		return nil, fmt.Errorf("parsing task spec: %w", err)
	}
	if spec.ID == "" {
		return nil, fmt.Errorf("parsing task spec: id is required")
	}
	for i, s := range spec.Declared {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("task %s: declared_scopes[%d]: %w", spec.ID, i, err)
		}
	}
	return &spec, nil
}

// ReadTaskSpecFile reads a JSONC task specification from disk and
// parses it.
func ReadTaskSpecFile(path string) (*TaskSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	spec, err := ParseTaskSpec(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}
