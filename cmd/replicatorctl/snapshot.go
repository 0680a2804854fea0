/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"chainguard.dev/mskreplicator/handler"
	"chainguard.dev/mskreplicator/replicator"
	"gopkg.in/yaml.v3"
)

// loadModel reads a replicator snapshot. JSON documents are valid YAML, so
// both formats are accepted.
func loadModel(path string) (*replicator.Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var m replicator.Model
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

func checkOutput(format string) error {
	switch format {
	case "yaml", "json":
		return nil
	default:
		return fmt.Errorf("unsupported output format %q, want yaml or json", format)
	}
}

// outcome is the printed form of a terminal progress event.
type outcome struct {
	Status    handler.Status      `json:"status" yaml:"status"`
	ErrorCode handler.ErrorCode   `json:"errorCode,omitempty" yaml:"errorCode,omitempty"`
	Message   string              `json:"message,omitempty" yaml:"message,omitempty"`
	Model     *replicator.Model   `json:"model,omitempty" yaml:"model,omitempty"`
	Models    []*replicator.Model `json:"models,omitempty" yaml:"models,omitempty"`
	NextToken string              `json:"nextToken,omitempty" yaml:"nextToken,omitempty"`
}

func render(w io.Writer, format string, ev *handler.ProgressEvent) error {
	return encode(w, format, outcome{
		Status:    ev.Status,
		ErrorCode: ev.ErrorCode,
		Message:   ev.Message,
		Model:     ev.Model,
		Models:    ev.Models,
		NextToken: ev.NextToken,
	})
}

func encode(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
