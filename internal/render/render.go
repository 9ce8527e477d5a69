// Package render encodes a pipeline document for the CI orchestrator.
//
// YAML is the default and goes through gopkg.in/yaml.v3 with a two-space
// indent. JSON is offered because the pipeline upload accepts either.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"dynapipe/internal/pipeline"
)

// Format is an output encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" or "json", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml", "":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want yaml or json)", s)
}

// Encode writes doc to w in the given format.
func Encode(w io.Writer, doc pipeline.Document, format Format) error {
	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode pipeline: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode pipeline: %w", err)
		}
		return nil

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode pipeline: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteFile encodes doc to path atomically: the document is written to a
// temporary file in the same directory and renamed into place.
func WriteFile(path string, doc pipeline.Document, format Format) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write pipeline: %w", err)
	}
	tmpPath := tmp.Name()

	if err := Encode(tmp, doc, format); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write pipeline: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write pipeline: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// Clean up temp file on rename failure
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write pipeline: %w", err)
	}
	return nil
}
