package io

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/GeoAccuRate-cli/internal/sampling"
)

// WriteReport writes any serialisable report value to path.
// The format parameter can be "json", "yaml", or "auto" (default).
func WriteReport(v any, path, format string) error {
	return writeDoc(v, path, format)
}

// WriteDesign writes a sample design record.
func WriteDesign(d sampling.Design, path, format string) error {
	return writeDoc(d, path, format)
}

// ReadDesign reads a sample design record written by WriteDesign.
func ReadDesign(path, format string) (sampling.Design, error) {
	actual, err := ResolveFormat(path, format)
	if err != nil {
		return sampling.Design{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return sampling.Design{}, err
	}

	var d sampling.Design
	switch actual {
	case FormatYAML:
		err = yaml.Unmarshal(b, &d)
	default:
		err = json.Unmarshal(b, &d)
	}
	if err != nil {
		return sampling.Design{}, fmt.Errorf("decode design: %w", err)
	}
	if d.Scheme != sampling.Scheme {
		return sampling.Design{}, fmt.Errorf("decode design: unsupported scheme %q", d.Scheme)
	}
	return d, nil
}

// WriteText writes plain text, creating directories as needed.
func WriteText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

func writeDoc(v any, path, format string) error {
	actual, err := ResolveFormat(path, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch actual {
	case FormatYAML:
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
