// Package io reads the CSV inputs of an assessment or sample design and
// writes reports, designs and sample points.
package io

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a structured document format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ResolveFormat returns the document format for path.
// The format parameter can be "json", "yaml", or "auto" (default).
// If "auto", the format is determined from the file extension and defaults
// to JSON. An explicit format must agree with a present extension.
func ResolveFormat(path, format string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))

	actual := strings.ToLower(strings.TrimSpace(format))
	switch actual {
	case "", "auto":
		if ext == ".yaml" || ext == ".yml" {
			return FormatYAML, nil
		}
		return FormatJSON, nil
	case "json":
		if ext != "" && ext != ".json" {
			return "", fmt.Errorf("path extension %q does not match format %q", ext, actual)
		}
		return FormatJSON, nil
	case "yaml", "yml":
		if ext != "" && ext != ".yaml" && ext != ".yml" {
			return "", fmt.Errorf("path extension %q does not match format %q", ext, actual)
		}
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", format)
	}
}
