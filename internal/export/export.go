// Package export converts a parsed workspace into other formats: JSON for
// tools, YAML for people, and HCL for anything built on the HCL toolchain.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/blueprint/internal/model"
)

// Format is an export target.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// Formats lists the supported targets.
var Formats = []Format{FormatJSON, FormatYAML, FormatHCL}

// ParseFormat validates a format name. Matching is case-insensitive and
// "yml" is accepted for YAML.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatJSON, FormatYAML, FormatHCL:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want one of json, yaml, hcl)", name)
}

// Write exports ws to w in the given format.
func Write(w io.Writer, format Format, ws *model.Workspace) error {
	switch format {
	case FormatJSON:
		return JSON(w, ws)
	case FormatYAML:
		return YAML(w, ws)
	case FormatHCL:
		return HCL(w, ws)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteValue exports a single value, as selected with a node path.
func WriteValue(w io.Writer, format Format, v model.Value) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, valueToCty(v))
	case FormatYAML:
		return writeYAML(w, valueNode(v))
	case FormatHCL:
		return valueHCL(w, v)
	}
	return fmt.Errorf("unknown export format %q", format)
}
