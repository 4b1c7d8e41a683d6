// Package output is the rendering pipeline every command's result flows
// through: optional JMESPath projection, then table, JSON, or YAML encoding.
// Progress and diagnostics go to stderr elsewhere; this package only ever
// writes the machine- or human-readable result to its writer.
package output

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

// Format selects how a result is rendered.
type Format string

const (
	// FormatAuto picks Table on a terminal and JSON otherwise. It never
	// survives printer construction; downstream code sees a resolved format.
	FormatAuto Format = "auto"
	// FormatTable renders for humans.
	FormatTable Format = "table"
	// FormatJSON renders pretty-printed JSON.
	FormatJSON Format = "json"
	// FormatYAML renders block-style YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat validates a -o/--output flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatAuto, FormatTable, FormatJSON, FormatYAML:
		return Format(s), nil
	case "":
		return FormatAuto, nil
	default:
		return "", errdefs.Validationf("unknown output format %q (want auto, table, json, or yaml)", s)
	}
}

func (f Format) String() string { return string(f) }

// resolve pins Auto to a concrete format based on whether out is a terminal.
func (f Format) resolve(out *os.File) Format {
	if f != FormatAuto {
		return f
	}
	if out != nil && isTerminal(out) {
		return FormatTable
	}
	return FormatJSON
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Flag returns the usage string for the -o flag.
func Flag() string {
	return fmt.Sprintf("output format (%s, %s, %s, %s)", FormatAuto, FormatTable, FormatJSON, FormatYAML)
}
