package output

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
)

// styles is the table palette. When color is off every style is the zero
// style, so rendering degrades to plain text without branches at call sites.
type styles struct {
	header  lipgloss.Style
	cell    lipgloss.Style
	border  lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	pending lipgloss.Style
}

func newStyles(enabled bool) styles {
	if !enabled {
		return styles{}
	}
	return styles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(colorBlue),
		cell:    lipgloss.NewStyle(),
		border:  lipgloss.NewStyle().Foreground(colorDim),
		good:    lipgloss.NewStyle().Foreground(colorGreen),
		bad:     lipgloss.NewStyle().Foreground(colorRed),
		pending: lipgloss.NewStyle().Foreground(colorYellow),
	}
}

// colorsEnabled honors NO_COLOR and requires a terminal on the output side.
func colorsEnabled(out *os.File) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return out != nil && isTerminal(out)
}

// statusStyle color-hints well-known lifecycle values. Unknown values render
// unstyled.
func (s styles) statusStyle(value string) lipgloss.Style {
	switch strings.ToLower(value) {
	case "active", "completed", "complete", "succeeded", "success", "done",
		"enabled", "online", "ok", "healthy":
		return s.good
	case "failed", "error", "fatal", "down", "offline":
		return s.bad
	case "pending", "processing", "queued", "running", "in_progress",
		"in-progress", "creating", "deleting", "updating":
		return s.pending
	default:
		return s.cell
	}
}

// statusColumn reports whether a column header holds lifecycle values worth
// color-hinting.
func statusColumn(header string) bool {
	h := strings.ToLower(header)
	return h == "status" || h == "state" || strings.HasSuffix(h, "_status") || strings.HasSuffix(h, "_state")
}
