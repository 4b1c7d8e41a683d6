// Package task is the async orchestrator: it recognizes task and action
// handles in write-operation responses, polls them to a terminal state, and
// reports progress along the way. Every Cloud write and the occasional
// Enterprise action funnels through here.
package task

import "strings"

// State is the abstract lifecycle every platform status string maps into.
type State int

const (
	// StatePending covers queued and not-yet-started statuses, plus anything
	// unrecognized; the platforms grow new strings over time and an unknown
	// one must keep the loop polling rather than abort it.
	StatePending State = iota
	// StateRunning covers in-flight statuses.
	StateRunning
	// StateSuccess is terminal success.
	StateSuccess
	// StateFailure is terminal failure.
	StateFailure
	// StateCancelled is terminal cancellation.
	StateCancelled
)

// Terminal reports whether polling should stop.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure || s == StateCancelled
}

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	case StateCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// ClassifyState maps a raw platform status string into the abstract set,
// case-insensitively. The success list has grown release by release
// (processing-completed, finished, ...); keep additions here.
func ClassifyState(raw string) State {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "processing", "running", "in_progress", "in-progress":
		return StateRunning
	case "completed", "complete", "succeeded", "success",
		"processing-completed", "finished", "done":
		return StateSuccess
	case "failed", "error", "processing-error":
		return StateFailure
	case "cancelled", "canceled":
		return StateCancelled
	default:
		// received, pending, queued, and anything new.
		return StatePending
	}
}

// FormatState prefixes a raw status with its progress glyph, keeping the
// original case: "✓ completed", "✗ failed", "⊘ cancelled", "⟳ processing".
// Pending statuses render bare.
func FormatState(raw string) string {
	switch ClassifyState(raw) {
	case StateSuccess:
		return "✓ " + raw
	case StateFailure:
		return "✗ " + raw
	case StateCancelled:
		return "⊘ " + raw
	case StateRunning:
		return "⟳ " + raw
	default:
		return raw
	}
}
