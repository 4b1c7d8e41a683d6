package task

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/output"
	"github.com/joshrotenberg/redisctl/internal/platform"
)

// Default wait budget. Commands expose these as --wait-timeout and
// --wait-interval.
const (
	DefaultTimeout  = 300 * time.Second
	DefaultInterval = 5 * time.Second
)

// WaitOptions is the common async argument group.
type WaitOptions struct {
	// Wait selects polling; false renders the submitted handle and returns.
	Wait bool
	// Timeout bounds the whole wait loop.
	Timeout time.Duration
	// Interval is the fixed pause between polls. No backoff: the user chose
	// the cadence.
	Interval time.Duration
}

// DefaultWaitOptions returns the stock budget with waiting off.
func DefaultWaitOptions() WaitOptions {
	return WaitOptions{Timeout: DefaultTimeout, Interval: DefaultInterval}
}

func (o WaitOptions) withDefaults() WaitOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	return o
}

// Flavor parameterizes the orchestrator for the two async surfaces: Cloud
// tasks and Enterprise actions. They differ only in the identifier field, the
// poll path, and naming.
type Flavor struct {
	// Noun names the handle in human output ("task", "action").
	Noun string
	// Path builds the poll endpoint for a handle.
	Path func(id string) string
	// Extract probes a write response for the handle.
	Extract func(doc map[string]any) (string, bool)
	// Hint tells the user how to follow up when not waiting.
	Hint func(id string) string
}

// CloudTasks is the Cloud flavor: /tasks/{id}, taskId-family identifiers.
var CloudTasks = Flavor{
	Noun:    "task",
	Path:    func(id string) string { return "/tasks/" + id },
	Extract: ExtractTaskID,
	Hint: func(id string) string {
		return fmt.Sprintf("Task %s submitted. Check it with 'redisctl cloud task get %s', or re-run with --wait.", id, id)
	},
}

// EnterpriseActions is the Enterprise flavor: /v1/actions/{uid}, action_uid
// identifiers.
var EnterpriseActions = Flavor{
	Noun:    "action",
	Path:    func(id string) string { return "/v1/actions/" + id },
	Extract: ExtractActionUID,
	Hint: func(id string) string {
		return fmt.Sprintf("Action %s submitted. Check it with 'redisctl enterprise action get %s', or re-run with --wait.", id, id)
	},
}

// Waiter polls one handle to a terminal state.
type Waiter struct {
	client  platform.RawAPI
	flavor  Flavor
	clock   clockwork.Clock
	spinner *output.Spinner
}

// WaiterOption configures a Waiter.
type WaiterOption func(*Waiter)

// WithClock substitutes the clock (fake clocks in tests).
func WithClock(c clockwork.Clock) WaiterOption {
	return func(w *Waiter) { w.clock = c }
}

// WithSpinner animates progress on out. Leave unset for machine output.
func WithSpinner(out io.Writer) WaiterOption {
	return func(w *Waiter) { w.spinner = output.NewSpinner(out) }
}

// NewWaiter builds a waiter polling via client using the flavor's endpoint.
func NewWaiter(client platform.RawAPI, flavor Flavor, opts ...WaiterOption) *Waiter {
	w := &Waiter{client: client, flavor: flavor, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Wait polls until the handle reaches a terminal state or the timeout
// elapses. The returned record is the last observation; callers decide what
// a Failure means for them. A deadline overrun returns TimeoutError with the
// final pending record alongside.
func (w *Waiter) Wait(ctx context.Context, id string, opts WaitOptions) (*Record, error) {
	opts = opts.withDefaults()
	deadline := w.clock.Now().Add(opts.Timeout)

	w.spinner.Start(fmt.Sprintf("waiting for %s %s", w.flavor.Noun, id))
	defer w.spinner.Discard()

	for {
		raw, err := w.client.Get(ctx, w.flavor.Path(id))
		if err != nil {
			w.spinner.Stop(fmt.Sprintf("✗ polling %s %s failed", w.flavor.Noun, id))
			return nil, err
		}
		rec := ParseRecord(raw)
		if rec.ID == "" {
			rec.ID = id
		}
		w.spinner.Describe(fmt.Sprintf("%s %s: %s", w.flavor.Noun, id, FormatState(rec.Status)))

		if rec.State.Terminal() {
			w.spinner.Stop(fmt.Sprintf("%s %s: %s", w.flavor.Noun, id, FormatState(rec.Status)))
			return rec, nil
		}
		if !w.clock.Now().Before(deadline) {
			w.spinner.Stop(fmt.Sprintf("%s %s: timed out after %s", w.flavor.Noun, id, opts.Timeout))
			return rec, errdefs.Timeout(id, opts.Timeout)
		}

		select {
		case <-ctx.Done():
			w.spinner.Stop(fmt.Sprintf("%s %s: cancelled", w.flavor.Noun, id))
			return rec, ctx.Err()
		case <-w.clock.After(opts.Interval):
		}
	}
}

// WaitRaw polls like Wait but hands back the final raw response too, for
// callers that render the record themselves.
func (w *Waiter) WaitRaw(ctx context.Context, id string, opts WaitOptions) (*Record, json.RawMessage, error) {
	rec, err := w.Wait(ctx, id, opts)
	if rec == nil || rec.Doc == nil {
		return rec, nil, err
	}
	raw, merr := json.Marshal(rec.Doc)
	if merr != nil {
		return rec, nil, err
	}
	return rec, raw, err
}
