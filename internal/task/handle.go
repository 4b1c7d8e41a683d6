package task

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jonboulle/clockwork"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/output"
	"github.com/joshrotenberg/redisctl/internal/platform"
)

// Handler drives the common write-operation flow: extract the async handle
// from the response, wait on it when asked, and render the outcome through
// the output pipeline. Synchronous responses pass straight through.
type Handler struct {
	client  platform.RawAPI
	flavor  Flavor
	printer *output.Printer
	// progress receives hint lines and the spinner; nil suppresses both
	// (machine output formats).
	progress io.Writer
	clock    clockwork.Clock
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithProgress routes hints and the spinner to out (normally stderr, and
// only when the resolved output format is Table).
func WithProgress(out io.Writer) HandlerOption {
	return func(h *Handler) { h.progress = out }
}

// WithHandlerClock substitutes the wait clock.
func WithHandlerClock(c clockwork.Clock) HandlerOption {
	return func(h *Handler) { h.clock = c }
}

// NewHandler builds a handler around one client and printer.
func NewHandler(client platform.RawAPI, flavor Flavor, printer *output.Printer, opts ...HandlerOption) *Handler {
	h := &Handler{client: client, flavor: flavor, printer: printer, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes a write response. With no async handle present the
// response renders as-is. With one present and wait off, a one-line hint
// goes to progress and the response renders. With wait on, the handle is
// polled to terminal state: the final record renders, a Failure becomes an
// APIError carrying the extracted description, and a deadline overrun
// becomes a TimeoutError.
func (h *Handler) Handle(ctx context.Context, response json.RawMessage, opts WaitOptions) error {
	_, err := h.Run(ctx, response, opts)
	return err
}

// Run is Handle for callers that also want the final record (workflows pick
// the created resource id out of it). A nil record means the response had no
// async handle.
func (h *Handler) Run(ctx context.Context, response json.RawMessage, opts WaitOptions) (*Record, error) {
	var doc map[string]any
	if len(response) > 0 {
		// Non-object responses (arrays, scalars) never carry a handle.
		_ = json.Unmarshal(response, &doc)
	}
	id, ok := h.flavor.Extract(doc)
	if !ok {
		return nil, h.printer.Print(normalizeResponse(response))
	}

	if !opts.Wait {
		if h.progress != nil {
			fmt.Fprintln(h.progress, h.flavor.Hint(id))
		}
		return nil, h.printer.Print(normalizeResponse(response))
	}

	return h.WaitFor(ctx, id, opts)
}

// WaitFor polls an already-known handle id to a terminal state and renders
// the outcome exactly like Handle's waiting branch. It backs the standalone
// `task wait <id>` and `action get --wait` style commands, where the id
// arrives as an argument instead of inside a write response.
func (h *Handler) WaitFor(ctx context.Context, id string, opts WaitOptions) (*Record, error) {
	waiterOpts := []WaiterOption{WithClock(h.clock)}
	if h.progress != nil {
		waiterOpts = append(waiterOpts, WithSpinner(h.progress))
	}
	rec, err := NewWaiter(h.client, h.flavor, waiterOpts...).Wait(ctx, id, opts)
	if err != nil {
		return rec, err
	}

	if perr := h.printer.Print(h.flavor.view(rec)); perr != nil {
		return rec, perr
	}
	if rec.State == StateFailure {
		return rec, &errdefs.APIError{TaskID: rec.ID, Detail: rec.Err}
	}
	return rec, nil
}

// normalizeResponse keeps empty write responses renderable.
func normalizeResponse(response json.RawMessage) json.RawMessage {
	if len(response) == 0 {
		return json.RawMessage(`{}`)
	}
	return response
}

// cloudTaskView and enterpriseActionView fix the field order the table
// renderer shows for a finished handle.
type cloudTaskView struct {
	TaskID      string `json:"task_id"`
	Status      string `json:"status,omitempty"`
	Description string `json:"description,omitempty"`
	Progress    string `json:"progress,omitempty"`
	ResourceID  string `json:"resource_id,omitempty"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type enterpriseActionView struct {
	ActionUID   string `json:"action_uid"`
	Status      string `json:"status,omitempty"`
	Description string `json:"description,omitempty"`
	Progress    string `json:"progress,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (f Flavor) view(rec *Record) any {
	if f.Noun == "action" {
		return enterpriseActionView{
			ActionUID:   rec.ID,
			Status:      rec.Status,
			Description: rec.Description,
			Progress:    rec.Progress,
			Error:       rec.Err,
		}
	}
	return cloudTaskView{
		TaskID:      rec.ID,
		Status:      rec.Status,
		Description: rec.Description,
		Progress:    rec.Progress,
		ResourceID:  rec.ResourceID,
		Error:       rec.Err,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}
