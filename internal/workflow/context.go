package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"

	"github.com/joshrotenberg/redisctl/internal/conn"
	"github.com/joshrotenberg/redisctl/internal/output"
	"github.com/joshrotenberg/redisctl/internal/task"
)

// Context carries the runtime a workflow executes against. Workflows are
// stateless; everything they need flows in here or in Args.
type Context struct {
	Conn    *conn.Manager
	Profile string
	Output  output.Format
	Wait    task.WaitOptions
	Log     logr.Logger

	// Progress receives step lines; nil silences them (machine output).
	Progress io.Writer
	// Clock paces grace sleeps and task polls. Nil means wall clock.
	Clock clockwork.Clock
}

func (c *Context) clock() clockwork.Clock {
	if c.Clock != nil {
		return c.Clock
	}
	return clockwork.NewRealClock()
}

func (c *Context) stepf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if c.Progress != nil {
		fmt.Fprintln(c.Progress, msg)
	}
	c.Log.V(1).Info(msg)
}

// waitOptions returns the context's wait budget with waiting forced on.
// Workflows always poll: their later steps need the created resource.
func (c *Context) waitOptions() task.WaitOptions {
	opts := c.Wait
	opts.Wait = true
	if opts.Timeout <= 0 {
		opts.Timeout = task.DefaultTimeout
	}
	if opts.Interval <= 0 {
		opts.Interval = task.DefaultInterval
	}
	return opts
}

// Args is the opaque argument map handed to a workflow. Values arrive as
// strings from flags or as decoded JSON types from --data; the accessors
// normalize both.
type Args map[string]any

// String returns the string value for key, or empty when missing.
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// StringOr returns the string value for key, or def when missing or empty.
func (a Args) StringOr(key, def string) string {
	if v := a.String(key); v != "" {
		return v
	}
	return def
}

// Bool returns the boolean value for key; string forms parse leniently.
func (a Args) Bool(key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return false
}

// Int returns the integer value for key, or def when missing or unparsable.
func (a Args) Int(key string, def int) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Float returns the float value for key, or def when missing or unparsable.
func (a Args) Float(key string, def float64) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Result is what a workflow hands back for rendering.
type Result struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	Outputs        map[string]any `json:"outputs,omitempty"`
	StepsCompleted []string       `json:"steps_completed,omitempty"`
}

// Step is one unit of a workflow run.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// runSteps executes steps in order, reporting progress per step. It returns
// the names of the steps that completed; the first failure stops the run and
// is attributed to its own step only.
func runSteps(ctx context.Context, wctx *Context, steps []Step) ([]string, error) {
	start := time.Now()
	completed := make([]string, 0, len(steps))
	for i, step := range steps {
		label := fmt.Sprintf("%s (%d/%d)", step.Name, i+1, len(steps))
		wctx.stepf("[%s] starting", label)
		stepStart := time.Now()
		if err := step.Run(ctx); err != nil {
			wctx.stepf("[%s] failed: %v", label, err)
			return completed, fmt.Errorf("step %q failed: %w", step.Name, err)
		}
		wctx.stepf("[%s] completed in %v", label, time.Since(stepStart).Round(time.Millisecond))
		completed = append(completed, step.Name)
	}
	wctx.stepf("all %d steps completed in %v", len(steps), time.Since(start).Round(time.Millisecond))
	return completed, nil
}

// partialResult builds the failure result for a run that stopped mid-way.
func partialResult(completed []string, err error) *Result {
	return &Result{
		Message:        err.Error(),
		StepsCompleted: completed,
	}
}
