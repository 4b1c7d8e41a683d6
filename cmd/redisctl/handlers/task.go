package handlers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/task"
)

// CloudTaskList renders the account's task log. A status filters
// client-side; the endpoint has no query parameter for it.
func CloudTaskList(ctx context.Context, app *App, status string) error {
	app.logCommand("cloud task list", "status", status)
	client, err := app.Conn.Cloud(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	raw, err := client.Get(ctx, "/tasks")
	if err != nil {
		return err
	}
	if status != "" {
		if raw, err = filterTasksByStatus(raw, status); err != nil {
			return err
		}
	}
	return app.Printer().Print(raw)
}

// filterTasksByStatus keeps the task entries whose status matches, case
// insensitively. The endpoint returns either a bare array or an object with
// a tasks array; the output keeps the input's shape.
func filterTasksByStatus(raw json.RawMessage, status string) (json.RawMessage, error) {
	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err == nil {
		return json.Marshal(filterEntries(entries, status))
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if inner, ok := wrapped["tasks"]; ok {
			if err := json.Unmarshal(inner, &entries); err == nil {
				filtered, err := json.Marshal(filterEntries(entries, status))
				if err != nil {
					return nil, err
				}
				wrapped["tasks"] = filtered
				return json.Marshal(wrapped)
			}
		}
	}
	return nil, errdefs.Validationf("cannot filter by status: unexpected task list shape")
}

func filterEntries(entries []map[string]any, status string) []map[string]any {
	kept := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		s, _ := e["status"].(string)
		if strings.EqualFold(s, status) {
			kept = append(kept, e)
		}
	}
	return kept
}

// CloudTaskWait polls a known task id to a terminal state and renders the
// outcome, honoring the usual wait budget flags.
func CloudTaskWait(ctx context.Context, app *App, id string, opts task.WaitOptions) error {
	app.logCommand("cloud task wait", "task", id)
	client, err := app.Conn.Cloud(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	_, err = app.taskHandler(client, task.CloudTasks).WaitFor(ctx, id, opts)
	return err
}
