package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/platform"
	"github.com/joshrotenberg/redisctl/internal/task"
)

// CloudGet renders a GET through the active cloud profile.
func CloudGet(ctx context.Context, app *App, command, path string) error {
	app.logCommand(command, "path", path)
	client, err := app.Conn.Cloud(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	raw, err := client.Get(ctx, path)
	return printRaw(app, raw, err)
}

// CloudWrite issues a write through the active cloud profile and hands the
// response to the async flow: task extraction, optional wait, rendering.
func CloudWrite(ctx context.Context, app *App, command, method, path, data string, wait task.WaitOptions) error {
	app.logCommand(command, "method", method, "path", path, "wait", wait.Wait)
	client, err := app.Conn.Cloud(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	raw, err := write(ctx, client, method, path, data)
	if err != nil {
		return err
	}
	return app.taskHandler(client, task.CloudTasks).Handle(ctx, raw, wait)
}

// EnterpriseGet renders a GET through the active enterprise profile.
func EnterpriseGet(ctx context.Context, app *App, command, path string) error {
	app.logCommand(command, "path", path)
	client, err := app.Conn.Enterprise(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	raw, err := client.Get(ctx, path)
	return printRaw(app, raw, err)
}

// EnterpriseWrite issues a write through the active enterprise profile,
// waiting on a returned action when asked.
func EnterpriseWrite(ctx context.Context, app *App, command, method, path, data string, wait task.WaitOptions) error {
	app.logCommand(command, "method", method, "path", path, "wait", wait.Wait)
	client, err := app.Conn.Enterprise(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	raw, err := write(ctx, client, method, path, data)
	if err != nil {
		return err
	}
	return app.taskHandler(client, task.EnterpriseActions).Handle(ctx, raw, wait)
}

func write(ctx context.Context, client platform.RawAPI, method, path, data string) (json.RawMessage, error) {
	var body any
	if data != "" {
		raw, err := ReadData(data)
		if err != nil {
			return nil, err
		}
		body = raw
	}
	switch method {
	case http.MethodPost:
		return client.Post(ctx, path, body)
	case http.MethodPut:
		return client.Put(ctx, path, body)
	case http.MethodDelete:
		if body != nil {
			return nil, errdefs.Usage(errDeleteBody)
		}
		return client.Delete(ctx, path)
	default:
		return nil, errdefs.Usage(errBadMethod(method))
	}
}

// printRaw renders a raw API response; empty responses (204, some DELETEs)
// print nothing so pipelines see clean output.
func printRaw(app *App, raw json.RawMessage, err error) error {
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return app.Printer().Print(raw)
}
