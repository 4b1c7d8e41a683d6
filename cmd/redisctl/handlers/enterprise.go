package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/task"
)

// ModuleUpload posts a module package through the multipart v2 endpoint and
// hands the returned action to the async flow.
func ModuleUpload(ctx context.Context, app *App, path string, wait task.WaitOptions) error {
	app.logCommand("enterprise module upload", "file", path, "wait", wait.Wait)
	data, err := os.ReadFile(path)
	if err != nil {
		return errdefs.IOWrap(err, "reading module package %s", path)
	}
	client, err := app.Conn.Enterprise(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	raw, err := client.PostMultipart(ctx, "/v2/modules", "module", filepath.Base(path), data)
	if err != nil {
		return err
	}
	return app.taskHandler(client, task.EnterpriseActions).Handle(ctx, raw, wait)
}

// BootstrapStatus reads the bootstrap state. The endpoint answers before any
// admin account exists, so the client carries no credentials.
func BootstrapStatus(ctx context.Context, app *App) error {
	app.logCommand("enterprise bootstrap status")
	client, err := app.Conn.EnterpriseBootstrap(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	raw, err := client.Get(ctx, "/v1/bootstrap")
	return printRaw(app, raw, err)
}

// BootstrapWrite posts a bootstrap payload (create_cluster, join_cluster)
// through the unauthenticated client. Bootstrap accepts the request and
// works in the background; callers poll `bootstrap status`.
func BootstrapWrite(ctx context.Context, app *App, command, path, data string) error {
	app.logCommand(command, "path", path)
	client, err := app.Conn.EnterpriseBootstrap(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	raw, err := write(ctx, client, http.MethodPost, path, data)
	return printRaw(app, raw, err)
}
