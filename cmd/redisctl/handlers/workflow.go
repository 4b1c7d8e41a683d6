package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/task"
	"github.com/joshrotenberg/redisctl/internal/workflow"
)

type workflowRow struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// WorkflowList renders the workflows registered for one platform.
func WorkflowList(app *App, platform string) error {
	app.logCommand(platform + " workflow list")
	flows := workflow.ForPlatform(platform)
	rows := make([]workflowRow, 0, len(flows))
	for _, w := range flows {
		rows = append(rows, workflowRow{Name: w.Name(), Description: w.Description()})
	}
	return app.Printer().Print(rows)
}

// WorkflowRun executes a named workflow with arguments merged from --data
// and key=value pairs. The result renders even when the run failed partway,
// so the completed steps stay visible.
func WorkflowRun(ctx context.Context, app *App, platform, name, data string, pairs []string, dryRun bool, wait task.WaitOptions) error {
	w, ok := workflow.Get(name)
	if !ok || w.Platform() != platform {
		return unknownWorkflow(platform, name)
	}

	args, err := workflowArgs(data, pairs)
	if err != nil {
		return err
	}
	args["dry-run"] = dryRun
	// Argument values can carry credentials; log the keys only.
	app.logCommand(platform+" workflow run", "workflow", name, "dry_run", dryRun, "args", argKeys(args))

	wctx := &workflow.Context{
		Conn:     app.Conn,
		Profile:  app.Globals.Profile,
		Output:   app.Printer().Format(),
		Wait:     wait,
		Log:      app.Log,
		Progress: app.Progress(),
		Clock:    app.Clock,
	}
	res, execErr := w.Execute(ctx, wctx, args)
	if res != nil {
		if printErr := app.Printer().Print(res); printErr != nil && execErr == nil {
			return printErr
		}
	}
	return execErr
}

// workflowArgs merges a --data JSON object with key=value pairs; pairs win.
func workflowArgs(data string, pairs []string) (workflow.Args, error) {
	args := workflow.Args{}
	if data != "" {
		obj, err := dataObject(data)
		if err != nil {
			return nil, err
		}
		for k, v := range obj {
			args[k] = v
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errdefs.Usage(fmt.Errorf("workflow argument %q is not key=value", pair))
		}
		args[key] = value
	}
	return args, nil
}

func argKeys(args workflow.Args) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func unknownWorkflow(platform, name string) error {
	var names []string
	for _, w := range workflow.ForPlatform(platform) {
		names = append(names, w.Name())
	}
	if len(names) == 0 {
		return errdefs.Usage(fmt.Errorf("unknown %s workflow %q", platform, name))
	}
	return errdefs.Usage(fmt.Errorf("unknown %s workflow %q (have: %s)", platform, name, strings.Join(names, ", ")))
}
