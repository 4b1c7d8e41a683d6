package handlers

import (
	"context"

	"github.com/joshrotenberg/redisctl/internal/platform"
	"github.com/joshrotenberg/redisctl/internal/secret"
	"github.com/joshrotenberg/redisctl/internal/support"
)

// SupportOptions carries the support-package download flags.
type SupportOptions struct {
	// File is the destination path, or the destination directory for the
	// per-node fan-out.
	File        string
	Force       bool
	Optimize    bool
	MaxLogLines int
}

func (o SupportOptions) download() support.Options {
	return support.Options{
		Path:        o.File,
		Force:       o.Force,
		Optimize:    o.Optimize,
		MaxLogLines: o.MaxLogLines,
	}
}

// SupportDownload fetches one debuginfo bundle and reports the written file.
func SupportDownload(ctx context.Context, app *App, scope support.Scope, opts SupportOptions) error {
	app.logCommand("enterprise support-package "+scope.String(),
		"optimize", opts.Optimize, "force", opts.Force)
	client, err := app.Conn.Enterprise(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	report, err := newDownloader(app, client).Download(ctx, scope, opts.download())
	if err != nil {
		return err
	}
	return app.Printer().Print(report)
}

// SupportDownloadAllNodes fetches a separate bundle per node. opts.File
// names the destination directory.
func SupportDownloadAllNodes(ctx context.Context, app *App, opts SupportOptions) error {
	app.logCommand("enterprise support-package node --each",
		"optimize", opts.Optimize, "force", opts.Force)
	client, err := app.Conn.Enterprise(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	dir := opts.File
	perNode := opts.download()
	perNode.Path = ""
	reports, err := newDownloader(app, client).DownloadEachNode(ctx, dir, perNode)
	if err != nil {
		return err
	}
	return app.Printer().Print(reports)
}

func newDownloader(app *App, client platform.RawAPI) *support.Downloader {
	dopts := []support.DownloaderOption{support.WithClock(app.Clock)}
	if w := app.Progress(); w != nil {
		dopts = append(dopts, support.WithProgress(w))
	}
	return support.NewDownloader(client, app.Log, dopts...)
}

type supportScopeRow struct {
	Scope    string `json:"scope"`
	Endpoint string `json:"endpoint"`
	Usage    string `json:"usage"`
}

// SupportList renders the available bundle scopes and their endpoints. It
// needs no connection.
func SupportList(app *App) error {
	app.logCommand("enterprise support-package list")
	rows := []supportScopeRow{
		{Scope: "cluster", Endpoint: support.ClusterScope().Path(), Usage: "support-package cluster"},
		{Scope: "all-nodes", Endpoint: support.AllNodesScope().Path(), Usage: "support-package node"},
		{Scope: "node", Endpoint: support.NodeScope("<uid>").Path(), Usage: "support-package node <uid>"},
		{Scope: "database", Endpoint: support.DatabaseScope("<uid>").Path(), Usage: "support-package database <uid>"},
	}
	return app.Printer().Print(rows)
}

// SupportUpload ships a bundle file to the support drop, authenticated with
// the files.com key in effect for the current profile. base overrides the
// upload endpoint; empty means the production drop.
func SupportUpload(ctx context.Context, app *App, path, base string) error {
	profile := app.Globals.Profile
	app.logCommand("enterprise support-package upload", "file", path)
	ref := app.Config.FilesKeyFor(profile)
	if ref == "" {
		return support.MissingKeyError(profile)
	}
	key, err := secret.Resolve(ref, "files.com API key", "")
	if err != nil {
		return err
	}
	report, err := support.NewUploader(base, key, app.Log).UploadFile(ctx, path)
	if err != nil {
		return err
	}
	return app.Printer().Print(report)
}
