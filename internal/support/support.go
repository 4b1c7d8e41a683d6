// Package support downloads, shrinks, and ships cluster support packages:
// the debuginfo bundles Redis support asks for when a cluster misbehaves.
package support

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/output"
	"github.com/joshrotenberg/redisctl/internal/platform"
)

// Scope selects which debuginfo endpoint a download hits.
type Scope struct {
	kind string
	uid  string
}

func ClusterScope() Scope            { return Scope{kind: "cluster"} }
func AllNodesScope() Scope           { return Scope{kind: "nodes"} }
func NodeScope(uid string) Scope     { return Scope{kind: "node", uid: uid} }
func DatabaseScope(uid string) Scope { return Scope{kind: "database", uid: uid} }

// Path is the debuginfo endpoint for this scope.
func (s Scope) Path() string {
	switch s.kind {
	case "cluster":
		return "/v1/cluster/debuginfo"
	case "nodes":
		return "/v1/nodes/debuginfo"
	case "node":
		return "/v1/nodes/" + s.uid + "/debuginfo"
	case "database":
		return "/v1/bdbs/" + s.uid + "/debuginfo"
	}
	return ""
}

func (s Scope) slug() string {
	switch {
	case s.kind == "nodes":
		return "all-nodes"
	case s.uid != "":
		return s.kind + "-" + s.uid
	}
	return s.kind
}

func (s Scope) String() string { return s.slug() }

// DefaultFilename names a bundle written without an explicit destination.
func DefaultFilename(scope Scope, now time.Time) string {
	return fmt.Sprintf("support-package-%s-%s.tar.gz", scope.slug(), now.Format("20060102T150405"))
}

// Options configures one download.
type Options struct {
	// Path is the destination; empty picks DefaultFilename in the working
	// directory.
	Path string
	// Force skips the overwrite confirmation.
	Force bool
	// Optimize shrinks the archive before writing (see Optimize).
	Optimize bool
	// MaxLogLines bounds each log file when optimizing; zero means
	// DefaultMaxLogLines.
	MaxLogLines int
}

// Report is the rendered outcome of a download.
type Report struct {
	Path       string `json:"path"`
	SizeBytes  int64  `json:"size_bytes"`
	Size       string `json:"size"`
	Optimized  bool   `json:"optimized,omitempty"`
	SavedBytes int64  `json:"saved_bytes,omitempty"`
}

// Downloader streams debuginfo bundles to disk.
type Downloader struct {
	client   platform.RawAPI
	log      logr.Logger
	progress io.Writer
	clock    clockwork.Clock
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithProgress animates a spinner and warnings on out. Leave unset for
// machine output.
func WithProgress(out io.Writer) DownloaderOption {
	return func(d *Downloader) { d.progress = out }
}

// WithClock substitutes the clock used for default filenames.
func WithClock(c clockwork.Clock) DownloaderOption {
	return func(d *Downloader) { d.clock = c }
}

// NewDownloader builds a downloader over the cluster client.
func NewDownloader(client platform.RawAPI, log logr.Logger, opts ...DownloaderOption) *Downloader {
	d := &Downloader{client: client, log: log, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches the bundle for scope and writes it to the destination.
// The body buffers fully in memory; bundles are expected to fit.
func (d *Downloader) Download(ctx context.Context, scope Scope, opts Options) (*Report, error) {
	path := opts.Path
	if path == "" {
		path = DefaultFilename(scope, d.clock.Now())
	}
	if err := preflight(path, opts.Force, d.progress); err != nil {
		return nil, err
	}

	var sp *output.Spinner
	if d.progress != nil {
		sp = output.NewSpinner(d.progress)
	}
	sp.Start(fmt.Sprintf("downloading %s support package", scope.slug()))
	defer sp.Discard()

	data, err := d.client.GetBytes(ctx, scope.Path())
	if err != nil {
		sp.Stop(fmt.Sprintf("✗ downloading %s support package failed", scope.slug()))
		return nil, err
	}
	rawSize := int64(len(data))
	d.log.V(1).Info("support package downloaded", "scope", scope.slug(), "bytes", rawSize)

	report := &Report{Path: path}
	if opts.Optimize {
		sp.Describe("optimizing archive")
		data, err = Optimize(data, opts.MaxLogLines)
		if err != nil {
			sp.Stop("✗ optimizing archive failed")
			return nil, err
		}
		report.Optimized = true
		report.SavedBytes = rawSize - int64(len(data))
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		sp.Stop(fmt.Sprintf("✗ writing %s failed", path))
		return nil, errdefs.IOWrap(err, "writing support package to %s", path)
	}

	report.SizeBytes = int64(len(data))
	report.Size = humanize.Bytes(uint64(len(data)))
	sp.Stop(fmt.Sprintf("✓ wrote %s (%s)", path, report.Size))
	return report, nil
}

// downloadConcurrency bounds the per-node fan-out; debuginfo collection is
// heavy on the nodes themselves.
const downloadConcurrency = 4

// DownloadEachNode fetches a separate bundle per cluster node concurrently,
// writing each to its own default-named file under dir. The first failure
// cancels the remaining transfers.
func (d *Downloader) DownloadEachNode(ctx context.Context, dir string, opts Options) ([]*Report, error) {
	raw, err := d.client.Get(ctx, "/v1/nodes")
	if err != nil {
		return nil, err
	}
	var nodes []struct {
		UID json.Number `json:"uid"`
	}
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, errdefs.Validationf("unexpected nodes listing: %v", err)
	}
	if len(nodes) == 0 {
		return nil, errdefs.Validationf("cluster reports no nodes")
	}

	// Per-node transfers run quiet; concurrent spinners would garble the
	// terminal.
	quiet := *d
	quiet.progress = nil

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadConcurrency)
	reports := make([]*Report, len(nodes))
	for i, n := range nodes {
		g.Go(func() error {
			scope := NodeScope(n.UID.String())
			perNode := opts
			perNode.Path = filepath.Join(dir, DefaultFilename(scope, d.clock.Now()))
			rep, err := quiet.Download(gctx, scope, perNode)
			if err != nil {
				return fmt.Errorf("node %s: %w", n.UID.String(), err)
			}
			reports[i] = rep
			if d.progress != nil {
				fmt.Fprintf(d.progress, "✓ node %s: %s (%s)\n", n.UID.String(), rep.Path, rep.Size)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
