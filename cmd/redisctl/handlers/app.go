// Package handlers implements the command logic behind the cobra tree in
// commands. Each handler takes the invocation runtime (App) plus typed
// arguments, so tests drive it directly with buffers and fake clocks.
package handlers

import (
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/joshrotenberg/redisctl/internal/config"
	"github.com/joshrotenberg/redisctl/internal/conn"
	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/output"
	"github.com/joshrotenberg/redisctl/internal/platform"
	"github.com/joshrotenberg/redisctl/internal/task"
)

// Globals carries the persistent flag values every command shares.
type Globals struct {
	ConfigFile string
	Profile    string
	Output     string
	Query      string
	Verbosity  int
}

// App is the per-invocation runtime: loaded config, logger, connection
// manager, and the streams results and progress flow to.
type App struct {
	Globals Globals
	Config  *config.Config
	Conn    *conn.Manager
	Log     logr.Logger

	// Out receives rendered results. ErrOut receives hints, step lines,
	// and the spinner.
	Out    io.Writer
	ErrOut io.Writer
	// Clock paces wait loops; tests inject a fake.
	Clock clockwork.Clock

	format output.Format
}

// NewApp builds the runtime from parsed global flags. The output format is
// validated here so a bad -o value fails before any config or network work.
func NewApp(g Globals) (*App, error) {
	format, err := output.ParseFormat(g.Output)
	if err != nil {
		return nil, errdefs.Usage(err)
	}
	log := NewLogger(g.Verbosity)
	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		return nil, err
	}
	return &App{
		Globals: g,
		Config:  cfg,
		Conn:    conn.NewManager(cfg, log),
		Log:     log,
		Out:     os.Stdout,
		ErrOut:  os.Stderr,
		Clock:   clockwork.NewRealClock(),
		format:  format,
	}, nil
}

// NewLogger builds the CLI logger: console encoding on stderr with the
// threshold set by the -v count. Silent except for warnings by default,
// then command entry/exit, then debug detail, then HTTP wire detail.
func NewLogger(verbosity int) logr.Logger {
	level := zapcore.WarnLevel
	switch {
	case verbosity >= 3:
		level = zapcore.Level(-2)
	case verbosity == 2:
		level = zapcore.DebugLevel
	case verbosity == 1:
		level = zapcore.InfoLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)
	return zapr.NewLogger(zap.New(core))
}

// Printer builds the result printer for this invocation. Auto resolves
// against Out, so piped output turns into JSON.
func (a *App) Printer() *output.Printer {
	return output.NewPrinter(a.format, a.Globals.Query, a.Out)
}

// Progress returns the stream for hints and spinners, or nil when the
// resolved format is a machine one and decoration would corrupt pipelines.
func (a *App) Progress() io.Writer {
	if a.Printer().Format() != output.FormatTable {
		return nil
	}
	return a.ErrOut
}

// logCommand records command entry. Callers pass only allowlisted fields;
// request bodies, passwords, and keys never go through here.
func (a *App) logCommand(command string, kv ...any) {
	fields := []any{"command", command}
	if a.Globals.Profile != "" {
		fields = append(fields, "profile", a.Globals.Profile)
	}
	a.Log.Info("command", append(fields, kv...)...)
}

// taskHandler builds the async flow handler for one client and flavor.
func (a *App) taskHandler(client platform.RawAPI, flavor task.Flavor) *task.Handler {
	opts := []task.HandlerOption{task.WithHandlerClock(a.Clock)}
	if p := a.Progress(); p != nil {
		opts = append(opts, task.WithProgress(p))
	}
	return task.NewHandler(client, flavor, a.Printer(), opts...)
}
