package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/joshrotenberg/redisctl/internal/platform/redisdb"
)

// The database subtree is a thin convenience over a data-plane connection:
// liveness, sizing, and key introspection for the active database profile.
// Anything deeper belongs in redis-cli.

// DatabasePing checks liveness and prints the server's reply.
func DatabasePing(ctx context.Context, app *App) error {
	app.logCommand("database ping")
	db, err := app.Conn.Database(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	defer db.Close()
	reply, err := db.Ping(ctx)
	if err != nil {
		return err
	}
	return app.Printer().Print(map[string]string{"reply": reply})
}

// DatabaseInfo prints the INFO text, optionally limited to one section. The
// output is the server's own report, not JSON.
func DatabaseInfo(ctx context.Context, app *App, section string) error {
	app.logCommand("database info", "section", section)
	db, err := app.Conn.Database(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	defer db.Close()
	var sections []string
	if section != "" {
		sections = append(sections, section)
	}
	text, err := db.Info(ctx, sections...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(app.Out, strings.TrimRight(text, "\r\n"))
	return err
}

// DatabaseSize prints the keyspace size of the selected logical database.
func DatabaseSize(ctx context.Context, app *App) error {
	app.logCommand("database size")
	db, err := app.Conn.Database(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	defer db.Close()
	n, err := db.DBSize(ctx)
	if err != nil {
		return err
	}
	return app.Printer().Print(map[string]int64{"keys": n})
}

// DatabaseScan lists keys matching pattern, up to limit.
func DatabaseScan(ctx context.Context, app *App, pattern string, limit int) error {
	app.logCommand("database scan", "pattern", pattern, "limit", limit)
	db, err := app.Conn.Database(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	defer db.Close()
	keys, err := db.Scan(ctx, pattern, limit)
	if err != nil {
		return err
	}
	if keys == nil {
		keys = []string{}
	}
	return app.Printer().Print(keys)
}

type databaseKeyView struct {
	redisdb.KeyInfo
	Value any `json:"value,omitempty"`
}

// DatabaseKey introspects one key: type, TTL, and content. Values render
// through the JSON mapping, so binary-unsafe strings come back in the base64
// envelope instead of corrupting the terminal.
func DatabaseKey(ctx context.Context, app *App, key string) error {
	app.logCommand("database key", "key", key)
	db, err := app.Conn.Database(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	defer db.Close()
	info, err := db.KeyInfo(ctx, key)
	if err != nil {
		return err
	}
	value, err := db.Value(ctx, key)
	if err != nil {
		return err
	}
	return app.Printer().Print(databaseKeyView{KeyInfo: info, Value: value})
}

// DatabaseSlowLog renders the most recent count slow-log entries.
func DatabaseSlowLog(ctx context.Context, app *App, count int) error {
	app.logCommand("database slowlog", "count", count)
	db, err := app.Conn.Database(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	defer db.Close()
	entries, err := db.SlowLog(ctx, int64(count))
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []redisdb.SlowLogEntry{}
	}
	return app.Printer().Print(entries)
}

// DatabaseModules renders the loaded-modules report.
func DatabaseModules(ctx context.Context, app *App) error {
	app.logCommand("database modules")
	db, err := app.Conn.Database(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	defer db.Close()
	mods, err := db.ModuleList(ctx)
	if err != nil {
		return err
	}
	return app.Printer().Print(mods)
}

// DatabaseConfig renders server parameters matching pattern.
func DatabaseConfig(ctx context.Context, app *App, pattern string) error {
	app.logCommand("database config", "pattern", pattern)
	db, err := app.Conn.Database(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	defer db.Close()
	params, err := db.ConfigGet(ctx, pattern)
	if err != nil {
		return err
	}
	return app.Printer().Print(params)
}

// DatabaseClients renders the connected-clients report.
func DatabaseClients(ctx context.Context, app *App) error {
	app.logCommand("database clients")
	db, err := app.Conn.Database(ctx, app.Globals.Profile)
	if err != nil {
		return err
	}
	defer db.Close()
	clients, err := db.ClientList(ctx)
	if err != nil {
		return err
	}
	if clients == nil {
		clients = []map[string]string{}
	}
	return app.Printer().Print(clients)
}
