package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/platform"
	"github.com/joshrotenberg/redisctl/internal/platform/enterprise"
	"github.com/joshrotenberg/redisctl/internal/platform/redisdb"
	"github.com/joshrotenberg/redisctl/internal/task"
)

func init() { Register(&InitCluster{}) }

// EnvInitPassword supplies the bootstrap admin password when the password
// argument is absent.
const EnvInitPassword = "REDIS_ENTERPRISE_INIT_PASSWORD"

// bootstrapGrace is how long to let cluster services settle when
// create_cluster returns no action to wait on.
const bootstrapGrace = 10 * time.Second

var lookupEnv = os.LookupEnv

// InitCluster bootstraps a fresh cluster: create_cluster with admin
// credentials, wait for it to come up, then optionally create a default
// database and verify it answers a PING. Already-initialized clusters
// short-circuit successfully.
type InitCluster struct{}

func (*InitCluster) Name() string { return "init-cluster" }

func (*InitCluster) Platform() string { return PlatformEnterprise }

func (*InitCluster) Description() string {
	return "Bootstrap a fresh cluster and optionally create a verified default database"
}

type initClusterInput struct {
	name       string
	username   string
	password   string
	createDB   bool
	dbName     string
	dbMemoryMB int
}

func initClusterArgs(args Args) initClusterInput {
	in := initClusterInput{
		name:       args.StringOr("name", "cluster.local"),
		username:   args.StringOr("username", "admin@cluster.local"),
		password:   args.String("password"),
		createDB:   true,
		dbName:     args.StringOr("database-name", "default-db"),
		dbMemoryMB: args.Int("database-memory-mb", 100),
	}
	if _, ok := args["create-database"]; ok {
		in.createDB = args.Bool("create-database")
	}
	if in.password == "" {
		if v, ok := lookupEnv(EnvInitPassword); ok {
			in.password = v
		}
	}
	return in
}

func (w *InitCluster) Execute(ctx context.Context, wctx *Context, args Args) (*Result, error) {
	in := initClusterArgs(args)

	boot, err := wctx.Conn.EnterpriseBootstrap(ctx, wctx.Profile)
	if err != nil {
		return nil, err
	}
	state, err := bootstrapState(ctx, boot)
	if err != nil {
		return nil, err
	}
	if !needsBootstrap(state) {
		wctx.stepf("bootstrap state is %q, nothing to do", state)
		return &Result{
			Success: true,
			Message: fmt.Sprintf("cluster already initialized (bootstrap state %q)", state),
			Outputs: map[string]any{
				"cluster_name":     in.name,
				"username":         in.username,
				"database_created": false,
				"database_name":    "",
			},
		}, nil
	}
	if in.password == "" {
		return nil, errdefs.Credentialf("init-cluster needs an admin password; pass password or set %s", EnvInitPassword)
	}

	var (
		auth     *enterprise.Client
		bootResp map[string]any
		bdb      map[string]any
	)

	steps := []Step{
		{Name: "create cluster", Run: func(ctx context.Context) error {
			payload := map[string]any{
				"action":      "create_cluster",
				"cluster":     map[string]any{"name": in.name},
				"credentials": map[string]any{"username": in.username, "password": in.password},
			}
			raw, err := boot.Post(ctx, "/v1/bootstrap/create_cluster", payload)
			if err != nil {
				return err
			}
			_ = json.Unmarshal(raw, &bootResp)
			return nil
		}},
		{Name: "wait for cluster", Run: func(ctx context.Context) error {
			var err error
			if auth, err = wctx.Conn.EnterpriseWithCredentials(ctx, wctx.Profile, in.username, in.password); err != nil {
				return err
			}
			if uid := anyToString(bootResp["action_uid"]); uid != "" {
				if err := w.waitAction(ctx, wctx, auth, uid); err != nil {
					return err
				}
			} else {
				wctx.stepf("no action handle returned, letting services settle for %s", bootstrapGrace)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-wctx.clock().After(bootstrapGrace):
				}
			}
			// Confirms the just-created credentials actually work.
			_, err = auth.Get(ctx, "/v1/cluster")
			return err
		}},
	}

	if in.createDB {
		steps = append(steps,
			Step{Name: "create database", Run: func(ctx context.Context) error {
				payload := map[string]any{
					"name":        in.dbName,
					"memory_size": in.dbMemoryMB * 1024 * 1024,
					"type":        "redis",
				}
				raw, err := auth.Post(ctx, "/v1/bdbs", payload)
				if err != nil {
					return err
				}
				_ = json.Unmarshal(raw, &bdb)
				if uid := anyToString(bdb["action_uid"]); uid != "" {
					return w.waitAction(ctx, wctx, auth, uid)
				}
				return nil
			}},
			Step{Name: "verify database", Run: func(ctx context.Context) error {
				host := clusterHost(auth.BaseURL())
				port := intFromAny(bdb["port"], 12000)
				rdb := redisdb.New(redisdb.Config{Host: host, Port: port}, wctx.Log)
				defer rdb.Close()

				pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				defer cancel()
				pong, err := rdb.Ping(pingCtx)
				if err != nil {
					return fmt.Errorf("database did not answer on %s:%d: %w", host, port, err)
				}
				wctx.stepf("database answered %s on %s:%d", pong, host, port)
				return nil
			}},
		)
	}

	completed, err := runSteps(ctx, wctx, steps)
	if err != nil {
		return partialResult(completed, err), err
	}

	outputs := map[string]any{
		"cluster_name":     in.name,
		"username":         in.username,
		"database_created": in.createDB,
		"database_name":    "",
	}
	if in.createDB {
		outputs["database_name"] = in.dbName
		if uid := anyToString(bdb["uid"]); uid != "" {
			outputs["database_uid"] = uid
		}
	}
	return &Result{
		Success:        true,
		Message:        fmt.Sprintf("cluster %s initialized", in.name),
		Outputs:        outputs,
		StepsCompleted: completed,
	}, nil
}

func (w *InitCluster) waitAction(ctx context.Context, wctx *Context, client platform.RawAPI, uid string) error {
	waiter := task.NewWaiter(client, task.EnterpriseActions, task.WithClock(wctx.clock()))
	rec, err := waiter.Wait(ctx, uid, wctx.waitOptions())
	if err != nil {
		return err
	}
	if rec.State == task.StateFailure {
		return &errdefs.APIError{TaskID: rec.ID, Detail: rec.Err}
	}
	return nil
}

func bootstrapState(ctx context.Context, client platform.RawAPI) (string, error) {
	raw, err := client.Get(ctx, "/v1/bootstrap")
	if err != nil {
		return "", err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", nil
	}
	if bs, ok := doc["bootstrap_status"].(map[string]any); ok {
		if s, ok := bs["state"].(string); ok {
			return s, nil
		}
	}
	if s, ok := doc["state"].(string); ok {
		return s, nil
	}
	return "", nil
}

// needsBootstrap reports whether the cluster still accepts create_cluster.
// An unreadable state counts as fresh; an initialized cluster rejects the
// call anyway.
func needsBootstrap(state string) bool {
	switch strings.ToLower(state) {
	case "", "unconfigured", "new":
		return true
	}
	return false
}

func clusterHost(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return "localhost"
	}
	return u.Hostname()
}

func intFromAny(v any, def int) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return def
}
