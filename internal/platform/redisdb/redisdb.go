// Package redisdb is the direct data-plane adapter: given a database profile
// it connects to the Redis instance itself (not a management API) and exposes
// the introspection helpers the CLI surfaces.
package redisdb

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

const (
	// DefaultPort is plain Redis; Enterprise-hosted endpoints usually
	// override it per database.
	DefaultPort = 6379

	// scanBatchSize is the COUNT hint per SCAN round trip.
	scanBatchSize = 100
)

// Config carries resolved connection parameters for one database.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
	DB       int
}

// Client wraps a single go-redis connection.
type Client struct {
	rdb *redis.Client
	log logr.Logger
}

// New connects to the database described by cfg. The connection is lazy;
// Ping is the first round trip.
func New(cfg Config, log logr.Logger) *Client {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	opts := &redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return &Client{rdb: redis.NewClient(opts), log: log}
}

// NewFromClient wraps an existing go-redis client (tests).
func NewFromClient(rdb *redis.Client, log logr.Logger) *Client {
	return &Client{rdb: rdb, log: log}
}

// Close releases the connection pool.
func (c *Client) Close() error { return c.rdb.Close() }

// Ping checks liveness and returns the server's reply (normally PONG).
func (c *Client) Ping(ctx context.Context) (string, error) {
	out, err := c.rdb.Ping(ctx).Result()
	if err != nil {
		return "", errdefs.Transport(fmt.Errorf("ping: %w", err))
	}
	return out, nil
}

// Info returns the INFO text for the given sections (all when empty).
func (c *Client) Info(ctx context.Context, sections ...string) (string, error) {
	out, err := c.rdb.Info(ctx, sections...).Result()
	if err != nil {
		return "", fmt.Errorf("info: %w", err)
	}
	return out, nil
}

// DBSize returns the key count of the selected database.
func (c *Client) DBSize(ctx context.Context) (int64, error) {
	n, err := c.rdb.DBSize(ctx).Result()
	if err != nil {
		return 0, fmt.Errorf("dbsize: %w", err)
	}
	return n, nil
}

// Scan collects keys matching pattern, looping SCAN in fixed-size batches
// until the cursor wraps to zero or limit keys are gathered. limit <= 0
// means unbounded.
func (c *Client) Scan(ctx context.Context, pattern string, limit int) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.rdb.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("scan %q: %w", pattern, err)
		}
		keys = append(keys, batch...)
		if limit > 0 && len(keys) >= limit {
			return keys[:limit], nil
		}
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// KeyInfo is the shape `database key-info` renders.
type KeyInfo struct {
	Key  string `json:"key"`
	Type string `json:"type"`
	// TTLSeconds is -1 for keys without expiry.
	TTLSeconds int64 `json:"ttl_seconds"`
}

// KeyInfo introspects one key's type and TTL.
func (c *Client) KeyInfo(ctx context.Context, key string) (KeyInfo, error) {
	typ, err := c.rdb.Type(ctx, key).Result()
	if err != nil {
		return KeyInfo{}, fmt.Errorf("type %q: %w", key, err)
	}
	if typ == "none" {
		return KeyInfo{}, errdefs.Validationf("key %q does not exist", key)
	}
	ttl, err := c.rdb.TTL(ctx, key).Result()
	if err != nil {
		return KeyInfo{}, fmt.Errorf("ttl %q: %w", key, err)
	}
	info := KeyInfo{Key: key, Type: typ, TTLSeconds: -1}
	if ttl > 0 {
		info.TTLSeconds = int64(ttl.Seconds())
	}
	return info, nil
}

// Value fetches a key's content as JSON-encodable data, dispatching on the
// key's type. Binary-unsafe strings come back in the base64 envelope.
func (c *Client) Value(ctx context.Context, key string) (any, error) {
	typ, err := c.rdb.Type(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", key, err)
	}
	switch typ {
	case "none":
		return nil, errdefs.Validationf("key %q does not exist", key)
	case "string":
		v, err := c.rdb.Get(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("get %q: %w", key, err)
		}
		return EncodeValue(v), nil
	case "list":
		items, err := c.rdb.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("lrange %q: %w", key, err)
		}
		return encodeStrings(items), nil
	case "hash":
		m, err := c.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("hgetall %q: %w", key, err)
		}
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = EncodeValue(v)
		}
		return out, nil
	case "set":
		members, err := c.rdb.SMembers(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("smembers %q: %w", key, err)
		}
		return encodeStrings(members), nil
	case "zset":
		zs, err := c.rdb.ZRangeWithScores(ctx, key, 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("zrange %q: %w", key, err)
		}
		out := make([]any, 0, len(zs))
		for _, z := range zs {
			out = append(out, map[string]any{
				"member": EncodeValue(fmt.Sprint(z.Member)),
				"score":  z.Score,
			})
		}
		return out, nil
	default:
		// Streams and module types have no generic fetch; report the type
		// so the user can reach for a specific tool.
		return map[string]any{"type": typ}, nil
	}
}

// SlowLogEntry is one SLOWLOG GET record.
type SlowLogEntry struct {
	ID         int64    `json:"id"`
	Timestamp  int64    `json:"timestamp"`
	DurationUS int64    `json:"duration_us"`
	Args       []string `json:"args"`
	ClientAddr string   `json:"client_addr,omitempty"`
	ClientName string   `json:"client_name,omitempty"`
}

// SlowLog returns the most recent n slow-log entries.
func (c *Client) SlowLog(ctx context.Context, n int64) ([]SlowLogEntry, error) {
	logs, err := c.rdb.SlowLogGet(ctx, n).Result()
	if err != nil {
		return nil, fmt.Errorf("slowlog: %w", err)
	}
	out := make([]SlowLogEntry, 0, len(logs))
	for _, l := range logs {
		out = append(out, SlowLogEntry{
			ID:         l.ID,
			Timestamp:  l.Time.Unix(),
			DurationUS: l.Duration.Microseconds(),
			Args:       l.Args,
			ClientAddr: l.ClientAddr,
			ClientName: l.ClientName,
		})
	}
	return out, nil
}

// ModuleList returns the loaded-modules report (JSON-encodable).
func (c *Client) ModuleList(ctx context.Context) (any, error) {
	v, err := c.rdb.Do(ctx, "MODULE", "LIST").Result()
	if err != nil {
		return nil, fmt.Errorf("module list: %w", err)
	}
	return EncodeValue(v), nil
}

// Do runs an arbitrary command and returns the JSON-encodable reply.
func (c *Client) Do(ctx context.Context, args ...any) (any, error) {
	v, err := c.rdb.Do(ctx, args...).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("%v: %w", args[0], err)
	}
	return EncodeValue(v), nil
}

// ConfigGet fetches server parameters matching pattern.
func (c *Client) ConfigGet(ctx context.Context, pattern string) (map[string]string, error) {
	params, err := c.rdb.ConfigGet(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("config get %q: %w", pattern, err)
	}
	return params, nil
}

// ClientList reports the server's connections, one field map per client.
func (c *Client) ClientList(ctx context.Context) ([]map[string]string, error) {
	raw, err := c.rdb.ClientList(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("client list: %w", err)
	}
	return parseClientList(raw), nil
}

// parseClientList splits the CLIENT LIST reply, one id=... addr=... line per
// client, into field maps.
func parseClientList(raw string) []map[string]string {
	var out []map[string]string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := make(map[string]string)
		for _, f := range strings.Fields(line) {
			k, v, _ := strings.Cut(f, "=")
			fields[k] = v
		}
		out = append(out, fields)
	}
	return out
}
