// Package platform holds the transport layer shared by the Cloud and
// Enterprise REST clients: the raw call surface handlers program against and
// the policy-governed resty executor behind it.
package platform

import (
	"context"
	"encoding/json"
)

// RawAPI is the minimal surface a platform client exposes. Paths are relative
// to the client's base URL and are passed through untouched, so `api get
// /subscriptions/42` hits exactly that endpoint. Responses come back as raw
// JSON for the output pipeline to project and render.
type RawAPI interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Put(ctx context.Context, path string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, path string) (json.RawMessage, error)

	// GetBytes fetches a binary payload (support bundles, cost reports)
	// without JSON handling.
	GetBytes(ctx context.Context, path string) ([]byte, error)
}
