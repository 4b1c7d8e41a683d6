// Package workflow is the registry and runtime for composite operations:
// named procedures that chain several API calls into one command, report
// per-step progress, and surface which steps finished when a later one
// fails.
package workflow

import (
	"context"
	"sort"
	"sync"
)

// Platform names for Workflow.Platform. Each workflow drives exactly one
// control plane; the CLI lists and runs it under that subtree only.
const (
	PlatformCloud      = "cloud"
	PlatformEnterprise = "enterprise"
)

// Workflow is one registered composite operation.
type Workflow interface {
	// Name is the registry key and the CLI argument.
	Name() string
	// Platform is the control plane the workflow drives (PlatformCloud or
	// PlatformEnterprise).
	Platform() string
	// Description is the one-line summary shown by workflow list.
	Description() string
	// Execute runs the workflow. On partial failure it returns both the
	// result (carrying the steps that did finish) and the error.
	Execute(ctx context.Context, wctx *Context, args Args) (*Result, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Workflow{}
)

// Register adds a workflow under its name, replacing any previous entry.
func Register(w Workflow) {
	mu.Lock()
	defer mu.Unlock()
	registry[w.Name()] = w
}

// Get looks up a workflow by name.
func Get(name string) (Workflow, bool) {
	mu.RLock()
	defer mu.RUnlock()
	w, ok := registry[name]
	return w, ok
}

// Names lists the registered workflow names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForPlatform lists the registered workflows for one platform, sorted by
// name.
func ForPlatform(platform string) []Workflow {
	mu.RLock()
	defer mu.RUnlock()
	var out []Workflow
	for _, w := range registry {
		if w.Platform() == platform {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
