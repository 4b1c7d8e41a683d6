package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/task"
	"github.com/joshrotenberg/redisctl/internal/workflow"
)

type stubFlow struct {
	name     string
	platform string
	result   *workflow.Result
	err      error
	gotArgs  workflow.Args
}

func (s *stubFlow) Name() string        { return s.name }
func (s *stubFlow) Platform() string    { return s.platform }
func (s *stubFlow) Description() string { return "test stub" }

func (s *stubFlow) Execute(ctx context.Context, wctx *workflow.Context, args workflow.Args) (*workflow.Result, error) {
	s.gotArgs = args
	return s.result, s.err
}

func TestWorkflowListCloud(t *testing.T) {
	t.Parallel()

	app, out, _ := testApp(t, nil)
	require.NoError(t, WorkflowList(app, workflow.PlatformCloud))
	assert.Contains(t, out.String(), "subscription-setup")
	assert.NotContains(t, out.String(), "init-cluster")
}

func TestWorkflowRunMergesArgs(t *testing.T) {
	t.Parallel()

	stub := &stubFlow{
		name:     "stub-merge",
		platform: workflow.PlatformCloud,
		result:   &workflow.Result{Success: true, Message: "done"},
	}
	workflow.Register(stub)

	app, out, _ := testApp(t, nil)
	err := WorkflowRun(context.Background(), app, workflow.PlatformCloud, "stub-merge",
		`{"a":1,"b":"from-data"}`, []string{"b=from-pair", "c=z"}, true, task.WaitOptions{})
	require.NoError(t, err)

	assert.Equal(t, json.Number("1"), stub.gotArgs["a"])
	assert.Equal(t, "from-pair", stub.gotArgs["b"])
	assert.Equal(t, "z", stub.gotArgs["c"])
	assert.Equal(t, true, stub.gotArgs["dry-run"])
	assert.Contains(t, out.String(), `"success": true`)
}

func TestWorkflowRunBadPair(t *testing.T) {
	t.Parallel()

	stub := &stubFlow{name: "stub-pair", platform: workflow.PlatformCloud}
	workflow.Register(stub)

	app, _, _ := testApp(t, nil)
	err := WorkflowRun(context.Background(), app, workflow.PlatformCloud, "stub-pair",
		"", []string{"not-a-pair"}, false, task.WaitOptions{})
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitUsage, errdefs.ExitCode(err))
}

func TestWorkflowRunUnknown(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)

	err := WorkflowRun(context.Background(), app, workflow.PlatformCloud, "no-such-flow",
		"", nil, false, task.WaitOptions{})
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitUsage, errdefs.ExitCode(err))

	// A workflow of the other platform is unknown under this subtree.
	err = WorkflowRun(context.Background(), app, workflow.PlatformCloud, "init-cluster",
		"", nil, false, task.WaitOptions{})
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitUsage, errdefs.ExitCode(err))
}

func TestWorkflowRunPartialFailureStillRenders(t *testing.T) {
	t.Parallel()

	stub := &stubFlow{
		name:     "stub-partial",
		platform: workflow.PlatformEnterprise,
		result: &workflow.Result{
			Message:        "step \"create database\" failed",
			StepsCompleted: []string{"bootstrap", "wait for cluster"},
		},
		err: errors.New(`step "create database" failed`),
	}
	workflow.Register(stub)

	app, out, _ := testApp(t, nil)
	err := WorkflowRun(context.Background(), app, workflow.PlatformEnterprise, "stub-partial",
		"", nil, false, task.WaitOptions{})
	require.Error(t, err)
	assert.Contains(t, out.String(), "wait for cluster")
}
