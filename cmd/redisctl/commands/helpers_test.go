package commands

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

func TestNumericArgs(t *testing.T) {
	t.Parallel()
	check := numericArgs(1)
	cmd := &cobra.Command{Use: "x"}

	assert.NoError(t, check(cmd, []string{"42"}))

	err := check(cmd, []string{"forty-two"})
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitUsage, errdefs.ExitCode(err))

	err = check(cmd, []string{"1", "2"})
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitUsage, errdefs.ExitCode(err))
}

func TestWrapArgs_TagsUsage(t *testing.T) {
	t.Parallel()
	check := exactArgs(0)
	err := check(&cobra.Command{Use: "x"}, []string{"extra"})
	require.Error(t, err)
	assert.Equal(t, errdefs.ExitUsage, errdefs.ExitCode(err))
}

func TestAsyncFlags_Defaults(t *testing.T) {
	t.Parallel()
	var f asyncFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd, cloudInterval)

	wait := cmd.Flags().Lookup("wait")
	require.NotNil(t, wait)
	assert.Equal(t, "false", wait.DefValue)

	timeout := cmd.Flags().Lookup("wait-timeout")
	require.NotNil(t, timeout)
	assert.Equal(t, "300", timeout.DefValue)

	interval := cmd.Flags().Lookup("wait-interval")
	require.NotNil(t, interval)
	assert.Equal(t, "5", interval.DefValue)
}

func TestAsyncFlags_EnterpriseInterval(t *testing.T) {
	t.Parallel()
	var f asyncFlags
	cmd := &cobra.Command{Use: "x"}
	f.registerBudget(cmd, enterpriseInterval)

	// Budget-only registration has no --wait; waiting is implied.
	assert.Nil(t, cmd.Flags().Lookup("wait"))
	interval := cmd.Flags().Lookup("wait-interval")
	require.NotNil(t, interval)
	assert.Equal(t, "10", interval.DefValue)
}

func TestAsyncFlags_Options(t *testing.T) {
	t.Parallel()
	f := asyncFlags{wait: true, timeout: 60, interval: 2}
	opts := f.options()

	assert.True(t, opts.Wait)
	assert.Equal(t, 60*time.Second, opts.Timeout)
	assert.Equal(t, 2*time.Second, opts.Interval)
}

func TestCommandName(t *testing.T) {
	t.Parallel()
	root := &cobra.Command{Use: "redisctl"}
	parent := &cobra.Command{Use: "cloud"}
	leaf := &cobra.Command{Use: "list"}
	parent.AddCommand(leaf)
	root.AddCommand(parent)

	assert.Equal(t, "cloud list", commandName(leaf))
	assert.Equal(t, "redisctl", commandName(root))
}

func TestStaticPath(t *testing.T) {
	t.Parallel()
	p := staticPath("/subscriptions")
	assert.Equal(t, "/subscriptions", p(nil))
	assert.Equal(t, "/subscriptions", p([]string{"ignored"}))
}

func TestCloudWrite_DeleteHasNoDataFlag(t *testing.T) {
	t.Parallel()
	del := cloudWrite("delete <id>", "Delete", numericArgs(1), "DELETE", staticPath("/x"))
	assert.Nil(t, del.Flags().Lookup("data"))
	assert.NotNil(t, del.Flags().Lookup("wait"))

	create := cloudWrite("create", "Create", exactArgs(0), "POST", staticPath("/x"))
	assert.NotNil(t, create.Flags().Lookup("data"))
}
