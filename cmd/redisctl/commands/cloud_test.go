package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findCommand walks a command tree by names.
func findCommand(t *testing.T, cmd *cobra.Command, names ...string) *cobra.Command {
	t.Helper()
	for _, name := range names {
		var next *cobra.Command
		for _, sub := range cmd.Commands() {
			if sub.Name() == name || sub.HasAlias(name) {
				next = sub
				break
			}
		}
		require.NotNil(t, next, "command %q not found under %q", name, cmd.Name())
		cmd = next
	}
	return cmd
}

func subcommandNames(cmd *cobra.Command) map[string]bool {
	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	return names
}

func TestCloud(t *testing.T) {
	cmd := Cloud()

	require.NotNil(t, cmd)
	assert.Equal(t, "cloud", cmd.Use)

	names := subcommandNames(cmd)
	for _, expected := range []string{
		"account",
		"subscription",
		"database",
		"user",
		"acl",
		"provider-account",
		"task",
		"connectivity",
		"fixed-subscription",
		"fixed-database",
		"workflow",
	} {
		assert.True(t, names[expected], "Expected subcommand %s not found", expected)
	}
}

func TestCloud_SubscriptionLeaves(t *testing.T) {
	sub := findCommand(t, Cloud(), "subscription")

	names := subcommandNames(sub)
	for _, expected := range []string{"list", "get", "create", "update", "delete"} {
		assert.True(t, names[expected], "Expected leaf %s not found", expected)
	}
}

func TestCloud_CreateFlags(t *testing.T) {
	create := findCommand(t, Cloud(), "subscription", "create")

	assert.NotNil(t, create.Flags().Lookup("data"))
	assert.NotNil(t, create.Flags().Lookup("wait"))
	assert.NotNil(t, create.Flags().Lookup("wait-timeout"))
	assert.NotNil(t, create.Flags().Lookup("wait-interval"))
}

func TestCloud_ListHasNoWriteFlags(t *testing.T) {
	list := findCommand(t, Cloud(), "subscription", "list")

	assert.Nil(t, list.Flags().Lookup("data"))
	assert.Nil(t, list.Flags().Lookup("wait"))
}

func TestCloud_DeleteHasNoDataFlag(t *testing.T) {
	del := findCommand(t, Cloud(), "database", "delete")

	assert.Nil(t, del.Flags().Lookup("data"))
	assert.NotNil(t, del.Flags().Lookup("wait"))
}

func TestCloud_TaskLeaves(t *testing.T) {
	task := findCommand(t, Cloud(), "task")

	names := subcommandNames(task)
	for _, expected := range []string{"list", "get", "wait"} {
		assert.True(t, names[expected], "Expected leaf %s not found", expected)
	}

	list := findCommand(t, task, "list")
	assert.NotNil(t, list.Flags().Lookup("status"))

	// wait always waits, so it has budget flags but no --wait toggle.
	wait := findCommand(t, task, "wait")
	assert.Nil(t, wait.Flags().Lookup("wait"))
	assert.NotNil(t, wait.Flags().Lookup("wait-timeout"))
}

func TestCloud_Connectivity(t *testing.T) {
	conn := findCommand(t, Cloud(), "connectivity")

	names := subcommandNames(conn)
	for _, expected := range []string{"vpc-peering", "psc", "tgw"} {
		assert.True(t, names[expected], "Expected subtree %s not found", expected)
	}
}
