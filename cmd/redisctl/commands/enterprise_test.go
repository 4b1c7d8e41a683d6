package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterprise(t *testing.T) {
	cmd := Enterprise()

	require.NotNil(t, cmd)
	assert.Equal(t, "enterprise", cmd.Use)

	names := subcommandNames(cmd)
	for _, expected := range []string{
		"cluster",
		"database",
		"node",
		"user",
		"role",
		"acl",
		"ldap",
		"crdb",
		"action",
		"bootstrap",
		"module",
		"alert",
		"stats",
		"support-package",
		"workflow",
	} {
		assert.True(t, names[expected], "Expected subcommand %s not found", expected)
	}
}

func TestEnterprise_DatabaseAlias(t *testing.T) {
	db := findCommand(t, Enterprise(), "database")
	assert.True(t, db.HasAlias("bdb"))

	names := subcommandNames(db)
	for _, expected := range []string{"list", "get", "create", "update", "delete", "import", "export"} {
		assert.True(t, names[expected], "Expected leaf %s not found", expected)
	}
}

func TestEnterprise_ClusterLeaves(t *testing.T) {
	cluster := findCommand(t, Enterprise(), "cluster")

	names := subcommandNames(cluster)
	for _, expected := range []string{"get", "update", "policy", "update-policy", "license", "update-license", "stats"} {
		assert.True(t, names[expected], "Expected leaf %s not found", expected)
	}
}

func TestEnterprise_Bootstrap(t *testing.T) {
	bootstrap := findCommand(t, Enterprise(), "bootstrap")

	names := subcommandNames(bootstrap)
	for _, expected := range []string{"status", "create-cluster", "join"} {
		assert.True(t, names[expected], "Expected leaf %s not found", expected)
	}

	create := findCommand(t, bootstrap, "create-cluster")
	assert.NotNil(t, create.Flags().Lookup("data"))
	// Bootstrap writes return no task; there is nothing to wait on.
	assert.Nil(t, create.Flags().Lookup("wait"))
}

func TestEnterprise_ModuleUpload(t *testing.T) {
	upload := findCommand(t, Enterprise(), "module", "upload")

	assert.Equal(t, "upload <file>", upload.Use)
	assert.NotNil(t, upload.Flags().Lookup("wait"))
	assert.Nil(t, upload.Flags().Lookup("data"))

	interval := upload.Flags().Lookup("wait-interval")
	require.NotNil(t, interval)
	assert.Equal(t, "10", interval.DefValue)
}

func TestEnterprise_SupportPackage(t *testing.T) {
	sp := findCommand(t, Enterprise(), "support-package")

	names := subcommandNames(sp)
	for _, expected := range []string{"cluster", "node", "database", "list", "upload"} {
		assert.True(t, names[expected], "Expected leaf %s not found", expected)
	}

	cluster := findCommand(t, sp, "cluster")
	for _, flag := range []string{"file", "force", "optimize", "max-log-lines"} {
		assert.NotNil(t, cluster.Flags().Lookup(flag), "Expected flag %s", flag)
	}

	maxLines := cluster.Flags().Lookup("max-log-lines")
	require.NotNil(t, maxLines)
	assert.Equal(t, "1000", maxLines.DefValue)

	node := findCommand(t, sp, "node")
	assert.NotNil(t, node.Flags().Lookup("each"))
}

func TestEnterprise_StatsLeaves(t *testing.T) {
	stats := findCommand(t, Enterprise(), "stats")

	names := subcommandNames(stats)
	for _, expected := range []string{"cluster", "node", "database", "shard"} {
		assert.True(t, names[expected], "Expected leaf %s not found", expected)
	}
}

func TestEnterprise_ActionCancel(t *testing.T) {
	cancel := findCommand(t, Enterprise(), "action", "cancel")

	// Cancel is a DELETE; no body, but the task flags ride along.
	assert.Nil(t, cancel.Flags().Lookup("data"))
}
