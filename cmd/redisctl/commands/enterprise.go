package commands

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/joshrotenberg/redisctl/cmd/redisctl/handlers"
	"github.com/joshrotenberg/redisctl/internal/support"
)

// Enterprise returns the Redis Enterprise subtree.
func Enterprise() *cobra.Command {
	cmd := group("enterprise", "Work with self-managed Redis Enterprise clusters")
	cmd.AddCommand(enterpriseCluster())
	cmd.AddCommand(enterpriseDatabase())
	cmd.AddCommand(enterpriseNode())
	cmd.AddCommand(enterpriseUser())
	cmd.AddCommand(enterpriseRole())
	cmd.AddCommand(enterpriseACL())
	cmd.AddCommand(enterpriseLDAP())
	cmd.AddCommand(enterpriseCRDB())
	cmd.AddCommand(enterpriseAction())
	cmd.AddCommand(enterpriseBootstrap())
	cmd.AddCommand(enterpriseModule())
	cmd.AddCommand(enterpriseAlert())
	cmd.AddCommand(enterpriseStats())
	cmd.AddCommand(enterpriseSupportPackage())
	cmd.AddCommand(enterpriseWorkflow())
	return cmd
}

func enterpriseCluster() *cobra.Command {
	cmd := group("cluster", "Inspect and tune the cluster")
	cmd.AddCommand(enterpriseGet("get", "Show cluster settings", exactArgs(0), staticPath("/v1/cluster")))
	cmd.AddCommand(enterpriseWrite("update", "Update cluster settings", exactArgs(0), http.MethodPut, staticPath("/v1/cluster")))
	cmd.AddCommand(enterpriseGet("policy", "Show cluster policy", exactArgs(0), staticPath("/v1/cluster/policy")))
	cmd.AddCommand(enterpriseWrite("update-policy", "Update cluster policy", exactArgs(0), http.MethodPut, staticPath("/v1/cluster/policy")))
	cmd.AddCommand(enterpriseGet("license", "Show the installed license", exactArgs(0), staticPath("/v1/license")))
	cmd.AddCommand(enterpriseWrite("update-license", "Install a license", exactArgs(0), http.MethodPut, staticPath("/v1/license")))
	cmd.AddCommand(enterpriseGet("stats", "Show last cluster stats sample", exactArgs(0), staticPath("/v1/cluster/stats/last")))
	return cmd
}

func enterpriseDatabase() *cobra.Command {
	cmd := group("database", "Manage databases (bdbs)")
	cmd.Aliases = []string{"bdb"}
	cmd.AddCommand(enterpriseGet("list", "List databases", exactArgs(0), staticPath("/v1/bdbs")))
	cmd.AddCommand(enterpriseGet("get <uid>", "Show a database", numericArgs(1), func(a []string) string {
		return "/v1/bdbs/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("create", "Create a database", exactArgs(0), http.MethodPost, staticPath("/v1/bdbs")))
	cmd.AddCommand(enterpriseWrite("update <uid>", "Update a database", numericArgs(1), http.MethodPut, func(a []string) string {
		return "/v1/bdbs/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("delete <uid>", "Delete a database", numericArgs(1), http.MethodDelete, func(a []string) string {
		return "/v1/bdbs/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("import <uid>", "Start an import into a database", numericArgs(1), http.MethodPost, func(a []string) string {
		return "/v1/bdbs/" + a[0] + "/actions/import"
	}))
	cmd.AddCommand(enterpriseWrite("export <uid>", "Start an export from a database", numericArgs(1), http.MethodPost, func(a []string) string {
		return "/v1/bdbs/" + a[0] + "/actions/export"
	}))
	return cmd
}

func enterpriseNode() *cobra.Command {
	cmd := group("node", "Inspect and operate cluster nodes")
	cmd.AddCommand(enterpriseGet("list", "List nodes", exactArgs(0), staticPath("/v1/nodes")))
	cmd.AddCommand(enterpriseGet("get <uid>", "Show a node", numericArgs(1), func(a []string) string {
		return "/v1/nodes/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("action <uid> <action>", "Trigger a node action (restart, check, ...)", rangeArgs(2, 2), http.MethodPost, func(a []string) string {
		return "/v1/nodes/" + a[0] + "/actions/" + a[1]
	}))
	return cmd
}

func enterpriseUser() *cobra.Command {
	cmd := group("user", "Manage cluster users")
	cmd.AddCommand(enterpriseGet("list", "List users", exactArgs(0), staticPath("/v1/users")))
	cmd.AddCommand(enterpriseGet("get <uid>", "Show a user", numericArgs(1), func(a []string) string {
		return "/v1/users/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("create", "Create a user", exactArgs(0), http.MethodPost, staticPath("/v1/users")))
	cmd.AddCommand(enterpriseWrite("update <uid>", "Update a user", numericArgs(1), http.MethodPut, func(a []string) string {
		return "/v1/users/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("delete <uid>", "Delete a user", numericArgs(1), http.MethodDelete, func(a []string) string {
		return "/v1/users/" + a[0]
	}))
	return cmd
}

func enterpriseRole() *cobra.Command {
	cmd := group("role", "Manage roles")
	cmd.AddCommand(enterpriseGet("list", "List roles", exactArgs(0), staticPath("/v1/roles")))
	cmd.AddCommand(enterpriseGet("get <uid>", "Show a role", numericArgs(1), func(a []string) string {
		return "/v1/roles/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("create", "Create a role", exactArgs(0), http.MethodPost, staticPath("/v1/roles")))
	cmd.AddCommand(enterpriseWrite("update <uid>", "Update a role", numericArgs(1), http.MethodPut, func(a []string) string {
		return "/v1/roles/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("delete <uid>", "Delete a role", numericArgs(1), http.MethodDelete, func(a []string) string {
		return "/v1/roles/" + a[0]
	}))
	return cmd
}

func enterpriseACL() *cobra.Command {
	cmd := group("acl", "Manage Redis ACLs")
	cmd.AddCommand(enterpriseGet("list", "List ACLs", exactArgs(0), staticPath("/v1/redis_acls")))
	cmd.AddCommand(enterpriseGet("get <uid>", "Show an ACL", numericArgs(1), func(a []string) string {
		return "/v1/redis_acls/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("create", "Create an ACL", exactArgs(0), http.MethodPost, staticPath("/v1/redis_acls")))
	cmd.AddCommand(enterpriseWrite("update <uid>", "Update an ACL", numericArgs(1), http.MethodPut, func(a []string) string {
		return "/v1/redis_acls/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("delete <uid>", "Delete an ACL", numericArgs(1), http.MethodDelete, func(a []string) string {
		return "/v1/redis_acls/" + a[0]
	}))
	return cmd
}

func enterpriseLDAP() *cobra.Command {
	cmd := group("ldap", "Manage LDAP integration")
	cmd.AddCommand(enterpriseGet("get", "Show LDAP configuration", exactArgs(0), staticPath("/v1/cluster/ldap")))
	cmd.AddCommand(enterpriseWrite("update", "Update LDAP configuration", exactArgs(0), http.MethodPut, staticPath("/v1/cluster/ldap")))
	cmd.AddCommand(enterpriseWrite("delete", "Remove LDAP configuration", exactArgs(0), http.MethodDelete, staticPath("/v1/cluster/ldap")))
	return cmd
}

func enterpriseCRDB() *cobra.Command {
	cmd := group("crdb", "Manage Active-Active databases")
	cmd.AddCommand(enterpriseGet("list", "List Active-Active databases", exactArgs(0), staticPath("/v1/crdbs")))
	cmd.AddCommand(enterpriseGet("get <guid>", "Show an Active-Active database", exactArgs(1), func(a []string) string {
		return "/v1/crdbs/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("create", "Create an Active-Active database", exactArgs(0), http.MethodPost, staticPath("/v1/crdbs")))
	cmd.AddCommand(enterpriseWrite("update <guid>", "Update an Active-Active database", exactArgs(1), http.MethodPut, func(a []string) string {
		return "/v1/crdbs/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("delete <guid>", "Delete an Active-Active database", exactArgs(1), http.MethodDelete, func(a []string) string {
		return "/v1/crdbs/" + a[0]
	}))
	cmd.AddCommand(enterpriseGet("tasks [id]", "List Active-Active coordination tasks", rangeArgs(0, 1), func(a []string) string {
		if len(a) == 1 {
			return "/v1/crdb_tasks/" + a[0]
		}
		return "/v1/crdb_tasks"
	}))
	return cmd
}

func enterpriseAction() *cobra.Command {
	cmd := group("action", "Follow asynchronous actions")
	cmd.AddCommand(enterpriseGet("list", "List running and recent actions", exactArgs(0), staticPath("/v1/actions")))
	cmd.AddCommand(enterpriseGet("get <uid>", "Show an action", exactArgs(1), func(a []string) string {
		return "/v1/actions/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("cancel <uid>", "Cancel an action", exactArgs(1), http.MethodDelete, func(a []string) string {
		return "/v1/actions/" + a[0]
	}))
	return cmd
}

func enterpriseBootstrap() *cobra.Command {
	cmd := group("bootstrap", "Bootstrap a fresh cluster")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show bootstrap progress",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.BootstrapStatus(cmd.Context(), a)
		},
	}

	bootstrapWrite := func(use, short, path string) *cobra.Command {
		var data string
		c := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := app(cmd)
				if err != nil {
					return err
				}
				return handlers.BootstrapWrite(cmd.Context(), a, commandName(cmd), path, data)
			},
		}
		addDataFlag(c, &data)
		return c
	}

	cmd.AddCommand(status)
	cmd.AddCommand(bootstrapWrite("create-cluster", "Create a one-node cluster", "/v1/bootstrap/create_cluster"))
	cmd.AddCommand(bootstrapWrite("join", "Join this node to an existing cluster", "/v1/bootstrap/join_cluster"))
	return cmd
}

func enterpriseModule() *cobra.Command {
	cmd := group("module", "Manage Redis modules")
	cmd.AddCommand(enterpriseGet("list", "List installed modules", exactArgs(0), staticPath("/v1/modules")))
	cmd.AddCommand(enterpriseGet("get <uid>", "Show a module", exactArgs(1), func(a []string) string {
		return "/v1/modules/" + a[0]
	}))
	cmd.AddCommand(enterpriseWrite("delete <uid>", "Delete a module", exactArgs(1), http.MethodDelete, func(a []string) string {
		return "/v1/modules/" + a[0]
	}))

	var async asyncFlags
	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a module package",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.ModuleUpload(cmd.Context(), a, args[0], async.options())
		},
	}
	async.register(upload, enterpriseInterval)
	cmd.AddCommand(upload)
	return cmd
}

func enterpriseAlert() *cobra.Command {
	cmd := group("alert", "Inspect alerts")
	cmd.AddCommand(enterpriseGet("list", "List cluster alerts", exactArgs(0), staticPath("/v1/cluster/alerts")))
	cmd.AddCommand(enterpriseGet("get <alert>", "Show one cluster alert", exactArgs(1), func(a []string) string {
		return "/v1/cluster/alerts/" + a[0]
	}))
	cmd.AddCommand(enterpriseGet("settings", "Show alert settings", exactArgs(0), staticPath("/v1/cluster/alert_settings")))
	cmd.AddCommand(enterpriseWrite("update-settings", "Update alert settings", exactArgs(0), http.MethodPut, staticPath("/v1/cluster/alert_settings")))
	cmd.AddCommand(enterpriseGet("node [uid]", "List node alerts, or one node's", rangeArgs(0, 1), func(a []string) string {
		if len(a) == 1 {
			return "/v1/nodes/alerts/" + a[0]
		}
		return "/v1/nodes/alerts"
	}))
	cmd.AddCommand(enterpriseGet("database [uid]", "List database alerts, or one database's", rangeArgs(0, 1), func(a []string) string {
		if len(a) == 1 {
			return "/v1/bdbs/alerts/" + a[0]
		}
		return "/v1/bdbs/alerts"
	}))
	return cmd
}

func enterpriseStats() *cobra.Command {
	cmd := group("stats", "Read last-interval statistics")
	cmd.AddCommand(enterpriseGet("cluster", "Cluster-wide stats", exactArgs(0), staticPath("/v1/cluster/stats/last")))
	cmd.AddCommand(enterpriseGet("node <uid>", "One node's stats", numericArgs(1), func(a []string) string {
		return "/v1/nodes/stats/last/" + a[0]
	}))
	cmd.AddCommand(enterpriseGet("database <uid>", "One database's stats", numericArgs(1), func(a []string) string {
		return "/v1/bdbs/stats/last/" + a[0]
	}))
	cmd.AddCommand(enterpriseGet("shard <uid>", "One shard's stats", numericArgs(1), func(a []string) string {
		return "/v1/shards/stats/last/" + a[0]
	}))
	return cmd
}

func enterpriseSupportPackage() *cobra.Command {
	cmd := group("support-package", "Collect debuginfo bundles")

	var opts handlers.SupportOptions
	addDownloadFlags := func(c *cobra.Command) *cobra.Command {
		c.Flags().StringVar(&opts.File, "file", "", "Destination path (default: timestamped name in the working directory)")
		c.Flags().BoolVar(&opts.Force, "force", false, "Overwrite the destination without asking")
		c.Flags().BoolVar(&opts.Optimize, "optimize", false, "Shrink the archive: truncate logs, drop nested archives")
		c.Flags().IntVar(&opts.MaxLogLines, "max-log-lines", support.DefaultMaxLogLines, "Lines kept per log file with --optimize")
		return c
	}

	cluster := addDownloadFlags(&cobra.Command{
		Use:   "cluster",
		Short: "Download the cluster-wide bundle",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.SupportDownload(cmd.Context(), a, support.ClusterScope(), opts)
		},
	})

	var each bool
	node := addDownloadFlags(&cobra.Command{
		Use:   "node [uid]",
		Short: "Download node bundles: one node's, or all nodes combined",
		Long: `Download node debuginfo.

With a uid, downloads that node's bundle. Without one, downloads the
combined all-nodes bundle; add --each for a separate file per node
(--file then names the destination directory).`,
		Args: rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return handlers.SupportDownload(cmd.Context(), a, support.NodeScope(args[0]), opts)
			}
			if each {
				return handlers.SupportDownloadAllNodes(cmd.Context(), a, opts)
			}
			return handlers.SupportDownload(cmd.Context(), a, support.AllNodesScope(), opts)
		},
	})
	node.Flags().BoolVar(&each, "each", false, "One bundle file per node (--file is the directory)")

	database := addDownloadFlags(&cobra.Command{
		Use:   "database <uid>",
		Short: "Download one database's bundle",
		Args:  numericArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.SupportDownload(cmd.Context(), a, support.DatabaseScope(args[0]), opts)
		},
	})

	list := &cobra.Command{
		Use:   "list",
		Short: "List bundle scopes and their endpoints",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.SupportList(a)
		},
	}

	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a bundle to Redis support",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.SupportUpload(cmd.Context(), a, args[0], "")
		},
	}

	cmd.AddCommand(cluster)
	cmd.AddCommand(node)
	cmd.AddCommand(database)
	cmd.AddCommand(list)
	cmd.AddCommand(upload)
	return cmd
}
