package commands

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/joshrotenberg/redisctl/cmd/redisctl/handlers"
)

// Cloud returns the Redis Cloud subtree.
func Cloud() *cobra.Command {
	cmd := group("cloud", "Work with Redis Cloud subscriptions and databases")
	cmd.AddCommand(cloudAccount())
	cmd.AddCommand(cloudSubscription())
	cmd.AddCommand(cloudDatabase())
	cmd.AddCommand(cloudUser())
	cmd.AddCommand(cloudACL())
	cmd.AddCommand(cloudProviderAccount())
	cmd.AddCommand(cloudTask())
	cmd.AddCommand(cloudConnectivity())
	cmd.AddCommand(cloudFixedSubscription())
	cmd.AddCommand(cloudFixedDatabase())
	cmd.AddCommand(cloudWorkflow())
	return cmd
}

func cloudAccount() *cobra.Command {
	cmd := group("account", "Inspect the Cloud account")
	cmd.AddCommand(cloudGet("get", "Show the current account", exactArgs(0), staticPath("/")))
	return cmd
}

func cloudSubscription() *cobra.Command {
	cmd := group("subscription", "Manage subscriptions")
	cmd.AddCommand(cloudGet("list", "List subscriptions", exactArgs(0), staticPath("/subscriptions")))
	cmd.AddCommand(cloudGet("get <id>", "Show a subscription", numericArgs(1), func(a []string) string {
		return "/subscriptions/" + a[0]
	}))
	cmd.AddCommand(cloudWrite("create", "Create a subscription", exactArgs(0), http.MethodPost, staticPath("/subscriptions")))
	cmd.AddCommand(cloudWrite("update <id>", "Update a subscription", numericArgs(1), http.MethodPut, func(a []string) string {
		return "/subscriptions/" + a[0]
	}))
	cmd.AddCommand(cloudWrite("delete <id>", "Delete a subscription", numericArgs(1), http.MethodDelete, func(a []string) string {
		return "/subscriptions/" + a[0]
	}))
	return cmd
}

func cloudDatabase() *cobra.Command {
	cmd := group("database", "Manage databases inside a subscription")
	cmd.AddCommand(cloudGet("list <subscription>", "List a subscription's databases", numericArgs(1), func(a []string) string {
		return "/subscriptions/" + a[0] + "/databases"
	}))
	cmd.AddCommand(cloudGet("get <subscription> <database>", "Show a database", numericArgs(2), func(a []string) string {
		return "/subscriptions/" + a[0] + "/databases/" + a[1]
	}))
	cmd.AddCommand(cloudWrite("create <subscription>", "Create a database", numericArgs(1), http.MethodPost, func(a []string) string {
		return "/subscriptions/" + a[0] + "/databases"
	}))
	cmd.AddCommand(cloudWrite("update <subscription> <database>", "Update a database", numericArgs(2), http.MethodPut, func(a []string) string {
		return "/subscriptions/" + a[0] + "/databases/" + a[1]
	}))
	cmd.AddCommand(cloudWrite("delete <subscription> <database>", "Delete a database", numericArgs(2), http.MethodDelete, func(a []string) string {
		return "/subscriptions/" + a[0] + "/databases/" + a[1]
	}))
	return cmd
}

func cloudUser() *cobra.Command {
	cmd := group("user", "Manage account users")
	cmd.AddCommand(cloudGet("list", "List users", exactArgs(0), staticPath("/users")))
	cmd.AddCommand(cloudGet("get <id>", "Show a user", numericArgs(1), func(a []string) string {
		return "/users/" + a[0]
	}))
	cmd.AddCommand(cloudWrite("delete <id>", "Delete a user", numericArgs(1), http.MethodDelete, func(a []string) string {
		return "/users/" + a[0]
	}))
	return cmd
}

func cloudACL() *cobra.Command {
	cmd := group("acl", "Inspect access control lists")
	cmd.AddCommand(cloudGet("list-rules", "List Redis ACL rules", exactArgs(0), staticPath("/acl/redisRules")))
	cmd.AddCommand(cloudGet("list-roles", "List ACL roles", exactArgs(0), staticPath("/acl/roles")))
	cmd.AddCommand(cloudGet("list-users", "List ACL users", exactArgs(0), staticPath("/acl/users")))
	cmd.AddCommand(cloudGet("get-user <id>", "Show an ACL user", numericArgs(1), func(a []string) string {
		return "/acl/users/" + a[0]
	}))
	return cmd
}

func cloudProviderAccount() *cobra.Command {
	cmd := group("provider-account", "Manage bring-your-own cloud provider accounts")
	cmd.AddCommand(cloudGet("list", "List provider accounts", exactArgs(0), staticPath("/cloud-accounts")))
	cmd.AddCommand(cloudGet("get <id>", "Show a provider account", numericArgs(1), func(a []string) string {
		return "/cloud-accounts/" + a[0]
	}))
	cmd.AddCommand(cloudWrite("create", "Register a provider account", exactArgs(0), http.MethodPost, staticPath("/cloud-accounts")))
	cmd.AddCommand(cloudWrite("delete <id>", "Delete a provider account", numericArgs(1), http.MethodDelete, func(a []string) string {
		return "/cloud-accounts/" + a[0]
	}))
	return cmd
}

func cloudTask() *cobra.Command {
	cmd := group("task", "Follow asynchronous tasks")

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent tasks",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.CloudTaskList(cmd.Context(), a, status)
		},
	}
	list.Flags().StringVar(&status, "status", "", "Keep only tasks with this status")

	var async asyncFlags
	wait := &cobra.Command{
		Use:   "wait <id>",
		Short: "Wait for a task to finish",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			waitOpts := async.options()
			waitOpts.Wait = true
			return handlers.CloudTaskWait(cmd.Context(), a, args[0], waitOpts)
		},
	}
	async.registerBudget(wait, cloudInterval)

	cmd.AddCommand(list)
	cmd.AddCommand(cloudGet("get <id>", "Show a task", exactArgs(1), func(a []string) string {
		return "/tasks/" + a[0]
	}))
	cmd.AddCommand(wait)
	return cmd
}

func cloudConnectivity() *cobra.Command {
	cmd := group("connectivity", "Manage private connectivity into subscriptions")
	cmd.AddCommand(cloudVPCPeering())
	cmd.AddCommand(cloudPSC())
	cmd.AddCommand(cloudTGW())
	return cmd
}

func cloudVPCPeering() *cobra.Command {
	cmd := group("vpc-peering", "Manage VPC peerings")
	cmd.AddCommand(cloudGet("list <subscription>", "List a subscription's peerings", numericArgs(1), func(a []string) string {
		return "/subscriptions/" + a[0] + "/peerings"
	}))
	cmd.AddCommand(cloudWrite("create <subscription>", "Create a peering", numericArgs(1), http.MethodPost, func(a []string) string {
		return "/subscriptions/" + a[0] + "/peerings"
	}))
	cmd.AddCommand(cloudWrite("delete <subscription> <peering>", "Delete a peering", numericArgs(2), http.MethodDelete, func(a []string) string {
		return "/subscriptions/" + a[0] + "/peerings/" + a[1]
	}))
	return cmd
}

func cloudPSC() *cobra.Command {
	cmd := group("psc", "Manage Private Service Connect")
	cmd.AddCommand(cloudGet("get <subscription>", "Show the PSC service", numericArgs(1), func(a []string) string {
		return "/subscriptions/" + a[0] + "/private-service-connect"
	}))
	cmd.AddCommand(cloudWrite("create <subscription>", "Create the PSC service", numericArgs(1), http.MethodPost, func(a []string) string {
		return "/subscriptions/" + a[0] + "/private-service-connect"
	}))
	cmd.AddCommand(cloudWrite("delete <subscription>", "Delete the PSC service", numericArgs(1), http.MethodDelete, func(a []string) string {
		return "/subscriptions/" + a[0] + "/private-service-connect"
	}))
	return cmd
}

func cloudTGW() *cobra.Command {
	cmd := group("tgw", "Manage AWS Transit Gateway attachments")
	cmd.AddCommand(cloudGet("list <subscription>", "List transit gateways", numericArgs(1), func(a []string) string {
		return "/subscriptions/" + a[0] + "/transitGateways"
	}))
	cmd.AddCommand(cloudWrite("attach <subscription> <tgw>", "Attach a transit gateway", numericArgs(2), http.MethodPost, func(a []string) string {
		return "/subscriptions/" + a[0] + "/transitGateways/" + a[1] + "/attachment"
	}))
	cmd.AddCommand(cloudWrite("detach <subscription> <tgw>", "Detach a transit gateway", numericArgs(2), http.MethodDelete, func(a []string) string {
		return "/subscriptions/" + a[0] + "/transitGateways/" + a[1] + "/attachment"
	}))
	return cmd
}

func cloudFixedSubscription() *cobra.Command {
	cmd := group("fixed-subscription", "Manage fixed (Essentials) subscriptions")
	cmd.AddCommand(cloudGet("list", "List fixed subscriptions", exactArgs(0), staticPath("/fixed/subscriptions")))
	cmd.AddCommand(cloudGet("get <id>", "Show a fixed subscription", numericArgs(1), func(a []string) string {
		return "/fixed/subscriptions/" + a[0]
	}))
	cmd.AddCommand(cloudGet("plans", "List available fixed plans", exactArgs(0), staticPath("/fixed/plans")))
	return cmd
}

func cloudFixedDatabase() *cobra.Command {
	cmd := group("fixed-database", "Inspect databases in fixed subscriptions")
	cmd.AddCommand(cloudGet("list <subscription>", "List a fixed subscription's databases", numericArgs(1), func(a []string) string {
		return "/fixed/subscriptions/" + a[0] + "/databases"
	}))
	cmd.AddCommand(cloudGet("get <subscription> <database>", "Show a fixed database", numericArgs(2), func(a []string) string {
		return "/fixed/subscriptions/" + a[0] + "/databases/" + a[1]
	}))
	return cmd
}
