package commands

import (
	"github.com/spf13/cobra"

	"github.com/joshrotenberg/redisctl/cmd/redisctl/handlers"
)

// Database returns the direct data-plane subtree. It works on database
// profiles: a thin convenience for liveness and key introspection, not a
// redis-cli replacement.
func Database() *cobra.Command {
	cmd := group("database", "Inspect a database over a direct connection")

	cmd.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Check liveness",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.DatabasePing(cmd.Context(), a)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "info [section]",
		Short: "Print the server INFO report",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			section := ""
			if len(args) == 1 {
				section = args[0]
			}
			return handlers.DatabaseInfo(cmd.Context(), a, section)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "size",
		Short: "Count keys in the selected database",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.DatabaseSize(cmd.Context(), a)
		},
	})

	var limit int
	scan := &cobra.Command{
		Use:   "scan <pattern>",
		Short: "List keys matching a pattern",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.DatabaseScan(cmd.Context(), a, args[0], limit)
		},
	}
	scan.Flags().IntVar(&limit, "limit", 100, "Stop after this many keys (0 for all)")
	cmd.AddCommand(scan)

	cmd.AddCommand(&cobra.Command{
		Use:   "key <key>",
		Short: "Show one key's type, TTL, and value",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.DatabaseKey(cmd.Context(), a, args[0])
		},
	})

	var count int
	slowlog := &cobra.Command{
		Use:   "slowlog",
		Short: "Show recent slow-log entries",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.DatabaseSlowLog(cmd.Context(), a, count)
		},
	}
	slowlog.Flags().IntVar(&count, "count", 10, "Entries to fetch")
	cmd.AddCommand(slowlog)

	cmd.AddCommand(&cobra.Command{
		Use:   "modules",
		Short: "List loaded server modules",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.DatabaseModules(cmd.Context(), a)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "config [pattern]",
		Short: "Show server parameters matching a pattern",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}
			return handlers.DatabaseConfig(cmd.Context(), a, pattern)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clients",
		Short: "List connected clients",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.DatabaseClients(cmd.Context(), a)
		},
	})

	return cmd
}
