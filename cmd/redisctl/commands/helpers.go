package commands

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshrotenberg/redisctl/cmd/redisctl/handlers"
	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/task"
)

// Poll cadence defaults in seconds. Cloud tasks settle faster than
// Enterprise actions, which cover node restarts and imports.
const (
	cloudInterval      = 5
	enterpriseInterval = 10
)

// group builds a routing-only parent command. Invoking it without a
// subcommand, or with an unknown one, is a usage error.
func group(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return errdefs.Usage(fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath()))
			}
			_ = cmd.Help()
			return errdefs.Usage(fmt.Errorf("%q needs a subcommand", cmd.CommandPath()))
		},
	}
}

// wrapArgs tags positional-argument failures as usage errors, so they exit
// with the parser code instead of the generic one.
func wrapArgs(inner cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := inner(cmd, args); err != nil {
			return errdefs.Usage(err)
		}
		return nil
	}
}

func exactArgs(n int) cobra.PositionalArgs {
	return wrapArgs(cobra.ExactArgs(n))
}

func rangeArgs(min, max int) cobra.PositionalArgs {
	return wrapArgs(cobra.RangeArgs(min, max))
}

// numericArgs requires exactly n positionals, each a decimal id.
func numericArgs(n int) cobra.PositionalArgs {
	return wrapArgs(cobra.MatchAll(cobra.ExactArgs(n), func(_ *cobra.Command, args []string) error {
		for _, a := range args {
			if _, err := strconv.Atoi(a); err != nil {
				return fmt.Errorf("argument %q must be a numeric id", a)
			}
		}
		return nil
	}))
}

// commandName is the command path without the binary name, the stable label
// used in entry logging.
func commandName(cmd *cobra.Command) string {
	return strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
}

func addDataFlag(cmd *cobra.Command, data *string) {
	cmd.Flags().StringVar(data, "data", "", "Request body: inline JSON, @file, or - for stdin")
}

// asyncFlags is the common wait argument group on write commands.
type asyncFlags struct {
	wait     bool
	timeout  int
	interval int
}

func (f *asyncFlags) register(cmd *cobra.Command, defaultInterval int) {
	cmd.Flags().BoolVar(&f.wait, "wait", false, "Wait for the operation to reach a terminal state")
	f.registerBudget(cmd, defaultInterval)
}

// registerBudget adds only the budget flags, for commands that always wait.
func (f *asyncFlags) registerBudget(cmd *cobra.Command, defaultInterval int) {
	cmd.Flags().IntVar(&f.timeout, "wait-timeout", 300, "Wait budget in seconds")
	cmd.Flags().IntVar(&f.interval, "wait-interval", defaultInterval, "Seconds between polls")
}

func (f *asyncFlags) options() task.WaitOptions {
	return task.WaitOptions{
		Wait:     f.wait,
		Timeout:  time.Duration(f.timeout) * time.Second,
		Interval: time.Duration(f.interval) * time.Second,
	}
}

// pathFunc maps validated positionals to an endpoint path.
type pathFunc func(args []string) string

func staticPath(path string) pathFunc {
	return func([]string) string { return path }
}

// cloudGet builds a read-only cloud leaf.
func cloudGet(use, short string, args cobra.PositionalArgs, path pathFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.CloudGet(cmd.Context(), a, commandName(cmd), path(argv))
		},
	}
}

// cloudWrite builds a cloud write leaf with the async flag group. POST and
// PUT take --data; DELETE does not.
func cloudWrite(use, short string, args cobra.PositionalArgs, method string, path pathFunc) *cobra.Command {
	var data string
	var async asyncFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.CloudWrite(cmd.Context(), a, commandName(cmd), method, path(argv), data, async.options())
		},
	}
	if method != http.MethodDelete {
		addDataFlag(cmd, &data)
	}
	async.register(cmd, cloudInterval)
	return cmd
}

// enterpriseGet builds a read-only enterprise leaf.
func enterpriseGet(use, short string, args cobra.PositionalArgs, path pathFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.EnterpriseGet(cmd.Context(), a, commandName(cmd), path(argv))
		},
	}
}

// enterpriseWrite builds an enterprise write leaf with the async flag group.
func enterpriseWrite(use, short string, args cobra.PositionalArgs, method string, path pathFunc) *cobra.Command {
	var data string
	var async asyncFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.EnterpriseWrite(cmd.Context(), a, commandName(cmd), method, path(argv), data, async.options())
		},
	}
	if method != http.MethodDelete {
		addDataFlag(cmd, &data)
	}
	async.register(cmd, enterpriseInterval)
	return cmd
}
