// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package; this package additionally owns
// the error-to-exit-code mapping the shell sees.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshrotenberg/redisctl/cmd/redisctl/handlers"
	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

// opts holds the parsed global flags. Root rebinds it, so each constructed
// tree starts from defaults.
var opts handlers.Globals

// app builds the invocation runtime from the parsed global flags, bound to
// the command's streams so tests capture what the user would see.
func app(cmd *cobra.Command) (*handlers.App, error) {
	a, err := handlers.NewApp(opts)
	if err != nil {
		return nil, err
	}
	a.Out = cmd.OutOrStdout()
	a.ErrOut = cmd.ErrOrStderr()
	return a, nil
}

// Root returns the root command for the redisctl CLI.
//
// The root command carries the global flags shared by every subtree and
// organizes the command hierarchy. It silences cobra's own error printing;
// Execute renders errors once, with the exit-code mapping applied.
func Root() *cobra.Command {
	opts = handlers.Globals{}
	cmd := &cobra.Command{
		Use:   "redisctl",
		Short: "Manage Redis Cloud and Redis Enterprise from the command line",
		Long: `redisctl drives both Redis control planes through one tool: the hosted
Cloud API and self-managed Enterprise clusters.

Connection credentials live in named profiles (see 'redisctl profile').
Typed commands cover the common resources; 'redisctl api' reaches any
endpoint the platforms expose.

Examples:
  # Store credentials once
  redisctl profile set prod --deployment-type cloud --api-key k --api-secret s

  # Typed commands
  redisctl cloud subscription list
  redisctl enterprise database create --data @db.json --wait

  # Raw access to anything else
  redisctl api cloud get /subscriptions/42/pricing`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigFile, "config-file", "", "Config file to use instead of the default location")
	pf.StringVarP(&opts.Profile, "profile", "p", "", "Profile to use (default: the platform's default profile)")
	pf.StringVarP(&opts.Output, "output", "o", "auto", "Output format: auto, table, json, or yaml")
	pf.StringVarP(&opts.Query, "query", "q", "", "JMESPath expression applied to the result")
	pf.CountVarP(&opts.Verbosity, "verbose", "v", "Increase log verbosity (-v, -vv, -vvv)")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errdefs.Usage(err)
	})

	cmd.AddCommand(Profile())
	cmd.AddCommand(API())
	cmd.AddCommand(Cloud())
	cmd.AddCommand(Enterprise())
	cmd.AddCommand(Database())
	cmd.AddCommand(FilesKey())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// Execute runs the CLI against the process arguments and streams, returning
// the exit code for main.
func Execute(ctx context.Context) int {
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes the CLI with explicit arguments and streams. Tests drive it
// directly with buffers.
func Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	cmd := Root()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	err := classify(cmd.ExecuteContext(ctx))
	if err == nil {
		return errdefs.ExitOK
	}
	reportError(errOut, err)
	return errdefs.ExitCode(err)
}

// classify upgrades cobra's own parse failures to usage errors. Flag errors
// come through the flag error func already tagged; unknown subcommands
// surface as plain errors from Execute.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errdefs.ExitCode(err) != errdefs.ExitError {
		return err
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "unknown command ") || strings.HasPrefix(msg, "invalid argument ") {
		return errdefs.Usage(err)
	}
	return err
}

// reportError prints the single user-facing error line, plus the cause chain
// when verbose logging is on.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)
	if opts.Verbosity < 1 {
		return
	}
	seen := err.Error()
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		if cause.Error() == seen {
			continue
		}
		seen = cause.Error()
		fmt.Fprintf(w, "  caused by: %s\n", seen)
	}
}
