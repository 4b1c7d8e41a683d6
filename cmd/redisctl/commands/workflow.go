package commands

import (
	"github.com/spf13/cobra"

	"github.com/joshrotenberg/redisctl/cmd/redisctl/handlers"
	"github.com/joshrotenberg/redisctl/internal/workflow"
)

// workflowCommands builds the workflow subtree for a platform. Both
// platforms share the shape; only the registry slice differs.
func workflowCommands(platform string, interval int) *cobra.Command {
	cmd := group("workflow", "Run multi-step procedures")

	list := &cobra.Command{
		Use:   "list",
		Short: "List available workflows",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.WorkflowList(a, platform)
		},
	}

	var data string
	var dryRun bool
	var async asyncFlags
	run := &cobra.Command{
		Use:   "run <name> [key=value ...]",
		Short: "Run a workflow",
		Long: `Run a named workflow: a chain of API calls with per-step progress.

Arguments come from --data (a JSON object) and key=value pairs; pairs
win on conflict. Workflows always wait on the tasks they submit; the
--wait-timeout and --wait-interval budget applies per step.

Examples:
  redisctl ` + platform + ` workflow list
  redisctl ` + platform + ` workflow run <name> name=demo --dry-run
  redisctl ` + platform + ` workflow run <name> --data @args.json`,
		Args: wrapArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.WorkflowRun(cmd.Context(), a, platform, args[0], data, args[1:], dryRun, async.options())
		},
	}
	addDataFlag(run, &data)
	run.Flags().BoolVar(&dryRun, "dry-run", false, "Report what the workflow would do without writing")
	async.registerBudget(run, interval)

	cmd.AddCommand(list)
	cmd.AddCommand(run)
	return cmd
}

func cloudWorkflow() *cobra.Command {
	return workflowCommands(workflow.PlatformCloud, cloudInterval)
}

func enterpriseWorkflow() *cobra.Command {
	return workflowCommands(workflow.PlatformEnterprise, enterpriseInterval)
}
