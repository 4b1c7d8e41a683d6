package commands

import (
	"github.com/spf13/cobra"

	"github.com/joshrotenberg/redisctl/cmd/redisctl/handlers"
)

// API returns the raw endpoint escape hatch.
func API() *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "api <cloud|enterprise> <get|post|put|delete> <path>",
		Short: "Call any API endpoint directly",
		Long: `Call any endpoint of either platform API and print the raw response.

The path is relative to the profile's API base and may carry a query
string. Write verbs take --data; GET and DELETE do not.

Examples:
  redisctl api cloud get /subscriptions
  redisctl api cloud post /subscriptions --data @sub.json
  redisctl api enterprise get "/v1/bdbs?fields=uid,name"
  redisctl api enterprise delete /v1/bdbs/42`,
		Args: exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.APICall(cmd.Context(), a, args[0], args[1], args[2], data)
		},
	}
	addDataFlag(cmd, &data)
	return cmd
}
