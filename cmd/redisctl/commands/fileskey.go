package commands

import (
	"github.com/spf13/cobra"

	"github.com/joshrotenberg/redisctl/cmd/redisctl/handlers"
)

// FilesKey returns the files.com key subtree. The key authenticates
// support-package uploads; it lives globally or per profile (select with
// --profile).
func FilesKey() *cobra.Command {
	cmd := group("files-key", "Manage the support-package upload key")
	cmd.AddCommand(filesKeyGet())
	cmd.AddCommand(filesKeySet())
	cmd.AddCommand(filesKeyRemove())
	return cmd
}

func filesKeyGet() *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the upload key in effect",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.FilesKeyGet(a, show)
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "Print the key unmasked")
	return cmd
}

func filesKeySet() *cobra.Command {
	var storeKeyring bool
	cmd := &cobra.Command{
		Use:   "set <key>",
		Short: "Store the upload key",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.FilesKeySet(a, args[0], storeKeyring)
		},
	}
	cmd.Flags().BoolVar(&storeKeyring, "store-keyring", false, "Store the key in the OS keyring instead of the config file")
	return cmd
}

func filesKeyRemove() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the stored upload key",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.FilesKeyRemove(a)
		},
	}
}
