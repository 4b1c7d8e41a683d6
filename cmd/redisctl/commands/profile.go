package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshrotenberg/redisctl/cmd/redisctl/handlers"
	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

// Profile returns the profile management subtree.
func Profile() *cobra.Command {
	cmd := group("profile", "Manage connection profiles")
	cmd.AddCommand(profileList())
	cmd.AddCommand(profilePath())
	cmd.AddCommand(profileShow())
	cmd.AddCommand(profileSet())
	cmd.AddCommand(profileRemove())
	cmd.AddCommand(profileDefault())
	cmd.AddCommand(profileValidate())
	return cmd
}

func profileList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured profiles",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.ProfileList(a)
		},
	}
}

func profilePath() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.ProfilePath(a)
		},
	}
}

func profileShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one profile in full",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.ProfileShow(a, args[0])
		},
	}
}

func profileSet() *cobra.Command {
	var in handlers.ProfileInput
	cmd := &cobra.Command{
		Use:   "set [name]",
		Short: "Create or update a profile",
		Long: `Create or update a connection profile.

A profile stores how to reach one deployment: Cloud API keys, an
Enterprise cluster URL with credentials, or a direct database address.
Updating an existing profile changes only the fields you pass.

Examples:
  # Cloud
  redisctl profile set prod --deployment-type cloud --api-key k --api-secret s

  # Enterprise, secrets in the OS keyring
  redisctl profile set cluster1 --deployment-type enterprise \
    --url https://cluster1:9443 --username admin@local --password pw \
    --store-keyring

  # Interactive
  redisctl profile set --interactive`,
		Args: rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				in.Name = args[0]
			} else if !in.Interactive {
				return errdefs.Usage(errors.New("a profile name is required unless --interactive is set"))
			}
			in.InsecureSet = cmd.Flags().Changed("insecure")
			in.TLSSet = cmd.Flags().Changed("tls")
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.ProfileSet(cmd.Context(), a, in)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&in.DeploymentType, "deployment-type", "", "Profile kind: cloud, enterprise, or database")
	fl.StringVar(&in.APIKey, "api-key", "", "Cloud API account key")
	fl.StringVar(&in.APISecret, "api-secret", "", "Cloud API secret key")
	fl.StringVar(&in.APIURL, "api-url", "", "Cloud API base URL override")
	fl.StringVar(&in.URL, "url", "", "Enterprise cluster API URL")
	fl.StringVar(&in.Username, "username", "", "Enterprise or database username")
	fl.StringVar(&in.Password, "password", "", "Enterprise or database password")
	fl.BoolVar(&in.Insecure, "insecure", false, "Skip TLS certificate verification (self-signed clusters)")
	fl.StringVar(&in.Host, "host", "", "Database host")
	fl.IntVar(&in.Port, "port", 0, "Database port (default 6379)")
	fl.IntVar(&in.DB, "db", 0, "Database number")
	fl.BoolVar(&in.TLS, "tls", false, "Connect to the database with TLS")
	fl.StringVar(&in.FilesAPIKey, "files-api-key", "", "files.com key for support-package uploads")
	fl.BoolVar(&in.StoreKeyring, "store-keyring", false, "Store secrets in the OS keyring instead of the config file")
	fl.BoolVar(&in.Interactive, "interactive", false, "Build the profile through interactive prompts")
	return cmd
}

func profileRemove() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a profile and its keyring entries",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.ProfileRemove(a, args[0])
		},
	}
}

func profileDefault() *cobra.Command {
	return &cobra.Command{
		Use:   "default <name>",
		Short: "Make a profile its platform's default",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			return handlers.ProfileDefault(a, args[0])
		},
	}
}

func profileValidate() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [name]",
		Short: "Check profile credentials against their live endpoints",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return handlers.ProfileValidate(cmd.Context(), a, name)
		},
	}
}
