package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the project settings file with all extensions enabled",
	Long: `Create the project settings file with enable-all set. An existing settings
file is left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		created, err := a.service.Initialize(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if created {
			fmt.Fprintf(out, "Created %s with all extensions enabled.\n", a.ws.SettingsPath)
		} else {
			fmt.Fprintf(out, "Settings already exist at %s\n", a.ws.SettingsPath)
		}
		return nil
	},
}
