package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	permissionCmd.AddCommand(permissionGrantCmd)
	permissionCmd.AddCommand(permissionRevokeCmd)
	rootCmd.AddCommand(permissionCmd)
}

var permissionCmd = &cobra.Command{
	Use:   "permission",
	Short: "Edit the permission allow-list",
	Long: `Grant or revoke entries in the settings allow-list. Extension permissions
have the form <namespace>__<id>__<action>; <namespace>__<id>__* grants every
action and activates the extension.`,
}

var permissionGrantCmd = &cobra.Command{
	Use:   "grant <permission>...",
	Short: "Add permissions to the allow-list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.service.GrantPermissions(cmd.Context(), args); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Granted %d permission(s).\n", len(args))
		return nil
	},
}

var permissionRevokeCmd = &cobra.Command{
	Use:   "revoke <permission>...",
	Short: "Remove exact permissions from the allow-list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.service.RevokePermissions(cmd.Context(), args); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Revoked %d permission(s).\n", len(args))
		return nil
	},
}
