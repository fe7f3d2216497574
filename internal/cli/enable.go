package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentx-labs/extctl/internal/activation"
	"github.com/agentx-labs/extctl/internal/config"
	"github.com/agentx-labs/extctl/internal/manifest"
)

var (
	enableAll      bool
	enablePreset   string
	enableStrategy string
)

func init() {
	enableCmd.Flags().BoolVar(&enableAll, "all", false, "Enable every registered extension")
	enableCmd.Flags().StringVar(&enablePreset, "preset", "", "Enable the extensions saved in a preset")
	enableCmd.Flags().StringVar(&enableStrategy, "strategy", string(activation.StrategySpecific), "How to enable: specific (enabled list) or permission (wildcard grant)")
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(deactivateCmd)
}

var enableCmd = &cobra.Command{
	Use:   "enable [id...]",
	Short: "Activate extensions",
	Long: `Activate extensions for this project.

With --all every registered extension is enabled and the explicit lists are
cleared. Otherwise the given ids (and any --preset ids) are added to the
enabled list, or granted their wildcard permission with --strategy permission.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if enableAll {
			if len(args) > 0 || enablePreset != "" {
				return fmt.Errorf("--all cannot be combined with ids or --preset")
			}
			if err := a.service.EnableAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "Enabled all extensions.")
			return nil
		}

		ids := args
		if enablePreset != "" {
			presetIDs, ok := config.Preset(strings.ToLower(enablePreset))
			if !ok {
				return fmt.Errorf("preset %q not found", enablePreset)
			}
			ids = append(presetIDs, args...)
		}
		if len(ids) == 0 {
			return fmt.Errorf("specify extension ids, --preset or --all")
		}

		strategy, err := activation.ParseStrategy(enableStrategy)
		if err != nil {
			return err
		}
		if strategy == activation.StrategyAll {
			return fmt.Errorf("use --all to enable every extension")
		}

		warnUnregistered(out, a, ids)
		if err := a.service.Activate(cmd.Context(), ids, strategy); err != nil {
			return err
		}
		fmt.Fprintf(out, "Enabled %s (%s).\n", strings.Join(ids, ", "), strategy)
		return nil
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <id>...",
	Short: "Disable extensions without touching their permissions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.service.DisableSpecific(cmd.Context(), args); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Disabled %s.\n", strings.Join(args, ", "))
		return nil
	},
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate <id>...",
	Short: "Disable extensions and revoke every permission scoped to them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.service.Deactivate(cmd.Context(), args); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deactivated %s.\n", strings.Join(args, ", "))
		return nil
	},
}

// warnUnregistered notes ids missing from the project manifest. Enabling
// them is still allowed; the manifest may be written later.
func warnUnregistered(w io.Writer, a *app, ids []string) {
	doc, found, err := a.ws.Lister().Load(manifest.ScopeProject)
	if err != nil {
		a.logger.Debug("skipping registration check", zap.Error(err))
		return
	}
	if !found {
		return
	}
	for _, id := range ids {
		if !doc.Has(id) {
			fmt.Fprintf(w, "[WARN] %s is not registered in %s\n", id, manifest.KeyServers)
		}
	}
}
