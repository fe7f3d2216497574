package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/extctl/internal/config"
	"github.com/agentx-labs/extctl/internal/render"
)

var presetOutput string

func init() {
	presetListCmd.Flags().StringVarP(&presetOutput, "output", "o", string(render.FormatTable), "Output format: table, json or yaml")
	presetCmd.AddCommand(presetSaveCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetDeleteCmd)
	rootCmd.AddCommand(presetCmd)
}

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage named sets of extension ids",
	Long: `Presets are named lists of extension ids stored in the tool config. Use
'enable --preset <name>' to enable every id in one.`,
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name> <id>...",
	Short: "Save a preset, replacing any previous one with the same name",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, ids := strings.ToLower(args[0]), args[1:]
		if err := config.SavePreset(name, ids); err != nil {
			return fmt.Errorf("saving preset %q: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %s: %s\n", name, strings.Join(ids, ", "))
		return nil
	},
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(presetOutput)
		if err != nil {
			return err
		}
		return render.Presets(cmd.OutOrStdout(), config.Presets(), format)
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(args[0])
		if err := config.DeletePreset(name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %s\n", name)
		return nil
	},
}
