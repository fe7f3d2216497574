package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentx-labs/extctl/internal/manifest"
	"github.com/agentx-labs/extctl/internal/render"
	"github.com/agentx-labs/extctl/internal/watch"
)

var (
	statusScope  string
	statusOutput string
	statusWatch  bool
)

func init() {
	statusCmd.Flags().StringVar(&statusScope, "scope", string(manifest.ScopeProject), "Extensions to list: project or user")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", string(render.FormatTable), "Output format: table, json or yaml")
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "Re-render when settings or manifests change")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which extensions are active and why",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := manifest.ParseScope(statusScope)
		if err != nil {
			return err
		}
		format, err := render.ParseFormat(statusOutput)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		show := func() error {
			summary, err := a.service.Summary(scope)
			if err != nil {
				return err
			}
			return render.Summary(out, summary, format)
		}

		if err := show(); err != nil {
			return err
		}
		if !statusWatch {
			return nil
		}

		paths := []string{a.ws.SettingsPath, a.ws.ManifestPath, a.ws.UserConfigPath}
		return watch.Files(cmd.Context(), paths, watch.DefaultDebounce, a.logger, func() {
			fmt.Fprintln(out)
			if err := show(); err != nil {
				a.logger.Warn("refreshing status", zap.Error(err))
			}
		})
	},
}
