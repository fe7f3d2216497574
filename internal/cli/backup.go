package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/extctl/internal/backup"
)

var (
	backupKind  string
	restoreKind string
)

func init() {
	backupCmd.Flags().StringVar(&backupKind, "kind", string(backup.KindProject), "What to back up: user, project or combined")
	restoreCmd.Flags().StringVar(&restoreKind, "kind", "", "Only restore this kind: user or project (default: whatever the backup holds)")
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Save extension configuration to a timestamped backup file",
	Long: `Save extension configuration to <backup_dir>/<prefix>-<timestamp>.json.

  user      the user-level config (~/.claude/config.json)
  project   the project settings file and .mcp.json
  combined  all of the above in one file`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := backup.ParseKind(backupKind)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		res, err := a.backups.Backup(kind)
		if err != nil {
			return fmt.Errorf("creating %s backup: %w", kind, err)
		}

		out := cmd.OutOrStdout()
		if !res.Written() {
			fmt.Fprintf(out, "Nothing to back up: no %s configuration found.\n", kind)
			return nil
		}
		fmt.Fprintf(out, "Backup saved to %s\n", res.Path)
		fmt.Fprintf(out, "Backed up: %s\n", joinSections(res.Sections))
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore extension configuration from a backup file",
	Long: `Restore extension configuration from a backup file. Each live file that is
overwritten is first copied to <file>.backup-<timestamp>.

Backups with schema 2.1 restore the kind they declare; 2.0 backups restore
every section they contain. Files without a known schema version are
restored as a raw settings document.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		var outcome *backup.Outcome
		switch restoreKind {
		case "":
			outcome, err = a.backups.Restore(cmd.Context(), args[0])
		case string(backup.KindUser):
			outcome, err = a.backups.RestoreUser(cmd.Context(), args[0])
		case string(backup.KindProject):
			outcome, err = a.backups.RestoreProject(cmd.Context(), args[0])
		default:
			return fmt.Errorf("unknown restore kind %q (want user or project)", restoreKind)
		}
		if outcome != nil {
			printOutcome(cmd.OutOrStdout(), args[0], outcome)
		}
		if err != nil {
			return fmt.Errorf("restoring %s: %w", args[0], err)
		}
		if !outcome.OK() {
			return fmt.Errorf("nothing restored from %s (%s)", args[0], outcome.Status)
		}
		return nil
	},
}

func printOutcome(w io.Writer, path string, o *backup.Outcome) {
	switch o.Status {
	case backup.StatusRestored:
		fmt.Fprintf(w, "Restored %s from %s\n", joinSections(o.Restored), path)
		if o.Legacy {
			fmt.Fprintln(w, "  (legacy backup without a schema version)")
		}
		for _, c := range o.SafetyCopies {
			fmt.Fprintf(w, "  Previous file saved to %s\n", c)
		}
		if o.Note != "" {
			fmt.Fprintf(w, "  Note: %s\n", o.Note)
		}
	case backup.StatusNotFound:
		fmt.Fprintf(w, "Backup file not found: %s\n", path)
	case backup.StatusWrongKind:
		fmt.Fprintf(w, "Wrong backup kind: %s\n", o.Reason)
	case backup.StatusInvalidBackup:
		fmt.Fprintf(w, "Invalid backup file: %s\n", o.Reason)
		for _, issue := range o.Issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
	}
}

func joinSections(sections []backup.Section) string {
	names := make([]string, 0, len(sections))
	for _, s := range sections {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
