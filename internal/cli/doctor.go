package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/agentx-labs/extctl/internal/manifest"
	"github.com/agentx-labs/extctl/internal/schema"
	"github.com/agentx-labs/extctl/internal/settings"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check settings and manifests for problems",
	Long: `Validate the project settings file, .mcp.json and the user config against
their schemas, and look for inconsistent activation state: ids listed as both
enabled and disabled, duplicate entries, ids missing from the manifest and
leftover lock files.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return runDoctor(cmd.OutOrStdout(), a, time.Now())
	},
}

// runDoctor prints one line per check. Only unreadable or schema-invalid
// files count as failures; everything else is a warning.
func runDoctor(w io.Writer, a *app, now time.Time) error {
	var errs error

	fmt.Fprintln(w, "Files:")
	settingsOK := checkSchema(w, schema.Settings, a.ws.SettingsPath, &errs)
	checkSchema(w, schema.Manifest, a.ws.ManifestPath, &errs)
	checkSchema(w, schema.Manifest, a.ws.UserConfigPath, &errs)

	fmt.Fprintln(w, "Activation state:")
	if settingsOK {
		st, err := a.store.Load()
		if err != nil {
			fmt.Fprintf(w, "  [FAIL] %v\n", err)
			errs = multierr.Append(errs, err)
		} else {
			checkState(w, a, st)
		}
	} else {
		fmt.Fprintln(w, "  [SKIP] settings file missing or invalid")
	}

	checkLock(w, a.ws.SettingsPath, now)

	if errs != nil {
		n := len(multierr.Errors(errs))
		return fmt.Errorf("%d check(s) failed: %w", n, errs)
	}
	return nil
}

// checkSchema reports whether path exists and is valid.
func checkSchema(w io.Writer, name schema.Name, path string, errs *error) bool {
	res, err := schema.ValidateFile(name, path)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", path)
		return false
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		*errs = multierr.Append(*errs, err)
		return false
	}
	if !res.Valid {
		fmt.Fprintf(w, "  [FAIL] %s does not match %s\n", path, name)
		for _, issue := range res.Issues {
			fmt.Fprintf(w, "         %s\n", issue)
		}
		*errs = multierr.Append(*errs, fmt.Errorf("%s: %s", path, res.Summary()))
		return false
	}
	fmt.Fprintf(w, "  [ OK ] %s\n", path)
	return true
}

func checkState(w io.Writer, a *app, st *settings.Settings) {
	clean := true

	enabled := mapset.NewThreadUnsafeSet(st.EnabledIDs()...)
	disabled := mapset.NewThreadUnsafeSet(st.DisabledIDs()...)
	if both := enabled.Intersect(disabled); both.Cardinality() > 0 {
		fmt.Fprintf(w, "  [WARN] listed as both enabled and disabled: %s\n", sortedJoin(both.ToSlice()))
		clean = false
	}

	lists := []struct {
		name  string
		items []string
	}{
		{"enabledMcpjsonServers", st.EnabledIDs()},
		{"disabledMcpjsonServers", st.DisabledIDs()},
		{"permissions.allow", st.AllowList()},
	}
	for _, l := range lists {
		if dups := duplicates(l.items); len(dups) > 0 {
			fmt.Fprintf(w, "  [WARN] duplicate entries in %s: %s\n", l.name, strings.Join(dups, ", "))
			clean = false
		}
	}

	doc, found, err := a.ws.Lister().Load(manifest.ScopeProject)
	if err == nil && found {
		var dangling []string
		for _, id := range enabled.Union(disabled).ToSlice() {
			if !doc.Has(id) {
				dangling = append(dangling, id)
			}
		}
		if len(dangling) > 0 {
			fmt.Fprintf(w, "  [WARN] not registered in %s: %s\n", manifest.KeyServers, sortedJoin(dangling))
			clean = false
		}
	}

	if clean {
		fmt.Fprintln(w, "  [ OK ] no conflicts")
	}
}

func checkLock(w io.Writer, settingsPath string, now time.Time) {
	lockPath := settings.NewLock(settingsPath, 0).Path()
	info, err := os.Stat(lockPath)
	if err != nil {
		return
	}
	age := now.Sub(info.ModTime())
	if age > settings.DefaultStaleAfter {
		fmt.Fprintf(w, "  [WARN] stale lock %s (%s old); it is taken over on the next write\n", lockPath, age.Round(time.Second))
		return
	}
	fmt.Fprintf(w, "  [WARN] %s is held by another process\n", lockPath)
}

func duplicates(items []string) []string {
	seen := make(map[string]int, len(items))
	var out []string
	for _, item := range items {
		seen[item]++
		if seen[item] == 2 {
			out = append(out, item)
		}
	}
	return out
}

func sortedJoin(items []string) string {
	sort.Strings(items)
	return strings.Join(items, ", ")
}
