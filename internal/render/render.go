// Package render prints command results as tables, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.yaml.in/yaml/v3"

	"github.com/agentx-labs/extctl/internal/activation"
)

// Format is an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses an output format name. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func structured(w io.Writer, v any, f Format) (bool, error) {
	switch f {
	case FormatJSON:
		return true, JSON(w, v)
	case FormatYAML:
		return true, YAML(w, v)
	}
	return false, nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// Summary prints activation state for a scope.
func Summary(w io.Writer, s *activation.Summary, f Format) error {
	if ok, err := structured(w, s, f); ok {
		return err
	}

	if len(s.Statuses) == 0 {
		_, _ = fmt.Fprintf(w, "No %s extensions registered.\n", s.Scope)
	} else {
		t := newTable(w)
		t.AppendHeader(table.Row{"Extension", "Active", "Reason"})
		for _, st := range s.Statuses {
			active := "no"
			if st.Active {
				active = "yes"
			}
			t.AppendRow(table.Row{st.ID, active, st.Reason.String()})
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d/%d", s.ActiveCount(), len(s.Statuses)), ""})
		t.Render()
	}

	mode := "specific"
	if s.EnableAll {
		mode = "all"
	}
	_, _ = fmt.Fprintf(w, "Activation mode: %s\n", mode)
	if len(s.Enabled) > 0 {
		_, _ = fmt.Fprintf(w, "Enabled: %s\n", strings.Join(s.Enabled, ", "))
	}
	if len(s.Disabled) > 0 {
		_, _ = fmt.Fprintf(w, "Disabled: %s\n", strings.Join(s.Disabled, ", "))
	}
	if len(s.Permissions) > 0 {
		_, _ = fmt.Fprintf(w, "Extension permissions: %s\n", strings.Join(s.Permissions, ", "))
	}
	return nil
}

// Presets prints saved presets sorted by name.
func Presets(w io.Writer, presets map[string][]string, f Format) error {
	if ok, err := structured(w, presets, f); ok {
		return err
	}

	if len(presets) == 0 {
		_, _ = fmt.Fprintln(w, "No presets saved.")
		return nil
	}

	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)

	t := newTable(w)
	t.AppendHeader(table.Row{"Preset", "Extensions"})
	for _, name := range names {
		t.AppendRow(table.Row{name, strings.Join(presets[name], ", ")})
	}
	t.Render()
	return nil
}
