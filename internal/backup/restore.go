package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/agentx-labs/extctl/internal/manifest"
	"github.com/agentx-labs/extctl/internal/platform"
	"github.com/agentx-labs/extctl/internal/schema"
	"github.com/agentx-labs/extctl/internal/settings"
)

// Restore writes back whatever the backup at path holds, dispatching on its
// schema version. Malformed backups are reported in the Outcome; the error
// return is for I/O failures.
func (m *Manager) Restore(ctx context.Context, path string) (*Outcome, error) {
	return m.restore(ctx, path, "")
}

// RestoreUser restores only the user configuration. A backup declaring the
// project type is reported as StatusWrongKind.
func (m *Manager) RestoreUser(ctx context.Context, path string) (*Outcome, error) {
	return m.restore(ctx, path, KindUser)
}

// RestoreProject restores only the project settings and manifest. A backup
// declaring the user type is reported as StatusWrongKind.
func (m *Manager) RestoreProject(ctx context.Context, path string) (*Outcome, error) {
	return m.restore(ctx, path, KindProject)
}

// restore implements the entry points. want is empty for the generic one.
func (m *Manager) restore(ctx context.Context, path string, want Kind) (*Outcome, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Outcome{Status: StatusNotFound, Reason: fmt.Sprintf("backup file %s does not exist", path)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup %s: %w", path, err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return invalid("backup is not a JSON object"), nil
	}

	declared := stringField(top, "type")
	if want != "" && declared != "" && Kind(declared) != want {
		return &Outcome{
			Status: StatusWrongKind,
			Kind:   Kind(declared),
			Reason: fmt.Sprintf("backup contains %s configuration, not %s configuration", declared, want),
		}, nil
	}

	f := classify(stringField(top, "version"))
	m.logger.Debug("restoring backup",
		zap.String("path", path),
		zap.Stringer("format", f),
		zap.String("requested", string(want)),
	)

	if f == formatLegacy {
		return m.restoreLegacy(ctx, data, top, want, stringField(top, "version"))
	}

	result, err := schema.Validate(schema.Backup, data)
	if err != nil {
		return nil, fmt.Errorf("validating backup: %w", err)
	}
	if !result.Valid {
		out := invalid("backup does not match schema %s", stringField(top, "version"))
		out.Issues = result.Issues
		return out, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return invalid("decoding backup: %v", err), nil
	}

	kind := want
	switch f {
	case formatTyped:
		if doc.Type == "" {
			return invalid("schema %s backup declares no type", doc.Version), nil
		}
		kind = doc.Type
	case formatCombined:
		if kind == "" {
			kind = KindCombined
		}
	}

	return m.restoreSections(ctx, &doc, kind)
}

// restoreSections writes the sections of doc that kind allows.
func (m *Manager) restoreSections(ctx context.Context, doc *Document, kind Kind) (*Outcome, error) {
	var present []Section
	for _, sec := range kind.sections() {
		if len(doc.Configs.get(sec)) > 0 {
			present = append(present, sec)
		}
	}
	if len(present) == 0 {
		if kind == KindCombined {
			return invalid("backup contains no configuration sections"), nil
		}
		return invalid("backup does not contain %s configuration", kind), nil
	}

	out := &Outcome{Status: StatusRestored, Kind: doc.Kind()}
	var errs error
	for _, sec := range present {
		data, err := indent(doc.Configs.get(sec))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("section %s: %w", sec, err))
			continue
		}
		if err := m.writeLive(ctx, sec, data, out); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out.Restored = append(out.Restored, sec)
	}

	if doc.ProjectPath != "" && kind != KindUser && !samePath(doc.ProjectPath, m.ws.ProjectDir) {
		out.Note = fmt.Sprintf("backup was taken in %s; restored into %s", doc.ProjectPath, m.ws.ProjectDir)
	}

	if len(out.Restored) == 0 {
		return nil, errs
	}
	return out, errs
}

// restoreLegacy handles files without a recognized schema version. The
// generic restore writes the file verbatim as the settings document. A user
// restore accepts a bare config with mcpServers at the root.
func (m *Manager) restoreLegacy(ctx context.Context, data []byte, top map[string]json.RawMessage, want Kind, version string) (*Outcome, error) {
	switch want {
	case KindUser:
		if _, ok := top[manifest.KeyServers]; !ok {
			return invalid("backup does not contain user configuration"), nil
		}
		if _, err := manifest.Parse(data); err != nil {
			return invalid("user configuration is malformed: %v", err), nil
		}
		out := &Outcome{Status: StatusRestored, Kind: KindUser, Legacy: true}
		if err := m.writeLive(ctx, SectionUser, data, out); err != nil {
			return nil, err
		}
		out.Restored = []Section{SectionUser}
		return out, nil

	case KindProject:
		return invalid("backup does not contain project configuration"), nil
	}

	if _, err := settings.Parse(data); err != nil {
		return invalid("legacy backup is not a settings document: %v", err), nil
	}
	out := &Outcome{Status: StatusRestored, Kind: KindCombined, Legacy: true}
	if newerSchema(version) {
		out.Note = fmt.Sprintf("backup schema %s is newer than %s; restored as a raw settings document", version, CurrentVersion)
	}
	if err := m.writeLive(ctx, SectionSettings, data, out); err != nil {
		return nil, err
	}
	out.Restored = []Section{SectionSettings}
	return out, nil
}

// writeLive replaces one live file with data after copying the current
// file aside. The settings file is written under the settings lock.
func (m *Manager) writeLive(ctx context.Context, sec Section, data []byte, out *Outcome) error {
	target := m.livePath(sec)

	if sec == SectionSettings {
		lock := settings.NewLock(target, m.lockTimeout)
		if err := lock.Acquire(ctx); err != nil {
			return fmt.Errorf("locking settings: %w", err)
		}
		defer func() {
			if err := lock.Release(); err != nil {
				m.logger.Warn("releasing settings lock", zap.Error(err))
			}
		}()
	}

	if copyPath := m.safetyCopy(target); copyPath != "" {
		out.SafetyCopies = append(out.SafetyCopies, copyPath)
	}

	if err := os.MkdirAll(filepath.Dir(target), platform.DirPermNormal); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}
	if err := os.WriteFile(target, data, platform.FilePermNormal); err != nil {
		return fmt.Errorf("restoring %s: %w", target, err)
	}

	m.logger.Info("restored", zap.String("section", string(sec)), zap.String("path", target))
	return nil
}

// safetyCopy copies an existing live file to <target>.backup-<timestamp>.
// Failures are logged and swallowed; a missing file has nothing to keep.
func (m *Manager) safetyCopy(target string) string {
	current, err := os.ReadFile(target)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			m.logger.Warn("skipping safety copy", zap.String("path", target), zap.Error(err))
		}
		return ""
	}

	dst := target + ".backup-" + fileStamp(m.ws.Clock())
	if err := platform.WriteFileSecure(dst, current); err != nil {
		m.logger.Warn("skipping safety copy", zap.String("path", target), zap.Error(err))
		return ""
	}
	return dst
}

// indent reformats a backed up section with two-space indentation,
// keeping key order.
func indent(raw json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stringField(top map[string]json.RawMessage, key string) string {
	raw, ok := top[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
