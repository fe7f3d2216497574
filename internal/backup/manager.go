package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/agentx-labs/extctl/internal/manifest"
	"github.com/agentx-labs/extctl/internal/platform"
	"github.com/agentx-labs/extctl/internal/settings"
	"github.com/agentx-labs/extctl/internal/workspace"
)

// Manager writes and restores backups for one workspace.
type Manager struct {
	ws          workspace.Workspace
	lockTimeout time.Duration
	logger      *zap.Logger
}

// NewManager returns a Manager for ws. lockTimeout bounds the wait for the
// settings lock while restoring the settings file.
func NewManager(ws workspace.Workspace, lockTimeout time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{ws: ws, lockTimeout: lockTimeout, logger: logger}
}

// Backup snapshots the live files for kind into a new file under the backup
// directory. When none of those files exist nothing is written and the
// returned Result has an empty Path.
func (m *Manager) Backup(kind Kind) (*Result, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}

	now := m.ws.Clock()
	doc := Document{
		Version:   CurrentVersion,
		Type:      kind,
		Timestamp: timestamp(now),
	}
	if kind == KindCombined {
		// 2.1 has no combined type.
		doc.Version = Version20
		doc.Type = ""
	}

	res := &Result{Kind: kind}
	for _, sec := range kind.sections() {
		raw, found, err := m.readLive(sec)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		doc.Configs.set(sec, raw)
		res.Sections = append(res.Sections, sec)
		if sec != SectionUser {
			doc.ProjectPath = m.ws.ProjectDir
		}
	}

	if len(res.Sections) == 0 {
		m.logger.Info("nothing to back up", zap.String("kind", string(kind)))
		return res, nil
	}

	data, err := encodeDocument(&doc)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(m.ws.BackupDir, platform.DirPermNormal); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	path := filepath.Join(m.ws.BackupDir, kind.filePrefix()+"-"+fileStamp(now)+".json")
	if err := platform.WriteFileSecure(path, data); err != nil {
		return nil, fmt.Errorf("writing backup: %w", err)
	}

	res.Path = path
	m.logger.Info("backup written",
		zap.String("kind", string(kind)),
		zap.String("path", path),
		zap.Int("sections", len(res.Sections)),
	)
	return res, nil
}

// livePath returns the file a section is read from and restored to.
func (m *Manager) livePath(sec Section) string {
	switch sec {
	case SectionSettings:
		return m.ws.SettingsPath
	case SectionProject:
		return m.ws.ManifestPath
	default:
		return m.ws.UserConfigPath
	}
}

// readLive reads and checks one live file. Malformed content is an error;
// backing it up would produce a backup that cannot be restored.
func (m *Manager) readLive(sec Section) (json.RawMessage, bool, error) {
	path := m.livePath(sec)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := checkSection(sec, data); err != nil {
		if sec == SectionSettings {
			return nil, true, &settings.ParseError{Path: path, Err: err}
		}
		return nil, true, fmt.Errorf("parsing %s: %w", path, err)
	}
	return json.RawMessage(data), true, nil
}

// checkSection verifies data decodes as the document a section holds.
func checkSection(sec Section, data []byte) error {
	if sec == SectionSettings {
		_, err := settings.Parse(data)
		return err
	}
	_, err := manifest.Parse(data)
	return err
}

// encodeDocument renders a backup with two-space indentation. HTML
// characters are left unescaped so restored files keep their bytes.
func encodeDocument(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshaling backup: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
