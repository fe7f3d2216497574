package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agentx-labs/extctl/internal/branding"
	"github.com/agentx-labs/extctl/internal/manifest"
)

// File and directory name constants.
const (
	SettingsFile   = "settings.local.json"
	ManifestFile   = ".mcp.json"
	UserConfigFile = "config.json"
	BackupsDir     = "backups"
)

// Workspace holds the resolved paths for one project. Now is the clock used
// for backup timestamps; nil means time.Now.
type Workspace struct {
	ProjectDir     string
	SettingsPath   string
	ManifestPath   string
	UserConfigPath string
	BackupDir      string
	Now            func() time.Time
}

// Options overrides the user-level locations. Empty fields use the defaults.
type Options struct {
	UserConfigPath string
	BackupDir      string
}

// New resolves a Workspace rooted at projectDir. An empty projectDir means
// the current working directory.
func New(projectDir string, opts Options) (Workspace, error) {
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Workspace{}, fmt.Errorf("resolving working directory: %w", err)
		}
		projectDir = wd
	}
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return Workspace{}, fmt.Errorf("resolving project directory %s: %w", projectDir, err)
	}

	userConfig := opts.UserConfigPath
	if userConfig == "" {
		if userConfig, err = DefaultUserConfigPath(); err != nil {
			return Workspace{}, err
		}
	}
	backupDir := opts.BackupDir
	if backupDir == "" {
		if backupDir, err = DefaultBackupDir(); err != nil {
			return Workspace{}, err
		}
	}

	return Workspace{
		ProjectDir:     abs,
		SettingsPath:   filepath.Join(abs, branding.SettingsDir(), SettingsFile),
		ManifestPath:   filepath.Join(abs, ManifestFile),
		UserConfigPath: userConfig,
		BackupDir:      backupDir,
	}, nil
}

// Clock returns the current time from Now, or time.Now when unset.
func (w Workspace) Clock() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Lister returns a manifest lister over this workspace's manifests.
func (w Workspace) Lister() manifest.Lister {
	return manifest.Lister{ProjectPath: w.ManifestPath, UserPath: w.UserConfigPath}
}

// DefaultUserConfigPath returns the host application's user-level config.
// It checks the EXTCTL_USER_CONFIG environment variable first,
// then falls back to ~/.claude/config.json.
func DefaultUserConfigPath() (string, error) {
	if v := os.Getenv(branding.EnvVar("USER_CONFIG")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.SettingsDir(), UserConfigFile), nil
}

// DefaultBackupDir returns where backups are written.
// It checks the EXTCTL_BACKUP_DIR environment variable first,
// then falls back to ~/.extctl/backups.
func DefaultBackupDir() (string, error) {
	if v := os.Getenv(branding.EnvVar("BACKUP_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir(), BackupsDir), nil
}
