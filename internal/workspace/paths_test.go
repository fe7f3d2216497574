package workspace

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNew_ProjectPaths(t *testing.T) {
	dir := t.TempDir()
	ws, err := New(dir, Options{UserConfigPath: "/u/config.json", BackupDir: "/b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ws.ProjectDir != dir {
		t.Errorf("ProjectDir = %s, want %s", ws.ProjectDir, dir)
	}
	if want := filepath.Join(dir, ".claude", "settings.local.json"); ws.SettingsPath != want {
		t.Errorf("SettingsPath = %s, want %s", ws.SettingsPath, want)
	}
	if want := filepath.Join(dir, ".mcp.json"); ws.ManifestPath != want {
		t.Errorf("ManifestPath = %s, want %s", ws.ManifestPath, want)
	}
	if ws.UserConfigPath != "/u/config.json" || ws.BackupDir != "/b" {
		t.Errorf("overrides not applied: %+v", ws)
	}

	l := ws.Lister()
	if l.ProjectPath != ws.ManifestPath || l.UserPath != ws.UserConfigPath {
		t.Errorf("lister paths = %+v", l)
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("EXTCTL_USER_CONFIG", "/tmp/user.json")
	t.Setenv("EXTCTL_BACKUP_DIR", "/tmp/backups")

	ws, err := New(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ws.UserConfigPath != "/tmp/user.json" {
		t.Errorf("UserConfigPath = %s", ws.UserConfigPath)
	}
	if ws.BackupDir != "/tmp/backups" {
		t.Errorf("BackupDir = %s", ws.BackupDir)
	}
}

func TestDefaults_UnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("EXTCTL_USER_CONFIG", "")
	t.Setenv("EXTCTL_BACKUP_DIR", "")

	got, err := DefaultUserConfigPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(home, ".claude", "config.json"); got != want {
		t.Errorf("DefaultUserConfigPath = %s, want %s", got, want)
	}

	got, err = DefaultBackupDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(home, ".extctl", "backups"); got != want {
		t.Errorf("DefaultBackupDir = %s, want %s", got, want)
	}
}

func TestClock(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ws := Workspace{Now: func() time.Time { return fixed }}
	if !ws.Clock().Equal(fixed) {
		t.Errorf("Clock = %v, want %v", ws.Clock(), fixed)
	}
	if (Workspace{}).Clock().IsZero() {
		t.Error("zero Workspace clock returned zero time")
	}
}
