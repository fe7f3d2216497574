package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/agentx-labs/extctl/internal/branding"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Config keys.
const (
	KeyBackupDir   = "backup_dir"
	KeyUserConfig  = "user_config"
	KeyNamespace   = "permission_namespace"
	KeyLockTimeout = "lock_timeout"
	KeyLogLevel    = "log_level"
	KeyPresets     = "presets"
)

// Defaults for keys that have one. backup_dir and user_config default to
// locations resolved by the workspace package.
const (
	DefaultNamespace   = "mcp"
	DefaultLockTimeout = 5 * time.Second
	DefaultLogLevel    = "warn"
)

// Options is the resolved tool configuration.
type Options struct {
	BackupDir   string
	UserConfig  string
	Namespace   string
	LockTimeout time.Duration
	LogLevel    string
}

// Dir returns the path to the extctl config directory (~/.extctl/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.extctl/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// Earlier state is discarded so repeated loads see only the file and env.
func Load() {
	viper.Reset()
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyNamespace, DefaultNamespace)
	viper.SetDefault(KeyLockTimeout, DefaultLockTimeout.String())
	viper.SetDefault(KeyLogLevel, DefaultLogLevel)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Current returns the resolved options.
func Current() Options {
	return Options{
		BackupDir:   viper.GetString(KeyBackupDir),
		UserConfig:  viper.GetString(KeyUserConfig),
		Namespace:   viper.GetString(KeyNamespace),
		LockTimeout: viper.GetDuration(KeyLockTimeout),
		LogLevel:    viper.GetString(KeyLogLevel),
	}
}

// Keys returns the scalar keys config get/set accept.
func Keys() []string {
	return []string{KeyBackupDir, KeyUserConfig, KeyNamespace, KeyLockTimeout, KeyLogLevel}
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file. Only keys
// already in the file and the new value are written; defaults and env
// overrides stay out of it.
func Set(key, value string) error {
	if key == KeyLockTimeout {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
	}
	return update(func(v *viper.Viper) error {
		v.Set(key, value)
		return nil
	})
}

// Presets returns every saved preset by name. Viper keys are
// case-insensitive, so names come back lowercased.
func Presets() map[string][]string {
	out := map[string][]string{}
	// AllSettings includes presets from the file and nested env keys.
	raw, _ := viper.AllSettings()[KeyPresets].(map[string]any)
	for name := range raw {
		out[name] = viper.GetStringSlice(KeyPresets + "." + name)
	}
	return out
}

// PresetNames returns the saved preset names sorted.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the ids saved under name.
func Preset(name string) ([]string, bool) {
	ids, ok := Presets()[name]
	return ids, ok
}

// SavePreset stores ids under name, replacing any previous preset. Names
// may not contain "." since viper reads it as a key path separator.
func SavePreset(name string, ids []string) error {
	if name == "" {
		return fmt.Errorf("preset name is required")
	}
	if strings.Contains(name, ".") {
		return fmt.Errorf("preset name %q must not contain '.'", name)
	}
	return update(func(v *viper.Viper) error {
		v.Set(KeyPresets+"."+name, ids)
		return nil
	})
}

// DeletePreset removes a preset. Viper cannot unset a key that came from the
// config file, so the file is rewritten from a fresh instance.
func DeletePreset(name string) error {
	file, err := fromFile()
	if err != nil {
		return err
	}
	settings := file.AllSettings()
	presets, _ := settings[KeyPresets].(map[string]any)
	if _, ok := presets[name]; !ok {
		return fmt.Errorf("preset %q not found", name)
	}
	delete(presets, name)

	fresh := viper.New()
	if err := fresh.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("rebuilding config: %w", err)
	}
	if err := writeWith(fresh); err != nil {
		return err
	}
	Load()
	return nil
}

// fromFile returns a viper instance holding only what the config file
// contains. A missing file gives an empty instance.
func fromFile() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(FilePath())
	v.SetConfigType(fileType)
	if _, err := os.Stat(FilePath()); os.IsNotExist(err) {
		return v, nil
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return v, nil
}

// update applies fn to the file contents, writes them back and reloads the
// global instance so the change is visible in this process.
func update(fn func(v *viper.Viper) error) error {
	v, err := fromFile()
	if err != nil {
		return err
	}
	if err := fn(v); err != nil {
		return err
	}
	if err := writeWith(v); err != nil {
		return err
	}
	Load()
	return nil
}

func writeWith(v *viper.Viper) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
