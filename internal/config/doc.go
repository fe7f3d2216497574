// Package config manages extctl's own settings stored at ~/.extctl/config.yaml:
// where backups go, which user config to read, the permission namespace,
// the lock timeout, the log level and named presets of extension ids.
package config
