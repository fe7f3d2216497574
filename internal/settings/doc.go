// Package settings loads and persists the project-local settings document
// (.claude/settings.local.json) that controls which project extensions are
// active: the enable-all flag, the explicit enabled/disabled lists and the
// permission allow-list. It preserves keys it does not understand, models
// present-versus-absent lists explicitly, and provides an advisory lock for
// read-modify-write transactions.
package settings
