// Package workspace resolves the files extctl operates on for one project:
// the project-local settings file, the project manifest, the user-level
// config and the backup directory.
package workspace
