// Package backup snapshots and restores the files that decide extension
// activation: the project settings file, the project manifest and the
// user-level config.
//
// Backups are JSON documents in one of two schema versions. Version 2.1 is
// typed: it declares whether it holds user or project configuration.
// Version 2.0 is a combined document holding any of the sections. A file
// with any other version, or none, is a legacy backup and is restored as a
// raw settings document.
//
// Restore never fails on a malformed or mismatched backup; it reports an
// Outcome whose Status says what happened. Errors are reserved for I/O
// failures while writing live files.
package backup
