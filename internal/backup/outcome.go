package backup

import (
	"fmt"

	"github.com/agentx-labs/extctl/internal/schema"
)

// Status is the result class of a restore.
type Status string

const (
	// StatusRestored means at least one live file was written.
	StatusRestored Status = "restored"
	// StatusNotFound means the backup file does not exist.
	StatusNotFound Status = "not-found"
	// StatusInvalidBackup means the file is not JSON or lacks the shape
	// its version requires.
	StatusInvalidBackup Status = "invalid-backup"
	// StatusWrongKind means a typed restore was given a backup of the
	// other kind.
	StatusWrongKind Status = "wrong-kind"
)

// Outcome reports what a restore did.
type Outcome struct {
	Status Status
	// Kind is what the backup declares, or combined for 2.0 and legacy files.
	Kind Kind
	// Legacy is set when the file was restored as a raw settings document.
	Legacy bool

	Restored     []Section
	SafetyCopies []string

	// Reason explains a non-restored status.
	Reason string
	// Issues holds schema violations for StatusInvalidBackup.
	Issues []schema.Issue
	// Note is an informational message, e.g. a project path mismatch.
	Note string
}

// OK reports whether the restore wrote anything.
func (o *Outcome) OK() bool { return o.Status == StatusRestored }

func invalid(format string, args ...any) *Outcome {
	return &Outcome{Status: StatusInvalidBackup, Reason: fmt.Sprintf(format, args...)}
}

// Result reports what a backup wrote.
type Result struct {
	Kind     Kind
	Path     string
	Sections []Section
}

// Written reports whether a backup file was created. A backup with nothing
// to save writes no file.
func (r *Result) Written() bool { return r.Path != "" }
