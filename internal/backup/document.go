package backup

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Schema versions.
const (
	Version20      = "2.0"
	Version21      = "2.1"
	CurrentVersion = Version21
)

// Kind is what a backup holds.
type Kind string

const (
	KindUser     Kind = "user"
	KindProject  Kind = "project"
	KindCombined Kind = "combined"
)

// ParseKind parses a backup kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindUser, KindProject, KindCombined:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown backup kind %q (want user, project or combined)", s)
	}
}

func (k Kind) filePrefix() string {
	switch k {
	case KindUser:
		return "mcp-user-backup"
	case KindProject:
		return "mcp-project-backup"
	default:
		return "mcp-backup"
	}
}

// sections lists what a restore of this kind may write.
func (k Kind) sections() []Section {
	switch k {
	case KindUser:
		return []Section{SectionUser}
	case KindProject:
		return []Section{SectionSettings, SectionProject}
	default:
		return []Section{SectionSettings, SectionProject, SectionUser}
	}
}

// Section names one live file inside a backup.
type Section string

const (
	SectionSettings Section = "settings"
	SectionProject  Section = "project"
	SectionUser     Section = "user"
)

// Document is the on-disk backup artifact.
type Document struct {
	Version     string  `json:"version"`
	Type        Kind    `json:"type,omitempty"`
	Timestamp   string  `json:"timestamp"`
	ProjectPath string  `json:"projectPath,omitempty"`
	Configs     Configs `json:"configs"`
}

// Configs holds each backed up file as the JSON it contained.
type Configs struct {
	User     json.RawMessage `json:"user,omitempty"`
	Project  json.RawMessage `json:"project,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

func (c *Configs) get(s Section) json.RawMessage {
	switch s {
	case SectionUser:
		return c.User
	case SectionProject:
		return c.Project
	case SectionSettings:
		return c.Settings
	}
	return nil
}

func (c *Configs) set(s Section, raw json.RawMessage) {
	switch s {
	case SectionUser:
		c.User = raw
	case SectionProject:
		c.Project = raw
	case SectionSettings:
		c.Settings = raw
	}
}

// Kind returns the declared type, or KindCombined for a 2.0 document.
func (d *Document) Kind() Kind {
	if d.Type != "" {
		return d.Type
	}
	return KindCombined
}

// CreatedAt parses the document timestamp.
func (d *Document) CreatedAt() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, d.Timestamp)
}

type format int

const (
	formatLegacy format = iota
	formatCombined
	formatTyped
)

func (f format) String() string {
	switch f {
	case formatTyped:
		return "typed"
	case formatCombined:
		return "combined"
	default:
		return "legacy"
	}
}

// classify maps a schema version to a restore format. Only the exact
// strings "2.0" and "2.1" are recognized; anything else is legacy.
func classify(version string) format {
	switch version {
	case Version21:
		return formatTyped
	case Version20:
		return formatCombined
	default:
		return formatLegacy
	}
}

var current = semver.MustParse(CurrentVersion)

// newerSchema reports whether version parses as a semantic version above
// the one this tool writes.
func newerSchema(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return v.GreaterThan(current)
}

// timestamp renders t as ISO 8601 in UTC with milliseconds.
func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// fileStamp is timestamp made safe for file names.
func fileStamp(t time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(timestamp(t))
}
