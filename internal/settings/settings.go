package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// JSON keys of the host application's settings document.
const (
	KeyPermissions = "permissions"
	KeyEnableAll   = "enableAllProjectMcpServers"
	KeyEnabled     = "enabledMcpjsonServers"
	KeyDisabled    = "disabledMcpjsonServers"

	keyAllow = "allow"
	keyDeny  = "deny"
)

// Settings is the project-local settings document. Every field is optional;
// the zero value is the document of a project that has no settings file.
type Settings struct {
	Permissions *Permissions
	EnableAll   *bool
	Enabled     OptionalList
	Disabled    OptionalList

	// extra holds top-level keys this package does not manage, verbatim.
	extra map[string]json.RawMessage
}

// Permissions is the "permissions" block of the settings document.
type Permissions struct {
	Allow OptionalList
	Deny  OptionalList

	extra map[string]json.RawMessage
}

// GlobalEnableAll reports whether every registered extension is enabled
// unless explicitly disabled. Absent means false.
func (s *Settings) GlobalEnableAll() bool {
	return s.EnableAll != nil && *s.EnableAll
}

// SetGlobalEnableAll stores the flag explicitly, even when false.
func (s *Settings) SetGlobalEnableAll(v bool) {
	s.EnableAll = &v
}

// EnabledIDs returns the explicitly enabled extension ids.
func (s *Settings) EnabledIDs() []string { return s.Enabled.Items() }

// DisabledIDs returns the explicitly disabled extension ids.
func (s *Settings) DisabledIDs() []string { return s.Disabled.Items() }

// AllowList returns the permission allow-list in stored order.
func (s *Settings) AllowList() []string {
	if s.Permissions == nil {
		return nil
	}
	return s.Permissions.Allow.Items()
}

// EnsurePermissions creates an empty {allow: [], deny: []} block when the
// document has none, and an empty allow list when only that is missing.
func (s *Settings) EnsurePermissions() *Permissions {
	if s.Permissions == nil {
		s.Permissions = &Permissions{Allow: NewList(), Deny: NewList()}
	}
	if !s.Permissions.Allow.Present() {
		s.Permissions.Allow = NewList()
	}
	return s.Permissions
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	c := &Settings{
		Enabled:  cloneList(s.Enabled),
		Disabled: cloneList(s.Disabled),
		extra:    cloneRaw(s.extra),
	}
	if s.EnableAll != nil {
		v := *s.EnableAll
		c.EnableAll = &v
	}
	if s.Permissions != nil {
		c.Permissions = &Permissions{
			Allow: cloneList(s.Permissions.Allow),
			Deny:  cloneList(s.Permissions.Deny),
			extra: cloneRaw(s.Permissions.extra),
		}
	}
	return c
}

// MarshalJSON writes the managed keys in document order followed by any
// unmanaged keys sorted by name.
func (s Settings) MarshalJSON() ([]byte, error) {
	var fields []field
	if s.Permissions != nil {
		fields = append(fields, field{KeyPermissions, s.Permissions})
	}
	if s.EnableAll != nil {
		fields = append(fields, field{KeyEnableAll, *s.EnableAll})
	}
	if s.Enabled.Present() {
		fields = append(fields, field{KeyEnabled, s.Enabled})
	}
	if s.Disabled.Present() {
		fields = append(fields, field{KeyDisabled, s.Disabled})
	}
	return marshalObject(fields, s.extra)
}

// UnmarshalJSON decodes a settings document, keeping unknown keys.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Settings{}

	if v, ok := raw[KeyPermissions]; ok {
		if string(v) != "null" {
			var p Permissions
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("field %q: %w", KeyPermissions, err)
			}
			s.Permissions = &p
		}
		delete(raw, KeyPermissions)
	}
	if v, ok := raw[KeyEnableAll]; ok {
		if err := json.Unmarshal(v, &s.EnableAll); err != nil {
			return fmt.Errorf("field %q: %w", KeyEnableAll, err)
		}
		delete(raw, KeyEnableAll)
	}
	if v, ok := raw[KeyEnabled]; ok {
		if err := s.Enabled.UnmarshalJSON(v); err != nil {
			return fmt.Errorf("field %q: %w", KeyEnabled, err)
		}
		delete(raw, KeyEnabled)
	}
	if v, ok := raw[KeyDisabled]; ok {
		if err := s.Disabled.UnmarshalJSON(v); err != nil {
			return fmt.Errorf("field %q: %w", KeyDisabled, err)
		}
		delete(raw, KeyDisabled)
	}

	if len(raw) > 0 {
		s.extra = raw
	}
	return nil
}

// MarshalJSON writes allow and deny first, then unmanaged keys.
func (p Permissions) MarshalJSON() ([]byte, error) {
	var fields []field
	if p.Allow.Present() {
		fields = append(fields, field{keyAllow, p.Allow})
	}
	if p.Deny.Present() {
		fields = append(fields, field{keyDeny, p.Deny})
	}
	return marshalObject(fields, p.extra)
}

// UnmarshalJSON decodes the permissions block, keeping unknown keys.
func (p *Permissions) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Permissions{}

	if v, ok := raw[keyAllow]; ok {
		if err := p.Allow.UnmarshalJSON(v); err != nil {
			return fmt.Errorf("field %q: %w", keyAllow, err)
		}
		delete(raw, keyAllow)
	}
	if v, ok := raw[keyDeny]; ok {
		if err := p.Deny.UnmarshalJSON(v); err != nil {
			return fmt.Errorf("field %q: %w", keyDeny, err)
		}
		delete(raw, keyDeny)
	}

	if len(raw) > 0 {
		p.extra = raw
	}
	return nil
}

type field struct {
	key   string
	value any
}

// marshalObject encodes fields in order, then extra keys sorted.
func marshalObject(fields []field, extra map[string]json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	n := 0
	write := func(key string, value []byte) {
		if n > 0 {
			buf.WriteByte(',')
		}
		k, _ := encodeJSON(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
		n++
	}

	for _, f := range fields {
		v, err := encodeJSON(f.value)
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", f.key, err)
		}
		write(f.key, v)
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		write(k, extra[k])
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeJSON is json.Marshal without HTML escaping, so strings such as
// "Bash(a && b)" keep the bytes the host application wrote.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func cloneList(l OptionalList) OptionalList {
	return OptionalList{items: l.Items(), present: l.present}
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
