package settings

import (
	"encoding/json"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// OptionalList is an ordered, duplicate-free string list that remembers
// whether its key was present in the document. An absent list is omitted on
// save; a present but empty one is written as [].
type OptionalList struct {
	items   []string
	present bool
}

// NewList returns a present list holding the given items, duplicates dropped.
func NewList(items ...string) OptionalList {
	l := OptionalList{present: true}
	l.Add(items...)
	return l
}

// Present reports whether the list exists in the document.
func (l OptionalList) Present() bool { return l.present }

// IsZero reports whether the list is absent.
func (l OptionalList) IsZero() bool { return !l.present }

// Len returns the number of items.
func (l OptionalList) Len() int { return len(l.items) }

// Items returns a copy of the items in order. Absent lists return nil.
func (l OptionalList) Items() []string {
	if len(l.items) == 0 {
		return nil
	}
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

// Contains reports whether v is in the list.
func (l OptionalList) Contains(v string) bool {
	for _, item := range l.items {
		if item == v {
			return true
		}
	}
	return false
}

// Add appends values not already present, keeping first-seen order.
// The list becomes present even when nothing is added.
// Returns the number of values appended.
func (l *OptionalList) Add(values ...string) int {
	l.present = true
	seen := mapset.NewThreadUnsafeSet(l.items...)
	added := 0
	for _, v := range values {
		if seen.Contains(v) {
			continue
		}
		seen.Add(v)
		l.items = append(l.items, v)
		added++
	}
	return added
}

// Remove drops every exact match of the given values. Presence is unchanged.
// Returns the number of items removed.
func (l *OptionalList) Remove(values ...string) int {
	if len(l.items) == 0 || len(values) == 0 {
		return 0
	}
	drop := mapset.NewThreadUnsafeSet(values...)
	kept := make([]string, 0, len(l.items))
	for _, item := range l.items {
		if !drop.Contains(item) {
			kept = append(kept, item)
		}
	}
	removed := len(l.items) - len(kept)
	l.items = kept
	return removed
}

// Clear makes the list absent.
func (l *OptionalList) Clear() {
	l.items = nil
	l.present = false
}

// MarshalJSON writes the items as a JSON array; never null.
func (l OptionalList) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return []byte("[]"), nil
	}
	return encodeJSON(l.items)
}

// UnmarshalJSON reads a JSON array. A JSON null leaves the list absent.
func (l *OptionalList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		l.Clear()
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decoding string list: %w", err)
	}
	l.items = items
	l.present = true
	return nil
}
