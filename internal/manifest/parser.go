package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Load reads a manifest file. A missing file yields an empty Document and
// found=false.
func Load(path string) (doc *Document, found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Document{Servers: map[string]Server{}}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	doc, err = Parse(data)
	if err != nil {
		return nil, true, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return doc, true, nil
}

// Parse decodes a manifest document. A document without an mcpServers key
// registers nothing.
func Parse(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}

	doc := &Document{Servers: map[string]Server{}}
	raw, ok := top[KeyServers]
	if !ok || string(raw) == "null" {
		return doc, nil
	}

	ids, err := objectKeys(raw)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", KeyServers, err)
	}

	var defs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("field %q: %w", KeyServers, err)
	}

	for _, id := range ids {
		if _, dup := doc.Servers[id]; dup {
			continue
		}
		var srv Server
		if err := json.Unmarshal(defs[id], &srv); err != nil {
			return nil, fmt.Errorf("server %q: %w", id, err)
		}
		srv.Raw = defs[id]
		doc.IDs = append(doc.IDs, id)
		doc.Servers[id] = srv
	}
	return doc, nil
}

// objectKeys returns the keys of a JSON object in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected an object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key")
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
