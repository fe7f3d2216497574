package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ErrParse marks a settings file that exists but is not a valid document.
var ErrParse = errors.New("malformed settings document")

// ParseError reports a settings file that could not be decoded.
// errors.Is(err, ErrParse) matches it.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing settings %s: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrParse and the decoder error.
func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// Store reads and writes one settings file.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore returns a Store for the settings file at path.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the settings file location.
func (s *Store) Path() string { return s.path }

// Load reads the settings file. A missing file yields empty Settings;
// malformed content yields a *ParseError.
func (s *Store) Load() (*Settings, error) {
	st, _, err := s.LoadIfExists()
	return st, err
}

// LoadIfExists is Load that also reports whether the file was present.
func (s *Store) LoadIfExists() (*Settings, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("settings file not found, using defaults", zap.String("path", s.path))
		return &Settings{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading settings %s: %w", s.path, err)
	}

	st, err := Parse(data)
	if err != nil {
		return nil, true, &ParseError{Path: s.path, Err: err}
	}
	return st, true, nil
}

// Save overwrites the settings file, creating parent directories as needed.
func (s *Store) Save(st *Settings) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings %s: %w", s.path, err)
	}

	s.logger.Debug("settings saved", zap.String("path", s.path), zap.Int("bytes", len(data)))
	return nil
}

// Parse decodes a settings document.
func Parse(data []byte) (*Settings, error) {
	var st Settings
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Encode renders a settings document with two-space indentation and no
// trailing newline.
func Encode(st *Settings) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return nil, fmt.Errorf("marshaling settings: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
