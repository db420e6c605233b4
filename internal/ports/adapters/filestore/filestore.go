package filestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/forPelevin/scenarist/internal/types"
)

const (
	RosterFile    = "characters.json"
	TemplatesFile = "templates.json"
)

// Store keeps the roster and templates as indented JSON files in one directory.
type Store struct {
	dir string
	log zerolog.Logger
}

func New(dir string, log zerolog.Logger) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir, log: log}
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) LoadRoster() ([]types.Character, error) {
	var roster []types.Character
	if !s.read(RosterFile, &roster) {
		return nil, nil
	}
	return roster, nil
}

func (s *Store) SaveRoster(roster []types.Character) error {
	if roster == nil {
		roster = []types.Character{}
	}
	return s.write(RosterFile, roster)
}

func (s *Store) LoadTemplates() (types.TemplateConfig, bool, error) {
	var cfg types.TemplateConfig
	if !s.read(TemplatesFile, &cfg) {
		return types.TemplateConfig{}, false, nil
	}
	return cfg, true, nil
}

func (s *Store) SaveTemplates(cfg types.TemplateConfig) error {
	return s.write(TemplatesFile, cfg)
}

// read reports whether name held a decodable record. Missing, unreadable and
// malformed files all read as absent.
func (s *Store) read(name string, v any) bool {
	path := filepath.Join(s.dir, name)
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", path).Msg("ignoring unreadable file")
		}
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("ignoring malformed file")
		return false
	}
	return true
}

// write replaces name through a temp file and a rename.
func (s *Store) write(name string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := filepath.Join(s.dir, "."+name+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
