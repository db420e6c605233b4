package usecase

import (
	"fmt"
	"slices"
	"strings"

	"github.com/forPelevin/scenarist/internal/types"
)

// sanitizeRoster drops stored entries that break the roster invariants.
func (s *Session) sanitizeRoster(in []types.Character) []types.Character {
	out := make([]types.Character, 0, len(in))
	seen := map[string]bool{}
	for _, c := range in {
		c = c.Normalize()
		if err := c.Validate(); err != nil {
			s.log.Warn().Err(err).Str("name", c.Name).Msg("dropping stored character")
			continue
		}
		if seen[c.Name] {
			s.log.Warn().Str("name", c.Name).Msg("dropping duplicate stored character")
			continue
		}
		if len(out) == types.MaxRoster {
			s.log.Warn().Str("name", c.Name).Int("max", types.MaxRoster).Msg("dropping stored character over capacity")
			continue
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	return out
}

// Roster returns the characters in order. Position 0 is the protagonist.
func (s *Session) Roster() []types.Character {
	return slices.Clone(s.roster)
}

func (s *Session) Protagonist() (types.Character, bool) {
	if len(s.roster) == 0 {
		return types.Character{}, false
	}
	return s.roster[0], true
}

func (s *Session) Questioners() []types.Character {
	if len(s.roster) < 2 {
		return nil
	}
	return slices.Clone(s.roster[1:])
}

func (s *Session) AddCharacter(c types.Character) error {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCharacter, err)
	}
	if s.indexOf(c.Name) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateCharacter, c.Name)
	}
	if len(s.roster) >= types.MaxRoster {
		return ErrRosterFull
	}
	next := append(slices.Clone(s.roster), c)
	if err := s.d.Store.SaveRoster(next); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	s.roster = next
	s.log.Info().Str("name", c.Name).Int("size", len(next)).Msg("character added")
	return nil
}

// RemoveCharacter deletes name. Later characters shift up, so removing the
// protagonist promotes the first questioner.
func (s *Session) RemoveCharacter(name string) error {
	name = strings.TrimSpace(name)
	i := s.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrCharacterNotFound, name)
	}
	next := slices.Delete(slices.Clone(s.roster), i, i+1)
	if err := s.d.Store.SaveRoster(next); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	s.roster = next
	s.log.Info().Str("name", name).Int("size", len(next)).Msg("character removed")
	return nil
}

// Cast returns the protagonist followed by the selected questioners in
// roster order. A nil selection takes every questioner, an empty one none.
func (s *Session) Cast(questioners []string) ([]types.Character, error) {
	if len(s.roster) == 0 {
		return nil, ErrNoCast
	}
	cast := []types.Character{s.roster[0]}
	if questioners == nil {
		return append(cast, s.roster[1:]...), nil
	}
	want := map[string]bool{}
	for _, name := range questioners {
		name = strings.TrimSpace(name)
		i := s.indexOf(name)
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrCharacterNotFound, name)
		}
		want[name] = true
	}
	for _, c := range s.roster[1:] {
		if want[c.Name] {
			cast = append(cast, c)
		}
	}
	return cast, nil
}

func (s *Session) indexOf(name string) int {
	return slices.IndexFunc(s.roster, func(c types.Character) bool { return c.Name == name })
}

func (s *Session) Templates() types.TemplateConfig { return s.templates }

func (s *Session) SetTemplates(cfg types.TemplateConfig) error {
	if err := s.d.Store.SaveTemplates(cfg); err != nil {
		return fmt.Errorf("save templates: %w", err)
	}
	s.templates = cfg
	return nil
}
