package usecase

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/forPelevin/scenarist/internal/domain/captions"
	"github.com/forPelevin/scenarist/internal/domain/prompts"
	"github.com/forPelevin/scenarist/internal/ports"
	"github.com/forPelevin/scenarist/internal/types"
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrEmptyInput         = errors.New("input is empty")
	ErrGenerationFailed   = errors.New("generation produced no usable text")
	ErrInvalidStage       = errors.New("action not allowed at this stage")
	ErrNoCast             = errors.New("no characters registered")
	ErrRosterFull         = fmt.Errorf("roster holds at most %d characters", types.MaxRoster)
	ErrDuplicateCharacter = errors.New("character already exists")
	ErrCharacterNotFound  = errors.New("character not found")
	ErrInvalidCharacter   = errors.New("invalid character")
	ErrNoSuchVariation    = errors.New("no such variation")
	ErrInvalidOptions     = errors.New("invalid options")
)

// Deps wires the session to its collaborators. Transcriber, Generator and
// Audio may be nil; operations that need a missing one fail with
// ErrMissingCredentials.
type Deps struct {
	Transcriber ports.Transcriber
	Generator   ports.Generator
	Audio       ports.AudioExtractor
	Store       ports.Store

	Wrapper captions.Wrapper
	Prompts prompts.Builder

	// Language is passed to the transcriber. Defaults to "ja".
	Language string
	// ScratchDir holds uploaded media while it is transcribed. Defaults to os.TempDir().
	ScratchDir string

	Log zerolog.Logger
}

type Stage int

const (
	StageNoInput Stage = iota
	StageRaw
	StageFormatted
	StageSingleResult
	StageMultiResult
	StageAdopted
	StageAdoptedWithMetadata
)

func (s Stage) String() string {
	switch s {
	case StageNoInput:
		return "no_input"
	case StageRaw:
		return "raw"
	case StageFormatted:
		return "formatted"
	case StageSingleResult:
		return "single_result"
	case StageMultiResult:
		return "multi_result"
	case StageAdopted:
		return "adopted"
	case StageAdoptedWithMetadata:
		return "adopted_with_metadata"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Stage) UnmarshalText(b []byte) error {
	for st := StageNoInput; st <= StageAdoptedWithMetadata; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", b)
}

// State is the working script. At most one of RewrittenText and Variations
// is populated.
type State struct {
	Stage           Stage    `json:"stage"`
	RawText         string   `json:"raw_text"`
	FormattedText   string   `json:"formatted_text"`
	Filename        string   `json:"filename"`
	RewrittenText   string   `json:"rewritten_text,omitempty"`
	Variations      []string `json:"variations,omitempty"`
	AdoptedScenario string   `json:"adopted_scenario,omitempty"`
	Metadata        string   `json:"metadata,omitempty"`
}

// Session owns one roster, one template config and one working script.
// It is not safe for concurrent use.
type Session struct {
	d         Deps
	log       zerolog.Logger
	roster    []types.Character
	templates types.TemplateConfig

	st   State
	hint string
}

func New(d Deps) (*Session, error) {
	if d.Store == nil {
		return nil, errors.New("store is required")
	}
	if d.Language == "" {
		d.Language = "ja"
	}
	s := &Session{d: d, log: d.Log}

	roster, err := d.Store.LoadRoster()
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	s.roster = s.sanitizeRoster(roster)

	tmpl, ok, err := d.Store.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if !ok {
		tmpl = types.DefaultTemplates()
	}
	s.templates = tmpl
	return s, nil
}

// Snapshot returns a copy of the working script.
func (s *Session) Snapshot() State {
	st := s.st
	if st.Variations != nil {
		st.Variations = append([]string(nil), st.Variations...)
	}
	return st
}

// CanTranscribe reports whether media ingest is possible.
func (s *Session) CanTranscribe() bool {
	return s.d.Transcriber != nil && s.d.Generator != nil
}

func (s *Session) CanGenerate() bool { return s.d.Generator != nil }

func (s *Session) requireStage(op string, allowed ...Stage) error {
	for _, a := range allowed {
		if s.st.Stage == a {
			return nil
		}
	}
	return fmt.Errorf("%s: %w (%s)", op, ErrInvalidStage, s.st.Stage)
}
