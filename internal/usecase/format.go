package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forPelevin/scenarist/internal/domain/captions"
	"github.com/forPelevin/scenarist/internal/domain/prompts"
	"github.com/forPelevin/scenarist/internal/ports"
)

type FormatMode string

const (
	// FormatAuto uses the generator when one is configured and falls back
	// to line wrapping when it fails.
	FormatAuto     FormatMode = "auto"
	FormatWrap     FormatMode = "wrap"
	FormatVerbatim FormatMode = "verbatim"
)

const (
	maxFilenameRunes = 20
	defaultFilename  = "output"
	forbiddenRunes   = `/\:*?"<>|` + "\r\n"
)

type formatter interface {
	format(ctx context.Context, text string) (string, error)
}

type wrapFormatter struct{ w captions.Wrapper }

func (f wrapFormatter) format(_ context.Context, text string) (string, error) {
	return f.w.Format(text), nil
}

type verbatimFormatter struct{}

func (verbatimFormatter) format(_ context.Context, text string) (string, error) {
	return text, nil
}

// generativeFormatter asks the backend to break lines and uses fallback
// when the call fails or returns nothing.
type generativeFormatter struct {
	gen      ports.Generator
	prompts  prompts.Builder
	fallback formatter
	log      zerolog.Logger
}

func (f generativeFormatter) format(ctx context.Context, text string) (string, error) {
	out, err := f.gen.Generate(ctx, f.prompts.FormatPrompt(text))
	if err == nil {
		if out = strings.TrimSpace(out); out != "" {
			return out, nil
		}
		err = fmt.Errorf("%w: empty response", ports.ErrGeneration)
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	f.log.Warn().Err(err).Msg("backend formatting failed, wrapping locally")
	return f.fallback.format(ctx, text)
}

func (s *Session) formatterFor(mode FormatMode) (formatter, error) {
	wrap := wrapFormatter{w: s.d.Wrapper}
	switch mode {
	case FormatAuto, "":
		if s.d.Generator == nil {
			return wrap, nil
		}
		return generativeFormatter{gen: s.d.Generator, prompts: s.d.Prompts, fallback: wrap, log: s.log}, nil
	case FormatWrap:
		return wrap, nil
	case FormatVerbatim:
		return verbatimFormatter{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown format mode %q", ErrInvalidOptions, mode)
	}
}

// Format derives the working text and filename from the raw text.
func (s *Session) Format(ctx context.Context, mode FormatMode) error {
	if err := s.requireStage("format", StageRaw, StageFormatted); err != nil {
		return err
	}
	f, err := s.formatterFor(mode)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	out, err := f.format(ctx, s.st.RawText)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if strings.TrimSpace(out) == "" {
		// Text made only of clause marks wraps to nothing.
		out = s.st.RawText
	}
	name := s.deriveFilename(ctx, out)

	s.st.FormattedText = out
	s.st.Filename = name
	s.st.Stage = StageFormatted
	s.log.Info().Str("mode", string(mode)).Str("filename", name).Msg("text formatted")
	return nil
}

func (s *Session) deriveFilename(ctx context.Context, text string) string {
	if s.hint != "" {
		return s.hint
	}
	if s.d.Generator != nil {
		out, err := s.d.Generator.Generate(ctx, s.d.Prompts.FilenamePrompt(text))
		if err != nil {
			s.log.Debug().Err(err).Msg("filename suggestion failed")
		} else if name := sanitizeFilename(stripExt(out)); name != "" {
			return name
		}
	}
	return fallbackFilename(text)
}

// SetFilename overrides the export base name.
func (s *Session) SetFilename(name string) error {
	if s.st.Stage == StageNoInput {
		return fmt.Errorf("set filename: %w (%s)", ErrInvalidStage, s.st.Stage)
	}
	name = sanitizeFilename(name)
	if name == "" {
		return fmt.Errorf("set filename: %w", ErrEmptyInput)
	}
	s.st.Filename = name
	return nil
}

// Edit replaces the working text.
func (s *Session) Edit(text string) error {
	if err := s.requireStage("edit", StageFormatted, StageSingleResult, StageMultiResult, StageAdopted); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("edit: %w", ErrEmptyInput)
	}
	s.st.FormattedText = text
	return nil
}

func sanitizeFilename(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenRunes, r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxFilenameRunes {
		s = strings.TrimSpace(string(r[:maxFilenameRunes]))
	}
	return s
}

func fallbackFilename(text string) string {
	if name := sanitizeFilename(text); name != "" {
		return name
	}
	return defaultFilename
}

func stripExt(s string) string {
	s = strings.TrimSpace(s)
	for _, ext := range []string{".txt", ".wav", ".mp3", ".mp4"} {
		s = strings.TrimSuffix(s, ext)
	}
	return s
}
