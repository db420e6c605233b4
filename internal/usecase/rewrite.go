package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/forPelevin/scenarist/internal/domain/prompts"
	"github.com/forPelevin/scenarist/internal/domain/variations"
	"github.com/forPelevin/scenarist/internal/types"
)

// RewriteRequest carries the per-call options. Questioners names the
// questioners that take part; nil selects all of them.
type RewriteRequest struct {
	Options     types.RewriteOptions
	Questioners []string
}

// Rewrite turns the working text into one scenario or several candidates.
// On failure the script is left as it was.
func (s *Session) Rewrite(ctx context.Context, req RewriteRequest) error {
	if err := s.requireStage("rewrite", StageFormatted, StageSingleResult, StageMultiResult, StageAdopted); err != nil {
		return err
	}
	if s.d.Generator == nil {
		return fmt.Errorf("rewrite: %w: generation key is required", ErrMissingCredentials)
	}
	opts := req.Options.WithDefaults()
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("rewrite: %w: %w", ErrInvalidOptions, err)
	}
	cast, err := s.Cast(req.Questioners)
	if err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}
	source := strings.TrimSpace(s.st.FormattedText)
	if source == "" {
		return fmt.Errorf("rewrite: %w", ErrEmptyInput)
	}

	castSection := s.d.Prompts.CastSection(cast)
	lead := prompts.LeadExcerpt(s.templates.LeadTemplates)
	closing := s.templates.ClosingText

	if opts.NumVariations == 1 {
		prompt, err := s.d.Prompts.RewritePrompt(source, opts, castSection, lead)
		if err != nil {
			return fmt.Errorf("rewrite: %w: %w", ErrInvalidOptions, err)
		}
		out, err := s.generate(ctx, prompt)
		if err != nil {
			return fmt.Errorf("rewrite: %w", err)
		}
		s.st.RewrittenText = appendClosing(out, closing)
		s.st.Variations = nil
		s.st.Stage = StageSingleResult
		s.log.Info().Int("pages", opts.NumPages).Int("cast", len(cast)).Msg("scenario rewritten")
		return nil
	}

	prompt, err := s.d.Prompts.VariationPrompt(source, opts, castSection, lead, opts.NumVariations)
	if err != nil {
		return fmt.Errorf("rewrite: %w: %w", ErrInvalidOptions, err)
	}
	out, err := s.generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}
	parts := variations.Split(out, variations.Delimiter)
	if len(parts) == 0 {
		return fmt.Errorf("rewrite: %w", ErrGenerationFailed)
	}
	if len(parts) != opts.NumVariations {
		s.log.Warn().Int("requested", opts.NumVariations).Int("received", len(parts)).Msg("variation count mismatch")
	}
	for i := range parts {
		parts[i] = appendClosing(parts[i], closing)
	}
	s.st.Variations = parts
	s.st.RewrittenText = ""
	s.st.Stage = StageMultiResult
	s.log.Info().Int("pages", opts.NumPages).Int("variations", len(parts)).Int("cast", len(cast)).Msg("scenario variations generated")
	return nil
}

func (s *Session) generate(ctx context.Context, prompt string) (string, error) {
	out, err := s.d.Generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrGenerationFailed
	}
	return out, nil
}

// appendClosing joins body and closing text with exactly one newline.
func appendClosing(body, closing string) string {
	body = strings.TrimRightFunc(body, unicode.IsSpace)
	closing = strings.TrimSpace(closing)
	if closing == "" {
		return body
	}
	return body + "\n" + closing
}

// EditResult replaces the single rewrite result.
func (s *Session) EditResult(text string) error {
	if err := s.requireStage("edit result", StageSingleResult); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("edit result: %w", ErrEmptyInput)
	}
	s.st.RewrittenText = text
	return nil
}

// EditVariation replaces candidate i (0-based).
func (s *Session) EditVariation(i int, text string) error {
	if err := s.requireStage("edit variation", StageMultiResult); err != nil {
		return err
	}
	if i < 0 || i >= len(s.st.Variations) {
		return fmt.Errorf("edit variation: %w: %d of %d", ErrNoSuchVariation, i, len(s.st.Variations))
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("edit variation: %w", ErrEmptyInput)
	}
	s.st.Variations[i] = text
	return nil
}

// Adopt makes the single result the canonical scenario.
func (s *Session) Adopt() error {
	if err := s.requireStage("adopt", StageSingleResult); err != nil {
		return err
	}
	s.adopt(s.st.RewrittenText)
	return nil
}

// SelectVariation adopts candidate i (0-based).
func (s *Session) SelectVariation(i int) error {
	if err := s.requireStage("select variation", StageMultiResult); err != nil {
		return err
	}
	if i < 0 || i >= len(s.st.Variations) {
		return fmt.Errorf("select variation: %w: %d of %d", ErrNoSuchVariation, i, len(s.st.Variations))
	}
	s.adopt(s.st.Variations[i])
	return nil
}

func (s *Session) adopt(text string) {
	s.st.AdoptedScenario = text
	s.st.FormattedText = text
	s.st.RewrittenText = ""
	s.st.Variations = nil
	s.st.Metadata = ""
	s.st.Stage = StageAdopted
	s.log.Info().Msg("scenario adopted")
}

// Discard drops the pending results.
func (s *Session) Discard() error {
	if err := s.requireStage("discard", StageSingleResult, StageMultiResult); err != nil {
		return err
	}
	s.st.RewrittenText = ""
	s.st.Variations = nil
	s.st.Stage = StageFormatted
	if s.st.AdoptedScenario != "" {
		s.st.Stage = StageAdopted
	}
	return nil
}

// GenerateMetadata asks for titles, descriptions and hashtags for the
// adopted scenario, or the working text when nothing is adopted yet. The
// response is stored as returned.
func (s *Session) GenerateMetadata(ctx context.Context) error {
	if s.st.Stage == StageNoInput || s.st.Stage == StageRaw {
		return fmt.Errorf("generate metadata: %w (%s)", ErrInvalidStage, s.st.Stage)
	}
	if s.d.Generator == nil {
		return fmt.Errorf("generate metadata: %w: generation key is required", ErrMissingCredentials)
	}
	source := s.st.AdoptedScenario
	if strings.TrimSpace(source) == "" {
		source = s.st.FormattedText
	}
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("generate metadata: %w", ErrEmptyInput)
	}
	out, err := s.generate(ctx, s.d.Prompts.MetadataPrompt(source))
	if err != nil {
		return fmt.Errorf("generate metadata: %w", err)
	}
	s.st.Metadata = out
	if s.st.Stage == StageAdopted {
		s.st.Stage = StageAdoptedWithMetadata
	}
	s.log.Info().Str("stage", s.st.Stage.String()).Msg("metadata generated")
	return nil
}

func (s *Session) EditMetadata(text string) error {
	if s.st.Metadata == "" {
		return fmt.Errorf("edit metadata: %w (no metadata yet)", ErrInvalidStage)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("edit metadata: %w", ErrEmptyInput)
	}
	s.st.Metadata = text
	return nil
}
