package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// IngestMedia transcribes an audio or video stream and starts a new script
// from the transcript. name is only used for its extension.
func (s *Session) IngestMedia(ctx context.Context, name string, r io.Reader) error {
	if !s.CanTranscribe() {
		return fmt.Errorf("ingest media: %w: transcription and generation keys are both required", ErrMissingCredentials)
	}

	dir := s.d.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ingest media: %w", err)
	}
	mediaPath := filepath.Join(dir, "scenarist-"+uuid.NewString()+strings.ToLower(filepath.Ext(name)))
	if err := writeScratch(mediaPath, r); err != nil {
		return fmt.Errorf("ingest media: %w", err)
	}
	defer s.removeScratch(mediaPath)

	uploadPath := mediaPath
	if s.d.Audio != nil {
		wav := mediaPath + ".wav"
		if err := s.d.Audio.ExtractAudio(ctx, mediaPath, wav); err != nil {
			s.log.Warn().Err(err).Msg("audio extraction failed, uploading original media")
		} else {
			defer s.removeScratch(wav)
			uploadPath = wav
		}
	}

	s.log.Info().Str("file", filepath.Base(name)).Msg("uploading media")
	audioURL, err := s.d.Transcriber.Upload(ctx, uploadPath)
	if err != nil {
		return fmt.Errorf("ingest media: %w", err)
	}
	text, err := s.d.Transcriber.Transcribe(ctx, audioURL, s.d.Language)
	if err != nil {
		return fmt.Errorf("ingest media: %w", err)
	}
	if err := s.begin(text, ""); err != nil {
		return fmt.Errorf("ingest media: %w", err)
	}
	s.log.Info().Int("runes", len([]rune(text))).Msg("transcript received")
	return nil
}

// IngestTextFile starts a new script from a text file. Invalid UTF-8 is
// replaced with U+FFFD and a leading BOM is honored. The file's base name
// becomes the filename.
func (s *Session) IngestTextFile(name string, r io.Reader) error {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	b, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return fmt.Errorf("ingest text file: %w", err)
	}
	base := filepath.Base(name)
	hint := sanitizeFilename(strings.TrimSuffix(base, filepath.Ext(base)))
	if err := s.begin(string(b), hint); err != nil {
		return fmt.Errorf("ingest text file: %w", err)
	}
	return nil
}

// IngestPaste starts a new script from pasted text.
func (s *Session) IngestPaste(text string) error {
	if err := s.begin(text, ""); err != nil {
		return fmt.Errorf("ingest paste: %w", err)
	}
	return nil
}

func (s *Session) begin(raw, hint string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrEmptyInput
	}
	s.st = State{Stage: StageRaw, RawText: raw}
	s.hint = hint
	return nil
}

func writeScratch(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func (s *Session) removeScratch(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Debug().Err(err).Str("path", path).Msg("scratch cleanup failed")
	}
}
