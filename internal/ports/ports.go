package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/forPelevin/scenarist/internal/types"
)

var (
	ErrUpload        = errors.New("upload failed")
	ErrTranscription = errors.New("transcription failed")
	// ErrTranscriptionTimeout wraps ErrTranscription.
	ErrTranscriptionTimeout = fmt.Errorf("%w: timed out waiting for result", ErrTranscription)
	ErrGeneration           = errors.New("generation failed")
)

// Transcriber turns a local media file into text.
type Transcriber interface {
	Upload(ctx context.Context, path string) (string, error)
	Transcribe(ctx context.Context, audioURL, language string) (string, error)
}

// Generator runs one plain-text prompt and returns the response.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type AudioExtractor interface {
	ExtractAudio(ctx context.Context, inPath, outPath string) error
}

// Store persists the roster and template config. Loads are permissive:
// a missing or malformed record reads as absent.
type Store interface {
	LoadRoster() ([]types.Character, error)
	SaveRoster(roster []types.Character) error
	LoadTemplates() (types.TemplateConfig, bool, error)
	SaveTemplates(cfg types.TemplateConfig) error
}
