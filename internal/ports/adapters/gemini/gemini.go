package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/forPelevin/scenarist/internal/ports"
	"github.com/forPelevin/scenarist/internal/ports/adapters/redact"
)

const (
	DefaultModel = "gemini-2.0-flash"

	requestTimeout = 3 * time.Minute
)

type Options struct {
	Model   string
	BaseURL string
	Log     zerolog.Logger
}

// Adapter generates plain text through the Gemini API.
type Adapter struct {
	key    string
	model  string
	models *genai.Models
	log    zerolog.Logger
}

func New(ctx context.Context, apiKey string, o Options) (*Adapter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if o.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Adapter{key: apiKey, model: o.Model, models: client.Models, log: o.Log}, nil
}

func (a *Adapter) Model() string { return a.model }

func (a *Adapter) Generate(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	start := time.Now()
	a.log.Debug().Str("model", a.model).Int("prompt_len", len([]rune(prompt))).Msg("gemini request")
	resp, err := a.models.GenerateContent(reqCtx, a.model, genai.Text(prompt), nil)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: gemini timeout after %s (model=%s)", ports.ErrGeneration, requestTimeout, a.model)
		}
		return "", fmt.Errorf("%w: gemini: %s", ports.ErrGeneration, redact.Truncate(redact.Secrets(err.Error(), a.key), 400))
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		reason := "no candidates"
		if len(resp.Candidates) > 0 {
			reason = "finish reason " + string(resp.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("%w: gemini returned empty text (%s)", ports.ErrGeneration, reason)
	}
	a.log.Info().Str("model", a.model).Int("response_len", len([]rune(out))).Dur("took", time.Since(start)).Msg("gemini response")
	return out, nil
}
