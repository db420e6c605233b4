package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/forPelevin/scenarist/internal/ports"
	"github.com/forPelevin/scenarist/internal/ports/adapters/redact"
)

const (
	DefaultModel = "google/gemini-2.0-flash-001"

	requestTimeout = 90 * time.Second
)

// Adapter generates plain text through the OpenRouter chat completions API.
type Adapter struct {
	key     string
	model   string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

func New(apiKey, model, baseURL string, log zerolog.Logger) *Adapter {
	if model == "" {
		model = DefaultModel
	}
	return &Adapter{
		key:     apiKey,
		model:   model,
		baseURL: cleanBaseURL(baseURL),
		client:  &http.Client{Timeout: 5 * time.Minute},
		log:     log,
	}
}

func (a *Adapter) Model() string { return a.model }

func (a *Adapter) Generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  a.model,
		"stream": false,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.baseURL+"/api/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrGeneration, err)
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	a.log.Debug().Str("model", a.model).Int("prompt_len", len([]rune(prompt))).Msg("openrouter request")
	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: openrouter timeout after %s (model=%s)", ports.ErrGeneration, requestTimeout, a.model)
		}
		return "", fmt.Errorf("%w: %v", ports.ErrGeneration, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("%w: openrouter status %d and read body failed: %v", ports.ErrGeneration, resp.StatusCode, readErr)
		}
		return "", fmt.Errorf("%w: openrouter status %d: %s", ports.ErrGeneration, resp.StatusCode, redact.Body(rb, a.key))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("%w: decode openrouter response: %v", ports.ErrGeneration, err)
	}
	if len(raw.Choices) == 0 {
		return "", fmt.Errorf("%w: openrouter returned no choices", ports.ErrGeneration)
	}
	content, err := messageContentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrGeneration, err)
	}
	return strings.TrimSpace(content), nil
}

func messageContentToString(v any) (string, error) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []any:
		// Some providers return an array of {type,text} parts.
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s = b.String()
	default:
		return "", fmt.Errorf("openrouter: unexpected content type %T", v)
	}
	if strings.TrimSpace(s) == "" {
		return "", errors.New("openrouter: empty content")
	}
	return s, nil
}
