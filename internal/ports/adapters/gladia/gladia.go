package gladia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/forPelevin/scenarist/internal/ports"
	"github.com/forPelevin/scenarist/internal/ports/adapters/redact"
)

const (
	DefaultBaseURL      = "https://api.gladia.io"
	DefaultPollInterval = 3 * time.Second
	DefaultMaxAttempts  = 60

	requestTimeout = 60 * time.Second
)

type Options struct {
	BaseURL      string
	PollInterval time.Duration
	MaxAttempts  int
	Client       *http.Client
	Log          zerolog.Logger
}

// Adapter talks to the Gladia v2 pre-recorded API.
type Adapter struct {
	key      string
	baseURL  string
	interval time.Duration
	attempts int
	client   *http.Client
	log      zerolog.Logger
}

func New(apiKey string, o Options) *Adapter {
	base := strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Adapter{
		key:      apiKey,
		baseURL:  base,
		interval: o.PollInterval,
		attempts: o.MaxAttempts,
		client:   o.Client,
		log:      o.Log,
	}
}

// Upload sends a local media file and returns the hosted audio URL.
func (a *Adapter) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ports.ErrUpload, filepath.Base(path), err)
	}
	defer f.Close()

	name := filepath.Base(path)
	ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if ctype == "" {
		ctype = "application/octet-stream"
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, name))
		h.Set("Content-Type", ctype)
		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v2/upload", pr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrUpload, err)
	}
	req.Header.Set("x-gladia-key", a.key)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	a.log.Info().Str("file", name).Str("content_type", ctype).Msg("uploading media")
	var out struct {
		AudioURL string `json:"audio_url"`
	}
	if err := a.do(req, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrUpload, err)
	}
	if out.AudioURL == "" {
		return "", fmt.Errorf("%w: response has no audio_url", ports.ErrUpload)
	}
	return out.AudioURL, nil
}

// Transcribe submits a job and polls until it is done, fails, or the
// attempt ceiling is reached.
func (a *Adapter) Transcribe(ctx context.Context, audioURL, language string) (string, error) {
	if language == "" {
		language = "ja"
	}
	payload := map[string]any{
		"audio_url":       audioURL,
		"language_config": map[string]any{"languages": []string{language}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.baseURL+"/v2/pre-recorded", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrTranscription, err)
	}
	req.Header.Set("x-gladia-key", a.key)
	req.Header.Set("Content-Type", "application/json")

	var job struct {
		ID string `json:"id"`
	}
	if err := a.do(req, &job); err != nil {
		return "", fmt.Errorf("%w: submit: %v", ports.ErrTranscription, err)
	}
	if job.ID == "" {
		return "", fmt.Errorf("%w: response has no job id", ports.ErrTranscription)
	}
	a.log.Info().Str("job", job.ID).Str("language", language).Msg("transcription submitted")
	return a.poll(ctx, job.ID)
}

type jobStatus struct {
	Status    string `json:"status"`
	ErrorCode *int   `json:"error_code"`
	Error     any    `json:"error"`
	Result    struct {
		Transcription struct {
			FullTranscript string `json:"full_transcript"`
		} `json:"transcription"`
	} `json:"result"`
}

func (a *Adapter) poll(ctx context.Context, id string) (string, error) {
	url := a.baseURL + "/v2/pre-recorded/" + id
	for attempt := 1; attempt <= a.attempts; attempt++ {
		st, err := a.status(ctx, url)
		if err != nil {
			return "", fmt.Errorf("%w: poll: %v", ports.ErrTranscription, err)
		}
		a.log.Debug().Str("job", id).Int("attempt", attempt).Int("max", a.attempts).Str("status", st.Status).Msg("transcription poll")

		switch st.Status {
		case "done":
			return st.Result.Transcription.FullTranscript, nil
		case "error":
			return "", fmt.Errorf("%w: remote error: %s", ports.ErrTranscription, remoteError(st))
		}

		if attempt == a.attempts {
			break
		}
		t := time.NewTimer(a.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", fmt.Errorf("%w: %v", ports.ErrTranscription, ctx.Err())
		case <-t.C:
		}
	}
	a.log.Warn().Str("job", id).Int("attempts", a.attempts).Msg("transcription timed out")
	return "", fmt.Errorf("%w after %d attempts", ports.ErrTranscriptionTimeout, a.attempts)
}

func (a *Adapter) status(ctx context.Context, url string) (jobStatus, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return jobStatus{}, err
	}
	req.Header.Set("x-gladia-key", a.key)
	var st jobStatus
	if err := a.do(req, &st); err != nil {
		return jobStatus{}, err
	}
	return st, nil
}

func (a *Adapter) do(req *http.Request, out any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("gladia status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return fmt.Errorf("gladia status %d: %s", resp.StatusCode, redact.Body(rb, a.key))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gladia response: %w", err)
	}
	return nil
}

func remoteError(st jobStatus) string {
	switch v := st.Error.(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		if m, ok := v["message"].(string); ok && m != "" {
			return m
		}
	}
	if st.ErrorCode != nil {
		return fmt.Sprintf("error_code %d", *st.ErrorCode)
	}
	return "unknown error"
}
