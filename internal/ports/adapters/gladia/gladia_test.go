package gladia

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/forPelevin/scenarist/internal/ports"
)

const testKey = "gladia-secret-key"

func newTestAdapter(t *testing.T, h http.Handler, attempts int) *Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(testKey, Options{BaseURL: srv.URL + "/", PollInterval: time.Millisecond, MaxAttempts: attempts})
}

func TestUpload(t *testing.T) {
	media := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(media, []byte("fake-media"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/upload" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("x-gladia-key"); got != testKey {
			t.Errorf("unexpected key header %q", got)
		}
		f, hdr, err := r.FormFile("audio")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		if hdr.Filename != "clip.mp4" || string(b) != "fake-media" {
			t.Errorf("unexpected upload %q: %q", hdr.Filename, b)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"audio_url": "https://files.gladia.io/abc"})
	}), 1)

	got, err := a.Upload(context.Background(), media)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://files.gladia.io/abc" {
		t.Fatalf("unexpected audio url %q", got)
	}
}

func TestUpload_RemoteFailureIsRedacted(t *testing.T) {
	media := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(media, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		http.Error(w, `{"message":"bad key `+testKey+`"}`, http.StatusUnauthorized)
	}), 1)

	_, err := a.Upload(context.Background(), media)
	if !errors.Is(err, ports.ErrUpload) {
		t.Fatalf("expected ErrUpload, got %v", err)
	}
	if strings.Contains(err.Error(), testKey) {
		t.Fatalf("error leaks key: %v", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status in error: %v", err)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	a := New(testKey, Options{})
	_, err := a.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"))
	if !errors.Is(err, ports.ErrUpload) {
		t.Fatalf("expected ErrUpload, got %v", err)
	}
}

// jobServer answers a submit and then serves statuses in order, repeating the last one.
func jobServer(t *testing.T, polls *int32, statuses ...string) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/pre-recorded", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AudioURL       string `json:"audio_url"`
			LanguageConfig struct {
				Languages []string `json:"languages"`
			} `json:"language_config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode submit: %v", err)
		}
		if body.AudioURL == "" || len(body.LanguageConfig.Languages) != 1 || body.LanguageConfig.Languages[0] != "ja" {
			t.Errorf("unexpected submit body %+v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "job-1"})
	})
	mux.HandleFunc("/v2/pre-recorded/job-1", func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(polls, 1))
		st := statuses[len(statuses)-1]
		if n <= len(statuses) {
			st = statuses[n-1]
		}
		resp := map[string]any{"status": st}
		switch st {
		case "done":
			resp["result"] = map[string]any{"transcription": map[string]any{"full_transcript": "こんにちは。"}}
		case "error":
			resp["error_code"] = 500
			resp["error"] = map[string]any{"message": "audio could not be decoded"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	return mux
}

func TestTranscribe_PollsUntilDone(t *testing.T) {
	var polls int32
	a := newTestAdapter(t, jobServer(t, &polls, "queued", "processing", "done"), 10)

	got, err := a.Transcribe(context.Background(), "https://files.gladia.io/abc", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "こんにちは。" {
		t.Fatalf("unexpected transcript %q", got)
	}
	if n := atomic.LoadInt32(&polls); n != 3 {
		t.Fatalf("expected 3 polls, got %d", n)
	}
}

func TestTranscribe_RemoteError(t *testing.T) {
	var polls int32
	a := newTestAdapter(t, jobServer(t, &polls, "processing", "error"), 10)

	_, err := a.Transcribe(context.Background(), "https://files.gladia.io/abc", "ja")
	if !errors.Is(err, ports.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
	if errors.Is(err, ports.ErrTranscriptionTimeout) {
		t.Fatalf("remote error must not look like a timeout: %v", err)
	}
	if !strings.Contains(err.Error(), "audio could not be decoded") {
		t.Fatalf("expected remote message in error: %v", err)
	}
}

func TestTranscribe_TimesOutAtCeiling(t *testing.T) {
	var polls int32
	a := newTestAdapter(t, jobServer(t, &polls, "processing"), 4)

	got, err := a.Transcribe(context.Background(), "https://files.gladia.io/abc", "ja")
	if !errors.Is(err, ports.ErrTranscriptionTimeout) {
		t.Fatalf("expected ErrTranscriptionTimeout, got %v (text %q)", err, got)
	}
	if !errors.Is(err, ports.ErrTranscription) {
		t.Fatalf("timeout must also be a transcription error: %v", err)
	}
	if n := atomic.LoadInt32(&polls); n != 4 {
		t.Fatalf("expected 4 polls, got %d", n)
	}
}

func TestTranscribe_ContextCancelled(t *testing.T) {
	var polls int32
	srv := httptest.NewServer(jobServer(t, &polls, "processing"))
	t.Cleanup(srv.Close)
	a := New(testKey, Options{BaseURL: srv.URL, PollInterval: time.Hour, MaxAttempts: 5})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := a.Transcribe(ctx, "https://files.gladia.io/abc", "ja")
	if !errors.Is(err, ports.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
	if errors.Is(err, ports.ErrTranscriptionTimeout) {
		t.Fatalf("cancellation is not the attempt ceiling: %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	a := New("k", Options{})
	if a.baseURL != DefaultBaseURL || a.interval != DefaultPollInterval || a.attempts != DefaultMaxAttempts {
		t.Fatalf("unexpected defaults: %+v", a)
	}
}
