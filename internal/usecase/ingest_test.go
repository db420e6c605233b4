package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forPelevin/scenarist/internal/ports"
)

type fakeAudio struct {
	err    error
	called bool
}

func (f *fakeAudio) ExtractAudio(_ context.Context, in, out string) error {
	f.called = true
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(out, []byte("wav:"+filepath.Base(in)), 0o644)
}

func TestIngestPaste(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Deps{})
	if err := s.IngestPaste(" \n\t "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if s.Snapshot().Stage != StageNoInput {
		t.Fatalf("empty paste must not change stage")
	}
	if err := s.IngestPaste("  本文です。\n"); err != nil {
		t.Fatalf("paste: %v", err)
	}
	st := s.Snapshot()
	if st.Stage != StageRaw || st.RawText != "本文です。" {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestIngestTextFile_PermissiveDecode(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Deps{})
	in := []byte("\xEF\xBB\xBF今日は\xff晴れ")
	if err := s.IngestTextFile("/tmp/notes/メモ.txt", bytes.NewReader(in)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if got := s.Snapshot().RawText; got != "今日は�晴れ" {
		t.Fatalf("unexpected decoded text %q", got)
	}

	if err := s.Format(context.Background(), FormatVerbatim); err != nil {
		t.Fatalf("format: %v", err)
	}
	if got := s.Snapshot().Filename; got != "メモ" {
		t.Fatalf("expected filename from basename, got %q", got)
	}
}

func TestIngestMedia_MissingCredentials(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		deps Deps
	}{
		{name: "no backends"},
		{name: "no generator", deps: Deps{Transcriber: &fakeTranscriber{text: "x"}}},
		{name: "no transcriber", deps: Deps{Generator: &routeGen{}}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newTestSession(t, tc.deps)
			err := s.IngestMedia(context.Background(), "a.mp4", strings.NewReader("data"))
			if !errors.Is(err, ErrMissingCredentials) {
				t.Fatalf("expected ErrMissingCredentials, got %v", err)
			}
		})
	}
}

func TestIngestMedia_TranscribesAndCleansUp(t *testing.T) {
	t.Parallel()

	scratch := t.TempDir()
	tr := &fakeTranscriber{text: "文字起こし結果"}
	s := newTestSession(t, Deps{Transcriber: tr, Generator: &routeGen{}, ScratchDir: scratch})

	if err := s.IngestMedia(context.Background(), "clip.MP4", strings.NewReader("media-bytes")); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if string(tr.uploaded) != "media-bytes" {
		t.Fatalf("unexpected uploaded content %q", tr.uploaded)
	}
	if filepath.Ext(tr.uploadedPath) != ".mp4" {
		t.Fatalf("expected extension kept, got %q", tr.uploadedPath)
	}
	if tr.language != "ja" {
		t.Fatalf("expected default language ja, got %q", tr.language)
	}
	st := s.Snapshot()
	if st.Stage != StageRaw || st.RawText != "文字起こし結果" {
		t.Fatalf("unexpected state %+v", st)
	}
	entries, _ := os.ReadDir(scratch)
	if len(entries) != 0 {
		t.Fatalf("scratch files left behind: %v", entries)
	}
}

func TestIngestMedia_ExtractsAudio(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		audioErr   error
		wantPrefix string
	}{
		{name: "extracted", wantPrefix: "wav:"},
		{name: "extract fails uploads original", audioErr: errors.New("no ffmpeg"), wantPrefix: "media"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			scratch := t.TempDir()
			tr := &fakeTranscriber{text: "ok"}
			audio := &fakeAudio{err: tc.audioErr}
			s := newTestSession(t, Deps{Transcriber: tr, Generator: &routeGen{}, Audio: audio, ScratchDir: scratch, Language: "en"})

			if err := s.IngestMedia(context.Background(), "a.mov", strings.NewReader("media")); err != nil {
				t.Fatalf("ingest: %v", err)
			}
			if !audio.called {
				t.Fatalf("expected extractor call")
			}
			if !strings.HasPrefix(string(tr.uploaded), tc.wantPrefix) {
				t.Fatalf("uploaded %q, want prefix %q", tr.uploaded, tc.wantPrefix)
			}
			if tr.language != "en" {
				t.Fatalf("expected configured language, got %q", tr.language)
			}
			entries, _ := os.ReadDir(scratch)
			if len(entries) != 0 {
				t.Fatalf("scratch files left behind: %v", entries)
			}
		})
	}
}

func TestIngestMedia_FailuresKeepState(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		tr      *fakeTranscriber
		wantErr error
	}{
		{name: "upload", tr: &fakeTranscriber{uploadErr: fmt.Errorf("%w: status 500", ports.ErrUpload)}, wantErr: ports.ErrUpload},
		{name: "timeout", tr: &fakeTranscriber{err: fmt.Errorf("%w after 60 attempts", ports.ErrTranscriptionTimeout)}, wantErr: ports.ErrTranscription},
		{name: "empty transcript", tr: &fakeTranscriber{text: "  "}, wantErr: ErrEmptyInput},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := newTestSession(t, Deps{Transcriber: tc.tr, Generator: &routeGen{}, ScratchDir: t.TempDir()})
			if err := s.IngestPaste("前の台本"); err != nil {
				t.Fatalf("paste: %v", err)
			}
			err := s.IngestMedia(context.Background(), "a.wav", strings.NewReader("x"))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if got := s.Snapshot().RawText; got != "前の台本" {
				t.Fatalf("state changed on failure: %q", got)
			}
		})
	}
}
