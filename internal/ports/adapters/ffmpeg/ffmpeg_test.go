package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestExtractAudio_MissingBinary(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "no-such-ffmpeg"))
	err := a.ExtractAudio(context.Background(), "in.mp4", "out.wav")
	if err == nil || !strings.Contains(err.Error(), "ffmpeg extract audio:") {
		t.Fatalf("expected wrapped ffmpeg error, got %v", err)
	}
}

func TestExtractAudio_PassesArgs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub")
	}
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	stub := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\necho \"$@\" > " + argsFile + "\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	if err := New(stub).ExtractAudio(context.Background(), "in.mp4", "out.wav"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	got := strings.TrimSpace(string(b))
	for _, want := range []string{"-i in.mp4", "-vn", "-ac 1", "-ar 16000", "out.wav"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in args %q", want, got)
		}
	}
}

func TestNew_DefaultBinary(t *testing.T) {
	if New("").bin != "ffmpeg" {
		t.Fatalf("expected ffmpeg default")
	}
}
