package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Adapter shells out to ffmpeg to shrink media before upload.
type Adapter struct {
	bin string
}

func New(ffmpegPath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Adapter{bin: ffmpegPath}
}

// ExtractAudio writes a mono 16kHz WAV track of in to out.
func (a *Adapter) ExtractAudio(ctx context.Context, in, out string) error {
	cmd := exec.CommandContext(ctx, a.bin,
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", in,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		out,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, strings.TrimSpace(string(b)))
	}
	return nil
}
