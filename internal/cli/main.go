package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present
	setupLogging(getenvDefault("LOG_LEVEL", "info"))

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(logLevel string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scenarist",
		Short:         "Rewrite transcripts and notes into TikTok manga scenarios",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	// Visible flags
	root.PersistentFlags().String("data-dir", getenvDefault("SCENARIST_DATA_DIR", "."), "Directory holding characters.json and templates.json")

	// Hidden tuning flags (internal)
	root.PersistentFlags().Duration("poll-interval", 0, "Transcription poll interval")
	root.PersistentFlags().Int("poll-attempts", 0, "Transcription poll ceiling")
	root.PersistentFlags().Int("line-target", 14, "Target caption line length in runes")
	root.PersistentFlags().Int("line-slack", 4, "Allowed overshoot of the line target")
	root.PersistentFlags().Bool("extract-audio", false, "Extract mono 16kHz audio with ffmpeg before upload")
	root.PersistentFlags().String("ffmpeg", "ffmpeg", "ffmpeg binary")
	for _, name := range []string{"poll-interval", "poll-attempts", "line-target", "line-slack", "extract-audio", "ffmpeg"} {
		_ = root.PersistentFlags().MarkHidden(name)
	}

	root.AddCommand(
		newRunCmd(),
		newCastCmd(),
		newTemplatesCmd(),
		newKeysCmd(),
		newServeCmd(),
		newWrapCmd(),
	)
	return root
}
