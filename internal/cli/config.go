package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/forPelevin/scenarist/internal/pipeline"
	"github.com/forPelevin/scenarist/internal/ports/adapters/gemini"
	"github.com/forPelevin/scenarist/internal/ports/adapters/gladia"
	"github.com/forPelevin/scenarist/internal/ports/adapters/openrouter"
	"github.com/forPelevin/scenarist/internal/usecase"
)

// keyPlaceholder is the hint text shipped in sample .env files.
const keyPlaceholder = "ここに貼り付け"

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// getenvKey reads a credential. The placeholder counts as unset.
func getenvKey(k string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == keyPlaceholder {
		return ""
	}
	return v
}

// loadConfig builds the pipeline config from env and persistent flags.
func loadConfig(cmd *cobra.Command) (pipeline.Config, error) {
	flags := cmd.Flags()
	dataDir, _ := flags.GetString("data-dir")
	pollInterval, _ := flags.GetDuration("poll-interval")
	pollAttempts, _ := flags.GetInt("poll-attempts")
	lineTarget, _ := flags.GetInt("line-target")
	lineSlack, _ := flags.GetInt("line-slack")
	extractAudio, _ := flags.GetBool("extract-audio")
	ffmpegPath, _ := flags.GetString("ffmpeg")

	cfg := pipeline.Config{
		DataDir:  dataDir,
		Language: getenvDefault("SCENARIST_LANGUAGE", "ja"),

		GladiaAPIKey:  getenvKey("GLADIA_API_KEY"),
		GladiaBaseURL: getenvDefault("GLADIA_BASE_URL", gladia.DefaultBaseURL),
		PollInterval:  pollInterval,
		PollAttempts:  pollAttempts,

		Backend: getenvDefault("SCENARIST_BACKEND", pipeline.BackendGemini),

		GeminiAPIKey:  getenvKey("GEMINI_API_KEY"),
		GeminiModel:   getenvDefault("GEMINI_MODEL", gemini.DefaultModel),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),

		OpenRouterAPIKey:       getenvKey("OPENROUTER_API_KEY"),
		OpenRouterModel:        getenvDefault("OPENROUTER_MODEL", openrouter.DefaultModel),
		OpenRouterBaseURL:      getenvDefault("OPENROUTER_BASE_URL", openrouter.DefaultBaseURL),
		OpenRouterAllowedHosts: openrouter.SplitHosts(os.Getenv("OPENROUTER_ALLOWED_HOSTS")),

		ExtractAudio: extractAudio,
		FFmpegPath:   ffmpegPath,

		LineTarget: lineTarget,
		LineSlack:  lineSlack,

		Log: log.Logger,
	}
	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func openSession(cmd *cobra.Command) (*usecase.Session, pipeline.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sess, err := pipeline.NewSession(ctx, cfg)
	if err != nil {
		return nil, cfg, err
	}
	return sess, cfg, nil
}
