package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/scenarist/internal/pipeline"
	"github.com/forPelevin/scenarist/internal/types"
	"github.com/forPelevin/scenarist/internal/usecase"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <input>",
		Short: "Rewrite one media file, text file or stdin paste (-) into a scenario bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}
	f := cmd.Flags()
	f.String("out", "out", "Output directory")
	f.String("politeness", "", "casual, polite or formal")
	f.String("emotion", "", "gentle, strong or cool")
	f.String("style", "", "explanatory, conversational or narrative")
	f.String("instruction", "", "Free-form extra instruction for the rewrite")
	f.Int("pages", types.DefaultPages, fmt.Sprintf("Pages per scenario [%d,%d]", types.MinPages, types.MaxPages))
	f.Int("variations", types.DefaultVariations, fmt.Sprintf("Number of candidates [%d,%d]", types.MinVariations, types.MaxVariations))
	f.Int("pick", 0, "Adopt this candidate (1-based) when several are generated")
	f.StringSlice("questioners", nil, "Questioners taking part (default all, empty for a monologue)")
	f.String("format", "", "auto, wrap or verbatim (default verbatim for stdin, auto otherwise)")
	f.Bool("metadata", false, "Also generate titles, descriptions and hashtags")
	return cmd
}

func run(cmd *cobra.Command, input string) error {
	outDir, _ := cmd.Flags().GetString("out")
	politeness, _ := cmd.Flags().GetString("politeness")
	emotion, _ := cmd.Flags().GetString("emotion")
	style, _ := cmd.Flags().GetString("style")
	instruction, _ := cmd.Flags().GetString("instruction")
	pages, _ := cmd.Flags().GetInt("pages")
	nvar, _ := cmd.Flags().GetInt("variations")
	pick, _ := cmd.Flags().GetInt("pick")
	format, _ := cmd.Flags().GetString("format")
	metadata, _ := cmd.Flags().GetBool("metadata")

	var questioners []string
	if cmd.Flags().Changed("questioners") {
		questioners, _ = cmd.Flags().GetStringSlice("questioners")
		if questioners == nil {
			questioners = []string{}
		}
	}

	path := input
	if input != "-" {
		abs, err := filepath.Abs(input)
		if err != nil {
			return err
		}
		path = abs
	}

	in := pipeline.RunInput{
		Path:  path,
		Stdin: cmd.InOrStdin(),
		Options: types.RewriteOptions{
			Politeness:        types.Politeness(politeness),
			Emotion:           types.Emotion(emotion),
			Style:             types.Style(style),
			CustomInstruction: instruction,
			NumPages:          pages,
			NumVariations:     nvar,
		},
		Questioners: questioners,
		Pick:        pick,
		Format:      usecase.FormatMode(format),
		Metadata:    metadata,
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.OutDir = outDir
	if pipeline.DetectKind(path) == pipeline.KindMedia && cfg.GladiaAPIKey == "" {
		return errors.New("GLADIA_API_KEY is required for media input (set it in .env or run `scenarist keys set`)")
	}
	if !hasGeneratorKey(cfg) {
		return fmt.Errorf("%s is required (set it in .env or run `scenarist keys set`)", generatorKeyName(cfg))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Hour)
	defer cancel()

	res, err := pipeline.Run(ctx, cfg, in)
	if err != nil {
		return err
	}
	for _, a := range res.Manifest.Artifacts {
		fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(res.Dir, a.File))
	}
	return nil
}

func hasGeneratorKey(cfg pipeline.Config) bool {
	if cfg.Backend == pipeline.BackendOpenRouter {
		return cfg.OpenRouterAPIKey != ""
	}
	return cfg.GeminiAPIKey != ""
}

func generatorKeyName(cfg pipeline.Config) string {
	if cfg.Backend == pipeline.BackendOpenRouter {
		return "OPENROUTER_API_KEY"
	}
	return "GEMINI_API_KEY"
}
