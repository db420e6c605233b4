package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/forPelevin/scenarist/internal/domain/captions"
	"github.com/forPelevin/scenarist/internal/domain/prompts"
	"github.com/forPelevin/scenarist/internal/ports"
	"github.com/forPelevin/scenarist/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/scenarist/internal/ports/adapters/filestore"
	"github.com/forPelevin/scenarist/internal/ports/adapters/gemini"
	"github.com/forPelevin/scenarist/internal/ports/adapters/gladia"
	"github.com/forPelevin/scenarist/internal/ports/adapters/openrouter"
	"github.com/forPelevin/scenarist/internal/types"
	"github.com/forPelevin/scenarist/internal/usecase"
)

const (
	BackendGemini     = "gemini"
	BackendOpenRouter = "openrouter"
)

type Config struct {
	// DataDir holds characters.json and templates.json. Defaults to ".".
	DataDir string
	// OutDir is the root for per-run output directories. Defaults to "out".
	OutDir string
	// ScratchDir holds media while it is transcribed. Defaults to os.TempDir().
	ScratchDir string
	Language   string

	GladiaAPIKey  string
	GladiaBaseURL string
	PollInterval  time.Duration
	PollAttempts  int

	Backend string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string

	// ExtractAudio converts media to mono 16kHz WAV with ffmpeg before upload.
	ExtractAudio bool
	FFmpegPath   string

	LineTarget int
	LineSlack  int

	Log zerolog.Logger
}

func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendGemini:
	case BackendOpenRouter:
		if err := openrouter.CheckBaseURL(c.OpenRouterBaseURL, c.OpenRouterAllowedHosts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendGemini, BackendOpenRouter)
	}
	if c.PollInterval < 0 {
		return errors.New("poll interval must be >= 0")
	}
	if c.PollAttempts < 0 {
		return errors.New("poll attempts must be >= 0")
	}
	if c.LineTarget < 0 {
		return errors.New("line target must be >= 0")
	}
	if c.LineSlack < 0 {
		return errors.New("line slack must be >= 0")
	}
	return nil
}

// NewSession wires adapters for cfg. Backends without a key are left out so
// the session reports missing credentials when they are needed.
func NewSession(ctx context.Context, cfg Config) (*usecase.Session, error) {
	log := cfg.Log
	d := usecase.Deps{
		Store:      filestore.New(cfg.DataDir, log.With().Str("component", "store").Logger()),
		Wrapper:    captions.Wrapper{Target: cfg.LineTarget, Slack: cfg.LineSlack},
		Prompts:    prompts.Builder{LineLength: cfg.LineTarget},
		Language:   cfg.Language,
		ScratchDir: cfg.ScratchDir,
		Log:        log.With().Str("component", "session").Logger(),
	}

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if gen != nil {
		d.Generator = gen
	}
	if cfg.GladiaAPIKey != "" {
		d.Transcriber = gladia.New(cfg.GladiaAPIKey, gladia.Options{
			BaseURL:      cfg.GladiaBaseURL,
			PollInterval: cfg.PollInterval,
			MaxAttempts:  cfg.PollAttempts,
			Log:          log.With().Str("component", "gladia").Logger(),
		})
	}
	if cfg.ExtractAudio {
		d.Audio = ffmpeg.New(cfg.FFmpegPath)
	}
	return usecase.New(d)
}

func newGenerator(ctx context.Context, cfg Config) (ports.Generator, error) {
	switch cfg.Backend {
	case BackendOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			return nil, nil
		}
		return openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL,
			cfg.Log.With().Str("component", "openrouter").Logger()), nil
	default:
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		g, err := gemini.New(ctx, cfg.GeminiAPIKey, gemini.Options{
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Log:     cfg.Log.With().Str("component", "gemini").Logger(),
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	}
}

type InputKind string

const (
	KindMedia InputKind = "media"
	KindText  InputKind = "text"
	KindPaste InputKind = "paste"
)

// DetectKind maps a CLI argument to an input kind: "-" is stdin paste and
// a .txt file is a text file. Everything else is treated as media.
func DetectKind(arg string) InputKind {
	switch {
	case arg == "-":
		return KindPaste
	case strings.EqualFold(filepath.Ext(arg), ".txt"):
		return KindText
	default:
		return KindMedia
	}
}

type RunInput struct {
	// Path is the input file, or "-" to read pasted text from Stdin.
	Path  string
	Stdin io.Reader

	Options types.RewriteOptions
	// Questioners selects who asks questions; nil takes the whole roster.
	Questioners []string
	// Pick adopts candidate Pick (1-based) of a multi-variation rewrite.
	// Zero keeps every candidate unadopted.
	Pick int
	// Format defaults to verbatim for pasted text and auto otherwise.
	Format   usecase.FormatMode
	Metadata bool
}

func (in RunInput) Validate() error {
	if in.Path == "" {
		return errors.New("input is empty")
	}
	if in.Path != "-" {
		if _, err := os.Stat(in.Path); err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
	}
	opts := in.Options.WithDefaults()
	if err := opts.Validate(); err != nil {
		return err
	}
	if in.Pick < 0 || in.Pick > opts.NumVariations {
		return fmt.Errorf("pick must be in [0,%d], got %d", opts.NumVariations, in.Pick)
	}
	switch in.Format {
	case "", usecase.FormatAuto, usecase.FormatWrap, usecase.FormatVerbatim:
	default:
		return fmt.Errorf("unknown format mode %q", in.Format)
	}
	return nil
}

type Result struct {
	// Dir is the run directory holding the bundle and manifest.json.
	Dir      string
	Manifest types.Manifest
}

// Run ingests one input, rewrites it and writes the export bundle plus
// manifest.json into a fresh directory under cfg.OutDir.
func Run(ctx context.Context, cfg Config, in RunInput) (Result, error) {
	log := cfg.Log
	sess, err := NewSession(ctx, cfg)
	if err != nil {
		return Result{}, err
	}

	kind := DetectKind(in.Path)
	log.Info().Str("input", in.Path).Str("kind", string(kind)).Msg("ingesting")
	if err := ingest(ctx, sess, kind, in); err != nil {
		return Result{}, err
	}

	mode := in.Format
	if mode == "" {
		mode = usecase.FormatAuto
		if kind == KindPaste {
			mode = usecase.FormatVerbatim
		}
	}
	if err := sess.Format(ctx, mode); err != nil {
		return Result{}, err
	}

	opts := in.Options.WithDefaults()
	if err := sess.Rewrite(ctx, usecase.RewriteRequest{Options: opts, Questioners: in.Questioners}); err != nil {
		return Result{}, err
	}
	switch sess.Snapshot().Stage {
	case usecase.StageSingleResult:
		err = sess.Adopt()
	case usecase.StageMultiResult:
		if in.Pick > 0 {
			err = sess.SelectVariation(in.Pick - 1)
		}
	}
	if err != nil {
		return Result{}, err
	}
	if in.Metadata {
		if err := sess.GenerateMetadata(ctx); err != nil {
			return Result{}, err
		}
	}

	cast, err := sess.Cast(in.Questioners)
	if err != nil {
		return Result{}, err
	}
	artifacts, err := sess.Export()
	if err != nil {
		return Result{}, err
	}

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runName := in.Path
	if kind == KindPaste {
		runName = "paste"
	}
	runOutDir := buildRunOutDir(outDir, runName, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return Result{}, err
	}
	log.Info().Str("dir", runOutDir).Msg("output run dir")

	st := sess.Snapshot()
	m := types.Manifest{
		ID:       uuid.NewString(),
		Input:    in.Path,
		Kind:     string(kind),
		Filename: st.Filename,
		Stage:    st.Stage.String(),
		Options:  opts,
	}
	for _, c := range cast {
		m.Cast = append(m.Cast, c.Name)
	}
	for _, a := range artifacts {
		if err := os.WriteFile(filepath.Join(runOutDir, a.Name), []byte(a.Content), 0o644); err != nil {
			return Result{}, err
		}
		m.Artifacts = append(m.Artifacts, types.ManifestEntry{Name: a.Name, File: a.Name, Bytes: len(a.Content)})
	}

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(runOutDir, "manifest.json")
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return Result{}, err
	}
	log.Info().Int("artifacts", len(m.Artifacts)).Str("path", manifestPath).Msg("manifest written")
	return Result{Dir: runOutDir, Manifest: m}, nil
}

func ingest(ctx context.Context, sess *usecase.Session, kind InputKind, in RunInput) error {
	if kind == KindPaste {
		if in.Stdin == nil {
			return errors.New("stdin is not available")
		}
		b, err := io.ReadAll(in.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return sess.IngestPaste(string(b))
	}

	f, err := os.Open(in.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	if kind == KindText {
		return sess.IngestTextFile(in.Path, f)
	}
	return sess.IngestMedia(ctx, in.Path, f)
}

func buildRunOutDir(outRoot, input string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", input, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.Transcriber = (*gladia.Adapter)(nil)
var _ ports.Generator = (*gemini.Adapter)(nil)
var _ ports.Generator = (*openrouter.Adapter)(nil)
var _ ports.AudioExtractor = (*ffmpeg.Adapter)(nil)
var _ ports.Store = (*filestore.Store)(nil)
