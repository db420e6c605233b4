package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/forPelevin/scenarist/internal/domain/variations"
	"github.com/forPelevin/scenarist/internal/ports"
	"github.com/forPelevin/scenarist/internal/types"
)

// formattedSession returns a session holding sample as its working text.
func formattedSession(t *testing.T, gen *routeGen, roster []types.Character, closing string) *Session {
	t.Helper()
	store := &memStore{
		roster:  roster,
		tmpl:    types.TemplateConfig{LeadTemplates: "・誘導文の例", ClosingText: closing},
		hasTmpl: true,
	}
	d := Deps{Store: store}
	if gen != nil {
		d.Generator = gen
	}
	s := newTestSession(t, d)
	if err := s.IngestPaste(sample); err != nil {
		t.Fatalf("paste: %v", err)
	}
	if err := s.Format(context.Background(), FormatVerbatim); err != nil {
		t.Fatalf("format: %v", err)
	}
	return s
}

func TestAppendClosing(t *testing.T) {
	cases := []struct {
		body, closing, want string
	}{
		{"Hello", "Bye", "Hello\nBye"},
		{"Hello\n\n  ", "  Bye\n", "Hello\nBye"},
		{"Hello\n", "", "Hello"},
		{"Hello", " \n ", "Hello"},
	}
	for _, tc := range cases {
		if got := appendClosing(tc.body, tc.closing); got != tc.want {
			t.Fatalf("appendClosing(%q, %q) = %q, want %q", tc.body, tc.closing, got, tc.want)
		}
	}
}

func TestRewrite_Single(t *testing.T) {
	t.Parallel()

	gen := &routeGen{rewrite: "Hello\n\n"}
	s := formattedSession(t, gen, chars("太郎", "花子"), "Bye")

	err := s.Rewrite(context.Background(), RewriteRequest{Options: types.RewriteOptions{
		Politeness:        types.PolitenessCasual,
		CustomInstruction: "明るく",
	}})
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	st := s.Snapshot()
	if st.Stage != StageSingleResult || st.RewrittenText != "Hello\nBye" || st.Variations != nil {
		t.Fatalf("unexpected state %+v", st)
	}

	p := gen.last()
	for _, want := range []string{"【丁寧度】", "【追加指示】\n明るく", "花子は質問者です", "【誘導文の参考】", "全体を15ページで構成"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
	if !strings.HasSuffix(p, sample+"\n") {
		t.Fatalf("source text must come last:\n%s", p)
	}
}

func TestRewrite_MultiThenSingleStaysExclusive(t *testing.T) {
	t.Parallel()

	gen := &routeGen{rewrite: "案A\n" + variations.Delimiter + "\n\n案B  \n" + variations.Delimiter + "\n"}
	s := formattedSession(t, gen, chars("太郎"), "閉じ")

	ctx := context.Background()
	if err := s.Rewrite(ctx, RewriteRequest{Options: types.RewriteOptions{NumVariations: 3}}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	st := s.Snapshot()
	if st.Stage != StageMultiResult || st.RewrittenText != "" {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(st.Variations) != 2 || st.Variations[0] != "案A\n閉じ" || st.Variations[1] != "案B\n閉じ" {
		t.Fatalf("unexpected variations %q", st.Variations)
	}
	if !strings.Contains(gen.last(), "3パターン") {
		t.Fatalf("expected variation prompt")
	}

	gen.rewrite = "単独"
	if err := s.Rewrite(ctx, RewriteRequest{}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	st = s.Snapshot()
	if st.Stage != StageSingleResult || st.Variations != nil || st.RewrittenText != "単独\n閉じ" {
		t.Fatalf("results not exclusive: %+v", st)
	}
}

func TestRewrite_MonologueWhenNoQuestionersSelected(t *testing.T) {
	t.Parallel()

	gen := &routeGen{rewrite: "独白"}
	s := formattedSession(t, gen, chars("太郎", "花子"), "")
	if err := s.Rewrite(context.Background(), RewriteRequest{Questioners: []string{}}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	p := gen.last()
	if !strings.Contains(p, "モノローグ") || strings.Contains(p, "花子") {
		t.Fatalf("expected monologue prompt:\n%s", p)
	}
}

func TestRewrite_Preconditions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		gen     *routeGen
		roster  []types.Character
		req     RewriteRequest
		wantErr error
	}{
		{name: "no generator", roster: chars("太郎"), wantErr: ErrMissingCredentials},
		{name: "no cast", gen: &routeGen{rewrite: "x"}, wantErr: ErrNoCast},
		{name: "unknown politeness", gen: &routeGen{rewrite: "x"}, roster: chars("太郎"), req: RewriteRequest{Options: types.RewriteOptions{Politeness: "rude"}}, wantErr: ErrInvalidOptions},
		{name: "pages out of range", gen: &routeGen{rewrite: "x"}, roster: chars("太郎"), req: RewriteRequest{Options: types.RewriteOptions{NumPages: 41}}, wantErr: ErrInvalidOptions},
		{name: "unknown questioner", gen: &routeGen{rewrite: "x"}, roster: chars("太郎"), req: RewriteRequest{Questioners: []string{"誰か"}}, wantErr: ErrCharacterNotFound},
		{name: "backend error", gen: &routeGen{rewriteErr: fmt.Errorf("%w: status 500", ports.ErrGeneration)}, roster: chars("太郎"), wantErr: ports.ErrGeneration},
		{name: "backend empty", gen: &routeGen{rewrite: " \n "}, roster: chars("太郎"), wantErr: ErrGenerationFailed},
		{name: "only delimiters", gen: &routeGen{rewrite: variations.Delimiter}, roster: chars("太郎"), req: RewriteRequest{Options: types.RewriteOptions{NumVariations: 2}}, wantErr: ErrGenerationFailed},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := formattedSession(t, tc.gen, tc.roster, "Bye")
			before := s.Snapshot()
			err := s.Rewrite(context.Background(), tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			after := s.Snapshot()
			if after.Stage != before.Stage || after.RewrittenText != "" || after.Variations != nil {
				t.Fatalf("failed rewrite changed state: %+v", after)
			}
		})
	}
}

func TestRewrite_BackendErrorIsGenerationFailed(t *testing.T) {
	t.Parallel()

	s := formattedSession(t, &routeGen{rewriteErr: ports.ErrGeneration}, chars("太郎"), "")
	err := s.Rewrite(context.Background(), RewriteRequest{})
	if !errors.Is(err, ErrGenerationFailed) || !errors.Is(err, ports.ErrGeneration) {
		t.Fatalf("expected both sentinels, got %v", err)
	}
}

func TestAdoptDiscardAndMetadataFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gen := &routeGen{rewrite: "第1稿", metadata: "【タイトル案】\n1）テスト\n"}
	s := formattedSession(t, gen, chars("太郎"), "Bye")

	if err := s.Adopt(); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("adopt without result: %v", err)
	}
	if err := s.Rewrite(ctx, RewriteRequest{}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := s.Discard(); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if st := s.Snapshot(); st.Stage != StageFormatted || st.FormattedText != sample || st.RewrittenText != "" {
		t.Fatalf("discard should return to formatted: %+v", st)
	}

	_ = s.Rewrite(ctx, RewriteRequest{})
	if err := s.EditResult("第1稿（修正）\nBye"); err != nil {
		t.Fatalf("edit result: %v", err)
	}
	if err := s.Adopt(); err != nil {
		t.Fatalf("adopt: %v", err)
	}
	st := s.Snapshot()
	if st.Stage != StageAdopted || st.AdoptedScenario != "第1稿（修正）\nBye" || st.FormattedText != st.AdoptedScenario || st.RewrittenText != "" {
		t.Fatalf("unexpected adopted state %+v", st)
	}

	// Rewriting an adopted scenario and discarding returns to it.
	gen.rewrite = "第2稿"
	if err := s.Rewrite(ctx, RewriteRequest{}); err != nil {
		t.Fatalf("rewrite adopted: %v", err)
	}
	if !strings.Contains(gen.last(), "第1稿（修正）") {
		t.Fatalf("expected adopted scenario as source")
	}
	_ = s.Discard()
	if st := s.Snapshot(); st.Stage != StageAdopted || st.AdoptedScenario != "第1稿（修正）\nBye" {
		t.Fatalf("discard should return to adopted: %+v", st)
	}

	if err := s.EditMetadata("x"); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("edit metadata before generation: %v", err)
	}
	if err := s.GenerateMetadata(ctx); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if !strings.Contains(gen.last(), "第1稿（修正）") {
		t.Fatalf("metadata must use adopted scenario")
	}
	st = s.Snapshot()
	if st.Stage != StageAdoptedWithMetadata || st.Metadata != "【タイトル案】\n1）テスト\n" {
		t.Fatalf("unexpected state %+v", st)
	}

	for name, op := range map[string]func() error{
		"rewrite": func() error { return s.Rewrite(ctx, RewriteRequest{}) },
		"format":  func() error { return s.Format(ctx, FormatWrap) },
		"edit":    func() error { return s.Edit("x") },
		"adopt":   s.Adopt,
	} {
		if err := op(); !errors.Is(err, ErrInvalidStage) {
			t.Fatalf("%s in terminal stage: expected ErrInvalidStage, got %v", name, err)
		}
	}
	if err := s.EditMetadata("手直し"); err != nil {
		t.Fatalf("edit metadata: %v", err)
	}
	if err := s.GenerateMetadata(ctx); err != nil {
		t.Fatalf("regenerate metadata: %v", err)
	}

	if err := s.IngestPaste("新しい台本"); err != nil {
		t.Fatalf("new ingest: %v", err)
	}
	if st := s.Snapshot(); st.Stage != StageRaw || st.AdoptedScenario != "" || st.Metadata != "" {
		t.Fatalf("ingest must start a fresh script: %+v", st)
	}
}

func TestSelectAndEditVariation(t *testing.T) {
	t.Parallel()

	gen := &routeGen{rewrite: "A" + variations.Delimiter + "B"}
	s := formattedSession(t, gen, chars("太郎"), "")
	if err := s.Rewrite(context.Background(), RewriteRequest{Options: types.RewriteOptions{NumVariations: 2}}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := s.EditVariation(2, "x"); !errors.Is(err, ErrNoSuchVariation) {
		t.Fatalf("expected ErrNoSuchVariation, got %v", err)
	}
	if err := s.SelectVariation(-1); !errors.Is(err, ErrNoSuchVariation) {
		t.Fatalf("expected ErrNoSuchVariation, got %v", err)
	}
	if err := s.EditVariation(1, "B改"); err != nil {
		t.Fatalf("edit variation: %v", err)
	}
	if err := s.SelectVariation(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	st := s.Snapshot()
	if st.Stage != StageAdopted || st.AdoptedScenario != "B改" || st.Variations != nil {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestGenerateMetadata_OnWorkingText(t *testing.T) {
	t.Parallel()

	gen := &routeGen{metadata: "meta"}
	s := formattedSession(t, gen, nil, "")
	if err := s.GenerateMetadata(context.Background()); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	st := s.Snapshot()
	if st.Stage != StageFormatted || st.Metadata != "meta" {
		t.Fatalf("unexpected state %+v", st)
	}
	if !strings.Contains(gen.last(), sample) {
		t.Fatalf("expected working text in metadata prompt")
	}

	noGen := formattedSession(t, nil, nil, "")
	if err := noGen.GenerateMetadata(context.Background()); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestResultEditors_RejectBlankText(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cases := []struct {
		name    string
		rewrite string
		setup   func(t *testing.T, s *Session)
		edit    func(s *Session) error
		check   func(t *testing.T, st State)
	}{
		{
			name:    "edit result",
			rewrite: "第1稿",
			setup: func(t *testing.T, s *Session) {
				if err := s.Rewrite(ctx, RewriteRequest{}); err != nil {
					t.Fatalf("rewrite: %v", err)
				}
			},
			edit:  func(s *Session) error { return s.EditResult("   ") },
			check: func(t *testing.T, st State) {
				if st.Stage != StageSingleResult || st.RewrittenText != "第1稿" {
					t.Fatalf("result must be kept: %+v", st)
				}
			},
		},
		{
			name:    "edit variation",
			rewrite: "第1稿" + variations.Delimiter + "第2稿",
			setup: func(t *testing.T, s *Session) {
				if err := s.Rewrite(ctx, RewriteRequest{Options: types.RewriteOptions{NumVariations: 2}}); err != nil {
					t.Fatalf("rewrite: %v", err)
				}
			},
			edit:  func(s *Session) error { return s.EditVariation(0, "\n\t") },
			check: func(t *testing.T, st State) {
				if st.Stage != StageMultiResult || len(st.Variations) != 2 || st.Variations[0] != "第1稿" {
					t.Fatalf("variation must be kept: %+v", st)
				}
			},
		},
		{
			name:    "edit metadata",
			rewrite: "第1稿",
			setup: func(t *testing.T, s *Session) {
				if err := s.Rewrite(ctx, RewriteRequest{}); err != nil {
					t.Fatalf("rewrite: %v", err)
				}
				if err := s.Adopt(); err != nil {
					t.Fatalf("adopt: %v", err)
				}
				if err := s.GenerateMetadata(ctx); err != nil {
					t.Fatalf("metadata: %v", err)
				}
			},
			edit:  func(s *Session) error { return s.EditMetadata("") },
			check: func(t *testing.T, st State) {
				if st.Stage != StageAdoptedWithMetadata || st.Metadata != "meta" {
					t.Fatalf("metadata must be kept: %+v", st)
				}
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gen := &routeGen{rewrite: tc.rewrite, metadata: "meta"}
			s := formattedSession(t, gen, chars("太郎"), "")
			tc.setup(t, s)
			if err := tc.edit(s); !errors.Is(err, ErrEmptyInput) {
				t.Fatalf("expected ErrEmptyInput, got %v", err)
			}
			tc.check(t, s.Snapshot())
		})
	}
}
