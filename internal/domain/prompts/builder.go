package prompts

import (
	"fmt"
	"strings"

	"github.com/forPelevin/scenarist/internal/domain/variations"
	"github.com/forPelevin/scenarist/internal/types"
)

const (
	DefaultLineLength = 14
	PageDelimiter     = "===PAGE==="

	// maxLeadRunes caps how much of the lead templates goes into a prompt.
	maxLeadRunes = 2000
	// filenameSourceLines is how many leading lines feed a filename suggestion.
	filenameSourceLines = 3
)

// Builder renders generation parameters into prompt text. The zero value
// uses a 14 rune line length.
type Builder struct {
	LineLength int
}

func (b Builder) lineLength() int {
	if b.LineLength <= 0 {
		return DefaultLineLength
	}
	return b.LineLength
}

// CastSection describes the cast and its roles. Position 0 answers, the rest ask.
func (b Builder) CastSection(cast []types.Character) string {
	if len(cast) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("【登場キャラクター】\n")
	names := make([]string, 0, len(cast))
	for i, c := range cast {
		role := "質問者"
		if i == 0 {
			role = "回答者・主人公"
		}
		sb.WriteString("- ")
		sb.WriteString(profile(c))
		sb.WriteString("（")
		sb.WriteString(role)
		sb.WriteString("）\n")
		names = append(names, c.Name)
	}

	sb.WriteString("\n【役割】\n")
	if len(cast) == 1 {
		fmt.Fprintf(&sb, "%sの1人語り（モノローグ）で構成してください。\n", cast[0].Name)
		sb.WriteString("視聴者に直接語りかけるように話し、他のキャラクターは登場させないでください。\n")
	} else {
		fmt.Fprintf(&sb, "%sは回答者・主人公です。質問に答え、解決策を示します。\n", cast[0].Name)
		fmt.Fprintf(&sb, "%sは質問者です。視聴者が抱きそうな疑問を投げかけます。\n", strings.Join(names[1:], "、"))
		sb.WriteString("質問と回答の掛け合い（Q&A形式）で会話を組み立ててください。\n")
	}

	sb.WriteString("\n【キャラクターシナリオのルール】\n")
	sb.WriteString("1. 各キャラクターのセリフは「【キャラ名】セリフ」の形式で書いてください\n")
	sb.WriteString("2. キャラクター名タグ（【〇〇】）は行の先頭に付け、セリフ文字数には含めません\n")
	sb.WriteString("3. 各キャラクターのプロフィール（年代・性別・見た目・雰囲気・背景・口調）を忠実に反映してください\n")
	sb.WriteString("4. 特に「口調」の設定は最重要です。キャラごとに話し方を明確に区別してください\n")
	sb.WriteString("5. ナレーション（キャラ名なしの地の文）も適宜入れてOKです\n")
	fmt.Fprintf(&sb, "6. 使用キャラクター: %s\n", strings.Join(names, "、"))
	return sb.String()
}

func profile(c types.Character) string {
	parts := []string{"名前: " + c.Name}
	add := func(label, v string) {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, label+": "+strings.TrimSpace(v))
		}
	}
	add("年代", string(c.Age))
	add("性別", string(c.Gender))
	add("見た目", c.Appearance)
	add("雰囲気", c.Atmosphere)
	add("背景", c.Background)
	add("口調", c.Tone)
	return strings.Join(parts, "／")
}

// LeadExcerpt trims the lead templates and caps their length.
func LeadExcerpt(lead string) string {
	lead = strings.TrimSpace(lead)
	r := []rune(lead)
	if len(r) > maxLeadRunes {
		return strings.TrimSpace(string(r[:maxLeadRunes]))
	}
	return lead
}

// RewritePrompt builds the single-scenario rewrite prompt. The source text
// is always the last block.
func (b Builder) RewritePrompt(source string, opts types.RewriteOptions, cast, lead string) (string, error) {
	var sb strings.Builder
	sb.WriteString("あなたはTikTok漫画動画のシナリオライターです。以下のテキストを書き直してください。\n")
	if err := b.writeDirectives(&sb, opts, cast, lead); err != nil {
		return "", err
	}
	sb.WriteString("\n【書き直しのルール】\n")
	sb.WriteString("1. 元のテキストのテーマ・主旨は維持してください\n")
	sb.WriteString("2. ただし、表現の変更、内容の追加・削除・順序変更は自由に行ってOKです\n")
	sb.WriteString("3. TikTok動画として視聴者を引き込む構成にしてください\n")
	sb.WriteString("4. 冒頭で注意を引き、最後まで見たくなる展開にしてください\n")
	b.writeFormatRules(&sb, opts.NumPages)
	writeSource(&sb, source, fmt.Sprintf("全%dページのシナリオのみを出力してください。説明や追加コメントは不要です。", pagesOrDefault(opts.NumPages)))
	return sb.String(), nil
}

// VariationPrompt asks for n distinct scenarios in one response.
func (b Builder) VariationPrompt(source string, opts types.RewriteOptions, cast, lead string, n int) (string, error) {
	if n < types.MinVariations || n > types.MaxVariations {
		return "", fmt.Errorf("variations must be in [%d,%d], got %d", types.MinVariations, types.MaxVariations, n)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "あなたはTikTok漫画動画のシナリオライターです。以下のテキストを%dパターン書き直してください。\n", n)
	if err := b.writeDirectives(&sb, opts, cast, lead); err != nil {
		return "", err
	}
	sb.WriteString("\n【書き直しのルール】\n")
	sb.WriteString("1. 元のテキストのテーマ・主旨は維持してください\n")
	sb.WriteString("2. 各パターンは異なるアプローチ・切り口で書いてください\n")
	sb.WriteString("3. TikTok動画として視聴者を引き込む構成にしてください\n")
	sb.WriteString("4. 冒頭で注意を引き、最後まで見たくなる展開にしてください\n")
	b.writeFormatRules(&sb, opts.NumPages)

	sb.WriteString("\n【出力フォーマット（厳守）】\n")
	fmt.Fprintf(&sb, "%dパターンを出力し、各パターンの間に「%s」を1行で挿入してください。\n", n, variations.Delimiter)
	sb.WriteString("説明や追加コメントは不要です。テキストのみを出力してください。\n")
	sb.WriteString("\n例（2パターンの場合）：\n")
	sb.WriteString("【ト書き】オフィスで頭を抱える太郎\n")
	sb.WriteString("【太郎】これ知ってる？\n")
	sb.WriteString("【花子】え、なに？\n")
	sb.WriteString(PageDelimiter + "\n")
	sb.WriteString("【ト書き】花子が身を乗り出す\n")
	sb.WriteString("【太郎】実はこれヤバくて、\n")
	sb.WriteString(variations.Delimiter + "\n")
	sb.WriteString("【ト書き】カフェで話す二人\n")
	sb.WriteString("【花子】ちょっと聞いて。\n")
	sb.WriteString("【太郎】なに？\n")
	sb.WriteString(PageDelimiter + "\n")
	sb.WriteString("【ト書き】スマホを見せる花子\n")
	sb.WriteString("【花子】知らないと損するよ。\n")

	writeSource(&sb, source, fmt.Sprintf("各パターン全%dページで、%dパターンを %s で区切って出力してください。", pagesOrDefault(opts.NumPages), n, variations.Delimiter))
	return sb.String(), nil
}

// writeDirectives emits tone, custom instruction, cast and lead blocks in that order.
func (b Builder) writeDirectives(sb *strings.Builder, opts types.RewriteOptions, cast, lead string) error {
	tone, err := toneLines(opts)
	if err != nil {
		return err
	}
	if len(tone) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(tone, "\n"))
		sb.WriteString("\n")
	}
	if ci := strings.TrimSpace(opts.CustomInstruction); ci != "" {
		sb.WriteString("\n【追加指示】\n")
		sb.WriteString(ci)
		sb.WriteString("\n")
	}
	if cast = strings.TrimSpace(cast); cast != "" {
		sb.WriteString("\n")
		sb.WriteString(cast)
		sb.WriteString("\n")
	}
	if lead = strings.TrimSpace(lead); lead != "" {
		sb.WriteString("\n【誘導文の参考】\n")
		sb.WriteString("シナリオの終盤に入れる誘導文（行動を促す一言）は、以下の文例を参考に自然な形で書いてください。文例をそのまま写さないでください。\n")
		sb.WriteString(lead)
		sb.WriteString("\n")
	}
	return nil
}

func pagesOrDefault(pages int) int {
	if pages <= 0 {
		return types.DefaultPages
	}
	return pages
}

func (b Builder) writeFormatRules(sb *strings.Builder, pages int) {
	pages = pagesOrDefault(pages)
	sb.WriteString("\n【フォーマットルール】\n")
	sb.WriteString("1. 各ページは「【ト書き】」で場面・動きを書き、必要に応じてテロップとセリフを続けてください\n")
	sb.WriteString("2. セリフ部分は「【キャラ名】」の後に続けて書いてください\n")
	fmt.Fprintf(sb, "3. セリフ・テロップのテキスト部分は1行最大%d文字（キャラ名タグは文字数に含めない）\n", b.lineLength())
	sb.WriteString("4. 改行は句点（。）または読点（、）の位置でのみ行い、各行は必ず句読点で終わらせてください\n")
	sb.WriteString("5. 不要な読点は入れないでください\n")
	fmt.Fprintf(sb, "6. 全体を%dページで構成してください\n", pages)
	fmt.Fprintf(sb, "7. ページとページの間には「%s」を1行で挿入してください\n", PageDelimiter)
}

func writeSource(sb *strings.Builder, source, outputRule string) {
	sb.WriteString("\n【出力】\n")
	sb.WriteString(outputRule)
	sb.WriteString("\n\n【入力テキスト】\n")
	sb.WriteString(strings.TrimSpace(source))
	sb.WriteString("\n")
}
