package prompts

import (
	"fmt"
	"strings"
)

// FormatPrompt asks the backend to add punctuation and line breaks
// without changing a single word.
func (b Builder) FormatPrompt(text string) string {
	n := b.lineLength()
	var sb strings.Builder
	sb.WriteString("あなたは厳格な校正者です。以下のテキストを整形してください。\n\n")
	sb.WriteString("【絶対厳守のルール】\n")
	sb.WriteString("1. 元のテキストの内容（単語、表現）を1文字も変更してはいけません\n")
	fmt.Fprintf(&sb, "2. 1行は%d文字以内にしてください\n", n)
	sb.WriteString("3. 各行は必ず句点（。）または読点（、）で終わらせてください。句読点がない行は絶対に作らないでください\n")
	sb.WriteString("4. 文の途中で改行する場合は、必ず読点（、）を追加してください\n")
	sb.WriteString("5. 文の終わりで改行する場合は、必ず句点（。）を追加してください\n")
	sb.WriteString("6. 意味のまとまりや自然な区切りで改行してください\n")
	sb.WriteString("7. 要約や言い換えは絶対に禁止です\n\n")
	sb.WriteString("【良い例】\n")
	sb.WriteString("職場の嫌な奴は、\n")
	sb.WriteString("こう扱えば大丈夫。\n")
	sb.WriteString("そんな人の対処法を、\n")
	sb.WriteString("5つ紹介します。\n\n")
	sb.WriteString("【悪い例（絶対NG）】\n")
	sb.WriteString("そんな人の対処法を ← ×句読点がない\n\n")
	sb.WriteString("【出力】\n")
	sb.WriteString("整形後のテキストのみを出力してください。説明や追加コメントは不要です。\n\n")
	sb.WriteString("【入力テキスト】\n")
	sb.WriteString(strings.TrimSpace(text))
	sb.WriteString("\n")
	return sb.String()
}

// FilenamePrompt asks for a short title built from the first lines of text.
func (b Builder) FilenamePrompt(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > filenameSourceLines {
		lines = lines[:filenameSourceLines]
	}
	var sb strings.Builder
	sb.WriteString("以下のテキストから、適切なファイル名を生成してください。\n\n")
	sb.WriteString("【ルール】\n")
	sb.WriteString("1. 20文字以内\n")
	sb.WriteString("2. 内容を端的に表すタイトル\n")
	sb.WriteString("3. ファイル名として使える文字のみ（記号は使用しない）\n")
	sb.WriteString("4. 日本語でOK\n\n")
	sb.WriteString("【出力】\n")
	sb.WriteString("ファイル名のみを出力してください。拡張子（.txtや.wav）は付けないでください。\n\n")
	sb.WriteString("【テキスト】\n")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n")
	return sb.String()
}

// MetadataPrompt asks for titles, descriptions and hashtags in a fixed layout.
func (b Builder) MetadataPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("以下のテキストから、TikTok/SNS投稿用のタイトル、紹介文、ハッシュタグを生成してください。\n\n")
	sb.WriteString("【ルール】\n")
	sb.WriteString("1. タイトル案：3つ提案（各30字以内、【見出し】本文 の形式）\n")
	sb.WriteString("2. 紹介文案：3つ提案（各100字前後）\n")
	sb.WriteString("3. ハッシュタグ：5つ提案\n\n")
	sb.WriteString("【出力フォーマット（このフォーマット厳守）】\n")
	sb.WriteString("【タイトル案（『【見出し】本文』／各30字以内）】\n\n")
	sb.WriteString("1）……\n\n2）……\n\n3）……\n\n")
	sb.WriteString("【紹介文案（各100字前後）】\n\n")
	sb.WriteString("1）……\n\n2）……\n\n3）……\n\n")
	sb.WriteString("【ハッシュタグ（5つ）】\n\n")
	sb.WriteString("#〇〇 #〇〇 #〇〇 #〇〇 #〇〇\n\n")
	sb.WriteString("説明や追加コメントは不要です。フォーマット通りに出力してください。\n\n")
	sb.WriteString("【入力テキスト】\n")
	sb.WriteString(strings.TrimSpace(text))
	sb.WriteString("\n")
	return sb.String()
}
