package captions

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultTarget = 14
	DefaultSlack  = 4
)

// clauseMarks break a source line into chunks. Each mark is kept with the
// chunk it closes.
const clauseMarks = "、。，．､｡！？!?"

// Wrapper packs text into caption lines of roughly Target runes.
// A line never exceeds Target+Slack unless a single chunk already does.
// The zero value uses DefaultTarget and DefaultSlack.
type Wrapper struct {
	Target int
	Slack  int
}

func New() Wrapper {
	return Wrapper{Target: DefaultTarget, Slack: DefaultSlack}
}

type chunk struct {
	text string
	mark string
	// spaced is set when whitespace separated the chunk from the previous
	// one in the source. Inside a line it is rendered as a single space.
	spaced bool
}

func (c chunk) len() int {
	return utf8.RuneCountInString(c.text) + utf8.RuneCountInString(c.mark)
}

func (c chunk) String() string { return c.text + c.mark }

type line struct {
	chunks []chunk
	n      int
}

func (l line) String() string {
	var b strings.Builder
	for i, c := range l.chunks {
		if i > 0 && c.spaced {
			b.WriteByte(' ')
		}
		b.WriteString(c.String())
	}
	return b.String()
}

// Wrap returns caption lines in source order. Blank source lines are dropped.
func (w Wrapper) Wrap(text string) []string {
	w = w.withDefaults()
	var out []string
	for _, src := range strings.Split(text, "\n") {
		src = strings.TrimSpace(strings.TrimSuffix(src, "\r"))
		if src == "" {
			continue
		}
		for _, ln := range w.pack(splitChunks(src)) {
			out = append(out, ln.String())
		}
	}
	return out
}

// Format is Wrap joined with newlines.
func (w Wrapper) Format(text string) string {
	return strings.Join(w.Wrap(text), "\n")
}

func (w Wrapper) withDefaults() Wrapper {
	if w.Target <= 0 {
		w.Target = DefaultTarget
		if w.Slack == 0 {
			w.Slack = DefaultSlack
		}
	}
	if w.Slack < 0 {
		w.Slack = 0
	}
	return w
}

func (w Wrapper) pack(chunks []chunk) []line {
	var out []line
	var cur line
	limit := w.Target + w.Slack
	for _, c := range chunks {
		cl := c.len()
		if len(cur.chunks) == 0 {
			cur = line{chunks: []chunk{c}, n: cl}
			continue
		}
		combined := cur.n + cl
		if c.spaced {
			combined++
		}
		if combined <= limit && abs(w.Target-combined) <= abs(w.Target-cur.n) {
			cur.chunks = append(cur.chunks, c)
			cur.n = combined
			continue
		}
		out = append(out, cur)
		cur = line{chunks: []chunk{c}, n: cl}
	}
	if len(cur.chunks) > 0 {
		out = append(out, cur)
	}
	return out
}

// splitChunks cuts one source line at clause marks. A mark with no text
// before it is folded into the previous chunk, so "本当？！" stays whole.
func splitChunks(src string) []chunk {
	var out []chunk
	var buf strings.Builder
	for _, r := range src {
		if !strings.ContainsRune(clauseMarks, r) {
			buf.WriteRune(r)
			continue
		}
		raw := buf.String()
		text := strings.TrimSpace(raw)
		buf.Reset()
		if text == "" {
			if len(out) > 0 {
				out[len(out)-1].mark += string(r)
			}
			continue
		}
		out = append(out, chunk{text: text, mark: string(r), spaced: leadingSpace(raw)})
	}
	if raw := buf.String(); strings.TrimSpace(raw) != "" {
		out = append(out, chunk{text: strings.TrimSpace(raw), spaced: leadingSpace(raw)})
	}
	return out
}

func leadingSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
