package variations

import "strings"

const Delimiter = "===VARIATION==="

// Split cuts a multi-pattern response on delim. Segments are trimmed and
// empty ones dropped. An empty delim means Delimiter.
func Split(raw, delim string) []string {
	if delim == "" {
		delim = Delimiter
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, delim)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
