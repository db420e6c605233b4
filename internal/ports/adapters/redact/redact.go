package redact

import (
	"regexp"
	"strings"
)

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)((?:x-gladia-key|x-goog-api-key|api[_-]?key)\s*[:=]\s*)([^\n\r,;]+)`)
)

// Secrets masks the given keys plus anything shaped like a credential.
func Secrets(s string, keys ...string) string {
	if s == "" {
		return s
	}
	out := s
	for _, k := range keys {
		if k != "" {
			out = strings.ReplaceAll(out, k, "[REDACTED]")
		}
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Body prepares a remote response body for an error message.
func Body(b []byte, keys ...string) string {
	return Truncate(Secrets(strings.TrimSpace(string(b)), keys...), 400)
}
