package openrouter

import (
	"fmt"
	"net/url"
	"strings"
)

const DefaultBaseURL = "https://openrouter.ai"

var defaultHosts = []string{"openrouter.ai", "api.openrouter.ai"}

func cleanBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultBaseURL
	}
	return strings.TrimRight(raw, "/")
}

// CheckBaseURL rejects endpoints that could leak the API key: anything that
// is not plain https to an allowed host. An empty allow list means the
// public OpenRouter hosts.
func CheckBaseURL(raw string, allowedHosts []string) error {
	raw = cleanBaseURL(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid OPENROUTER_BASE_URL: %w", err)
	}
	bad := func(why string) error {
		return fmt.Errorf("invalid OPENROUTER_BASE_URL %q: %s", raw, why)
	}
	switch {
	case !u.IsAbs() || u.Hostname() == "":
		return bad("absolute URL with host is required")
	case u.User != nil:
		return bad("userinfo is not allowed")
	case u.RawQuery != "" || u.Fragment != "":
		return bad("query and fragment are not allowed")
	case !strings.EqualFold(u.Scheme, "https"):
		return bad("https is required")
	}
	host := strings.ToLower(u.Hostname())
	if !hostSet(allowedHosts)[host] {
		return bad(fmt.Sprintf("host %q is not in OPENROUTER_ALLOWED_HOSTS", host))
	}
	return nil
}

// hostSet normalizes an allow list. Entries may carry a scheme, port or slashes.
func hostSet(hosts []string) map[string]bool {
	out := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		v := strings.ToLower(strings.TrimSpace(h))
		v = strings.TrimPrefix(strings.TrimPrefix(v, "http://"), "https://")
		v = strings.Trim(v, "/")
		if i := strings.IndexAny(v, ":/"); i >= 0 {
			v = v[:i]
		}
		if v != "" {
			out[v] = true
		}
	}
	if len(out) == 0 {
		for _, h := range defaultHosts {
			out[h] = true
		}
	}
	return out
}

// SplitHosts parses a comma separated OPENROUTER_ALLOWED_HOSTS value.
func SplitHosts(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
