package audit

import (
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

var redactionRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?(key|hash)|token|secret|password)\s*[:=]\s*['\"]?[^\s'\"]+`),
	regexp.MustCompile(`(?i)bearer\s+[a-z0-9\-\._~\+/]+=*`),
}

var sensitiveKeyParts = []string{"hash", "secret", "token", "password", "api_key"}

func RedactString(input string) string {
	out := input
	for _, r := range redactionRules {
		out = r.ReplaceAllString(out, redacted)
	}
	return out
}

func sensitiveKey(k string) bool {
	k = strings.ToLower(k)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(k, part) {
			return true
		}
	}
	return false
}

// RedactValue masks values stored under sensitive keys and scrubs
// credential-looking fragments from free text.
func RedactValue(v any) any {
	switch t := v.(type) {
	case string:
		return RedactString(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if _, isString := val.(string); isString && sensitiveKey(k) {
				out[k] = redacted
				continue
			}
			out[k] = RedactValue(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = RedactValue(t[i])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = RedactValue(t[i])
		}
		return out
	default:
		return v
	}
}
