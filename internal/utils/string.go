package utils

import (
	"strings"
	"unicode/utf8"
)

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Truncate shortens s to at most max runes and appends "...". A max of zero or less keeps s whole.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:max]), func(r rune) bool { return r == ' ' || r == '\n' || r == '\t' }) + "..."
}

// StripCodeFence removes a single surrounding markdown code fence, e.g. ```json ... ```
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 && !strings.ContainsAny(s[:idx], "{[\"") {
		s = s[idx+1:]
	}
	return strings.TrimSpace(s)
}

// NormalizeModelToken trims the decoration models like to put around a one-word answer.
func NormalizeModelToken(s string) string {
	return strings.Trim(s, "`\"'. \t\r\n")
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
