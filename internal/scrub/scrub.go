package scrub

import (
	"regexp"
	"strings"
)

// Placeholder replaces every scrubbed token.
const Placeholder = "[REDACTED]"

// pemBlock matches PEM key blocks across lines.
var pemBlock = regexp.MustCompile(`(?s)-----BEGIN [A-Z ]+KEY-----.*?-----END [A-Z ]+KEY-----`)

// tokens holds single-line secret patterns in priority order.
var tokens = []*regexp.Regexp{
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?:^|\s|["'])sk-[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+`),
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]{20,}=*`),
	regexp.MustCompile(`(?i)(?:password|passwd|secret)\s*[:=]\s*\S+`),
}

// Text replaces secret-looking tokens in s. The newline count of the
// output always equals that of the input.
func Text(s string) string {
	s = pemBlock.ReplaceAllStringFunc(s, func(match string) string {
		lines := strings.Split(match, "\n")
		for i := range lines {
			lines[i] = Placeholder
		}
		return strings.Join(lines, "\n")
	})
	for _, re := range tokens {
		s = re.ReplaceAllString(s, Placeholder)
	}
	return s
}

// Error returns the scrubbed message of err, or "" for nil.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return Text(err.Error())
}
