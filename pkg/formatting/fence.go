package formatting

import (
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)^```[A-Za-z]*[ \t]*\r?\n(.*?)\r?\n?```$")

// Unfence returns the body of a markdown code fence that wraps the whole of
// content, with or without a language tag. Content that is not fenced is
// returned trimmed and unchanged otherwise.
//
// Vision models asked for JSON frequently answer with a ```json block even
// when told not to; callers that accept such output unwrap it before decoding.
func Unfence(content string) string {
	content = strings.TrimSpace(content)

	matches := fencePattern.FindStringSubmatch(content)
	if len(matches) < 2 {
		return content
	}

	return strings.TrimSpace(matches[1])
}

// IsFenced reports whether content is wrapped in a markdown code fence.
func IsFenced(content string) bool {
	return fencePattern.MatchString(strings.TrimSpace(content))
}
