package classify

import (
	"regexp"
	"strings"
)

// Fenced blocks explicitly tagged as JSON, e.g. ```json ... ```.
var jsonFencePattern = regexp.MustCompile("(?is)```json\\s*(.*?)```")

// ExtractJSON isolates a single JSON object from a raw model response.
// Preference order: a fenced block tagged json, then the widest {...} span.
// The tagged block wins so braces inside explanatory prose cannot shadow the
// actual payload. ok is false when the response carries no JSON at all.
func ExtractJSON(response string) (string, bool) {
	if match := jsonFencePattern.FindStringSubmatch(response); match != nil {
		inner := strings.TrimSpace(match[1])
		if inner != "" {
			return inner, true
		}
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(response[start : end+1]), true
	}

	return "", false
}
