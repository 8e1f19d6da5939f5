package classify

import (
	"strings"
	"testing"
)

func TestBuildPromptWithContext(t *testing.T) {
	req := Request{
		CurrentMessage:   "send the deposit now",
		RecentContext:    "hello\nI have a great offer",
		RuleReasons:      []string{"urgency phrase", "payment demand"},
		DetectedKeywords: []string{"deposit", "now"},
	}
	prompt := BuildPrompt(req)

	for _, expected := range []string{
		"- hello",
		"- I have a great offer",
		"send the deposit now",
		"urgency phrase; payment demand",
		"deposit, now",
		"confidence",
		"scamType",
		"warningMessage",
		"suspiciousParts",
	} {
		if !strings.Contains(prompt, expected) {
			t.Fatalf("prompt missing %q:\n%s", expected, prompt)
		}
	}
}

func TestBuildPromptPlaceholders(t *testing.T) {
	prompt := BuildPrompt(Request{CurrentMessage: "hi"})

	if !strings.Contains(prompt, "- no recent conversation") {
		t.Fatalf("expected context placeholder:\n%s", prompt)
	}
	if strings.Count(prompt, "none") < 2 {
		t.Fatalf("expected 'none' for empty reasons and keywords:\n%s", prompt)
	}
}
