package classify

import (
	"fmt"
	"strings"
)

const noRecentContext = "no recent conversation"

// BuildPrompt renders the shared prompt both backends submit for analysis.
// The instruction block pins the response to a single JSON object so the
// extractor downstream has a fighting chance with smaller models.
func BuildPrompt(req Request) string {
	builder := &strings.Builder{}

	builder.WriteString("You are a scam-detection analyst for messages shown on a user's device.\n\n")

	builder.WriteString("Recent conversation:\n")
	context := strings.TrimSpace(req.RecentContext)
	if context == "" {
		fmt.Fprintf(builder, "- %s\n", noRecentContext)
	} else {
		for _, line := range strings.Split(context, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			fmt.Fprintf(builder, "- %s\n", line)
		}
	}

	fmt.Fprintf(builder, "\nCurrent message:\n%s\n", req.CurrentMessage)
	fmt.Fprintf(builder, "\nRule engine findings: %s\n", joinOrNone(req.RuleReasons, "; "))
	fmt.Fprintf(builder, "Detected keywords: %s\n", joinOrNone(req.DetectedKeywords, ", "))

	builder.WriteString("\nReply with exactly one JSON object and nothing else. Fields:\n")
	builder.WriteString("- confidence: integer 0-100, likelihood this is a scam\n")
	builder.WriteString("- scamType: one of INVESTMENT, USED_TRADE, PHISHING, VOICE_PHISHING, IMPERSONATION, ROMANCE, LOAN, SAFE, UNKNOWN\n")
	builder.WriteString("- warningMessage: 2-3 sentences telling the user why this looks dangerous (urgency, monetary demand, suspicious link, impersonation); never a single generic line\n")
	builder.WriteString("- reasons: array of short strings naming the concrete signals\n")
	builder.WriteString("- suspiciousParts: array of at most 3 quoted excerpts from the message\n")
	builder.WriteString("Do not put prose before or after the JSON object.\n")

	return builder.String()
}

func joinOrNone(values []string, sep string) string {
	filtered := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			filtered = append(filtered, trimmed)
		}
	}
	if len(filtered) == 0 {
		return "none"
	}
	return strings.Join(filtered, sep)
}
