package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const fallbackReason = "automated analysis result"

// modelPayload mirrors the JSON object the prompt demands. Field types stay
// loose because free-text generation routinely bends them.
type modelPayload struct {
	Confidence      any             `json:"confidence"`
	ScamType        string          `json:"scamType"`
	WarningMessage  string          `json:"warningMessage"`
	Reasons         json.RawMessage `json:"reasons"`
	SuspiciousParts json.RawMessage `json:"suspiciousParts"`
}

// MapResult converts extracted JSON text into a classification result,
// applying defaults, clamping, and the scam-type inference fallback.
// An undecodable payload fails the whole call; no partial result is built.
func MapResult(jsonText string, req Request) (*Result, error) {
	var payload modelPayload
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return nil, fmt.Errorf("decode model payload: %w", err)
	}

	confidence := clampFloat(float64(readConfidence(payload.Confidence))/100, 0, 1)

	scamType, ok := ParseScamType(payload.ScamType)
	if !ok {
		scamType = inferScamType(req.RecentContext + "\n" + req.OriginalText)
	}

	warning := strings.TrimSpace(payload.WarningMessage)
	if warning == "" {
		warning = defaultWarning(scamType, confidence)
	}

	reasons := stringEntries(payload.Reasons)
	if len(reasons) == 0 {
		reasons = []string{fallbackReason}
	}

	return &Result{
		IsScam:           confidence >= 0.5,
		Confidence:       confidence,
		ScamType:         scamType,
		DetectionMethod:  MethodLLM,
		WarningMessage:   warning,
		Reasons:          reasons,
		SuspiciousParts:  stringEntries(payload.SuspiciousParts),
		DetectedKeywords: req.DetectedKeywords,
	}, nil
}

// DecodeResult runs extraction and mapping over one raw backend response.
func DecodeResult(response string, req Request) (*Result, error) {
	jsonText, ok := ExtractJSON(response)
	if !ok {
		return nil, fmt.Errorf("no JSON found in model response")
	}
	return MapResult(jsonText, req)
}

// readConfidence reads the 0-100 integer, defaulting to 50 when the field is
// absent or non-numeric.
func readConfidence(value any) int {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) {
			return 50
		}
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
		return 50
	default:
		return 50
	}
}

// stringEntries collects non-blank strings from a JSON array, tolerating a
// missing field or a bare string where an array was asked for.
func stringEntries(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		entries = []string{single}
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

var scamTypeHints = []struct {
	scamType ScamType
	terms    []string
}{
	{ScamTypeInvestment, []string{"investment", "coin", "stock", "투자", "코인", "주식", "수익"}},
	{ScamTypeUsedTrade, []string{"deposit", "prepayment", "delivery", "선입금", "택배", "중고", "거래"}},
	{ScamTypePhishing, []string{"http", "url", "link", "phishing", "클릭", "링크", "접속"}},
	{ScamTypeImpersonation, []string{"impersonat", "prosecutor", "police", "tax office", "검찰", "경찰", "국세청", "사칭"}},
	{ScamTypeLoan, []string{"loan", "대출", "저금리"}},
}

// inferScamType guesses a scam type from the surrounding text when the model
// omitted or mangled the field.
func inferScamType(text string) ScamType {
	lowered := strings.ToLower(text)
	for _, hint := range scamTypeHints {
		for _, term := range hint.terms {
			if strings.Contains(lowered, term) {
				return hint.scamType
			}
		}
	}
	return ScamTypeUnknown
}

var warningTemplates = map[ScamType]string{
	ScamTypeInvestment:    "This message shows signs of an investment scam (%d%% confidence). Promises of guaranteed returns are a common lure. Do not transfer money or install recommended apps.",
	ScamTypeUsedTrade:     "This looks like a second-hand trade scam (%d%% confidence). Requests for advance payment before delivery are a frequent fraud pattern. Verify the seller through the marketplace's escrow service.",
	ScamTypePhishing:      "This message likely contains a phishing attempt (%d%% confidence). Links in unsolicited messages can steal credentials or install malware. Do not tap the link or enter personal data.",
	ScamTypeVoicePhishing: "This conversation matches voice phishing patterns (%d%% confidence). Callers posing as officials pressure victims into urgent transfers. Hang up and contact the institution through its official number.",
	ScamTypeImpersonation: "The sender appears to impersonate an institution or acquaintance (%d%% confidence). Scammers mimic authority to demand money or information. Confirm the sender's identity through a separate channel.",
	ScamTypeRomance:       "This message fits romance scam patterns (%d%% confidence). Emotional appeals followed by money requests are a known tactic. Never send funds to someone you have not met.",
	ScamTypeLoan:          "This resembles a predatory loan offer (%d%% confidence). Unsolicited low-interest offers often hide identity theft or fee fraud. Use only registered financial institutions.",
	ScamTypeSafe:          "No strong scam signals were found in this message (%d%% confidence). Stay cautious if it later asks for money or personal information.",
	ScamTypeUnknown:       "This message shows suspicious characteristics (%d%% confidence). Be careful with any request for money, credentials, or urgent action.",
}

// defaultWarning fills the user-facing message when the model leaves it blank.
func defaultWarning(scamType ScamType, confidence float64) string {
	template, ok := warningTemplates[scamType]
	if !ok {
		template = warningTemplates[ScamTypeUnknown]
	}
	return fmt.Sprintf(template, int(math.Round(confidence*100)))
}

func clampFloat(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
