package classify

import "strings"

// ScamType categorizes the kind of scam a classified message represents.
type ScamType string

const (
	ScamTypeInvestment    ScamType = "INVESTMENT"
	ScamTypeUsedTrade     ScamType = "USED_TRADE"
	ScamTypePhishing      ScamType = "PHISHING"
	ScamTypeVoicePhishing ScamType = "VOICE_PHISHING"
	ScamTypeImpersonation ScamType = "IMPERSONATION"
	ScamTypeRomance       ScamType = "ROMANCE"
	ScamTypeLoan          ScamType = "LOAN"
	ScamTypeSafe          ScamType = "SAFE"
	ScamTypeUnknown       ScamType = "UNKNOWN"
)

// DetectionMethod records which stage produced a classification.
type DetectionMethod string

const (
	MethodRule DetectionMethod = "RULE"
	MethodLLM  DetectionMethod = "LLM"
)

// ParseScamType resolves a model-provided scam type literal.
// The second return is false when the literal is unrecognized.
func ParseScamType(raw string) (ScamType, bool) {
	switch ScamType(strings.ToUpper(strings.TrimSpace(raw))) {
	case ScamTypeInvestment:
		return ScamTypeInvestment, true
	case ScamTypeUsedTrade:
		return ScamTypeUsedTrade, true
	case ScamTypePhishing:
		return ScamTypePhishing, true
	case ScamTypeVoicePhishing:
		return ScamTypeVoicePhishing, true
	case ScamTypeImpersonation:
		return ScamTypeImpersonation, true
	case ScamTypeRomance:
		return ScamTypeRomance, true
	case ScamTypeLoan:
		return ScamTypeLoan, true
	case ScamTypeSafe:
		return ScamTypeSafe, true
	case ScamTypeUnknown:
		return ScamTypeUnknown, true
	default:
		return ScamTypeUnknown, false
	}
}

// Request carries one message and its prefilter metadata into a backend.
// It is constructed once per invocation and never mutated.
type Request struct {
	CurrentMessage   string
	RecentContext    string
	RuleReasons      []string
	DetectedKeywords []string
	OriginalText     string
}

// Result is the structured outcome of one classification.
type Result struct {
	IsScam           bool
	Confidence       float64
	ScamType         ScamType
	DetectionMethod  DetectionMethod
	WarningMessage   string
	Reasons          []string
	SuspiciousParts  []string
	DetectedKeywords []string
}
