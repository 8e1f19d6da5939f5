// Package alert owns the transient visual alert surface: a single slot with
// auto-expiry, replace-on-arrival pre-emption, and a companion notification.
package alert

import (
	"fmt"
	"math"

	"scamwatch/internal/capture"
	"scamwatch/internal/classify"
)

// Action is the call-to-action currently rendered on the surface.
type Action string

const (
	// ActionViewDetails reveals the keyword tag breakdown.
	ActionViewDetails Action = "view_details"
	// ActionOpenApp deep-links into the host application.
	ActionOpenApp Action = "open_app"
)

// View is everything the surface renders for one alert.
type View struct {
	EventID               string            `json:"event_id"`
	ScamType              classify.ScamType `json:"scam_type"`
	Confidence            float64           `json:"confidence"`
	Warning               string            `json:"warning"`
	SourceApp             string            `json:"source_app,omitempty"`
	HighRiskKeywords      []string          `json:"high_risk_keywords,omitempty"`
	MediumRiskKeywords    []string          `json:"medium_risk_keywords,omitempty"`
	LowRiskKeywords       []string          `json:"low_risk_keywords,omitempty"`
	SuspiciousCombination bool              `json:"suspicious_combination,omitempty"`
	Action                Action            `json:"action"`
	DeepLink              string            `json:"deep_link,omitempty"`
}

// Header renders the scam-type label with the confidence percentage.
func (v View) Header() string {
	return fmt.Sprintf("%s (%d%%)", v.ScamType, int(math.Round(v.Confidence*100)))
}

// HasTierKeywords reports whether any risk-tier bucket has content.
func (v View) HasTierKeywords() bool {
	return len(v.HighRiskKeywords) > 0 || len(v.MediumRiskKeywords) > 0 || len(v.LowRiskKeywords) > 0
}

// NewView assembles the surface payload for one classification. The action
// row starts at "view details" unless there are no tier keywords to reveal,
// in which case it deep-links directly.
func NewView(event capture.Event, result classify.Result, deepLink string) View {
	view := View{
		EventID:               event.EventID,
		ScamType:              result.ScamType,
		Confidence:            result.Confidence,
		Warning:               result.WarningMessage,
		SourceApp:             event.SourceApp,
		HighRiskKeywords:      event.HighRiskKeywords,
		MediumRiskKeywords:    event.MediumRiskKeywords,
		LowRiskKeywords:       event.LowRiskKeywords,
		SuspiciousCombination: event.SuspiciousCombination,
		DeepLink:              deepLink,
	}
	if view.HasTierKeywords() {
		view.Action = ActionViewDetails
	} else {
		view.Action = ActionOpenApp
	}
	return view
}
