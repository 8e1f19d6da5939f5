// Package capture defines the inbound event contract produced by the
// on-device capture and rule-prefilter pipeline.
package capture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"scamwatch/internal/classify"
)

// Event is one prefiltered text fragment with its rule metadata. The rule
// engine has already decided the fragment is worth classifying.
type Event struct {
	EventID               string    `json:"event_id"`
	SourceApp             string    `json:"source_app"`
	CurrentMessage        string    `json:"current_message"`
	RecentContext         []string  `json:"recent_context,omitempty"`
	OriginalText          string    `json:"original_text,omitempty"`
	RuleReasons           []string  `json:"rule_reasons,omitempty"`
	DetectedKeywords      []string  `json:"detected_keywords,omitempty"`
	HighRiskKeywords      []string  `json:"high_risk_keywords,omitempty"`
	MediumRiskKeywords    []string  `json:"medium_risk_keywords,omitempty"`
	LowRiskKeywords       []string  `json:"low_risk_keywords,omitempty"`
	SuspiciousCombination bool      `json:"suspicious_combination,omitempty"`
	Timestamp             time.Time `json:"timestamp,omitempty"`
}

// Validate checks the minimal shape required for classification.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.CurrentMessage) == "" {
		return errors.New("current_message is required")
	}
	return nil
}

// Normalize fills derivable fields so downstream stages never re-check them.
func (e *Event) Normalize() {
	if strings.TrimSpace(e.EventID) == "" {
		e.EventID = uuid.NewString()
	}
	if strings.TrimSpace(e.OriginalText) == "" {
		e.OriginalText = e.CurrentMessage
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
}

// Decode parses and validates one event payload, rejecting trailing tokens.
func Decode(raw []byte) (Event, error) {
	payload := bytes.TrimSpace(raw)
	if len(payload) == 0 {
		return Event{}, errors.New("empty payload")
	}
	decoder := json.NewDecoder(bytes.NewReader(payload))
	var event Event
	if err := decoder.Decode(&event); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != io.EOF {
		if err != nil {
			return Event{}, fmt.Errorf("decode trailing json: %w", err)
		}
		return Event{}, errors.New("unexpected trailing json tokens")
	}
	if err := event.Validate(); err != nil {
		return Event{}, err
	}
	event.Normalize()
	return event, nil
}

// Request builds the immutable classification request for this event.
func (e Event) Request() classify.Request {
	return classify.Request{
		CurrentMessage:   e.CurrentMessage,
		RecentContext:    strings.Join(e.RecentContext, "\n"),
		RuleReasons:      e.RuleReasons,
		DetectedKeywords: e.DetectedKeywords,
		OriginalText:     e.OriginalText,
	}
}
