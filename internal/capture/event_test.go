package capture

import (
	"testing"
)

func TestDecode(t *testing.T) {
	raw := []byte(`{
		"source_app": "com.example.chat",
		"current_message": "send the deposit now",
		"recent_context": ["hi", "great offer"],
		"rule_reasons": ["payment demand"],
		"detected_keywords": ["deposit"],
		"high_risk_keywords": ["deposit"],
		"suspicious_combination": true
	}`)

	event, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.EventID == "" {
		t.Fatal("expected generated event id")
	}
	if event.OriginalText != "send the deposit now" {
		t.Fatalf("expected original text backfill, got %q", event.OriginalText)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("expected timestamp backfill")
	}
	if !event.SuspiciousCombination {
		t.Fatal("expected suspicious combination flag")
	}
}

func TestDecodeRejectsMissingMessage(t *testing.T) {
	if _, err := Decode([]byte(`{"source_app":"x"}`)); err == nil {
		t.Fatal("expected error without current_message")
	}
}

func TestDecodeRejectsTrailingTokens(t *testing.T) {
	if _, err := Decode([]byte(`{"current_message":"a"}{"current_message":"b"}`)); err == nil {
		t.Fatal("expected error for trailing tokens")
	}
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	if _, err := Decode([]byte("  ")); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestRequest(t *testing.T) {
	event := Event{
		CurrentMessage:   "now",
		RecentContext:    []string{"hi", "offer"},
		OriginalText:     "NOW",
		RuleReasons:      []string{"urgency"},
		DetectedKeywords: []string{"now"},
	}
	req := event.Request()
	if req.RecentContext != "hi\noffer" {
		t.Fatalf("expected joined context got %q", req.RecentContext)
	}
	if req.CurrentMessage != "now" || req.OriginalText != "NOW" {
		t.Fatalf("unexpected request %+v", req)
	}
}
