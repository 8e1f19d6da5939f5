package store

import (
	"encoding/json"
	"strings"
	"time"
)

// Alert is the persisted record of one scam determination. The store assigns
// the id on insert; IsDismissed is the only field mutated afterwards.
type Alert struct {
	ID              uint      `gorm:"primaryKey"`
	EventID         string    `gorm:"size:64;index"`
	Message         string    `gorm:"type:text"`
	Confidence      float64   `gorm:"index"`
	ScamType        string    `gorm:"size:32;index"`
	DetectionMethod string    `gorm:"size:16"`
	SourceApp       string    `gorm:"size:128;index"`
	KeywordsJSON    string    `gorm:"type:text"`
	ReasonsJSON     string    `gorm:"type:text"`
	SuspiciousJSON  string    `gorm:"type:text"`
	Timestamp       time.Time `gorm:"index"`
	IsDismissed     bool      `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SetDetectedKeywords persists the keyword list as JSON.
func (a *Alert) SetDetectedKeywords(keywords []string) {
	a.KeywordsJSON = encodeStrings(keywords)
}

// DetectedKeywords returns the unmarshalled keyword list.
func (a *Alert) DetectedKeywords() []string {
	return decodeStrings(a.KeywordsJSON)
}

// SetReasons persists the reason list as JSON.
func (a *Alert) SetReasons(reasons []string) {
	a.ReasonsJSON = encodeStrings(reasons)
}

// Reasons returns the unmarshalled reason list.
func (a *Alert) Reasons() []string {
	return decodeStrings(a.ReasonsJSON)
}

// SetSuspiciousParts persists the quoted excerpts as JSON.
func (a *Alert) SetSuspiciousParts(parts []string) {
	a.SuspiciousJSON = encodeStrings(parts)
}

// SuspiciousParts returns the unmarshalled excerpt list.
func (a *Alert) SuspiciousParts() []string {
	return decodeStrings(a.SuspiciousJSON)
}

func encodeStrings(values []string) string {
	if values == nil {
		return "[]"
	}
	payload, _ := json.Marshal(values)
	return string(payload)
}

func decodeStrings(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
