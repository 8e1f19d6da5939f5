package api

import (
	"time"

	"scamwatch/internal/store"
)

// AlertDTO is the JSON shape of one persisted alert.
type AlertDTO struct {
	ID               uint      `json:"id"`
	EventID          string    `json:"event_id"`
	Message          string    `json:"message"`
	Confidence       float64   `json:"confidence"`
	ScamType         string    `json:"scam_type"`
	DetectionMethod  string    `json:"detection_method"`
	SourceApp        string    `json:"source_app"`
	DetectedKeywords []string  `json:"detected_keywords"`
	Reasons          []string  `json:"reasons"`
	SuspiciousParts  []string  `json:"suspicious_parts"`
	Timestamp        time.Time `json:"timestamp"`
	IsDismissed      bool      `json:"is_dismissed"`
}

func toAlertDTO(alert store.Alert) AlertDTO {
	return AlertDTO{
		ID:               alert.ID,
		EventID:          alert.EventID,
		Message:          alert.Message,
		Confidence:       alert.Confidence,
		ScamType:         alert.ScamType,
		DetectionMethod:  alert.DetectionMethod,
		SourceApp:        alert.SourceApp,
		DetectedKeywords: alert.DetectedKeywords(),
		Reasons:          alert.Reasons(),
		SuspiciousParts:  alert.SuspiciousParts(),
		Timestamp:        alert.Timestamp,
		IsDismissed:      alert.IsDismissed,
	}
}

func toAlertDTOs(alerts []store.Alert) []AlertDTO {
	out := make([]AlertDTO, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertDTO(a))
	}
	return out
}
