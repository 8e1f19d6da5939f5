package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "alerts.db"), true)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func saveAlert(t *testing.T, db *Database, eventID string) *Alert {
	t.Helper()
	alert := &Alert{
		EventID:         eventID,
		Message:         "warning",
		Confidence:      0.8,
		ScamType:        "PHISHING",
		DetectionMethod: "LLM",
		SourceApp:       "com.example.chat",
		Timestamp:       time.Now().UTC(),
	}
	alert.SetDetectedKeywords([]string{"bit.ly"})
	alert.SetReasons([]string{"phishing url"})
	if err := db.SaveAlert(alert); err != nil {
		t.Fatalf("save alert: %v", err)
	}
	return alert
}

func TestSaveAssignsID(t *testing.T) {
	db := openTestDB(t)
	first := saveAlert(t, db, "e1")
	second := saveAlert(t, db, "e2")
	if first.ID == 0 || second.ID == 0 {
		t.Fatal("expected store-assigned ids")
	}
	if second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}
}

func TestListAlertsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	saveAlert(t, db, "e1")
	saveAlert(t, db, "e2")
	saveAlert(t, db, "e3")

	alerts, err := db.ListAlerts(0)
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts got %d", len(alerts))
	}
	if alerts[0].EventID != "e3" || alerts[2].EventID != "e1" {
		t.Fatalf("expected newest-first order, got %s..%s", alerts[0].EventID, alerts[2].EventID)
	}

	limited, err := db.ListAlerts(2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 alerts got %d", len(limited))
	}
}

func TestActiveAlertsExcludeDismissed(t *testing.T) {
	db := openTestDB(t)
	first := saveAlert(t, db, "e1")
	saveAlert(t, db, "e2")

	if err := db.DismissAlert(first.ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}

	active, err := db.ActiveAlerts(0)
	if err != nil {
		t.Fatalf("active alerts: %v", err)
	}
	if len(active) != 1 || active[0].EventID != "e2" {
		t.Fatalf("unexpected active set %+v", active)
	}

	all, err := db.ListAlerts(0)
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("dismiss must not delete rows, got %d", len(all))
	}
}

func TestDismissUnknownAlert(t *testing.T) {
	db := openTestDB(t)
	if err := db.DismissAlert(999); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestJSONColumnsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	saved := saveAlert(t, db, "e1")

	loaded, err := db.GetAlert(saved.ID)
	if err != nil {
		t.Fatalf("get alert: %v", err)
	}
	keywords := loaded.DetectedKeywords()
	if len(keywords) != 1 || keywords[0] != "bit.ly" {
		t.Fatalf("unexpected keywords %v", keywords)
	}
	reasons := loaded.Reasons()
	if len(reasons) != 1 || reasons[0] != "phishing url" {
		t.Fatalf("unexpected reasons %v", reasons)
	}
}
