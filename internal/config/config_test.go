package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen != defaultListen {
		t.Fatalf("expected default listen got %q", cfg.Server.Listen)
	}
	if cfg.Store.Path != defaultDBPath {
		t.Fatalf("expected default db path got %q", cfg.Store.Path)
	}
	if cfg.Expiry() != 15*time.Second {
		t.Fatalf("expected 15s expiry got %v", cfg.Expiry())
	}
	if cfg.Ingest.Subject != defaultNATSSubject {
		t.Fatalf("expected default subject got %q", cfg.Ingest.Subject)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[server]
listen = ":9191"

[store]
path = "/tmp/test-alerts.db"

[alert]
expiry_seconds = 30
deep_link = "scamwatch://home"

[classifier.remote]
api_key = "file-key"
model = "gpt-test"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen != ":9191" {
		t.Fatalf("unexpected listen %q", cfg.Server.Listen)
	}
	if cfg.Expiry() != 30*time.Second {
		t.Fatalf("unexpected expiry %v", cfg.Expiry())
	}
	if cfg.Classifier.Remote.APIKey != "file-key" {
		t.Fatalf("unexpected api key %q", cfg.Classifier.Remote.APIKey)
	}
	if cfg.Alert.DeepLink != "scamwatch://home" {
		t.Fatalf("unexpected deep link %q", cfg.Alert.DeepLink)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	path := writeConfig(t, `
[classifier.remote]
api_key = "file-key"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Classifier.Remote.APIKey != "env-key" {
		t.Fatalf("expected env override got %q", cfg.Classifier.Remote.APIKey)
	}
}

func TestLoadValidation(t *testing.T) {
	path := writeConfig(t, `
[classifier.local]
eligible = true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for eligible local without bundle path")
	}

	path = writeConfig(t, `
[telegram]
enabled = true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for telegram without credentials")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
