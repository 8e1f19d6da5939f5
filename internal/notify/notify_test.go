package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type telegramAPIMock struct {
	mu    sync.Mutex
	texts []string
}

func (m *telegramAPIMock) Handle(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost || !strings.HasSuffix(request.URL.Path, "/sendMessage") {
		writer.WriteHeader(http.StatusNotFound)
		return
	}
	defer request.Body.Close()
	if err := request.ParseMultipartForm(2 << 20); err != nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}
	m.mu.Lock()
	m.texts = append(m.texts, request.FormValue("text"))
	messageID := len(m.texts) + 100
	m.mu.Unlock()
	writer.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(writer, `{"ok":true,"result":{"message_id":%d,"date":1,"chat":{"id":1,"type":"private"}}}`, messageID)
}

func (m *telegramAPIMock) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}

func newMockNotifier(t *testing.T) (*TelegramNotifier, *telegramAPIMock) {
	t.Helper()
	mock := &telegramAPIMock{}
	server := httptest.NewServer(http.HandlerFunc(mock.Handle))
	t.Cleanup(server.Close)
	notifier := NewTelegramNotifier(TelegramConfig{
		Enabled:  true,
		BotToken: "token",
		ChatID:   "12345",
		APIBase:  server.URL,
	})
	return notifier, mock
}

func TestTelegramNotifierDisabled(t *testing.T) {
	notifier := NewTelegramNotifier(TelegramConfig{BotToken: "token", ChatID: "12345"})
	if err := notifier.Alert(context.Background(), Message{Title: "x"}); err == nil {
		t.Fatal("expected error from disabled channel")
	}
}

func TestTelegramNotifierRequiresCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  TelegramConfig
	}{
		{"missing token", TelegramConfig{Enabled: true, ChatID: "12345"}},
		{"missing chat", TelegramConfig{Enabled: true, BotToken: "token"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := NewTelegramNotifier(tt.cfg)
			if err := notifier.Status(context.Background(), "up"); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}

func TestTelegramAlertText(t *testing.T) {
	notifier, mock := newMockNotifier(t)

	err := notifier.Alert(context.Background(), Message{
		Title:      "PHISHING",
		Body:       "careful",
		Confidence: 0.29,
		SourceApp:  "com.example.chat",
		DeepLink:   "scamwatch://alerts",
	})
	if err != nil {
		t.Fatalf("alert: %v", err)
	}

	text := mock.lastText()
	if !strings.Contains(text, "(29%)") {
		t.Fatalf("expected rounded confidence in %q", text)
	}
	if !strings.Contains(text, "Source: com.example.chat") {
		t.Fatalf("expected source line in %q", text)
	}
	if !strings.Contains(text, "scamwatch://alerts") {
		t.Fatalf("expected deep link in %q", text)
	}
}

func TestNormalizeChatID(t *testing.T) {
	if got := normalizeChatID(" 12345 "); got != int64(12345) {
		t.Fatalf("expected numeric chat id got %#v", got)
	}
	if got := normalizeChatID("@channel"); got != "@channel" {
		t.Fatalf("expected username chat id got %#v", got)
	}
}
