package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"scamwatch/internal/classify"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled got %v", err)
	}
}

func TestAnalyze(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["model"] != "test-model" {
			t.Errorf("unexpected model %v", payload["model"])
		}
		json.NewEncoder(w).Encode(chatResponse(
			"```json\n{\"confidence\":82,\"scamType\":\"PHISHING\",\"warningMessage\":\"bad link\",\"reasons\":[\"phishing url\"]}\n```",
		))
	}))
	defer server.Close()

	backend, err := New(Config{APIKey: "secret", Model: "test-model", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	if !backend.Available() {
		t.Fatal("expected backend available")
	}

	result := backend.Analyze(context.Background(), classify.Request{CurrentMessage: "클릭 http://bit.ly/x"})
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.Confidence != 0.82 || result.ScamType != classify.ScamTypePhishing || !result.IsScam {
		t.Fatalf("unexpected result %+v", result)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
}

func TestAnalyzeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	backend, err := New(Config{APIKey: "secret", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	if result := backend.Analyze(context.Background(), classify.Request{CurrentMessage: "hi"}); result != nil {
		t.Fatal("expected nil on server error")
	}
}

func TestAnalyzeEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	backend, err := New(Config{APIKey: "secret", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	if result := backend.Analyze(context.Background(), classify.Request{CurrentMessage: "hi"}); result != nil {
		t.Fatal("expected nil on empty choices")
	}
}

func TestAnalyzeProseOnlyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(chatResponse("I cannot help with that."))
	}))
	defer server.Close()

	backend, err := New(Config{APIKey: "secret", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	if result := backend.Analyze(context.Background(), classify.Request{CurrentMessage: "hi"}); result != nil {
		t.Fatal("expected nil for prose-only content")
	}
}
