// Package remote implements classification against an OpenAI-compatible
// chat-completions service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"scamwatch/internal/classify"
)

// Config holds remote inference configuration parameters.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Backend implements the classifier contract against the remote API.
type Backend struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

var ErrDisabled = errors.New("remote classifier disabled")

// New constructs a Backend if the supplied configuration is valid.
func New(cfg Config) (*Backend, error) {
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrDisabled
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.2
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 800
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Backend{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       cfg.Model,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		temperature: temp,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Name identifies this backend in logs.
func (b *Backend) Name() string {
	return "remote"
}

// Available reports whether the backend can make outbound calls.
func (b *Backend) Available() bool {
	return b != nil && b.apiKey != ""
}

// Analyze requests a classification for one message. It returns nil on any
// failure so the caller has a single "no result" mode to handle.
func (b *Backend) Analyze(ctx context.Context, req classify.Request) *classify.Result {
	result, err := b.analyze(ctx, req)
	if err != nil {
		logrus.WithError(err).Warn("remote classification failed")
		return nil
	}
	return result
}

func (b *Backend) analyze(ctx context.Context, req classify.Request) (*classify.Result, error) {
	if b == nil || !b.Available() {
		return nil, ErrDisabled
	}

	body, err := json.Marshal(b.buildPayload(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, fmt.Errorf("chat completion status %d: %v", resp.StatusCode, apiErr)
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, errors.New("chat completion empty response")
	}

	return classify.DecodeResult(decoded.Choices[0].Message.Content, req)
}

func (b *Backend) buildPayload(req classify.Request) map[string]any {
	messages := []map[string]string{
		{
			"role":    "system",
			"content": "You analyze on-device messages for financial and social-engineering scams. Reply with a strict JSON object and nothing else.",
		},
		{
			"role":    "user",
			"content": classify.BuildPrompt(req),
		},
	}
	payload := map[string]any{
		"model":       b.model,
		"messages":    messages,
		"temperature": b.temperature,
	}
	if b.maxTokens > 0 {
		payload["max_tokens"] = b.maxTokens
	}
	return payload
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
