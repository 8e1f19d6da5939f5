package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultEngineEndpoint = "http://127.0.0.1:8089"

// llamaEngine talks to a llama-server compatible completion endpoint running
// on loopback next to this process.
type llamaEngine struct {
	httpClient *http.Client
	endpoint   string
	modelPath  string
}

func newLlamaEngine(endpoint, modelPath string, timeout time.Duration) (*llamaEngine, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		endpoint = defaultEngineEndpoint
	}
	return &llamaEngine{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		modelPath:  modelPath,
	}, nil
}

type completionRequest struct {
	Prompt      string  `json:"prompt"`
	NPredict    int     `json:"n_predict"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	Content string `json:"content"`
}

// Complete submits the prompt and returns the raw generated text.
func (e *llamaEngine) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Prompt:      prompt,
		NPredict:    512,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/completion", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("local engine request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("local engine status %d", resp.StatusCode)
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if strings.TrimSpace(decoded.Content) == "" {
		return "", errors.New("local engine empty completion")
	}
	return decoded.Content, nil
}

// Close is a no-op for the HTTP engine; the sidecar owns the model lifetime.
func (e *llamaEngine) Close() error {
	return nil
}
