package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"axioma/internal/discernment/ports"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2"
)

// Ollama narrates through a local Ollama server's /api/generate endpoint.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// OllamaOption configures an Ollama narrator.
type OllamaOption func(*Ollama)

// WithOllamaHTTPClient overrides the HTTP client.
func WithOllamaHTTPClient(c *http.Client) OllamaOption {
	return func(o *Ollama) {
		if c != nil {
			o.client = c
		}
	}
}

// NewOllama creates an Ollama narrator. Empty values take the local defaults.
func NewOllama(baseURL, model string, opts ...OllamaOption) *Ollama {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	o := &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Narrate implements ports.Narrator.
func (o *Ollama) Narrate(ctx context.Context, req ports.NarrationRequest) (string, error) {
	system, prompt := BuildPrompt(req)
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:   o.model,
		System:  system,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]any{"temperature": 0.2},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", fmt.Errorf("ollama returned an empty response")
	}
	return text, nil
}
