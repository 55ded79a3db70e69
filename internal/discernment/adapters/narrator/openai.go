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
	defaultOpenAIURL   = "https://api.openai.com/v1"
	defaultOpenAIModel = "gpt-4o-mini"
)

// OpenAI narrates through any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// OpenAIOption configures an OpenAI narrator.
type OpenAIOption func(*OpenAI)

// WithOpenAIHTTPClient overrides the HTTP client.
func WithOpenAIHTTPClient(c *http.Client) OpenAIOption {
	return func(o *OpenAI) {
		if c != nil {
			o.client = c
		}
	}
}

// WithMaxTokens bounds the completion length.
func WithMaxTokens(n int) OpenAIOption {
	return func(o *OpenAI) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// NewOpenAI creates an OpenAI-compatible narrator. apiKey is required.
func NewOpenAI(baseURL, apiKey, model string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	o := &OpenAI{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: 0.2,
		maxTokens:   900,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Narrate implements ports.Narrator.
func (o *OpenAI) Narrate(ctx context.Context, req ports.NarrationRequest) (string, error) {
	system, prompt := BuildPrompt(req)
	body, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling chat completions: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var out chatResponse
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && out.Error != nil {
			return "", fmt.Errorf("chat completions returned status %d: %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("chat completions returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decoding response: %w", decodeErr)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completions returned no choices")
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat completions returned an empty message")
	}
	return text, nil
}
