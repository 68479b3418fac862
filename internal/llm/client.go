package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"shopscout/searchservice/internal/metrics"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"
	maxAttempts    = 4
	maxTokens      = 512
)

// ErrNoAPIKey is returned when completion is requested without a key.
var ErrNoAPIKey = errors.New("llm: no API key configured")

// Client talks to an OpenAI-compatible chat completions endpoint. A fallback
// key, when set, is tried on alternating attempts so one exhausted quota does
// not take the normalizer down.
type Client struct {
	keys    []string
	baseURL string
	model   string
	http    *http.Client
}

type Config struct {
	APIKey      string
	FallbackKey string
	BaseURL     string
	Model       string
	Client      *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	var keys []string
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		keys = append(keys, key)
	}
	if key := strings.TrimSpace(cfg.FallbackKey); key != "" {
		keys = append(keys, key)
	}
	return &Client{
		keys:    keys,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    httpClient,
	}
}

func (c *Client) Enabled() bool {
	return len(c.keys) > 0
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the prompt and returns the model's text reply. Attempts are
// retried with exponential backoff and jitter.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrNoAPIKey
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			wait := time.Duration((pow15(attempt) + rand.Float64()*0.6) * float64(time.Second))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		key := c.keys[attempt%len(c.keys)]
		text, err := c.complete(ctx, key, prompt)
		if err == nil {
			metrics.LLMRequestsTotal.WithLabelValues("ok").Inc()
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	metrics.LLMRequestsTotal.WithLabelValues("error").Inc()
	return "", fmt.Errorf("llm: completion failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) complete(ctx context.Context, key, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llm HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body[:min(len(body), 256)])))
	}
	if resp.StatusCode != http.StatusOK {
		msg := "unexpected status"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("llm HTTP %d: %s", resp.StatusCode, msg)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("llm: response contained no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func pow15(n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= 1.5
	}
	return result
}
