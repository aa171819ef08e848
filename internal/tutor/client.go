package tutor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/config"
	"github.com/cyberguardian/platform/internal/logging"
	"github.com/cyberguardian/platform/internal/metrics"
)

// ErrNotConfigured is returned when no API key is set for the completion service.
var ErrNotConfigured = errors.New("AI completion service not configured")

// Client calls a Gemini-style generateContent endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewClient builds a completion client from config.
func NewClient(cfg config.AI, m *metrics.Metrics, logger zerolog.Logger) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	model := cfg.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   fmt.Sprintf("%s/%s:generateContent", strings.TrimSuffix(cfg.CompletionURL, "/"), model),
		apiKey:     cfg.APIKey,
		metrics:    m,
		logger:     logging.Component(logger, "ai_client"),
	}
}

// Complete sends prompt and returns the first candidate's text. flow labels metrics.
func (c *Client) Complete(ctx context.Context, flow, prompt string) (text string, err error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	started := time.Now()
	defer func() { c.metrics.ObserveAI(flow, started, err) }()

	body, err := json.Marshal(completionRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.4,
			MaxOutputTokens: 2048,
		},
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("completion service returned status %d", resp.StatusCode)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion payload: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("completion service returned no candidates")
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text = strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("completion service returned empty text")
	}
	return text, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type completionRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type completionResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}
