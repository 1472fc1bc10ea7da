package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultGatewayURL = "https://ai.gateway.lovable.dev"
	DefaultModel      = "google/gemini-2.5-flash"
)

// Gateway implements Generator against an OpenAI-compatible chat
// completions endpoint.
type Gateway struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewGateway creates a new Gateway generator
func NewGateway(baseURL, apiKey, model string) (*Gateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ai gateway api key is required")
	}
	if baseURL == "" {
		baseURL = DefaultGatewayURL
	}
	if model == "" {
		model = DefaultModel
	}

	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
	}, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends one system and one user message and returns the reply
func (g *Gateway) Complete(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", ErrPaymentRequired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("AI gateway error", "status", resp.StatusCode, "body", string(errBody))
		return "", fmt.Errorf("%w (status %d)", ErrGateway, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrGateway, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrGateway)
	}

	return chatResp.Choices[0].Message.Content, nil
}
