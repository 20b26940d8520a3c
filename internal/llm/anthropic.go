package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/geolens/geolens/internal/domain"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicModel       = "claude-3-5-haiku-20241022"
	anthropicVersion     = "2023-06-01"
	anthropicMaxTokens   = 2048
)

type AnthropicClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) complete(ctx context.Context, messages []anthropicMessage, maxTokens int) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     anthropicModel,
		MaxTokens: maxTokens,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal anthropic request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create anthropic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrCollaboratorTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrCollaboratorUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read anthropic response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: anthropic API returned status %d: %s",
			domain.ErrCollaboratorUnavailable, resp.StatusCode, string(respBody))
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: unmarshal anthropic response: %v", domain.ErrParse, err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("%w: anthropic API error: %s", domain.ErrCollaboratorUnavailable, result.Error.Message)
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("%w: anthropic API returned no content", domain.ErrParse)
	}

	return strings.TrimSpace(result.Content[0].Text), nil
}

func (c *AnthropicClient) Hypothesize(ctx context.Context, req domain.HypothesisRequest) ([]domain.Hypothesis, error) {
	messages := []anthropicMessage{
		{Role: "user", Content: FormatHypothesisPrompt(req)},
	}

	result, err := c.complete(ctx, messages, anthropicMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("hypothesize: %w", err)
	}
	return ParseHypotheses(result)
}

func (c *AnthropicClient) HolisticReason(ctx context.Context, req domain.ReasonRequest) (string, error) {
	messages := []anthropicMessage{
		{Role: "user", Content: FormatReasonPrompt(req)},
	}

	result, err := c.complete(ctx, messages, anthropicMaxTokens)
	if err != nil {
		return "", fmt.Errorf("holistic reason: %w", err)
	}
	return result, nil
}
