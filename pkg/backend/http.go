package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"treebot/pkg/prompt"
	"treebot/pkg/registry"
)

// HTTPClient talks to OpenAI-compatible endpoints. Endpoints whose path ends
// in /completions (but not /chat/completions) get the flattened prompt
// shape; everything else gets the chat message list.
type HTTPClient struct {
	client *http.Client
	opts   Options
}

func NewHTTPClient(timeout time.Duration, opts Options) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
		opts:   opts,
	}
}

type chatPayload struct {
	Model       string           `json:"model"`
	Messages    []prompt.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
}

type completionPayload struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

func (c *HTTPClient) Generate(ctx context.Context, model registry.ModelConfig, p Prompt) (string, error) {
	var body any
	if isCompletionsEndpoint(model.Endpoint) {
		body = completionPayload{
			Model:       model.Model,
			Prompt:      p.Flat,
			Temperature: c.opts.Temperature,
			MaxTokens:   c.opts.MaxTokens,
		}
	} else {
		body = chatPayload{
			Model:       model.Model,
			Messages:    p.Messages,
			Temperature: c.opts.Temperature,
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, model.Endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if model.APIKeyEnv != "" {
		if key := os.Getenv(model.APIKeyEnv); key != "" {
			req.Header.Set("Authorization", "Bearer "+key)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrUnreachable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: %v", ErrAuth, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)})
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)})
	}

	return extractText(respBody)
}

// extractText accepts either response shape: a chat-style message content or
// a plain completion text. Content wins when both are present; neither is a
// decoding failure, never an empty string.
func extractText(body []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			Text string `json:"text"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrBadResponse, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrBadResponse)
	}
	if content := strings.TrimSpace(resp.Choices[0].Message.Content); content != "" {
		return content, nil
	}
	if text := strings.TrimSpace(resp.Choices[0].Text); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("%w: no message content or completion text", ErrBadResponse)
}

func isCompletionsEndpoint(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	path := strings.TrimSuffix(u.Path, "/")
	return strings.HasSuffix(path, "/completions") && !strings.HasSuffix(path, "/chat/completions")
}
