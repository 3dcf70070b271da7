package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"treebot/pkg/registry"
)

const defaultKeyEnv = "OPENAI_API_KEY"

// VendorClient calls the vendor chat-completion API through the official
// SDK. Clients are cached per API key since models may name different
// credential env vars.
type VendorClient struct {
	clients   map[string]openai.Client
	clientsMu sync.Mutex
	opts      Options
	timeout   time.Duration
	baseURL   string
}

// NewVendorClient builds the SDK branch. baseURL is empty in production; it
// exists so tests can point the SDK at a local server.
func NewVendorClient(timeout time.Duration, opts Options, baseURL string) *VendorClient {
	return &VendorClient{
		clients: make(map[string]openai.Client),
		opts:    opts,
		timeout: timeout,
		baseURL: baseURL,
	}
}

func (c *VendorClient) getClient(key string) openai.Client {
	c.clientsMu.Lock()
	defer c.clientsMu.Unlock()

	if client, ok := c.clients[key]; ok {
		return client
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithHTTPClient(&http.Client{Timeout: c.timeout}),
		option.WithMaxRetries(0),
	}
	if c.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.baseURL))
	}

	client := openai.NewClient(reqOpts...)
	c.clients[key] = client
	return client
}

func (c *VendorClient) Generate(ctx context.Context, model registry.ModelConfig, p Prompt) (string, error) {
	keyEnv := model.APIKeyEnv
	if keyEnv == "" {
		keyEnv = defaultKeyEnv
	}
	key := os.Getenv(keyEnv)
	if key == "" {
		return "", fmt.Errorf("%w: env var %s is not set", ErrAuth, keyEnv)
	}

	client := c.getClient(key)

	chatMessages := make([]openai.ChatCompletionMessageParamUnion, len(p.Messages))
	for i, msg := range p.Messages {
		switch msg.Role {
		case "system":
			chatMessages[i] = openai.SystemMessage(msg.Content)
		case "assistant":
			chatMessages[i] = openai.AssistantMessage(msg.Content)
		default:
			chatMessages[i] = openai.UserMessage(msg.Content)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(model.Model),
		Messages:    chatMessages,
		Temperature: openai.Float(c.opts.Temperature),
		MaxTokens:   openai.Int(int64(c.opts.MaxTokens)),
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyVendorError(err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrBadResponse)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: no message content", ErrBadResponse)
	}
	return content, nil
}

func classifyVendorError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		if apierr.StatusCode == http.StatusUnauthorized || apierr.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
