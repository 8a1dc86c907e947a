package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is the Nebius AI Studio OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.studio.nebius.com/v1/"

// ErrNoChoices is returned when the service answers without any completion.
var ErrNoChoices = errors.New("completion response contained no choices")

// CompletionRequest is a single system+user chat completion.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Completer performs one chat completion and returns the text of the first
// choice.  Implementations must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient constructs a client for baseURL.  An empty baseURL falls
// back to DefaultBaseURL and a zero timeout leaves the HTTP client unbounded.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

// Complete sends the request and returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
