// internal/common/genai/client.go
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chat-intake/internal/common/config"
	stderrors "chat-intake/internal/common/errors"
	commonhttp "chat-intake/internal/common/http"
	"chat-intake/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrEmptyConversation = errors.New("EMPTY_CONVERSATION")
	ErrEmptyCompletion   = errors.New("EMPTY_COMPLETION")
)

// Generator produces the assistant's next message for a conversation.
type Generator interface {
	Generate(ctx context.Context, system string, turns []models.Turn) (string, error)
}

// Client talks to an OpenAI compatible chat completions endpoint. It makes
// exactly one request per call; retries are left to the caller.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

func NewClient(cfg config.GenAIConfig) *Client {
	timeout := config.GetDuration(cfg.Timeout)

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	oc.HTTPClient = commonhttp.NewClient(timeout).
		WithHeader("User-Agent", "chat-intake")

	return &Client{
		api:       openai.NewClientWithConfig(oc),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   timeout,
	}
}

func (c *Client) Generate(ctx context.Context, system string, turns []models.Turn) (string, error) {
	if len(turns) == 0 {
		return "", stderrors.NewGenerationFailedError(ErrEmptyConversation)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, t := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    roleFor(t.Role),
			Content: t.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", stderrors.NewGenerationTimeoutError(err)
		}
		return "", stderrors.NewGenerationFailedError(describe(err))
	}

	if len(resp.Choices) == 0 {
		return "", stderrors.NewGenerationFailedError(ErrEmptyCompletion)
	}
	return resp.Choices[0].Message.Content, nil
}

func roleFor(role string) string {
	if role == models.RoleAssistant {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}

// describe keeps the upstream status code in the wrapped error.
func describe(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("status %d: %w", apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("status %d: %w", reqErr.HTTPStatusCode, err)
	}
	return err
}
