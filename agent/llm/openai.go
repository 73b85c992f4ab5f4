package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient completes prompts with an OpenAI compatible chat endpoint.
type OpenAIClient struct {
	client openai.Client
	model  string
	system string
}

func NewOpenAIClient(cfg Config, opts ...option.RequestOption) *OpenAIClient {
	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}
	reqOpts = append(reqOpts, opts...)
	return &OpenAIClient{
		client: openai.NewClient(reqOpts...),
		model:  cfg.Model,
	}
}

// WithSystem sets a system message sent ahead of every prompt.
func (c *OpenAIClient) WithSystem(system string) *OpenAIClient {
	c.system = system
	return c
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if c.system != "" {
		messages = append(messages, openai.SystemMessage(c.system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
