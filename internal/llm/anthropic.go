package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicClient struct {
	client *anthropic.Client
}

func NewAnthropic(apiKey string) *AnthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicClient{
		client: client,
	}
}

func (c *AnthropicClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	message, err := c.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     anthropic.F(anthropic.ModelClaude3_5SonnetLatest),
			MaxTokens: anthropic.F(int64(4096)),
			System: anthropic.F([]anthropic.TextBlockParam{
				anthropic.NewTextBlock(systemPrompt),
			}),
			Messages: anthropic.F([]anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(userPrompt),
				),
			}),
		},
	)
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("empty response from claude")
	}

	return message.Content[0].Text, nil
}
