package llm

import (
	"fmt"
	"strings"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Factory creates LLM clients with consistent configuration.
type Factory struct {
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	AnthropicAPIKey string
	Temperature     float32
}

func (f *Factory) New(provider string) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		if f.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for provider %q", provider)
		}
		return NewOpenAI(f.OpenAIAPIKey, f.OpenAIBaseURL, f.OpenAIModel, f.Temperature), nil
	case ProviderAnthropic:
		if f.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", provider)
		}
		return NewAnthropic(f.AnthropicAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
