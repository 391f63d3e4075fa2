package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cuentomagico/internal/llm"
	"cuentomagico/internal/story"
)

// TextSource produces raw story text for a prompt. The web service uses
// the model provider directly; a split deployment talks to the backend
// proxy over HTTP instead.
type TextSource interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// LLMSource generates through an llm.Client with the story author
// system framing.
type LLMSource struct {
	Client llm.Client
}

func (s *LLMSource) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.Client.Generate(ctx, story.SystemPrompt, prompt)
}

// ProxyClient consumes the POST {base}/generate-story endpoint. The
// response nests the text under candidates[0].content.parts[0].text.
type ProxyClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewProxyClient(baseURL string) *ProxyClient {
	return &ProxyClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *ProxyClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/generate-story", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Candidates) == 0 ||
		len(decoded.Candidates[0].Content.Parts) == 0 ||
		decoded.Candidates[0].Content.Parts[0].Text == "" {
		return "", fmt.Errorf("backend returned no text")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
