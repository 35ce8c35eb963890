package generation

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/soren0/counsel/internal/prompt"
)

// GeminiClient implements Completer on the Gemini API.
type GeminiClient struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

// NewGemini creates a GeminiClient bound to one model.
func NewGemini(ctx context.Context, apiKey, model string, maxTokens int, temperature float32) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       model,
		maxTokens:   int32(maxTokens), // #nosec G115 -- bounded by config validation
		temperature: temperature,
	}, nil
}

// Complete makes a single generation call. The caller bounds ctx with the
// configured timeout.
func (c *GeminiClient) Complete(ctx context.Context, payload prompt.Payload) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(payload.System, genai.RoleUser),
		MaxOutputTokens:   c.maxTokens,
		Temperature:       genai.Ptr(c.temperature),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(payload.User), cfg)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
