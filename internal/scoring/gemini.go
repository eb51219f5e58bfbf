package scoring

import (
	"context"
	"fmt"

	"careerboard/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GeminiProvider completes prompts with a Google Gemini model.
type GeminiProvider struct {
	model llms.Model
}

// NewGeminiProvider returns nil and no error when no API key is configured; the scorer then
// always answers with FallbackResult.
func NewGeminiProvider(ctx context.Context, cfg config.AIConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{model: llm}, nil
}

func (g *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.model == nil {
		return "", ErrProviderUnavailable
	}
	resp, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, llms.WithJSONMode())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return resp, nil
}
