package llm

import (
	"context"
	"fmt"
	"strings"
)

// ProviderFactory creates providers based on model name
type ProviderFactory struct {
	geminiAPIKey string
	openaiAPIKey string
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(geminiAPIKey, openaiAPIKey string) *ProviderFactory {
	return &ProviderFactory{
		geminiAPIKey: geminiAPIKey,
		openaiAPIKey: openaiAPIKey,
	}
}

// GetProvider infers the provider from the model name. Gemini is the default
// for unknown models.
func (f *ProviderFactory) GetProvider(ctx context.Context, model string) (Provider, error) {
	modelLower := strings.ToLower(model)

	if strings.HasPrefix(modelLower, "gpt-") {
		if f.openaiAPIKey == "" {
			return nil, fmt.Errorf("openai API key not configured")
		}
		return NewOpenAIProvider(f.openaiAPIKey), nil
	}

	if f.geminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured (default provider)")
	}
	return NewGeminiProvider(ctx, f.geminiAPIKey)
}
