package llm

import "context"

// Provider defines the interface for LLM providers. Providers return the raw
// model text; structured-output recovery happens in the curation layer, which
// tolerates malformed responses.
type Provider interface {
	// Generate runs one model call and returns the raw output text.
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters needed for one model call.
type GenerationRequest struct {
	Model  string
	Prompt string
	// ImagePath optionally attaches an image as model input (vision calls).
	ImagePath string
}

// GenerationResponse contains the result from the LLM.
type GenerationResponse struct {
	Text  string
	Usage map[string]any // input_tokens, output_tokens, total_tokens
}
