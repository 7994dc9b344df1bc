package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const providerNameOpenAI = "openai"

// OpenAIProvider implements the Provider interface using OpenAI's Chat
// Completions API, with image input as a data-URL content part.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client: &client,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate implements one-shot generation using OpenAI's API
func (p *OpenAIProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()

	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)

	message, err := p.buildUserMessage(request)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, err
	}

	span := transaction.StartChild("openai.api_call")
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(request.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{message},
	})
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", time.Since(startTime), err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("no choices in OpenAI response")
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("openai response did not include any output text")
	}

	usage := map[string]any{
		"input_tokens":  int(resp.Usage.PromptTokens),
		"output_tokens": int(resp.Usage.CompletionTokens),
		"total_tokens":  int(resp.Usage.TotalTokens),
	}

	log.Printf("✅ OPENAI GENERATION COMPLETED in %v (output: %d chars)", time.Since(startTime), len(text))

	transaction.SetTag("success", "true")
	return &GenerationResponse{
		Text:  text,
		Usage: usage,
	}, nil
}

// buildUserMessage assembles the user message, attaching the image as a
// base64 data URL when present.
func (p *OpenAIProvider) buildUserMessage(request *GenerationRequest) (openai.ChatCompletionMessageParamUnion, error) {
	if request.ImagePath == "" {
		return openai.UserMessage(request.Prompt), nil
	}

	data, err := os.ReadFile(request.ImagePath)
	if err != nil {
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("read image %s: %w", request.ImagePath, err)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		MimeTypeForImage(request.ImagePath),
		base64.StdEncoding.EncodeToString(data))

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
		openai.TextContentPart(request.Prompt),
	}
	return openai.UserMessage(parts), nil
}
