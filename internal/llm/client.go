package llm

import (
	"context"
	"time"

	"github.com/pictune/pictune-api/internal/config"
	"github.com/pictune/pictune-api/internal/logger"
	"github.com/pictune/pictune-api/internal/observability"
	"github.com/pictune/pictune-api/internal/prompt"
)

// Client is the curation pipeline's view of the language models: one vision
// call for mood inference and one text call for song recommendation. Both
// return raw model text; parsing is the caller's concern.
type Client struct {
	factory        *ProviderFactory
	prompts        *prompt.Builder
	moodModel      string
	recommendModel string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		factory:        NewProviderFactory(cfg.GeminiAPIKey, cfg.OpenAIAPIKey),
		prompts:        prompt.NewBuilder(),
		moodModel:      cfg.MoodModel,
		recommendModel: cfg.RecommendModel,
	}
}

// AnalyzeMood maps the uploaded image to raw mood-analysis text.
func (c *Client) AnalyzeMood(ctx context.Context, imagePath string) (string, error) {
	return c.generate(ctx, "mood_analysis", &GenerationRequest{
		Model:     c.moodModel,
		Prompt:    c.prompts.MoodAnalysis(),
		ImagePath: imagePath,
	})
}

// RecommendSongs maps the parsed mood record to raw recommendation text.
func (c *Client) RecommendSongs(ctx context.Context, moodJSON string) (string, error) {
	return c.generate(ctx, "song_recommendation", &GenerationRequest{
		Model:  c.recommendModel,
		Prompt: c.prompts.SongRecommendation(moodJSON),
	})
}

func (c *Client) generate(ctx context.Context, name string, request *GenerationRequest) (string, error) {
	provider, err := c.factory.GetProvider(ctx, request.Model)
	if err != nil {
		return "", err
	}

	trace := observability.GetClient().StartTrace(ctx, name, map[string]interface{}{
		"model":    request.Model,
		"provider": provider.Name(),
	})
	defer trace.Finish()

	generation := trace.Generation(name, nil)
	generation.Input(request.Prompt)

	startTime := time.Now()
	response, err := provider.Generate(ctx, request)
	if err != nil {
		generation.SetLevel("ERROR")
		generation.Finish()
		return "", err
	}

	generation.Output(response.Text)
	generation.Usage(response.Usage)
	generation.Finish()

	logger.LogModelCall(ctx, request.Model, time.Since(startTime), response.Usage, logger.Fields{
		"call": name,
	})

	return response.Text, nil
}
