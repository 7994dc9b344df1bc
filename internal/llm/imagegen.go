package llm

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pictune/pictune-api/internal/logger"
	"github.com/pictune/pictune-api/internal/prompt"
	"google.golang.org/genai"
)

// ImageGenerator creates the playlist thumbnail and LP-style cover with
// Gemini's image model. Both generations run concurrently; either may fail
// independently without affecting the playlist.
type ImageGenerator struct {
	client  *genai.Client
	model   string
	prompts *prompt.Builder
}

func NewImageGenerator(ctx context.Context, apiKey, model string) (*ImageGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &ImageGenerator{
		client:  client,
		model:   model,
		prompts: prompt.NewBuilder(),
	}, nil
}

// GenerateImages produces both images concurrently and returns whichever
// paths were written. Empty string means that image failed or produced no
// data; callers treat it as absent, not as an error.
func (g *ImageGenerator) GenerateImages(ctx context.Context, imagePath, thumbnailDest, coverDest string) (string, string) {
	var thumbnailPath, coverPath string

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		thumbnailPath = g.generateOne(ctx, "thumbnail", g.prompts.Thumbnail(), imagePath, thumbnailDest)
	}()
	go func() {
		defer wg.Done()
		coverPath = g.generateOne(ctx, "cover", g.prompts.Cover(), imagePath, coverDest)
	}()

	wg.Wait()
	return thumbnailPath, coverPath
}

func (g *ImageGenerator) generateOne(ctx context.Context, kind, promptText, imagePath, dest string) string {
	var parts []*genai.Part

	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			logger.Warn("Image generation input unreadable, using prompt only", logger.Fields{
				"kind":  kind,
				"error": err.Error(),
			})
		} else {
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{
					MIMEType: MimeTypeForImage(imagePath),
					Data:     data,
				},
			})
		}
	}
	parts = append(parts, &genai.Part{Text: promptText})

	contents := []*genai.Content{{Role: geminiUserRole, Parts: parts}}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		logger.Warn("Image generation failed", logger.Fields{"kind": kind, "error": err.Error()})
		return ""
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			if err := os.WriteFile(dest, part.InlineData.Data, 0o644); err != nil {
				logger.Warn("Failed to save generated image", logger.Fields{"kind": kind, "error": err.Error()})
				return ""
			}
			logger.Info("Generated image saved", logger.Fields{"kind": kind, "path": dest})
			return dest
		}
	}

	logger.Warn("No image data in generation response", logger.Fields{"kind": kind})
	return ""
}
