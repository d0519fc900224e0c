package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/lsk7209/coindrop/internal/retry"
)

const defaultModel = "gemini-2.0-flash"

// GeminiEngine implements Engine on the Gemini API.
type GeminiEngine struct {
	client *genai.Client
	model  string
	logger *slog.Logger
	nowFn  func() time.Time
}

func NewGeminiEngine(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("engine api key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiEngine{
		client: client,
		model:  model,
		logger: logger.With("component", "engine", "model", model),
		nowFn:  time.Now,
	}, nil
}

// Generate asks the model for a JSON guide draft. Empty or malformed
// model output is marked transient so the job retries with backoff.
func (e *GeminiEngine) Generate(ctx context.Context, req GenerateRequest) (*Generated, error) {
	start := time.Now()

	contents := []*genai.Content{
		genai.NewContentFromText(buildPrompt(req), genai.RoleUser),
	}
	result, err := e.client.Models.GenerateContent(ctx, e.model, contents, &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0.7),
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return nil, retry.Transient(fmt.Errorf("empty model response for %s", req.ProjectSlug))
	}

	var gen Generated
	if err := json.Unmarshal([]byte(text), &gen); err != nil {
		return nil, retry.Transient(fmt.Errorf("decode model response for %s: %w", req.ProjectSlug, err))
	}

	gen.Title = GuideTitle(req.ProjectName, e.nowFn())
	if len(gen.Hashtags) == 0 {
		gen.Hashtags = []string{"#에어드랍"}
	}

	e.logger.Debug("draft generated",
		"project", req.ProjectSlug,
		"howto_steps", len(gen.HowTo),
		"faq", len(gen.FAQ),
		"elapsed", time.Since(start).String(),
	)
	return &gen, nil
}
