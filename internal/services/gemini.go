package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resalign/internal/logger"
)

// TextRequest is one prompt sent to the text-generation model.
type TextRequest struct {
	System      string
	Prompt      string
	Temperature float32
	// JSON asks the model to answer with application/json.
	JSON bool
}

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	GenerateTextWithRetry(ctx context.Context, req TextRequest) (string, error)
}

type GeminiOptions struct {
	APIKey       string
	Model        string
	EmbedModel   string
	MaxAttempts  int
	InitialDelay time.Duration
}

type geminiService struct {
	client       *genai.Client
	modelName    string
	embedModel   string
	maxAttempts  int
	initialDelay time.Duration
	log          *zap.Logger
}

func NewGeminiService(ctx context.Context, opts GeminiOptions, log *zap.Logger) (GeminiService, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	return &geminiService{
		client:       client,
		modelName:    opts.Model,
		embedModel:   opts.EmbedModel,
		maxAttempts:  opts.MaxAttempts,
		initialDelay: opts.InitialDelay,
		log:          logger.OrNop(log),
	}, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Stay well under the embedding model's input limit.
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return "", errors.New("no response generated (nil response)")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", errors.New("no text content in response")
	}

	g.log.Debug("gemini response received", logger.GenerationFields(g.modelName, prompt, text)...)
	return text, nil
}

// GenerateTextWithRetry implements GeminiService. The delay between
// attempts doubles after each failure.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, req TextRequest) (string, error) {
	var lastErr error
	delay := g.initialDelay

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		result, err := g.GenerateText(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == g.maxAttempts {
			break
		}

		g.log.Warn("gemini attempt failed, retrying", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", fmt.Errorf("failed after %d attempts: %w", g.maxAttempts, lastErr)
}
