package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	// DefaultGeminiEmbedModel is the default embedding model for Gemini.
	DefaultGeminiEmbedModel = "text-embedding-004"
	// GeminiEmbedDimensions is the dimensionality of text-embedding-004.
	GeminiEmbedDimensions = 768
)

// GeminiProvider implements EmbeddingProvider using Google Gemini APIs.
type GeminiProvider struct {
	client     *genai.Client
	embedModel string
	embedDims  int
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(apiKey, embedModel string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	if embedModel == "" || embedModel == "auto" {
		embedModel = DefaultGeminiEmbedModel
	}

	return &GeminiProvider{
		client:     client,
		embedModel: embedModel,
		embedDims:  GeminiEmbedDimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	content := genai.NewUserContentFromText(text)
	result, err := p.client.Models.EmbedContent(ctx, p.embedModel, []*genai.Content{content}, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}

	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("gemini embed: no embedding returned")
	}

	return result.Embeddings[0].Values, nil
}

// Model returns the embedding model name.
func (p *GeminiProvider) Model() string {
	return p.embedModel
}

// Dimensions returns the dimensionality of the embeddings.
func (p *GeminiProvider) Dimensions() int {
	return p.embedDims
}
