package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultOpenAIEmbedModel is the default embedding model for OpenAI.
	DefaultOpenAIEmbedModel = "text-embedding-3-small"
	// OpenAIEmbedDimensions is the dimensionality of text-embedding-3-small.
	OpenAIEmbedDimensions = 1536
)

// OpenAIProvider implements EmbeddingProvider using OpenAI APIs.
type OpenAIProvider struct {
	client     *openai.Client
	embedModel string
	embedDims  int
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey, embedModel string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	if embedModel == "" || embedModel == "auto" {
		embedModel = DefaultOpenAIEmbedModel
	}

	return &OpenAIProvider{
		client:     client,
		embedModel: embedModel,
		embedDims:  openAIDimensions(embedModel),
	}, nil
}

func openAIDimensions(model string) int {
	switch model {
	case "text-embedding-3-large":
		return 3072
	default:
		return OpenAIEmbedDimensions
	}
}

// Embed generates a vector embedding for the given text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.F(p.embedModel),
		Input: openai.F(openai.EmbeddingNewParamsInputUnion(openai.EmbeddingNewParamsInputArrayOfStrings{text})),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embed: no embedding returned")
	}

	// Convert []float64 to []float32
	embedding := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		embedding[i] = float32(v)
	}

	return embedding, nil
}

// Model returns the embedding model name.
func (p *OpenAIProvider) Model() string {
	return p.embedModel
}

// Dimensions returns the dimensionality of the embeddings.
func (p *OpenAIProvider) Dimensions() int {
	return p.embedDims
}
