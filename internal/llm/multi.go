package llm

import (
	"context"
	"fmt"
	"strings"
)

// MultiEmbedder wraps multiple embedding providers so shortcuts can be
// indexed under several models while searches use the primary one.
type MultiEmbedder struct {
	providers map[string]EmbeddingProvider
	order     []string // order[0] is the primary model
}

// NewMultiEmbedder creates a multi-model embedder from a comma-separated list of models.
// Format: "model1,model2,model3" - first model is the primary.
// For OpenAI: "text-embedding-3-small,text-embedding-3-large"
func NewMultiEmbedder(backend, apiKey, modelList string) (*MultiEmbedder, error) {
	if modelList == "" || modelList == "auto" {
		model, err := DefaultModel(backend)
		if err != nil {
			return nil, err
		}
		modelList = model
	}

	var providers []EmbeddingProvider
	for _, model := range strings.Split(modelList, ",") {
		model = strings.TrimSpace(model)
		if model == "" {
			continue
		}

		provider, err := NewEmbeddingProvider(backend, apiKey, model)
		if err != nil {
			return nil, fmt.Errorf("create provider for model %s: %w", model, err)
		}
		providers = append(providers, provider)
	}

	return NewMultiEmbedderFromProviders(providers...)
}

// NewMultiEmbedderFromProviders combines already-built providers. The first
// one is the primary; later providers with a duplicate model are ignored.
func NewMultiEmbedderFromProviders(providers ...EmbeddingProvider) (*MultiEmbedder, error) {
	m := &MultiEmbedder{providers: make(map[string]EmbeddingProvider, len(providers))}
	for _, p := range providers {
		model := p.Model()
		if _, dup := m.providers[model]; dup {
			continue
		}
		m.providers[model] = p
		m.order = append(m.order, model)
	}

	if len(m.order) == 0 {
		return nil, fmt.Errorf("no valid models specified")
	}
	return m, nil
}

// Models returns the configured embedding models, primary first.
func (m *MultiEmbedder) Models() []string {
	return append([]string(nil), m.order...)
}

// Providers returns the underlying providers, primary first.
func (m *MultiEmbedder) Providers() []EmbeddingProvider {
	out := make([]EmbeddingProvider, len(m.order))
	for i, model := range m.order {
		out[i] = m.providers[model]
	}
	return out
}

// Primary returns the primary model name.
func (m *MultiEmbedder) Primary() string {
	return m.order[0]
}

// Embed generates an embedding using the primary model.
func (m *MultiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return m.EmbedWithModel(ctx, text, m.Primary())
}

// EmbedWithModel generates an embedding using a specific model.
func (m *MultiEmbedder) EmbedWithModel(ctx context.Context, text, model string) ([]float32, error) {
	provider, ok := m.providers[model]
	if !ok {
		return nil, fmt.Errorf("unknown embedding model: %s", model)
	}
	return provider.Embed(ctx, text)
}

// EmbedAll generates embeddings from all configured models.
// Returns a map of model name to embedding.
func (m *MultiEmbedder) EmbedAll(ctx context.Context, text string) (map[string][]float32, error) {
	results := make(map[string][]float32, len(m.providers))
	for _, model := range m.order {
		embedding, err := m.providers[model].Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed with %s: %w", model, err)
		}
		results[model] = embedding
	}
	return results, nil
}

// Dimensions returns the dimensionality of the primary model's embeddings.
func (m *MultiEmbedder) Dimensions() int {
	return m.providers[m.Primary()].Dimensions()
}

// DimensionsForModel returns the dimensionality for a specific model.
func (m *MultiEmbedder) DimensionsForModel(model string) (int, error) {
	provider, ok := m.providers[model]
	if !ok {
		return 0, fmt.Errorf("unknown embedding model: %s", model)
	}
	return provider.Dimensions(), nil
}

// Model returns the primary model name (implements EmbeddingProvider).
func (m *MultiEmbedder) Model() string {
	return m.Primary()
}
