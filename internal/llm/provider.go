// Package llm provides embedding provider adapters used to index shortcut
// titles and URLs for semantic search.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// EmbeddingProvider generates vector embeddings for text.
type EmbeddingProvider interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Model returns the name of the embedding model being used.
	Model() string
	// Dimensions returns the dimensionality of the embeddings.
	Dimensions() int
}

// Backend names accepted by NewEmbeddingProvider and NewMultiEmbedder.
const (
	BackendNone   = "none"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// NormalizeBackend lowercases and trims a backend name; empty means none.
func NormalizeBackend(backend string) string {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		return BackendNone
	}
	return backend
}

// NewEmbeddingProvider creates a single-model provider based on backend type.
// model may be empty or "auto" for the backend default.
func NewEmbeddingProvider(backend, apiKey, model string) (EmbeddingProvider, error) {
	switch NormalizeBackend(backend) {
	case BackendOpenAI:
		return NewOpenAIProvider(apiKey, model)
	case BackendGemini:
		return NewGeminiProvider(apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported embedding backend: %q (supported: openai, gemini)", backend)
	}
}

// DefaultModel returns the default embedding model for backend.
func DefaultModel(backend string) (string, error) {
	switch NormalizeBackend(backend) {
	case BackendOpenAI:
		return DefaultOpenAIEmbedModel, nil
	case BackendGemini:
		return DefaultGeminiEmbedModel, nil
	default:
		return "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// AppText is the text embedded for a shortcut.
func AppText(title, url string) string {
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return title
	case title == "":
		return url
	default:
		return title + " " + url
	}
}
