// Package search provides hybrid shortcut search combining vector and lexical retrieval.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/johnswift/eclipse/internal/db"
	"golang.org/x/sync/errgroup"
)

// EmbeddingProvider generates embeddings for text.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// AppIndex is the shortcut index the searcher reads from.
type AppIndex interface {
	VectorSearchApps(ctx context.Context, params db.VectorSearchParams) ([]db.AppWithScore, error)
	LexicalSearchApps(ctx context.Context, params db.LexicalSearchParams) ([]db.AppWithScore, error)
}

// HybridSearcher combines vector and lexical search with score fusion.
// With no embedder it degrades to lexical search.
type HybridSearcher struct {
	index   AppIndex
	embed   EmbeddingProvider
	alpha   float32 // vector weight, default 0.7
	ranking RankingOptions
}

// NewHybridSearcher creates a new hybrid searcher. embedder may be nil.
// The alpha parameter controls the blend between vector and lexical search:
// - alpha = 1.0: pure vector search
// - alpha = 0.0: pure lexical search
// - alpha = 0.7 (default): 70% vector, 30% lexical
func NewHybridSearcher(index AppIndex, embedder EmbeddingProvider) *HybridSearcher {
	return &HybridSearcher{
		index:   index,
		embed:   embedder,
		alpha:   0.7,
		ranking: DefaultRankingOptions(),
	}
}

// WithAlpha returns a new HybridSearcher with the specified alpha value.
func (h *HybridSearcher) WithAlpha(alpha float32) *HybridSearcher {
	c := *h
	c.alpha = alpha
	return &c
}

// WithRanking returns a new HybridSearcher with the given boosts.
func (h *HybridSearcher) WithRanking(opts RankingOptions) *HybridSearcher {
	c := *h
	c.ranking = opts
	return &c
}

// Semantic reports whether vector search is available.
func (h *HybridSearcher) Semantic() bool {
	return h.embed != nil
}

// SearchParams configures the search operation.
type SearchParams struct {
	Query  string  // The search query text
	Limit  int     // Maximum number of results to return
	Hybrid bool    // false = vector only, true = hybrid fusion
	Alpha  float32 // 0 = lexical only, 1 = vector only (overrides default if > 0)
	Model  string  // Optional: filter by embedding model (empty = any model)
}

// SearchResult is a shortcut with its fused score.
type SearchResult struct {
	db.App
	Score float32 `json:"score"`
}

// Search finds shortcuts matching params.Query. With an embedder and
// params.Hybrid set, vector and lexical hits are fused; with Hybrid unset only
// vector search runs. Without an embedder every search is lexical.
func (h *HybridSearcher) Search(ctx context.Context, params SearchParams) ([]SearchResult, error) {
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return []SearchResult{}, nil
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}

	if h.embed == nil {
		hits, err := h.index.LexicalSearchApps(ctx, db.LexicalSearchParams{Query: query, Limit: limit})
		if err != nil {
			return nil, fmt.Errorf("lexical search: %w", err)
		}
		return ApplyBoosts(appsToResults(hits), query, h.ranking), nil
	}

	embedding, err := h.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if !params.Hybrid {
		hits, err := h.index.VectorSearchApps(ctx, db.VectorSearchParams{Embedding: embedding, Limit: limit, Model: params.Model})
		if err != nil {
			return nil, fmt.Errorf("vector search: %w", err)
		}
		return ApplyBoosts(appsToResults(hits), query, h.ranking), nil
	}

	alpha := h.alpha
	if params.Alpha > 0 {
		alpha = params.Alpha
	}
	return h.hybridSearch(ctx, query, embedding, limit, alpha, params.Model)
}

// hybridSearch runs both retrievals concurrently, over-fetching so fusion
// has candidates from each side.
func (h *HybridSearcher) hybridSearch(ctx context.Context, query string, embedding []float32, limit int, alpha float32, model string) ([]SearchResult, error) {
	fetchLimit := max(limit*3, 20)

	var vectorHits, lexicalHits []db.AppWithScore
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vectorHits, err = h.index.VectorSearchApps(gctx, db.VectorSearchParams{Embedding: embedding, Limit: fetchLimit, Model: model})
		if err != nil {
			return fmt.Errorf("vector search: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		lexicalHits, err = h.index.LexicalSearchApps(gctx, db.LexicalSearchParams{Query: query, Limit: fetchLimit})
		if err != nil {
			return fmt.Errorf("lexical search: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []SearchResult
	switch {
	case len(vectorHits) == 0 && len(lexicalHits) == 0:
		return []SearchResult{}, nil
	case len(vectorHits) == 0:
		results = ApplyBoosts(appsToResults(lexicalHits), query, h.ranking)
	case len(lexicalHits) == 0:
		results = ApplyBoosts(appsToResults(vectorHits), query, h.ranking)
	default:
		results = fuse(vectorHits, lexicalHits, alpha, query, h.ranking)
	}
	return truncateResults(results, limit), nil
}

// fuse merges both result sets by app ID, normalizing each to 0-1 first.
func fuse(vectorResults, lexicalResults []db.AppWithScore, alpha float32, query string, ranking RankingOptions) []SearchResult {
	normalizeScores(vectorResults)
	normalizeScores(lexicalResults)

	// Build lookup maps for efficient merging
	vectorScores := make(map[int64]float32, len(vectorResults))
	for _, r := range vectorResults {
		vectorScores[r.ID] = r.Score
	}

	lexicalScores := make(map[int64]float32, len(lexicalResults))
	for _, r := range lexicalResults {
		lexicalScores[r.ID] = r.Score
	}

	merged := make(map[int64]SearchResult)

	for _, r := range vectorResults {
		lexScore := lexicalScores[r.ID] // 0 if not present
		merged[r.ID] = SearchResult{App: r.App, Score: alpha*r.Score + (1-alpha)*lexScore}
	}

	// Add lexical results not already present
	for _, r := range lexicalResults {
		if _, exists := merged[r.ID]; !exists {
			vecScore := vectorScores[r.ID] // 0 if not present
			merged[r.ID] = SearchResult{App: r.App, Score: alpha*vecScore + (1-alpha)*r.Score}
		}
	}

	results := make([]SearchResult, 0, len(merged))
	for _, r := range merged {
		results = append(results, r)
	}

	// Map iteration is random; break ties by ID so output is stable.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	return ApplyBoosts(results, query, ranking)
}

// normalizeScores normalizes scores to 0-1 by dividing by max.
func normalizeScores(results []db.AppWithScore) {
	if len(results) == 0 {
		return
	}

	// Find max score
	maxScore := results[0].Score
	for _, r := range results[1:] {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}

	// Avoid division by zero
	if maxScore <= 0 {
		return
	}

	for i := range results {
		results[i].Score = results[i].Score / maxScore
	}
}

// appsToResults converts AppWithScore slice to SearchResult slice.
func appsToResults(apps []db.AppWithScore) []SearchResult {
	results := make([]SearchResult, len(apps))
	for i, a := range apps {
		results[i] = SearchResult{App: a.App, Score: a.Score}
	}
	return results
}

// truncateResults returns at most limit results.
func truncateResults(results []SearchResult, limit int) []SearchResult {
	if len(results) <= limit {
		return results
	}
	return results[:limit]
}
