package search

import (
	"context"
	"errors"
	"testing"

	"github.com/johnswift/eclipse/internal/db"
	"github.com/johnswift/eclipse/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	vector  []db.AppWithScore
	lexical []db.AppWithScore
	err     error

	vectorCalls  int
	lexicalCalls int
	lastModel    string
}

func (f *fakeIndex) VectorSearchApps(_ context.Context, p db.VectorSearchParams) ([]db.AppWithScore, error) {
	f.vectorCalls++
	f.lastModel = p.Model
	return clone(f.vector), f.err
}

func (f *fakeIndex) LexicalSearchApps(_ context.Context, _ db.LexicalSearchParams) ([]db.AppWithScore, error) {
	f.lexicalCalls++
	return clone(f.lexical), f.err
}

func clone(in []db.AppWithScore) []db.AppWithScore {
	return append([]db.AppWithScore(nil), in...)
}

type fakeEmbedder struct{ err error }

func (f fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func hit(id int64, title, path string, score float32) db.AppWithScore {
	return db.AppWithScore{
		App:   db.App{ID: id, SpaceID: "s", SpaceName: "Main", Path: path, Type: transfer.ItemApp, Title: title},
		Score: score,
	}
}

func ids(results []SearchResult) []int64 {
	out := make([]int64, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func noBoosts() RankingOptions { return RankingOptions{} }

func TestSearchLexicalOnlyWithoutEmbedder(t *testing.T) {
	idx := &fakeIndex{lexical: []db.AppWithScore{hit(1, "Mail", "0", 0.9), hit(2, "Maps", "1", 0.4)}}
	s := NewHybridSearcher(idx, nil).WithRanking(noBoosts())

	assert.False(t, s.Semantic())

	results, err := s.Search(context.Background(), SearchParams{Query: "mail", Hybrid: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(results))
	assert.Zero(t, idx.vectorCalls)
}

func TestSearchEmptyQuery(t *testing.T) {
	idx := &fakeIndex{}
	results, err := NewHybridSearcher(idx, fakeEmbedder{}).Search(context.Background(), SearchParams{Query: "   "})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, idx.lexicalCalls+idx.vectorCalls)
}

func TestSearchVectorOnly(t *testing.T) {
	idx := &fakeIndex{vector: []db.AppWithScore{hit(3, "Docs", "2", 0.8)}}
	s := NewHybridSearcher(idx, fakeEmbedder{}).WithRanking(noBoosts())

	results, err := s.Search(context.Background(), SearchParams{Query: "docs", Model: "m1"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(results))
	assert.Equal(t, "m1", idx.lastModel)
	assert.Zero(t, idx.lexicalCalls)
}

func TestSearchHybridFusion(t *testing.T) {
	idx := &fakeIndex{
		vector:  []db.AppWithScore{hit(1, "A", "0", 1.0), hit(2, "B", "1", 0.5)},
		lexical: []db.AppWithScore{hit(2, "B", "1", 0.8), hit(3, "C", "2", 0.4)},
	}
	s := NewHybridSearcher(idx, fakeEmbedder{}).WithAlpha(0.5).WithRanking(noBoosts())

	results, err := s.Search(context.Background(), SearchParams{Query: "q", Hybrid: true})
	require.NoError(t, err)

	// vector normalized: 1 -> 1.0, 2 -> 0.5; lexical normalized: 2 -> 1.0, 3 -> 0.5
	// fused: 1 = 0.5, 2 = 0.75, 3 = 0.25
	assert.Equal(t, []int64{2, 1, 3}, ids(results))
	assert.InDelta(t, 0.75, results[0].Score, 1e-6)
}

func TestSearchHybridFallsBackToNonEmptySide(t *testing.T) {
	idx := &fakeIndex{lexical: []db.AppWithScore{hit(7, "Z", "0", 0.3)}}
	s := NewHybridSearcher(idx, fakeEmbedder{}).WithRanking(noBoosts())

	results, err := s.Search(context.Background(), SearchParams{Query: "z", Hybrid: true, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids(results))
}

func TestSearchPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewHybridSearcher(&fakeIndex{}, fakeEmbedder{err: boom}).Search(context.Background(), SearchParams{Query: "x"})
	assert.ErrorIs(t, err, boom)

	_, err = NewHybridSearcher(&fakeIndex{err: boom}, nil).Search(context.Background(), SearchParams{Query: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestTruncateResults(t *testing.T) {
	results := appsToResults([]db.AppWithScore{hit(1, "a", "0", 1), hit(2, "b", "1", 1), hit(3, "c", "2", 1)})
	assert.Len(t, truncateResults(results, 2), 2)
	assert.Len(t, truncateResults(results, 10), 3)
}

func TestApplyBoosts(t *testing.T) {
	results := []SearchResult{
		{App: db.App{ID: 1, Title: "Nested Mail", Path: "0/1/2", Type: transfer.ItemApp}, Score: 1},
		{App: db.App{ID: 2, Title: "Mail", Path: "1", Type: transfer.ItemApp}, Score: 1},
		{App: db.App{ID: 3, Title: "Mail folder", Path: "2", Type: transfer.ItemFolder}, Score: 1},
	}

	boosted := ApplyBoosts(results, "mail", DefaultRankingOptions())

	assert.Equal(t, []int64{2, 3, 1}, ids(boosted))
	assert.InDelta(t, 1.25, boosted[0].Score, 1e-6)
	assert.Equal(t, float32(1), results[0].Score, "input must not be modified")
}

func TestPathDepth(t *testing.T) {
	assert.Equal(t, 0, pathDepth("4"))
	assert.Equal(t, 2, pathDepth("4/0/1"))
}
