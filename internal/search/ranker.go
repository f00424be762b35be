package search

import (
	"sort"
	"strings"

	"github.com/johnswift/eclipse/internal/transfer"
)

// RankingOptions configures additional boosts for search results.
type RankingOptions struct {
	TitleWeight  float32 // boost when the title starts with the query (0 = disabled)
	DepthPenalty float32 // per-level penalty for items nested in folders (0 = disabled)
	FolderWeight float32 // multiplier applied to folder hits; 0 leaves them unchanged
}

// DefaultRankingOptions returns sensible default ranking options.
func DefaultRankingOptions() RankingOptions {
	return RankingOptions{
		TitleWeight:  0.25,
		DepthPenalty: 0.05,
		FolderWeight: 0.8,
	}
}

// ApplyBoosts applies title and nesting boosts to search results and
// re-sorts them by boosted score.
//
// Boost formula:
//   - title_boost = 1 + opts.TitleWeight if the title has the query as a prefix
//   - depth_boost = 1 / (1 + opts.DepthPenalty * depth)
//   - final_score = score * title_boost * depth_boost (* opts.FolderWeight for folders)
func ApplyBoosts(results []SearchResult, query string, opts RankingOptions) []SearchResult {
	if len(results) == 0 {
		return results
	}

	query = strings.ToLower(strings.TrimSpace(query))

	boosted := make([]SearchResult, len(results))
	copy(boosted, results)

	for i := range boosted {
		boosted[i].Score = calculateBoostedScore(boosted[i], query, opts)
	}

	sort.SliceStable(boosted, func(i, j int) bool {
		return boosted[i].Score > boosted[j].Score
	})

	return boosted
}

func calculateBoostedScore(result SearchResult, query string, opts RankingOptions) float32 {
	score := result.Score

	if opts.TitleWeight > 0 && query != "" && strings.HasPrefix(strings.ToLower(result.Title), query) {
		score *= 1 + opts.TitleWeight
	}

	if opts.DepthPenalty > 0 {
		score /= 1 + opts.DepthPenalty*float32(pathDepth(result.Path))
	}

	if opts.FolderWeight > 0 && result.Type == transfer.ItemFolder {
		score *= opts.FolderWeight
	}

	return score
}

// pathDepth is the folder nesting of an index path: "3" is 0, "3/1" is 1.
func pathDepth(path string) int {
	return strings.Count(path, "/")
}
