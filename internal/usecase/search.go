package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/config"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/adapter/cache"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/domain"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/port"
)

// contextContentLimit caps per-message content length when building
// prompt context, in runes.
const contextContentLimit = 300

// Searcher answers semantic similarity queries over the stored corpus.
type Searcher struct {
	store        port.MessageStore
	embedder     port.Embedder
	cache        *cache.QueryCache
	defaultLimit int
	contextLimit int
}

func NewSearcher(store port.MessageStore, embedder port.Embedder, queryCache *cache.QueryCache, cfg config.SearchConfig) *Searcher {
	defaultLimit := cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	contextLimit := cfg.ContextLimit
	if contextLimit <= 0 {
		contextLimit = 5
	}

	return &Searcher{
		store:        store,
		embedder:     embedder,
		cache:        queryCache,
		defaultLimit: defaultLimit,
		contextLimit: contextLimit,
	}
}

// Search embeds the query and ranks stored messages by cosine
// similarity. A blank query, or one whose embedding cannot be
// generated, yields an empty result rather than an error.
func (s *Searcher) Search(ctx context.Context, query, guildID string, limit int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	if s.cache != nil {
		if results, hit := s.cache.Get(query, guildID, limit); hit {
			return results, nil
		}
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WarningF("query embedding failed: %v\n", err)
		return nil, nil
	}
	if vec == nil {
		return nil, nil
	}

	results, err := s.store.SimilarSearch(vec, guildID, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(query, guildID, limit, results)
	}
	return results, nil
}

// SearchURLs is the lightweight variant returning source links only.
func (s *Searcher) SearchURLs(ctx context.Context, query, guildID string, limit int) ([]string, error) {
	results, err := s.Search(ctx, query, guildID, limit)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.SourceURL)
	}
	return urls, nil
}

// RelevantContext builds a numbered context block from the closest
// stored messages, for retrieval-augmented prompts. Returns "" when
// nothing matches.
func (s *Searcher) RelevantContext(ctx context.Context, query, guildID string, limit int) (string, error) {
	if limit <= 0 {
		limit = s.contextLimit
	}

	results, err := s.Search(ctx, query, guildID, limit)
	if err != nil || len(results) == 0 {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Here are relevant messages from this server that may help:")
	for i, r := range results {
		content := r.Content
		if runes := []rune(content); len(runes) > contextContentLimit {
			content = string(runes[:contextContentLimit]) + "..."
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, content)
	}
	return b.String(), nil
}
