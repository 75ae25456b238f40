package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/config"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/adapter/cache"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/adapter/embedding"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/adapter/memstore"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/domain"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/port"
)

func newTestSearcher(store port.MessageStore) *Searcher {
	return NewSearcher(store, embedding.NewMockEmbedder(8), nil, config.SearchConfig{
		DefaultLimit: 10,
		ContextLimit: 5,
	})
}

// seedMessage embeds and stores content the same way the pipeline does.
func seedMessage(t *testing.T, store port.MessageStore, id, guildID, content string) {
	t.Helper()

	vec, err := embedding.NewMockEmbedder(8).Embed(context.Background(), content)
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.Insert(domain.StoredMessage{
		MessageID:   id,
		ChannelID:   "chan-1",
		GuildID:     guildID,
		AuthorID:    "author-1",
		Content:     content,
		ContentHash: ContentHash(content),
		Embedding:   vec,
		SourceURL:   fmt.Sprintf("https://discord.com/channels/%s/chan-1/%s", guildID, id),
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSearch_RanksClosestFirst(t *testing.T) {
	store := memstore.NewMemoryStore()
	contents := []string{
		"how to sort a linked list",
		"weekly contest announcement",
		"dynamic programming on trees",
		"lunch plans for friday",
		"graph traversal with bfs",
	}
	for i, c := range contents {
		seedMessage(t, store, fmt.Sprintf("m%d", i), "g1", c)
	}
	seedMessage(t, store, "other", "g2", "dynamic programming on trees")

	s := newTestSearcher(store)
	results, err := s.Search(context.Background(), "dynamic programming on trees", "g1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Content != "dynamic programming on trees" {
		t.Errorf("expected exact match first, got %q", results[0].Content)
	}
	if results[0].Score <= 0 || results[0].Score > 1.000001 {
		t.Errorf("expected top score in (0,1], got %f", results[0].Score)
	}
	if !strings.Contains(results[0].SourceURL, "/g1/") {
		t.Errorf("result crossed guilds: %s", results[0].SourceURL)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not in descending score order at %d", i)
		}
	}
}

func TestSearch_BlankQuery(t *testing.T) {
	store := memstore.NewMemoryStore()
	seedMessage(t, store, "m1", "g1", "something")

	s := newTestSearcher(store)
	results, err := s.Search(context.Background(), "   ", "g1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("expected no results for blank query, got %v", results)
	}
}

func TestSearch_DefaultLimit(t *testing.T) {
	store := memstore.NewMemoryStore()
	for i := 0; i < 6; i++ {
		seedMessage(t, store, fmt.Sprintf("m%d", i), "g1", fmt.Sprintf("topic number %d", i))
	}

	s := NewSearcher(store, embedding.NewMockEmbedder(8), nil, config.SearchConfig{
		DefaultLimit: 4,
		ContextLimit: 5,
	})

	results, err := s.Search(context.Background(), "topic number", "g1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Errorf("expected default limit of 4, got %d results", len(results))
	}
}

func TestSearch_UsesCache(t *testing.T) {
	store := memstore.NewMemoryStore()
	seedMessage(t, store, "m1", "g1", "cached content")

	qc := cache.NewQueryCache(10, time.Minute)
	s := NewSearcher(store, embedding.NewMockEmbedder(8), qc, config.SearchConfig{
		DefaultLimit: 10,
		ContextLimit: 5,
	})

	first, err := s.Search(context.Background(), "cached content", "g1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 result, got %d", len(first))
	}

	// Remove the row; the cached ranking still answers.
	store.Reset("")

	second, err := s.Search(context.Background(), "cached content", "g1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 1 {
		t.Errorf("expected cached result to survive the reset, got %d", len(second))
	}

	// After invalidation the empty store shows through.
	qc.Invalidate()
	third, err := s.Search(context.Background(), "cached content", "g1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(third) != 0 {
		t.Errorf("expected no results after invalidate, got %d", len(third))
	}
}

func TestSearchURLs(t *testing.T) {
	store := memstore.NewMemoryStore()
	seedMessage(t, store, "m1", "g1", "find me by url")

	s := newTestSearcher(store)
	urls, err := s.SearchURLs(context.Background(), "find me by url", "g1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 1 {
		t.Fatalf("expected 1 url, got %d", len(urls))
	}
	if urls[0] != "https://discord.com/channels/g1/chan-1/m1" {
		t.Errorf("unexpected url %s", urls[0])
	}
}

func TestRelevantContext(t *testing.T) {
	store := memstore.NewMemoryStore()
	long := strings.Repeat("x", 350)
	seedMessage(t, store, "m1", "g1", "short answer")
	seedMessage(t, store, "m2", "g1", long)

	s := newTestSearcher(store)
	block, err := s.RelevantContext(context.Background(), "short answer", "g1", 5)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(block, "Here are relevant messages from this server that may help:") {
		t.Errorf("unexpected header: %q", block)
	}
	if !strings.Contains(block, "1. short answer") {
		t.Error("expected numbered entry for the best match")
	}
	if !strings.Contains(block, strings.Repeat("x", 300)+"...") {
		t.Error("expected long content truncated with ellipsis")
	}
	if strings.Contains(block, strings.Repeat("x", 301)) {
		t.Error("content exceeds the truncation limit")
	}
}

func TestRelevantContext_NoMatches(t *testing.T) {
	store := memstore.NewMemoryStore()

	s := newTestSearcher(store)
	block, err := s.RelevantContext(context.Background(), "anything", "g1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if block != "" {
		t.Errorf("expected empty context block, got %q", block)
	}
}
