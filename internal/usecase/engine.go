package usecase

import (
	"context"

	"github.com/coalaura/logger"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/config"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/adapter/cache"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/domain"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/port"
)

var log = logger.New()

// Engine is the single wiring point for the indexing and search
// machinery: one store, one embedder, one pipeline, constructed once
// at process start and passed to callers.
type Engine struct {
	store       port.MessageStore
	indexer     *Indexer
	searcher    *Searcher
	autoIndexer *AutoIndexer
	backfiller  *Backfiller
	embeddings  *EmbeddingBackfill
	queryCache  *cache.QueryCache
}

// NewEngine wires all components against the given store and embedder.
func NewEngine(cfg *config.Config, store port.MessageStore, embedder port.Embedder) *Engine {
	queryCache := cache.NewQueryCache(cfg.Search.CacheSize, cfg.Search.CacheTTL())
	indexer := NewIndexer(store, embedder, cfg.Indexing)
	filter := NewChannelFilter(cfg.Channels)

	return &Engine{
		store:       store,
		indexer:     indexer,
		searcher:    NewSearcher(store, embedder, queryCache, cfg.Search),
		autoIndexer: NewAutoIndexer(store, indexer, filter, cfg.AutoIndex),
		backfiller:  NewBackfiller(indexer, filter, cfg.Backfill),
		embeddings:  NewEmbeddingBackfill(store, embedder, cfg.Embedding),
		queryCache:  queryCache,
	}
}

// Start spawns the ingestion worker. Idempotent.
func (e *Engine) Start() {
	e.indexer.Start()
}

// Stop drains and stops the ingestion worker. Idempotent.
func (e *Engine) Stop() {
	e.indexer.Stop()
}

// Enqueue offers a live message to the pipeline; false means the
// bounded queue was full and the message was dropped.
func (e *Engine) Enqueue(msg domain.Message) bool {
	return e.indexer.Enqueue(msg)
}

func (e *Engine) Search(ctx context.Context, query, guildID string, limit int) ([]domain.SearchResult, error) {
	return e.searcher.Search(ctx, query, guildID, limit)
}

func (e *Engine) SearchURLs(ctx context.Context, query, guildID string, limit int) ([]string, error) {
	return e.searcher.SearchURLs(ctx, query, guildID, limit)
}

func (e *Engine) RelevantContext(ctx context.Context, query, guildID string, limit int) (string, error) {
	return e.searcher.RelevantContext(ctx, query, guildID, limit)
}

func (e *Engine) AutoIndexGuild(ctx context.Context, guild port.Guild) (domain.AutoIndexReport, error) {
	return e.autoIndexer.AutoIndex(ctx, guild)
}

func (e *Engine) BackfillGuild(ctx context.Context, guild port.Guild, perChannelLimit int) (domain.BackfillReport, error) {
	return e.backfiller.Backfill(ctx, guild, perChannelLimit)
}

func (e *Engine) UpdateMissingEmbeddings(ctx context.Context, guildID string, limit int, progress func(done, total int)) (domain.EmbeddingReport, error) {
	return e.embeddings.UpdateMissing(ctx, guildID, limit, progress)
}

// ResetIndex deletes a guild's rows (or everything when guildID is "")
// and drops cached rankings.
func (e *Engine) ResetIndex(guildID string) (int, error) {
	deleted, err := e.store.Reset(guildID)
	if err != nil {
		return 0, err
	}
	e.queryCache.Invalidate()
	return deleted, nil
}

// IndexStats reports guild-scoped and global corpus sizes.
func (e *Engine) IndexStats(guildID string) (domain.IndexStats, error) {
	global, err := e.store.Count("")
	if err != nil {
		return domain.IndexStats{}, err
	}

	guildCount := global
	if guildID != "" {
		guildCount, err = e.store.Count(guildID)
		if err != nil {
			return domain.IndexStats{}, err
		}
	}

	return domain.IndexStats{GuildCount: guildCount, GlobalCount: global}, nil
}

// Close stops the pipeline and releases the store.
func (e *Engine) Close() error {
	e.indexer.Stop()
	return e.store.Close()
}
