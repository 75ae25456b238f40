package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/config"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/domain"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/port"
)

// AutoIndexer indexes a guild's recent history the first time the
// engine sees it. Re-invocation against an already indexed guild is a
// no-op; only an explicit reset re-arms it.
type AutoIndexer struct {
	store        port.MessageStore
	indexer      *Indexer
	filter       *ChannelFilter
	totalLimit   int
	channelFetch int
	channelPause time.Duration
}

func NewAutoIndexer(store port.MessageStore, indexer *Indexer, filter *ChannelFilter, cfg config.AutoIndexConfig) *AutoIndexer {
	totalLimit := cfg.TotalLimit
	if totalLimit <= 0 {
		totalLimit = 1000
	}
	channelFetch := cfg.ChannelFetch
	if channelFetch <= 0 {
		channelFetch = 100
	}

	return &AutoIndexer{
		store:        store,
		indexer:      indexer,
		filter:       filter,
		totalLimit:   totalLimit,
		channelFetch: channelFetch,
		channelPause: cfg.ChannelPause(),
	}
}

// AutoIndex walks the guild's readable channels newest-first until the
// shared total cap is spent, pushing everything through the same
// enqueue path as live traffic.
func (a *AutoIndexer) AutoIndex(ctx context.Context, guild port.Guild) (domain.AutoIndexReport, error) {
	count, err := a.store.Count(guild.ID())
	if err != nil {
		return domain.AutoIndexReport{}, err
	}
	if count > 0 {
		log.InfoF("guild %s already indexed, skipping\n", guild.Name())
		return domain.AutoIndexReport{Status: domain.AutoIndexSkipped}, nil
	}

	log.InfoF("starting auto-index for guild %s\n", guild.Name())

	report := domain.AutoIndexReport{Status: domain.AutoIndexCompleted}
	remaining := a.totalLimit

	for _, channel := range guild.Channels() {
		if remaining <= 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !a.filter.Match(channel.Name()) {
			log.DebugF("skipping #%s (filtered)\n", channel.Name())
			continue
		}
		if !channel.CanReadHistory() {
			log.DebugF("skipping #%s (no read permission)\n", channel.Name())
			continue
		}

		fetch := a.channelFetch
		if remaining < fetch {
			fetch = remaining
		}

		messages, err := channel.History(ctx, fetch)
		if err != nil {
			log.WarningF("failed to read #%s history: %v\n", channel.Name(), err)
			continue
		}

		queued := 0
		for _, msg := range messages {
			if !indexable(msg) {
				continue
			}
			if a.indexer.Enqueue(msg) {
				queued++
				remaining--
			} else {
				report.Skipped++
			}
			if remaining <= 0 {
				break
			}
		}

		report.Queued += queued
		report.ChannelsProcessed++
		log.InfoF("  #%s: %d messages queued\n", channel.Name(), queued)

		if err := pause(ctx, a.channelPause); err != nil {
			return report, err
		}
	}

	log.InfoF("auto-index complete: %d queued, %d skipped, %d channels\n",
		report.Queued, report.Skipped, report.ChannelsProcessed)

	return report, nil
}

// indexable filters out messages bulk indexing should never queue:
// bot authors, blank content and command invocations.
func indexable(msg domain.Message) bool {
	if msg.Bot {
		return false
	}
	if strings.TrimSpace(msg.Content) == "" {
		return false
	}
	if strings.HasPrefix(msg.Content, "/") {
		return false
	}
	return true
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
