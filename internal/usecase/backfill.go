package usecase

import (
	"context"
	"time"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/config"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/domain"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/port"
)

// Backfiller replays a guild's channel history through the live
// ingestion path. Unlike auto-index it has no "already indexed" guard
// and no shared cap; the caller supplies the per-channel limit.
type Backfiller struct {
	indexer      *Indexer
	filter       *ChannelFilter
	channelPause time.Duration
}

func NewBackfiller(indexer *Indexer, filter *ChannelFilter, cfg config.BackfillConfig) *Backfiller {
	return &Backfiller{
		indexer:      indexer,
		filter:       filter,
		channelPause: cfg.ChannelPause(),
	}
}

// Backfill walks every readable channel and queues up to
// perChannelLimit messages from each. perChannelLimit <= 0 leaves the
// fetch size to the platform adapter.
func (b *Backfiller) Backfill(ctx context.Context, guild port.Guild, perChannelLimit int) (domain.BackfillReport, error) {
	log.InfoF("starting backfill for guild %s\n", guild.Name())

	report := domain.BackfillReport{}

	for _, channel := range guild.Channels() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !b.filter.Match(channel.Name()) {
			log.DebugF("skipping #%s (filtered)\n", channel.Name())
			continue
		}
		if !channel.CanReadHistory() {
			log.DebugF("skipping #%s (no read permission)\n", channel.Name())
			continue
		}

		messages, err := channel.History(ctx, perChannelLimit)
		if err != nil {
			log.WarningF("failed to read #%s history: %v\n", channel.Name(), err)
			continue
		}

		queued, skipped := 0, 0
		for _, msg := range messages {
			if !indexable(msg) {
				continue
			}
			if b.indexer.Enqueue(msg) {
				queued++
			} else {
				skipped++
			}
		}

		report.Queued += queued
		report.Skipped += skipped
		report.ChannelsProcessed++
		log.InfoF("  #%s: %d queued, %d skipped\n", channel.Name(), queued, skipped)

		if err := pause(ctx, b.channelPause); err != nil {
			return report, err
		}
	}

	log.InfoF("backfill complete: %d queued, %d skipped, %d channels\n",
		report.Queued, report.Skipped, report.ChannelsProcessed)

	return report, nil
}
