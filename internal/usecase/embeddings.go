package usecase

import (
	"context"
	"time"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/config"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/domain"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/port"
)

// EmbeddingBackfill retroactively fills embeddings for rows that were
// stored text-only, in fixed-size chunks with pacing between them.
type EmbeddingBackfill struct {
	store     port.MessageStore
	embedder  port.Embedder
	chunkSize  int
	chunkPause time.Duration
}

func NewEmbeddingBackfill(store port.MessageStore, embedder port.Embedder, cfg config.EmbeddingConfig) *EmbeddingBackfill {
	chunkSize := cfg.UpdateChunkSize
	if chunkSize <= 0 {
		chunkSize = 50
	}

	return &EmbeddingBackfill{
		store:      store,
		embedder:   embedder,
		chunkSize:  chunkSize,
		chunkPause: cfg.UpdatePause(),
	}
}

// UpdateMissing embeds and writes back rows with no embedding,
// optionally guild-scoped and count-limited. A nil embedding for a row
// counts as failed and never aborts the run. progress may be nil.
func (u *EmbeddingBackfill) UpdateMissing(ctx context.Context, guildID string, limit int, progress func(done, total int)) (domain.EmbeddingReport, error) {
	rows, err := u.store.MissingEmbeddings(guildID, limit)
	if err != nil {
		return domain.EmbeddingReport{}, err
	}

	report := domain.EmbeddingReport{Total: len(rows)}
	if len(rows) == 0 {
		return report, nil
	}

	log.InfoF("found %d messages without embeddings, starting update\n", report.Total)

	for start := 0; start < len(rows); start += u.chunkSize {
		end := start + u.chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		texts := make([]string, len(chunk))
		for i, row := range chunk {
			texts[i] = row.Content
		}

		vectors, err := u.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return report, err
		}

		for i, row := range chunk {
			var vec []float32
			if i < len(vectors) {
				vec = vectors[i]
			}
			if vec == nil {
				log.WarningF("failed to generate embedding for message %s\n", row.MessageID)
				report.Failed++
				continue
			}

			ok, err := u.store.UpdateEmbedding(row.MessageID, vec)
			if err != nil {
				log.WarningF("failed to update embedding for message %s: %v\n", row.MessageID, err)
				report.Failed++
				continue
			}
			if ok {
				report.Updated++
			} else {
				report.Failed++
			}
		}

		if progress != nil {
			progress(end, len(rows))
		}

		if end < len(rows) {
			if err := pause(ctx, u.chunkPause); err != nil {
				return report, err
			}
		}
	}

	log.InfoF("embedding update complete: %d updated, %d failed, %d total\n",
		report.Updated, report.Failed, report.Total)

	return report, nil
}
