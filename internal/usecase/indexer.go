package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/config"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/domain"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/port"
)

// Indexer is the live ingestion pipeline: a bounded queue feeding one
// background worker that batches, dedups, embeds and persists messages.
// The queue is deliberately lossy; when it is full Enqueue drops the
// message so live delivery is never stalled by a slow provider.
type Indexer struct {
	store       port.MessageStore
	embedder    port.Embedder
	queue       chan domain.Message
	batchSize   int
	pullTimeout time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewIndexer creates a stopped pipeline.
func NewIndexer(store port.MessageStore, embedder port.Embedder, cfg config.IndexingConfig) *Indexer {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1000
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	pullTimeout := cfg.PullTimeout()
	if pullTimeout <= 0 {
		pullTimeout = time.Second
	}

	return &Indexer{
		store:       store,
		embedder:    embedder,
		queue:       make(chan domain.Message, queueSize),
		batchSize:   batchSize,
		pullTimeout: pullTimeout,
	}
}

// Start spawns the background worker. Idempotent.
func (ix *Indexer) Start() {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ix.cancel = cancel
	ix.done = make(chan struct{})
	ix.running = true

	go ix.worker(ctx)
}

// Stop signals the worker to drain and exit, then waits for it.
// Idempotent. An in-flight flush is allowed to finish.
func (ix *Indexer) Stop() {
	ix.mu.Lock()
	if !ix.running {
		ix.mu.Unlock()
		return
	}
	ix.running = false
	ix.cancel()
	done := ix.done
	ix.mu.Unlock()

	<-done
}

// Enqueue offers a message to the pipeline without blocking. Returns
// false when the queue is at capacity; the message is dropped.
func (ix *Indexer) Enqueue(msg domain.Message) bool {
	select {
	case ix.queue <- msg:
		return true
	default:
		log.WarningF("indexing queue is full, dropping message %s\n", msg.ID)
		return false
	}
}

func (ix *Indexer) worker(ctx context.Context) {
	defer close(ix.done)

	batch := make([]domain.Message, 0, ix.batchSize)

	for {
		select {
		case <-ctx.Done():
			// Drain everything accepted before the stop request, then
			// flush exactly once more.
			draining := true
			for draining {
				select {
				case msg := <-ix.queue:
					batch = append(batch, msg)
					if len(batch) >= ix.batchSize {
						ix.flush(batch)
						batch = batch[:0]
					}
				default:
					draining = false
				}
			}
			if len(batch) > 0 {
				ix.flush(batch)
			}
			return

		case msg := <-ix.queue:
			batch = append(batch, msg)
			if len(batch) >= ix.batchSize {
				ix.flush(batch)
				batch = batch[:0]
			}

		case <-time.After(ix.pullTimeout):
			if len(batch) > 0 {
				ix.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

// flush persists one batch: filter blanks, dedup against the store,
// embed the candidates, insert each with whatever embedding came back.
// A stop request never aborts a flush already underway.
func (ix *Indexer) flush(batch []domain.Message) {
	ctx := context.Background()

	type candidate struct {
		msg  domain.Message
		hash string
	}

	candidates := make([]candidate, 0, len(batch))
	hashes := make([]string, 0, len(batch))
	for _, msg := range batch {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		h := ContentHash(msg.Content)
		candidates = append(candidates, candidate{msg: msg, hash: h})
		hashes = append(hashes, h)
	}
	if len(candidates) == 0 {
		return
	}

	existing, err := ix.store.ExistingHashes(hashes)
	if err != nil {
		// The pre-check is an optimization; Insert still guards dedup.
		log.WarningF("hash pre-check failed: %v\n", err)
		existing = map[string]struct{}{}
	}

	var fresh []candidate
	for _, c := range candidates {
		if _, dup := existing[c.hash]; dup {
			log.DebugF("skipping duplicate message %s\n", c.msg.ID)
			continue
		}
		fresh = append(fresh, c)
	}
	if len(fresh) == 0 {
		return
	}

	texts := make([]string, len(fresh))
	for i, c := range fresh {
		texts[i] = c.msg.Content
	}

	embeddings, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		// Store text-only; the embedding backfill picks these up later.
		log.WarningF("batch embedding failed: %v\n", err)
		embeddings = make([][]float32, len(fresh))
	}

	for i, c := range fresh {
		var vec []float32
		if i < len(embeddings) {
			vec = embeddings[i]
		}

		inserted, err := ix.store.Insert(newStoredMessage(c.msg, c.hash, vec))
		if err != nil {
			log.WarningF("failed to index message %s: %v\n", c.msg.ID, err)
			continue
		}
		if !inserted {
			log.DebugF("message %s lost the dedup race, skipped\n", c.msg.ID)
		}
	}
}

// ContentHash returns the hex sha256 digest used for dedup.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func newStoredMessage(msg domain.Message, hash string, embedding []float32) domain.StoredMessage {
	guildID := msg.GuildID
	if guildID == "" {
		guildID = domain.DMGuildID
	}

	return domain.StoredMessage{
		MessageID:   msg.ID,
		ChannelID:   msg.ChannelID,
		GuildID:     guildID,
		AuthorID:    msg.AuthorID,
		Content:     msg.Content,
		ContentHash: hash,
		Embedding:   embedding,
		SourceURL:   fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, msg.ChannelID, msg.ID),
		CreatedAt:   time.Now(),
	}
}
