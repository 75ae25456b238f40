package domain

import "time"

// DMGuildID is the sentinel guild for direct-message contexts.
const DMGuildID = "DM"

// Message is an inbound chat message before it is persisted.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	AuthorID  string
	Content   string
	Bot       bool
	Timestamp time.Time
}

// StoredMessage is the unit of persistence. Embedding is nil until the
// vector has been generated; it is set at most once and never cleared.
type StoredMessage struct {
	MessageID   string
	ChannelID   string
	GuildID     string
	AuthorID    string
	Content     string
	ContentHash string
	Embedding   []float32
	SourceURL   string
	CreatedAt   time.Time
}

// SearchResult is one ranked similarity match.
type SearchResult struct {
	SourceURL string
	Content   string
	Score     float64
}

// IndexStats reports corpus sizes for operator visibility.
type IndexStats struct {
	GuildCount  int
	GlobalCount int
}

// Auto-index outcome statuses.
const (
	AutoIndexCompleted = "completed"
	AutoIndexSkipped   = "skipped"
)

// AutoIndexReport is the result of indexing a guild on first contact.
type AutoIndexReport struct {
	Status            string
	Queued            int
	Skipped           int
	ChannelsProcessed int
}

// BackfillReport is the result of an operator-invoked history backfill.
type BackfillReport struct {
	Queued            int
	Skipped           int
	ChannelsProcessed int
}

// EmbeddingReport is the result of a missing-embedding backfill run.
type EmbeddingReport struct {
	Updated int
	Failed  int
	Total   int
}
