package port

import "github.com/blackprince001/cracked-leetcode-junkie-bot/internal/domain"

// MessageStore stores messages and their embeddings. A guildID of ""
// means global scope wherever a guild filter is accepted.
//
// Content-hash uniqueness is global, not per guild: identical text seen
// in two guilds is stored once, under whichever guild saw it first.
type MessageStore interface {
	// Insert stores a message. Returns false without error when the
	// content hash already exists; this is the authoritative dedup guard.
	Insert(msg domain.StoredMessage) (bool, error)

	// ExistingHashes reports which of the given content hashes are
	// already stored. Used as a pre-filter before embedding; Insert
	// remains the guard against races.
	ExistingHashes(hashes []string) (map[string]struct{}, error)

	// SimilarSearch ranks stored vectors by cosine similarity to the
	// query, highest first, truncated to limit. Rows without an
	// embedding and zero-norm vectors are skipped.
	SimilarSearch(query []float32, guildID string, limit int) ([]domain.SearchResult, error)

	// MissingEmbeddings returns rows stored without an embedding,
	// most recent first. limit <= 0 means no limit.
	MissingEmbeddings(guildID string, limit int) ([]domain.StoredMessage, error)

	// UpdateEmbedding fills a row's embedding. Returns false when the
	// row does not exist or is already embedded.
	UpdateEmbedding(messageID string, embedding []float32) (bool, error)

	// Count returns the number of stored rows.
	Count(guildID string) (int, error)

	// Reset deletes all rows for a guild (or everything when guildID
	// is "") and returns the number of rows removed.
	Reset(guildID string) (int, error)

	Close() error
}
