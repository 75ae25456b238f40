package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/domain"
)

var (
	bucketMessages = []byte("messages")
	bucketHashes   = []byte("hashes")
	bucketVectors  = []byte("vectors")
)

// BoltStore is the durable message store. Rows live in the messages
// bucket keyed by message ID; the hashes bucket maps content hash to
// message ID and enforces global dedup; embeddings live in the vectors
// bucket as raw little-endian float32 blobs.
//
// Vectors are mirrored in memory so similarity scans do not decode
// every blob on each query. Brute-force search is fine for a moderate
// corpus; an ANN index would slot in here if it ever is not.
type BoltStore struct {
	db *bbolt.DB

	mu      sync.RWMutex
	vectors map[string]vectorEntry
}

type vectorEntry struct {
	vector  []float32
	guildID string
}

type rowMeta struct {
	ChannelID   string `json:"channel_id"`
	GuildID     string `json:"guild_id"`
	AuthorID    string `json:"author_id"`
	Content     string `json:"content"`
	ContentHash string `json:"content_hash"`
	SourceURL   string `json:"source_url"`
	CreatedAt   int64  `json:"created_at"`
}

// NewBoltStore opens (or creates) the store at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketMessages, bucketHashes, bucketVectors} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{
		db:      db,
		vectors: make(map[string]vectorEntry),
	}

	if err := s.loadVectors(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}

	return s, nil
}

// loadVectors fills the in-memory mirror from the vectors bucket.
func (s *BoltStore) loadVectors() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		msgs := tx.Bucket(bucketMessages)

		return tx.Bucket(bucketVectors).ForEach(func(k, v []byte) error {
			var meta rowMeta
			data := msgs.Get(k)
			if data == nil {
				return nil // orphaned vector, ignore
			}
			if err := json.Unmarshal(data, &meta); err != nil {
				return nil // skip corrupted entries
			}
			s.vectors[string(k)] = vectorEntry{
				vector:  DecodeVector(v),
				guildID: meta.GuildID,
			}
			return nil
		})
	})
}

// Insert stores a message. Returns false when the content hash is
// already present; the hash lookup and the writes share one write
// transaction, so the check cannot race with a concurrent insert.
func (s *BoltStore) Insert(msg domain.StoredMessage) (bool, error) {
	inserted := false

	err := s.db.Update(func(tx *bbolt.Tx) error {
		hashes := tx.Bucket(bucketHashes)
		if hashes.Get([]byte(msg.ContentHash)) != nil {
			return nil
		}

		meta := rowMeta{
			ChannelID:   msg.ChannelID,
			GuildID:     msg.GuildID,
			AuthorID:    msg.AuthorID,
			Content:     msg.Content,
			ContentHash: msg.ContentHash,
			SourceURL:   msg.SourceURL,
			CreatedAt:   msg.CreatedAt.Unix(),
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}

		if err := tx.Bucket(bucketMessages).Put([]byte(msg.MessageID), data); err != nil {
			return err
		}
		if err := hashes.Put([]byte(msg.ContentHash), []byte(msg.MessageID)); err != nil {
			return err
		}

		if msg.Embedding != nil {
			if err := tx.Bucket(bucketVectors).Put([]byte(msg.MessageID), EncodeVector(msg.Embedding)); err != nil {
				return err
			}
		}

		inserted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if inserted && msg.Embedding != nil {
		s.mu.Lock()
		s.vectors[msg.MessageID] = vectorEntry{vector: msg.Embedding, guildID: msg.GuildID}
		s.mu.Unlock()
	}

	return inserted, nil
}

// ExistingHashes reports which of the given content hashes are stored.
func (s *BoltStore) ExistingHashes(hashes []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(hashes) == 0 {
		return existing, nil
	}

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketHashes)
		for _, h := range hashes {
			if b.Get([]byte(h)) != nil {
				existing[h] = struct{}{}
			}
		}
		return nil
	})
	return existing, err
}

// SimilarSearch ranks stored vectors by cosine similarity to the query.
func (s *BoltStore) SimilarSearch(query []float32, guildID string, limit int) ([]domain.SearchResult, error) {
	if norm(query) == 0 {
		return nil, nil
	}

	type scored struct {
		id    string
		score float64
	}

	s.mu.RLock()
	scores := make([]scored, 0, len(s.vectors))
	for id, entry := range s.vectors {
		if guildID != "" && entry.guildID != guildID {
			continue
		}
		if norm(entry.vector) == 0 {
			continue
		}
		scores = append(scores, scored{id: id, score: cosineSimilarity(query, entry.vector)})
	}
	s.mu.RUnlock()

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if limit > 0 && limit < len(scores) {
		scores = scores[:limit]
	}

	results := make([]domain.SearchResult, 0, len(scores))
	err := s.db.View(func(tx *bbolt.Tx) error {
		msgs := tx.Bucket(bucketMessages)
		for _, sc := range scores {
			data := msgs.Get([]byte(sc.id))
			if data == nil {
				continue
			}
			var meta rowMeta
			if err := json.Unmarshal(data, &meta); err != nil {
				continue
			}
			results = append(results, domain.SearchResult{
				SourceURL: meta.SourceURL,
				Content:   meta.Content,
				Score:     sc.score,
			})
		}
		return nil
	})
	return results, err
}

// MissingEmbeddings returns rows without an embedding, most recent first.
func (s *BoltStore) MissingEmbeddings(guildID string, limit int) ([]domain.StoredMessage, error) {
	var rows []domain.StoredMessage

	err := s.db.View(func(tx *bbolt.Tx) error {
		vectors := tx.Bucket(bucketVectors)

		return tx.Bucket(bucketMessages).ForEach(func(k, v []byte) error {
			if vectors.Get(k) != nil {
				return nil
			}
			var meta rowMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return nil
			}
			if guildID != "" && meta.GuildID != guildID {
				return nil
			}
			rows = append(rows, storedFromMeta(string(k), meta))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].MessageID > rows[j].MessageID
	})

	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

// UpdateEmbedding fills a row's embedding. The transition happens once:
// a row that already has a vector is left untouched.
func (s *BoltStore) UpdateEmbedding(messageID string, embedding []float32) (bool, error) {
	updated := false
	guildID := ""

	err := s.db.Update(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMessages).Get([]byte(messageID))
		if data == nil {
			return nil
		}
		vectors := tx.Bucket(bucketVectors)
		if vectors.Get([]byte(messageID)) != nil {
			return nil
		}

		var meta rowMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		if err := vectors.Put([]byte(messageID), EncodeVector(embedding)); err != nil {
			return err
		}

		guildID = meta.GuildID
		updated = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if updated {
		s.mu.Lock()
		s.vectors[messageID] = vectorEntry{vector: embedding, guildID: guildID}
		s.mu.Unlock()
	}

	return updated, nil
}

// Count returns the number of stored rows, optionally guild-scoped.
func (s *BoltStore) Count(guildID string) (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		if guildID == "" {
			count = b.Stats().KeyN
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var meta rowMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return nil
			}
			if meta.GuildID == guildID {
				count++
			}
			return nil
		})
	})
	return count, err
}

// Reset deletes all rows for a guild, or everything when guildID is "".
func (s *BoltStore) Reset(guildID string) (int, error) {
	type victim struct {
		id   string
		hash string
	}
	var victims []victim

	err := s.db.Update(func(tx *bbolt.Tx) error {
		msgs := tx.Bucket(bucketMessages)

		err := msgs.ForEach(func(k, v []byte) error {
			var meta rowMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return nil
			}
			if guildID != "" && meta.GuildID != guildID {
				return nil
			}
			victims = append(victims, victim{id: string(k), hash: meta.ContentHash})
			return nil
		})
		if err != nil {
			return err
		}

		hashes := tx.Bucket(bucketHashes)
		vectors := tx.Bucket(bucketVectors)
		for _, v := range victims {
			if err := msgs.Delete([]byte(v.id)); err != nil {
				return err
			}
			if err := hashes.Delete([]byte(v.hash)); err != nil {
				return err
			}
			if err := vectors.Delete([]byte(v.id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	for _, v := range victims {
		delete(s.vectors, v.id)
	}
	s.mu.Unlock()

	return len(victims), nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func storedFromMeta(id string, meta rowMeta) domain.StoredMessage {
	return domain.StoredMessage{
		MessageID:   id,
		ChannelID:   meta.ChannelID,
		GuildID:     meta.GuildID,
		AuthorID:    meta.AuthorID,
		Content:     meta.Content,
		ContentHash: meta.ContentHash,
		SourceURL:   meta.SourceURL,
		CreatedAt:   time.Unix(meta.CreatedAt, 0),
	}
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
