package memstore

import (
	"math"
	"sort"
	"sync"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/domain"
)

// MemoryStore is an in-memory MessageStore with the same semantics as
// the bolt-backed one. Used by tests and for running without a data
// directory.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   map[string]domain.StoredMessage
	hashes map[string]string // content hash -> message ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:   make(map[string]domain.StoredMessage),
		hashes: make(map[string]string),
	}
}

func (s *MemoryStore) Insert(msg domain.StoredMessage) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.hashes[msg.ContentHash]; exists {
		return false, nil
	}

	s.rows[msg.MessageID] = msg
	s.hashes[msg.ContentHash] = msg.MessageID
	return true, nil
}

func (s *MemoryStore) ExistingHashes(hashes []string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing := make(map[string]struct{})
	for _, h := range hashes {
		if _, ok := s.hashes[h]; ok {
			existing[h] = struct{}{}
		}
	}
	return existing, nil
}

func (s *MemoryStore) SimilarSearch(query []float32, guildID string, limit int) ([]domain.SearchResult, error) {
	if norm(query) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		row   domain.StoredMessage
		score float64
	}

	scores := make([]scored, 0, len(s.rows))
	for _, row := range s.rows {
		if row.Embedding == nil {
			continue
		}
		if guildID != "" && row.GuildID != guildID {
			continue
		}
		if norm(row.Embedding) == 0 {
			continue
		}
		scores = append(scores, scored{row: row, score: cosineSimilarity(query, row.Embedding)})
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if limit > 0 && limit < len(scores) {
		scores = scores[:limit]
	}

	results := make([]domain.SearchResult, 0, len(scores))
	for _, sc := range scores {
		results = append(results, domain.SearchResult{
			SourceURL: sc.row.SourceURL,
			Content:   sc.row.Content,
			Score:     sc.score,
		})
	}
	return results, nil
}

func (s *MemoryStore) MissingEmbeddings(guildID string, limit int) ([]domain.StoredMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []domain.StoredMessage
	for _, row := range s.rows {
		if row.Embedding != nil {
			continue
		}
		if guildID != "" && row.GuildID != guildID {
			continue
		}
		rows = append(rows, row)
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

func (s *MemoryStore) UpdateEmbedding(messageID string, embedding []float32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[messageID]
	if !ok || row.Embedding != nil {
		return false, nil
	}

	row.Embedding = embedding
	s.rows[messageID] = row
	return true, nil
}

func (s *MemoryStore) Count(guildID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if guildID == "" {
		return len(s.rows), nil
	}

	count := 0
	for _, row := range s.rows {
		if row.GuildID == guildID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Reset(guildID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, row := range s.rows {
		if guildID != "" && row.GuildID != guildID {
			continue
		}
		delete(s.rows, id)
		delete(s.hashes, row.ContentHash)
		deleted++
	}
	return deleted, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

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
