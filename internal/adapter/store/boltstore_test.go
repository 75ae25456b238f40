package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/domain"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "messages.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func storedMsg(id, guildID, content string, embedding []float32) domain.StoredMessage {
	return domain.StoredMessage{
		MessageID:   id,
		ChannelID:   "chan-1",
		GuildID:     guildID,
		AuthorID:    "author-1",
		Content:     content,
		ContentHash: "hash-" + content,
		Embedding:   embedding,
		SourceURL:   fmt.Sprintf("https://discord.com/channels/%s/chan-1/%s", guildID, id),
		CreatedAt:   time.Now(),
	}
}

func TestInsert_Dedup(t *testing.T) {
	st := newTestStore(t)

	inserted, err := st.Insert(storedMsg("m1", "g1", "hello world", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inserted {
		t.Error("expected first insert to succeed")
	}

	// Same content in another guild is still a duplicate: the hash is global.
	inserted, err = st.Insert(storedMsg("m2", "g2", "hello world", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted {
		t.Error("expected duplicate content to be rejected across guilds")
	}

	count, err := st.Count("")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
}

func TestExistingHashes(t *testing.T) {
	st := newTestStore(t)

	st.Insert(storedMsg("m1", "g1", "alpha", nil))
	st.Insert(storedMsg("m2", "g1", "beta", nil))

	existing, err := st.ExistingHashes([]string{"hash-alpha", "hash-gamma", "hash-beta"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(existing) != 2 {
		t.Errorf("expected 2 known hashes, got %d", len(existing))
	}
	if _, ok := existing["hash-alpha"]; !ok {
		t.Error("expected hash-alpha to be known")
	}
	if _, ok := existing["hash-gamma"]; ok {
		t.Error("hash-gamma should not be known")
	}
}

func TestSimilarSearch_Ranking(t *testing.T) {
	st := newTestStore(t)

	st.Insert(storedMsg("m1", "g1", "close", []float32{1, 0, 0}))
	st.Insert(storedMsg("m2", "g1", "closer", []float32{0.9, 0.1, 0}))
	st.Insert(storedMsg("m3", "g1", "far", []float32{0, 0, 1}))
	st.Insert(storedMsg("m4", "g2", "other guild", []float32{1, 0, 0}))

	results, err := st.SimilarSearch([]float32{1, 0, 0}, "g1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Content != "close" {
		t.Errorf("expected best match 'close', got %q", results[0].Content)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("expected descending scores, got %f then %f", results[0].Score, results[1].Score)
	}
	if results[0].Score <= 0 || results[0].Score > 1.000001 {
		t.Errorf("expected score in (0,1], got %f", results[0].Score)
	}
	for _, r := range results {
		if r.Content == "other guild" {
			t.Error("result leaked from another guild")
		}
	}
}

func TestSimilarSearch_ZeroNormQuery(t *testing.T) {
	st := newTestStore(t)
	st.Insert(storedMsg("m1", "g1", "anything", []float32{1, 0}))

	results, err := st.SimilarSearch([]float32{0, 0}, "g1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for zero-norm query, got %d", len(results))
	}
}

func TestSimilarSearch_SkipsUnembedded(t *testing.T) {
	st := newTestStore(t)

	st.Insert(storedMsg("m1", "g1", "no vector", nil))
	st.Insert(storedMsg("m2", "g1", "has vector", []float32{1, 0}))

	results, err := st.SimilarSearch([]float32{1, 0}, "g1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Content != "has vector" {
		t.Errorf("unexpected result %q", results[0].Content)
	}
}

func TestMissingEmbeddings(t *testing.T) {
	st := newTestStore(t)

	base := time.Now()
	for i := 0; i < 4; i++ {
		msg := storedMsg(fmt.Sprintf("m%d", i), "g1", fmt.Sprintf("content %d", i), nil)
		msg.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		st.Insert(msg)
	}
	embedded := storedMsg("m9", "g1", "embedded", []float32{1})
	st.Insert(embedded)

	rows, err := st.MissingEmbeddings("g1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// Most recent first.
	if rows[0].MessageID != "m3" {
		t.Errorf("expected newest row m3 first, got %s", rows[0].MessageID)
	}
	for _, r := range rows {
		if r.MessageID == "m9" {
			t.Error("row with embedding should not be reported missing")
		}
	}
}

func TestUpdateEmbedding_Once(t *testing.T) {
	st := newTestStore(t)
	st.Insert(storedMsg("m1", "g1", "text", nil))

	updated, err := st.UpdateEmbedding("m1", []float32{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated {
		t.Error("expected first update to apply")
	}

	// Second update must not overwrite.
	updated, err = st.UpdateEmbedding("m1", []float32{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated {
		t.Error("expected second update to be refused")
	}

	results, err := st.SimilarSearch([]float32{0, 1}, "g1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Score < 0.999 {
		t.Errorf("expected the original vector to survive, got %+v", results)
	}

	updated, err = st.UpdateEmbedding("missing-id", []float32{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated {
		t.Error("expected update of unknown row to be refused")
	}
}

func TestCountAndReset_GuildScoped(t *testing.T) {
	st := newTestStore(t)

	st.Insert(storedMsg("m1", "g1", "one", []float32{1}))
	st.Insert(storedMsg("m2", "g1", "two", nil))
	st.Insert(storedMsg("m3", "g2", "three", []float32{1, 2}))

	count, err := st.Count("g1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows in g1, got %d", count)
	}

	deleted, err := st.Reset("g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	count, _ = st.Count("")
	if count != 1 {
		t.Errorf("expected 1 row left, got %d", count)
	}

	// Deleted content can be inserted again.
	inserted, err := st.Insert(storedMsg("m4", "g1", "one", nil))
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Error("expected reinsert after reset to succeed")
	}

	// g2 untouched, still searchable.
	results, err := st.SimilarSearch([]float32{1, 2}, "g2", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected g2 to survive the reset, got %d results", len(results))
	}
}

func TestReset_All(t *testing.T) {
	st := newTestStore(t)

	st.Insert(storedMsg("m1", "g1", "one", []float32{1}))
	st.Insert(storedMsg("m2", "g2", "two", []float32{2}))

	deleted, err := st.Reset("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	count, _ := st.Count("")
	if count != 0 {
		t.Errorf("expected empty store, got %d", count)
	}
}

func TestVectorsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.db")

	st, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	st.Insert(storedMsg("m1", "g1", "persisted", []float32{0.5, 0.5}))
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	st, err = NewBoltStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer st.Close()

	results, err := st.SimilarSearch([]float32{0.5, 0.5}, "g1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected vector to survive reopen, got %d results", len(results))
	}
	if results[0].Content != "persisted" {
		t.Errorf("unexpected content %q", results[0].Content)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}
