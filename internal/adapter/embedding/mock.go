package embedding

import (
	"context"
	"strings"
)

// MockEmbedder produces deterministic vectors derived from the text's
// runes. FailTexts simulates per-text provider failures: matching
// texts come back nil, like a failed chunk would.
type MockEmbedder struct {
	dimension int
	FailTexts map[string]struct{}
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	results, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if _, fail := e.FailTexts[text]; fail {
			continue
		}

		vec := make([]float32, e.dimension)
		for j, r := range text {
			vec[j%e.dimension] += float32(r) / 1000.0
		}
		results[i] = vec
	}
	return results, nil
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}
