package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coalaura/logger"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/config"
)

var log = logger.New()

// Client talks to an OpenAI-compatible embeddings endpoint. Batches are
// chunked to the configured maximum and chunks are paced with a short
// delay; a failed chunk leaves its entries nil and the rest of the
// batch still runs.
type Client struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	batchSize int
	pause     time.Duration
	client    *http.Client
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Error *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewClient builds a client from the embedding configuration.
func NewClient(cfg config.EmbeddingConfig) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		switch cfg.Provider {
		case "gemini":
			baseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
		case "openai":
			baseURL = "https://api.openai.com/v1"
		case "ollama":
			baseURL = "http://localhost:11434/v1"
		default:
			return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
		}
	}

	apiKey := "ollama"
	if cfg.Provider != "ollama" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found in environment variable: %s", cfg.APIKeyEnv)
		}
	}

	dimension := cfg.Dimension
	if dimension == 0 {
		switch cfg.Model {
		case "gemini-embedding-001":
			dimension = 3072
		case "text-embedding-004":
			dimension = 768
		case "text-embedding-3-small", "text-embedding-ada-002":
			dimension = 1536
		case "text-embedding-3-large":
			dimension = 3072
		case "nomic-embed-text":
			dimension = 768
		default:
			dimension = 1536
		}
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	return &Client{
		apiKey:    apiKey,
		model:     cfg.Model,
		baseURL:   baseURL,
		dimension: dimension,
		batchSize: batchSize,
		pause:     cfg.Pause(),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Embed generates an embedding for a single text. Blank input returns
// nil without a provider call.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	results, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// EmbedBatch generates embeddings for texts, same length and order as
// the input. Blank entries are nil without a provider call; entries in
// a chunk whose provider call failed are nil as well. The only error
// returned is context cancellation.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	if len(texts) == 0 {
		return results, nil
	}

	var indices []int
	for i, text := range texts {
		if strings.TrimSpace(text) != "" {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return results, nil
	}

	for start := 0; start < len(indices); start += c.batchSize {
		end := start + c.batchSize
		if end > len(indices) {
			end = len(indices)
		}
		chunk := indices[start:end]

		chunkTexts := make([]string, len(chunk))
		for i, idx := range chunk {
			chunkTexts[i] = texts[idx]
		}

		vectors, err := c.embedChunk(ctx, chunkTexts)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			log.WarningF("embedding chunk of %d failed: %v\n", len(chunkTexts), err)
		} else {
			for i, idx := range chunk {
				if i < len(vectors) && len(vectors[i]) > 0 {
					results[idx] = vectors[i]
				}
			}
		}

		if end < len(indices) && c.pause > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(c.pause):
			}
		}
	}

	return results, nil
}

func (c *Client) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := embeddingRequest{
		Input: texts,
		Model: c.model,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200]
		}
		return nil, fmt.Errorf("failed to parse response (body: %s): %w", bodyPreview, err)
	}

	if embResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", embResp.Error.Message)
	}

	vectors := make([][]float32, len(texts))
	for _, data := range embResp.Data {
		if data.Index >= 0 && data.Index < len(vectors) {
			vectors[data.Index] = data.Embedding
		}
	}

	return vectors, nil
}

// Dimension returns the embedding vector dimension.
func (c *Client) Dimension() int {
	return c.dimension
}

// ModelName returns the name of the embedding model.
func (c *Client) ModelName() string {
	return c.model
}
