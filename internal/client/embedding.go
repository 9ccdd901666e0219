package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/kube-rca/similarity/internal/config"
	"google.golang.org/genai"
)

const defaultEmbeddingModel = "text-embedding-004"

// EmbeddingClient - Gemini 임베딩 API 클라이언트
// genai 클라이언트는 첫 호출 시 생성하고 이후 재사용한다.
type EmbeddingClient struct {
	apiKey     string
	model      string
	dimensions int

	mu     sync.Mutex
	client *genai.Client
}

func NewEmbeddingClient(cfg config.EmbeddingConfig) *EmbeddingClient {
	model := cfg.Model
	if model == "" {
		model = defaultEmbeddingModel
	}
	return &EmbeddingClient{apiKey: cfg.APIKey, model: model, dimensions: cfg.Dimensions}
}

func (c *EmbeddingClient) Model() string {
	return c.model
}

func (c *EmbeddingClient) genaiClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: missing GEMINI_API_KEY", ErrNotConfigured)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.client = client
	return client, nil
}

// EmbedText returns the embedding for text and the model that produced it.
func (c *EmbeddingClient) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	client, err := c.genaiClient(ctx)
	if err != nil {
		return nil, c.model, err
	}

	var embedCfg *genai.EmbedContentConfig
	if c.dimensions > 0 {
		dim := int32(c.dimensions)
		embedCfg = &genai.EmbedContentConfig{OutputDimensionality: &dim}
	}

	res, err := client.Models.EmbedContent(ctx, c.model, genai.Text(text), embedCfg)
	if err != nil {
		return nil, c.model, fmt.Errorf("gemini embedding: %w", err)
	}
	if res == nil || len(res.Embeddings) == 0 || res.Embeddings[0] == nil {
		return nil, c.model, fmt.Errorf("empty embedding result")
	}
	return res.Embeddings[0].Values, c.model, nil
}
