package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/qabank/qabank/domain/search"
	"github.com/qabank/qabank/internal/domain"
)

// DefaultOpenAIModel is the embedding model used when none is configured.
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAIEmbedder implements search.Embedder using the OpenAI embeddings API.
// Unlike the dual-encoder service, queries and documents share one model, so
// both paths reduce to the same call. The requested dimension keeps vectors
// compatible with collections built by other embedders.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
}

// OpenAIOption is a functional option for OpenAIEmbedder.
type OpenAIOption func(*openai.ClientConfig, *OpenAIEmbedder)

// WithOpenAIModel sets the embedding model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(_ *openai.ClientConfig, e *OpenAIEmbedder) { e.model = model }
}

// WithOpenAIBaseURL points the client at an OpenAI-compatible endpoint.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(cfg *openai.ClientConfig, _ *OpenAIEmbedder) { cfg.BaseURL = url }
}

// WithOpenAITimeout bounds each API call.
func WithOpenAITimeout(d time.Duration) OpenAIOption {
	return func(cfg *openai.ClientConfig, _ *OpenAIEmbedder) {
		cfg.HTTPClient = &http.Client{Timeout: d}
	}
}

// NewOpenAIEmbedder creates an OpenAIEmbedder producing vectors of the given
// dimension.
func NewOpenAIEmbedder(apiKey string, dimension int, opts ...OpenAIOption) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	e := &OpenAIEmbedder{
		model:     DefaultOpenAIModel,
		dimension: dimension,
	}
	for _, opt := range opts {
		opt(&cfg, e)
	}
	e.client = openai.NewClientWithConfig(cfg)
	return e
}

// EmbedQuery embeds a free-text search query.
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := e.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch of documents. Title and content are joined
// with a newline so both contribute to the vector.
func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, docs []search.Document) ([][]float32, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Title() + "\n" + doc.Content()
	}
	return e.embed(ctx, texts)
}

func (e *OpenAIEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(e.model),
		Input:      texts,
		Dimensions: e.dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors, want %d", domain.ErrEmbeddingUnavailable, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vectors[i] = item.Embedding
	}
	return vectors, nil
}
