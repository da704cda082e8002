// Package provider implements the embedding gateway against external model
// services: a dual-encoder HTTP service and the OpenAI embeddings API.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/qabank/qabank/domain/search"
	"github.com/qabank/qabank/internal/domain"
)

// DefaultRemoteTimeout bounds one embedding request to the remote service.
const DefaultRemoteTimeout = 30 * time.Second

// Dual-encoder protocol steps. Queries and documents pass through different
// encoder towers, so the request carries which one to run.
const (
	stepQuery    = 1
	stepDocument = 3
)

// RemoteEmbedder implements search.Embedder against a dual-encoder embedding
// service speaking a small JSON-over-HTTP protocol.
type RemoteEmbedder struct {
	url    string
	client *http.Client
}

// RemoteOption is a functional option for RemoteEmbedder.
type RemoteOption func(*RemoteEmbedder)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(r *RemoteEmbedder) { r.client = client }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) RemoteOption {
	return func(r *RemoteEmbedder) { r.client.Timeout = d }
}

// NewRemoteEmbedder creates a RemoteEmbedder targeting the given service URL.
func NewRemoteEmbedder(url string, opts ...RemoteOption) *RemoteEmbedder {
	r := &RemoteEmbedder{
		url:    url,
		client: &http.Client{Timeout: DefaultRemoteTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type embedRequest struct {
	Step    int      `json:"step"`
	Queries []string `json:"query,omitempty"`
	Titles  []string `json:"titles,omitempty"`
	Paras   []string `json:"paras,omitempty"`
}

type embedResponse struct {
	Result       [][]float32 `json:"result"`
	ErrorCode    int         `json:"error_code"`
	ErrorMessage string      `json:"error_message"`
}

// EmbedQuery embeds a free-text search query.
func (r *RemoteEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := r.post(ctx, embedRequest{Step: stepQuery, Queries: []string{query}}, 1)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch of documents, one vector per document.
func (r *RemoteEmbedder) EmbedDocuments(ctx context.Context, docs []search.Document) ([][]float32, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	titles := make([]string, len(docs))
	paras := make([]string, len(docs))
	for i, doc := range docs {
		titles[i] = doc.Title()
		paras[i] = doc.Content()
	}

	return r.post(ctx, embedRequest{Step: stepDocument, Titles: titles, Paras: paras}, len(docs))
}

func (r *RemoteEmbedder) post(ctx context.Context, request embedRequest, want int) ([][]float32, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: embedding service returned status %d", domain.ErrEmbeddingUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrEmbeddingUnavailable, err)
	}

	var parsed embedResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if parsed.ErrorCode != 0 {
		return nil, fmt.Errorf("%w: service error %d: %s", domain.ErrEmbeddingUnavailable, parsed.ErrorCode, parsed.ErrorMessage)
	}
	if len(parsed.Result) != want {
		return nil, fmt.Errorf("%w: got %d vectors, want %d", domain.ErrEmbeddingUnavailable, len(parsed.Result), want)
	}

	return parsed.Result, nil
}
