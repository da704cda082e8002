// Package search defines the contracts between the membership coordinator and
// the semantic-search collaborators: the embedding gateway and the vector
// index.
package search

import "context"

// Document is the text of one question submitted for embedding.
type Document struct {
	title   string
	content string
}

// NewDocument creates a Document.
func NewDocument(title, content string) Document {
	return Document{title: title, content: content}
}

// Title returns the document title.
func (d Document) Title() string { return d.title }

// Content returns the document content.
func (d Document) Content() string { return d.content }

// Embedder converts text into fixed-length embedding vectors.
//
// Queries and documents embed differently upstream, so the two forms are
// separate methods. Implementations return ErrEmbeddingUnavailable (wrapped)
// on transport failure or a malformed upstream response.
type Embedder interface {
	// EmbedQuery embeds a free-text search query.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// EmbedDocuments embeds a batch of documents, one vector per document,
	// in input order.
	EmbedDocuments(ctx context.Context, docs []Document) ([][]float32, error)
}
