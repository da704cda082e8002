// Package question holds the question entity: a title/content document with
// a derived embedding vector.
package question

import (
	"fmt"
	"strings"
	"time"

	"github.com/qabank/qabank/internal/domain"
)

// Question is a question/answer document. The embedding is derived from the
// title and content and is recomputed on every change to either; it is never
// edited directly.
type Question struct {
	id         int64
	title      string
	content    string
	embedding  []float32
	createdBy  int64
	modifiedBy int64
	createdAt  time.Time
	updatedAt  time.Time
}

// NewQuestion creates a question. The embedding must already be computed for
// the given title and content; creation without an embedding is invalid
// because every index copy is derived from it.
func NewQuestion(title, content string, embedding []float32, createdBy int64) (Question, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Question{}, fmt.Errorf("%w: question title is empty", domain.ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return Question{}, fmt.Errorf("%w: question content is empty", domain.ErrValidation)
	}
	if len(embedding) == 0 {
		return Question{}, fmt.Errorf("%w: question embedding is empty", domain.ErrValidation)
	}
	return Question{
		title:      title,
		content:    content,
		embedding:  cloneVector(embedding),
		createdBy:  createdBy,
		modifiedBy: createdBy,
	}, nil
}

// ReconstructQuestion rebuilds a question from stored fields.
func ReconstructQuestion(
	id int64,
	title, content string,
	embedding []float32,
	createdBy, modifiedBy int64,
	createdAt, updatedAt time.Time,
) Question {
	return Question{
		id:         id,
		title:      title,
		content:    content,
		embedding:  embedding,
		createdBy:  createdBy,
		modifiedBy: modifiedBy,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ID returns the question id.
func (q Question) ID() int64 { return q.id }

// Title returns the question title.
func (q Question) Title() string { return q.title }

// Content returns the question content.
func (q Question) Content() string { return q.content }

// Embedding returns the stored embedding vector.
func (q Question) Embedding() []float32 { return cloneVector(q.embedding) }

// CreatedBy returns the id of the creating user.
func (q Question) CreatedBy() int64 { return q.createdBy }

// ModifiedBy returns the id of the last modifying user.
func (q Question) ModifiedBy() int64 { return q.modifiedBy }

// CreatedAt returns the creation timestamp.
func (q Question) CreatedAt() time.Time { return q.createdAt }

// UpdatedAt returns the last modification timestamp.
func (q Question) UpdatedAt() time.Time { return q.updatedAt }

// Revise returns a copy with new title, content, and the embedding recomputed
// for them, attributing the change to the given user.
func (q Question) Revise(title, content string, embedding []float32, modifiedBy int64) (Question, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Question{}, fmt.Errorf("%w: question title is empty", domain.ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return Question{}, fmt.Errorf("%w: question content is empty", domain.ErrValidation)
	}
	if len(embedding) == 0 {
		return Question{}, fmt.Errorf("%w: question embedding is empty", domain.ErrValidation)
	}
	q.title = title
	q.content = content
	q.embedding = cloneVector(embedding)
	q.modifiedBy = modifiedBy
	return q, nil
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
