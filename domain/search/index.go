package search

import (
	"context"
	"strconv"
)

// CollectionName returns the vector collection name for a set id. Collections
// are keyed "_<set id>"; the public aggregate set's collection is "_1".
func CollectionName(setID int64) string {
	return "_" + strconv.FormatInt(setID, 10)
}

// Hit is one nearest-neighbor search result.
type Hit struct {
	id       int64
	distance float32
}

// NewHit creates a Hit.
func NewHit(id int64, distance float32) Hit {
	return Hit{id: id, distance: distance}
}

// ID returns the question id of the hit.
func (h Hit) ID() int64 { return h.id }

// Distance returns the distance to the query vector; smaller is closer.
func (h Hit) Distance() float32 { return h.distance }

// Index is the vector similarity engine. One collection exists per question
// set, holding one point per member question, keyed by question id.
//
// Implementations return ErrIndexUnavailable (wrapped) on any transport or
// engine failure. The coordinator treats that as a non-fatal, logged warning
// on write paths and as a request failure on reads.
type Index interface {
	CreateCollection(ctx context.Context, name string) error
	DropCollection(ctx context.Context, name string) error

	// Insert upserts one point per id; ids and vectors correspond by index.
	Insert(ctx context.Context, name string, ids []int64, vectors [][]float32) error

	// Delete removes the points with the given ids. Missing ids are not an
	// error.
	Delete(ctx context.Context, name string, ids []int64) error

	// Search returns up to topK hits ordered by ascending distance. An empty
	// result is a valid outcome meaning no matches.
	Search(ctx context.Context, name string, vector []float32, topK int) ([]Hit, error)
}
