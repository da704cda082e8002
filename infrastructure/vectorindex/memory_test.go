package vectorindex_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qabank/qabank/domain/search"
	"github.com/qabank/qabank/infrastructure/vectorindex"
	"github.com/qabank/qabank/internal/domain"
)

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "_1", search.CollectionName(1))
	assert.Equal(t, "_42", search.CollectionName(42))
}

func TestMemoryIndexSearchOrdering(t *testing.T) {
	ctx := context.Background()
	index := vectorindex.NewMemoryIndex()

	require.NoError(t, index.CreateCollection(ctx, "_2"))
	require.NoError(t, index.Insert(ctx, "_2",
		[]int64{10, 11, 12},
		[][]float32{{0, 0}, {3, 4}, {1, 0}},
	))

	hits, err := index.Search(ctx, "_2", []float32{0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, int64(10), hits[0].ID())
	assert.Equal(t, int64(12), hits[1].ID())
	assert.Equal(t, int64(11), hits[2].ID())
	assert.InDelta(t, 0.0, hits[0].Distance(), 1e-6)
	assert.InDelta(t, 1.0, hits[1].Distance(), 1e-6)
	assert.InDelta(t, 5.0, hits[2].Distance(), 1e-6)
}

func TestMemoryIndexTopK(t *testing.T) {
	ctx := context.Background()
	index := vectorindex.NewMemoryIndex()

	require.NoError(t, index.Insert(ctx, "_3",
		[]int64{1, 2, 3, 4},
		[][]float32{{1}, {2}, {3}, {4}},
	))

	hits, err := index.Search(ctx, "_3", []float32{0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, int64(1), hits[0].ID())
	assert.Equal(t, int64(2), hits[1].ID())
}

func TestMemoryIndexDelete(t *testing.T) {
	ctx := context.Background()
	index := vectorindex.NewMemoryIndex()

	require.NoError(t, index.Insert(ctx, "_4", []int64{1, 2}, [][]float32{{1}, {2}}))
	require.NoError(t, index.Delete(ctx, "_4", []int64{1, 99}))

	hits, err := index.Search(ctx, "_4", []float32{0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(2), hits[0].ID())
}

func TestMemoryIndexUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	index := vectorindex.NewMemoryIndex()

	require.NoError(t, index.Insert(ctx, "_5", []int64{1}, [][]float32{{10}}))
	require.NoError(t, index.Insert(ctx, "_5", []int64{1}, [][]float32{{1}}))

	hits, err := index.Search(ctx, "_5", []float32{0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Distance(), 1e-6)
}

func TestMemoryIndexMissingCollection(t *testing.T) {
	ctx := context.Background()
	index := vectorindex.NewMemoryIndex()

	_, err := index.Search(ctx, "_9", []float32{0}, 10)
	assert.True(t, errors.Is(err, domain.ErrIndexUnavailable))
}

func TestMemoryIndexDropCollection(t *testing.T) {
	ctx := context.Background()
	index := vectorindex.NewMemoryIndex()

	require.NoError(t, index.Insert(ctx, "_6", []int64{1}, [][]float32{{1}}))
	require.NoError(t, index.DropCollection(ctx, "_6"))

	_, err := index.Search(ctx, "_6", []float32{0}, 10)
	assert.Error(t, err)
}
