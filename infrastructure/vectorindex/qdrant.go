// Package vectorindex provides search.Index implementations: a Qdrant-backed
// index for deployments and an in-memory index for tests and single-node use.
package vectorindex

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/qabank/qabank/domain/search"
	"github.com/qabank/qabank/internal/config"
	"github.com/qabank/qabank/internal/domain"
)

// QdrantIndex implements search.Index against a Qdrant server over gRPC.
// Points are keyed by numeric question id and stored under Euclidean
// distance, so hit distances compare directly across collections.
type QdrantIndex struct {
	client    *qdrant.Client
	dimension uint64
	timeout   time.Duration
}

// NewQdrantIndex connects to Qdrant and verifies the connection with a
// health check.
func NewQdrantIndex(ctx context.Context, cfg config.QdrantConfig, dimension int) (*QdrantIndex, error) {
	qcfg := &qdrant.Config{
		Host:   cfg.Host(),
		Port:   cfg.Port(),
		UseTLS: cfg.UseTLS(),
		APIKey: cfg.APIKey(),
	}
	if !cfg.UseTLS() {
		qcfg.GrpcOptions = append(qcfg.GrpcOptions,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
	}

	client, err := qdrant.NewClient(qcfg)
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	index := &QdrantIndex{
		client:    client,
		dimension: uint64(dimension),
		timeout:   cfg.Timeout(),
	}

	healthCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()
	if _, err := client.HealthCheck(healthCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: health check: %w", domain.ErrIndexUnavailable, err)
	}

	slog.InfoContext(ctx, "connected to qdrant",
		"host", cfg.Host(), "port", cfg.Port(), "dimension", dimension)
	return index, nil
}

// CreateCollection creates an empty collection for a set. Creating a
// collection that already exists is not an error.
func (q *QdrantIndex) CreateCollection(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.dimension,
			Distance: qdrant.Distance_Euclid,
		}),
	})
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.AlreadyExists {
			return nil
		}
		return fmt.Errorf("%w: create collection %s: %w", domain.ErrIndexUnavailable, name, err)
	}
	return nil
}

// DropCollection deletes a collection and every point in it.
func (q *QdrantIndex) DropCollection(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	if err := q.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("%w: drop collection %s: %w", domain.ErrIndexUnavailable, name, err)
	}
	return nil
}

// Insert upserts one point per question id.
func (q *QdrantIndex) Insert(ctx context.Context, name string, ids []int64, vectors [][]float32) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", domain.ErrValidation, len(ids), len(vectors))
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	points := make([]*qdrant.PointStruct, len(ids))
	for i, id := range ids {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(id)),
			Vectors: qdrant.NewVectors(vectors[i]...),
		}
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("%w: upsert into %s: %w", domain.ErrIndexUnavailable, name, err)
	}
	return nil
}

// Delete removes the points with the given ids. Missing ids are ignored.
func (q *QdrantIndex) Delete(ctx context.Context, name string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewIDNum(uint64(id))
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: name,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: pointIDs},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: delete from %s: %w", domain.ErrIndexUnavailable, name, err)
	}
	return nil
}

// Search returns up to topK nearest neighbors, ascending by distance.
func (q *QdrantIndex) Search(ctx context.Context, name string, vector []float32, topK int) ([]search.Hit, error) {
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	results, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %w", domain.ErrIndexUnavailable, name, err)
	}

	hits := make([]search.Hit, 0, len(results))
	for _, point := range results {
		hits = append(hits, search.NewHit(int64(point.GetId().GetNum()), point.GetScore()))
	}
	return hits, nil
}

// Close releases the underlying gRPC connection.
func (q *QdrantIndex) Close() error {
	return q.client.Close()
}
