package qabank

import (
	"log/slog"

	"github.com/qabank/qabank/domain/search"
	"github.com/qabank/qabank/internal/config"
)

// databaseType identifies the database backend.
type databaseType int

const (
	databaseUnset databaseType = iota
	databaseSQLite
	databasePostgres
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	database  databaseType
	dbPath    string
	dbDSN     string
	dataDir   string
	embedder  search.Embedder
	index     search.Index
	qdrant    *config.QdrantConfig
	logger    *slog.Logger
	apiKeys   []string
	topK      int
	dimension int
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:   config.DefaultDataDir(),
		topK:      config.DefaultSearchTopK,
		dimension: config.DefaultEmbeddingDim,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite stores relational data in a SQLite file at path. An empty path
// places the file in the data directory.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.database = databaseSQLite
		c.dbPath = path
	}
}

// WithPostgres stores relational data in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.database = databasePostgres
		c.dbDSN = dsn
	}
}

// WithDataDir overrides the default data directory.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) { c.dataDir = dir }
}

// WithEmbedder sets the embedding gateway. Required.
func WithEmbedder(e search.Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithIndex sets the vector index directly, bypassing Qdrant construction.
// Useful with vectorindex.NewMemoryIndex for tests and single-node use.
func WithIndex(idx search.Index) Option {
	return func(c *clientConfig) { c.index = idx }
}

// WithQdrant connects the vector index to a Qdrant server.
func WithQdrant(cfg config.QdrantConfig) Option {
	return func(c *clientConfig) { c.qdrant = &cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// WithAPIKeys sets the accepted API keys for the HTTP surface.
func WithAPIKeys(keys ...string) Option {
	return func(c *clientConfig) { c.apiKeys = keys }
}

// WithSearchTopK sets the default number of nearest neighbors per search.
func WithSearchTopK(k int) Option {
	return func(c *clientConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithEmbeddingDim sets the embedding vector dimension for new collections.
func WithEmbeddingDim(dim int) Option {
	return func(c *clientConfig) {
		if dim > 0 {
			c.dimension = dim
		}
	}
}
