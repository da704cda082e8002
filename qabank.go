// Package qabank is a question bank: questions and question sets backed by a
// relational store for facts and a vector index for similarity search.
package qabank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/qabank/qabank/application/service"
	"github.com/qabank/qabank/domain/questionset"
	"github.com/qabank/qabank/domain/search"
	"github.com/qabank/qabank/infrastructure/persistence"
	"github.com/qabank/qabank/infrastructure/vectorindex"
	"github.com/qabank/qabank/internal/config"
	"github.com/qabank/qabank/internal/database"
)

// ErrNoDatabase indicates no database backend was configured.
var ErrNoDatabase = errors.New("qabank: no database configured, use WithSQLite or WithPostgres")

// ErrNoEmbedder indicates no embedding gateway was configured.
var ErrNoEmbedder = errors.New("qabank: no embedder configured, use WithEmbedder")

// ErrClientClosed indicates the client has been closed.
var ErrClientClosed = errors.New("qabank: client is closed")

// Client is the main entry point for the qabank library.
//
// Access resources via struct fields:
//
//	client.Questions.Get(ctx, actor, id)
//	client.QuestionSets.AddQuestions(ctx, actor, setID, ids)
//	client.Search.Search(ctx, actor, params)
type Client struct {
	Users        *service.Users
	Questions    *service.Questions
	QuestionSets *service.QuestionSets
	Search       *service.Search

	db      database.Database
	index   interface{ Close() error }
	logger  *slog.Logger
	apiKeys []string
	closed  atomic.Bool
}

// New creates a Client: opens the database, runs migrations and wires the
// services. The public aggregate set and its collection exist afterwards.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.database == databaseUnset {
		return nil, ErrNoDatabase
	}
	if cfg.embedder == nil {
		return nil, ErrNoEmbedder
	}

	logger := cfg.logger
	if logger == nil {
		logger = config.DefaultLogger()
	}

	ctx := context.Background()

	dbURL, err := buildDatabaseURL(cfg)
	if err != nil {
		return nil, err
	}
	db, err := database.NewDatabase(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.RunMigrations(ctx, db); err != nil {
		return nil, errors.Join(fmt.Errorf("migrate: %w", err), db.Close())
	}

	index := cfg.index
	if index == nil {
		if cfg.qdrant != nil {
			qdrantIndex, err := vectorindex.NewQdrantIndex(ctx, *cfg.qdrant, cfg.dimension)
			if err != nil {
				return nil, errors.Join(err, db.Close())
			}
			index = qdrantIndex
		} else {
			index = vectorindex.NewMemoryIndex()
		}
	}

	// The aggregate collection must exist before the first public fan-out.
	if err := index.CreateCollection(ctx, search.CollectionName(questionset.PublicSetID)); err != nil {
		logger.Warn("aggregate collection not ready", slog.String("error", err.Error()))
	}

	userStore := persistence.NewUserStore(db)
	questionStore := persistence.NewQuestionStore(db)
	setStore := persistence.NewQuestionSetStore(db)
	membershipStore := persistence.NewMembershipStore(db)

	users := service.NewUsers(userStore, logger)
	sets := service.NewQuestionSets(setStore, questionStore, membershipStore, index, logger)
	questions := service.NewQuestions(questionStore, setStore, membershipStore, sets, cfg.embedder, index, logger)
	searchSvc := service.NewSearch(questionStore, setStore, membershipStore, cfg.embedder, index, cfg.topK, logger)

	client := &Client{
		Users:        users,
		Questions:    questions,
		QuestionSets: sets,
		Search:       searchSvc,
		db:           db,
		logger:       logger,
		apiKeys:      cfg.apiKeys,
	}
	if closer, ok := index.(interface{ Close() error }); ok {
		client.index = closer
	}
	return client, nil
}

// Close releases the database and index connections. Safe to call twice.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return ErrClientClosed
	}

	var errs []error
	if c.index != nil {
		if err := c.index.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close index: %w", err))
		}
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// APIKeys returns the accepted API keys for the HTTP surface.
func (c *Client) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

func buildDatabaseURL(cfg *clientConfig) (string, error) {
	switch cfg.database {
	case databaseSQLite:
		path := cfg.dbPath
		if path == "" {
			path = filepath.Join(cfg.dataDir, "qabank.db")
		}
		return "sqlite:///" + path, nil
	case databasePostgres:
		if cfg.dbDSN == "" {
			return "", fmt.Errorf("%w: empty postgres dsn", ErrNoDatabase)
		}
		return cfg.dbDSN, nil
	default:
		return "", ErrNoDatabase
	}
}
