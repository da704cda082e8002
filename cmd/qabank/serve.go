package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/qabank/qabank"
	"github.com/qabank/qabank/infrastructure/api"
	apimiddleware "github.com/qabank/qabank/infrastructure/api/middleware"
	"github.com/qabank/qabank/infrastructure/provider"
	"github.com/qabank/qabank/internal/config"
	"github.com/qabank/qabank/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile     string
		host        string
		port        int
		memoryIndex bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables (QABANK_ prefix):
  QABANK_HOST                Server host to bind to (default: 0.0.0.0)
  QABANK_PORT                Server port to listen on (default: 8080)
  QABANK_DATA_DIR            Data directory (default: ~/.qabank)
  QABANK_DB_URL              Database URL (default: sqlite:///{data_dir}/qabank.db)
  QABANK_LOG_LEVEL           Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  QABANK_LOG_FORMAT          Log format: pretty, json (default: pretty)
  QABANK_API_KEYS            Comma-separated list of valid API keys
  QABANK_SEARCH_TOP_K        Default similarity result count (default: 10)

  QABANK_QDRANT_HOST         Qdrant hostname (default: localhost)
  QABANK_QDRANT_PORT         Qdrant gRPC port (default: 6334)
  QABANK_QDRANT_API_KEY      Qdrant API key
  QABANK_QDRANT_USE_TLS      Connect to Qdrant over TLS (default: false)

  QABANK_EMBEDDER_URL        Dual-encoder embedding service URL
  QABANK_EMBEDDER_OPENAI_API_KEY  OpenAI API key (used when no service URL is set)
  QABANK_EMBEDDER_OPENAI_MODEL    OpenAI embedding model
  QABANK_EMBEDDER_DIMENSION  Embedding vector dimension (default: 768)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port, memoryIndex)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")
	cmd.Flags().BoolVar(&memoryIndex, "memory-index", false, "Use the in-memory vector index instead of Qdrant")

	return cmd
}

func runServe(envFile, host string, port int, memoryIndex bool) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)
	addr := cfg.Addr()

	logger := log.Configure(cfg)

	opts, err := clientOptions(cfg, logger, memoryIndex)
	if err != nil {
		return err
	}

	client, err := qabank.New(opts...)
	if err != nil {
		return fmt.Errorf("create qabank client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close qabank client", "error", err)
		}
	}()

	apiServer := api.NewAPIServer(client)
	router := apiServer.Router()

	// Middleware must precede MountRoutes.
	router.Use(apimiddleware.CorrelationID)
	router.Use(apimiddleware.Logging(logger))
	if keys := client.APIKeys(); len(keys) > 0 {
		router.Use(apimiddleware.APIKey(apimiddleware.NewAuthConfig(keys)))
	}
	apiServer.MountRoutes()

	router.Get("/health", healthHandler)
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"name":"qabank","version":%q}`, version)
	})

	server := api.NewServer(addr, logger)
	server.Router().Mount("/", router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(server.Start)
	group.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	logger.Info("qabank serving", "addr", addr, "version", version)
	return group.Wait()
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	opts := []config.AppOption{}
	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}
	return cfg.With(opts...)
}

func clientOptions(cfg config.AppConfig, logger *slog.Logger, memoryIndex bool) ([]qabank.Option, error) {
	dataDir, err := config.PrepareDataDir(cfg.DataDir())
	if err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}

	opts := []qabank.Option{
		qabank.WithDataDir(dataDir),
		qabank.WithLogger(logger),
		qabank.WithSearchTopK(cfg.SearchTopK()),
		qabank.WithEmbeddingDim(cfg.Embedder().Dimension()),
	}

	dbURL := cfg.DBURL()
	switch {
	case dbURL == "" || strings.HasPrefix(dbURL, "sqlite"):
		path := dataDir + "/qabank.db"
		if after, ok := strings.CutPrefix(dbURL, "sqlite:///"); ok && after != "" {
			path = after
		}
		opts = append(opts, qabank.WithSQLite(path))
	default:
		opts = append(opts, qabank.WithPostgres(dbURL))
	}

	embedder := cfg.Embedder()
	switch {
	case embedder.URL() != "":
		opts = append(opts, qabank.WithEmbedder(
			provider.NewRemoteEmbedder(embedder.URL(), provider.WithTimeout(embedder.Timeout()))))
	case embedder.OpenAIAPIKey() != "":
		openaiOpts := []provider.OpenAIOption{provider.WithOpenAITimeout(embedder.Timeout())}
		if embedder.OpenAIModel() != "" {
			openaiOpts = append(openaiOpts, provider.WithOpenAIModel(embedder.OpenAIModel()))
		}
		opts = append(opts, qabank.WithEmbedder(
			provider.NewOpenAIEmbedder(embedder.OpenAIAPIKey(), embedder.Dimension(), openaiOpts...)))
	default:
		return nil, fmt.Errorf("no embedding provider configured: set QABANK_EMBEDDER_URL or QABANK_EMBEDDER_OPENAI_API_KEY")
	}

	if !memoryIndex {
		opts = append(opts, qabank.WithQdrant(cfg.Qdrant()))
	}
	if keys := cfg.APIKeys(); len(keys) > 0 {
		opts = append(opts, qabank.WithAPIKeys(keys...))
	}
	return opts, nil
}
