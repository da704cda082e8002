// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultLogLevel        = "INFO"
	DefaultSearchTopK      = 10
	DefaultEmbeddingDim    = 768
	DefaultEmbedderTimeout = 30 * time.Second
	DefaultQdrantPort      = 6334
	DefaultQdrantTimeout   = 30 * time.Second
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// QdrantConfig configures the vector index connection.
type QdrantConfig struct {
	host    string
	port    int
	apiKey  string
	useTLS  bool
	timeout time.Duration
}

// NewQdrantConfig creates a QdrantConfig with defaults.
func NewQdrantConfig() QdrantConfig {
	return QdrantConfig{
		host:    "localhost",
		port:    DefaultQdrantPort,
		timeout: DefaultQdrantTimeout,
	}
}

// Host returns the Qdrant hostname.
func (q QdrantConfig) Host() string { return q.host }

// Port returns the Qdrant gRPC port.
func (q QdrantConfig) Port() int { return q.port }

// APIKey returns the Qdrant API key, empty for unauthenticated deployments.
func (q QdrantConfig) APIKey() string { return q.apiKey }

// UseTLS reports whether the gRPC connection uses TLS.
func (q QdrantConfig) UseTLS() bool { return q.useTLS }

// Timeout returns the per-request timeout.
func (q QdrantConfig) Timeout() time.Duration { return q.timeout }

// EmbedderConfig configures the embedding gateway.
type EmbedderConfig struct {
	url          string
	openAIAPIKey string
	openAIModel  string
	timeout      time.Duration
	dimension    int
}

// NewEmbedderConfig creates an EmbedderConfig with defaults.
func NewEmbedderConfig() EmbedderConfig {
	return EmbedderConfig{
		timeout:   DefaultEmbedderTimeout,
		dimension: DefaultEmbeddingDim,
	}
}

// URL returns the remote embedding service URL, empty when unset.
func (e EmbedderConfig) URL() string { return e.url }

// OpenAIAPIKey returns the OpenAI API key, empty when unset.
func (e EmbedderConfig) OpenAIAPIKey() string { return e.openAIAPIKey }

// OpenAIModel returns the OpenAI embedding model identifier.
func (e EmbedderConfig) OpenAIModel() string { return e.openAIModel }

// Timeout returns the embedding request timeout.
func (e EmbedderConfig) Timeout() time.Duration { return e.timeout }

// Dimension returns the embedding vector dimension.
func (e EmbedderConfig) Dimension() int { return e.dimension }

// AppConfig holds the fully resolved application configuration.
type AppConfig struct {
	host       string
	port       int
	dataDir    string
	dbURL      string
	logLevel   string
	logFormat  LogFormat
	apiKeys    []string
	searchTopK int
	qdrant     QdrantConfig
	embedder   EmbedderConfig
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".qabank"
	}
	return filepath.Join(home, ".qabank")
}

// DefaultLogger returns the default slog logger for library consumers.
func DefaultLogger() *slog.Logger {
	return slog.Default()
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:       DefaultHost,
		port:       DefaultPort,
		dataDir:    dataDir,
		dbURL:      "sqlite:///" + filepath.Join(dataDir, "qabank.db"),
		logLevel:   DefaultLogLevel,
		logFormat:  LogFormatPretty,
		apiKeys:    []string{},
		searchTopK: DefaultSearchTopK,
		qdrant:     NewQdrantConfig(),
		embedder:   NewEmbedderConfig(),
	}
}

// AppOption configures an AppConfig.
type AppOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDBURL sets the database connection URL.
func WithDBURL(url string) AppOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log verbosity level.
func WithLogLevel(level string) AppOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log output format.
func WithLogFormat(format LogFormat) AppOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithAPIKeys sets the accepted API keys.
func WithAPIKeys(keys ...string) AppOption {
	return func(c *AppConfig) { c.apiKeys = keys }
}

// NewAppConfigWithOptions creates an AppConfig with defaults and applies options.
func NewAppConfigWithOptions(opts ...AppOption) AppConfig {
	cfg := NewAppConfig()
	return cfg.With(opts...)
}

// With returns a copy of the config with the options applied.
func (c AppConfig) With(opts ...AppOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// APIKeys returns the configured API keys.
func (c AppConfig) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// SearchTopK returns the default number of nearest neighbors per search.
func (c AppConfig) SearchTopK() int { return c.searchTopK }

// Qdrant returns the vector index configuration.
func (c AppConfig) Qdrant() QdrantConfig { return c.qdrant }

// Embedder returns the embedding gateway configuration.
func (c AppConfig) Embedder() EmbedderConfig { return c.embedder }

func splitAPIKeys(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
