package config

import (
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Variables carry the QABANK_ prefix; nested structs use underscore
// delimiters (e.g. QABANK_QDRANT_HOST).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: QABANK_HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: QABANK_PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: QABANK_DATA_DIR
	// Default: ~/.qabank
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: QABANK_DB_URL
	// Default: sqlite:///{data_dir}/qabank.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: QABANK_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: QABANK_LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// APIKeys is a comma-separated list of valid API keys.
	// Env: QABANK_API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// SearchTopK is the default number of nearest neighbors per search.
	// Env: QABANK_SEARCH_TOP_K (default: 10)
	SearchTopK int `envconfig:"SEARCH_TOP_K" default:"10"`

	// Qdrant configures the vector index connection.
	Qdrant QdrantEnv `envconfig:"QDRANT"`

	// Embedder configures the embedding gateway.
	Embedder EmbedderEnv `envconfig:"EMBEDDER"`
}

// QdrantEnv holds environment configuration for the vector index.
type QdrantEnv struct {
	// Host is the Qdrant hostname.
	// Env: QABANK_QDRANT_HOST (default: localhost)
	Host string `envconfig:"HOST" default:"localhost"`

	// Port is the Qdrant gRPC port (not the HTTP REST port).
	// Env: QABANK_QDRANT_PORT (default: 6334)
	Port int `envconfig:"PORT" default:"6334"`

	// APIKey is the optional Qdrant API key.
	// Env: QABANK_QDRANT_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// UseTLS enables TLS for the gRPC connection.
	// Env: QABANK_QDRANT_USE_TLS (default: false)
	UseTLS bool `envconfig:"USE_TLS" default:"false"`

	// Timeout is the per-request timeout in seconds.
	// Env: QABANK_QDRANT_TIMEOUT (default: 30)
	Timeout float64 `envconfig:"TIMEOUT" default:"30"`
}

// EmbedderEnv holds environment configuration for the embedding gateway.
type EmbedderEnv struct {
	// URL is the remote embedding service URL.
	// Env: QABANK_EMBEDDER_URL
	URL string `envconfig:"URL"`

	// OpenAIAPIKey selects the OpenAI provider when set.
	// Env: QABANK_EMBEDDER_OPENAI_API_KEY
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// OpenAIModel is the OpenAI embedding model.
	// Env: QABANK_EMBEDDER_OPENAI_MODEL (default: text-embedding-3-small)
	OpenAIModel string `envconfig:"OPENAI_MODEL" default:"text-embedding-3-small"`

	// Timeout is the embedding request timeout in seconds.
	// Env: QABANK_EMBEDDER_TIMEOUT (default: 30)
	Timeout float64 `envconfig:"TIMEOUT" default:"30"`

	// Dimension is the embedding vector dimension.
	// Env: QABANK_EMBEDDER_DIMENSION (default: 768)
	Dimension int `envconfig:"DIMENSION" default:"768"`
}

// LoadFromEnv loads configuration from QABANK_-prefixed environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("QABANK", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig, filling derived defaults.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	cfg.host = e.Host
	cfg.port = e.Port
	cfg.logLevel = e.LogLevel
	cfg.apiKeys = splitAPIKeys(e.APIKeys)

	if e.LogFormat == string(LogFormatJSON) {
		cfg.logFormat = LogFormatJSON
	}

	if e.DataDir != "" {
		cfg.dataDir = e.DataDir
		cfg.dbURL = "sqlite:///" + filepath.Join(e.DataDir, "qabank.db")
	}
	if e.DBURL != "" {
		cfg.dbURL = e.DBURL
	}
	if e.SearchTopK > 0 {
		cfg.searchTopK = e.SearchTopK
	}

	cfg.qdrant = QdrantConfig{
		host:    e.Qdrant.Host,
		port:    e.Qdrant.Port,
		apiKey:  e.Qdrant.APIKey,
		useTLS:  e.Qdrant.UseTLS,
		timeout: secondsOrDefault(e.Qdrant.Timeout, DefaultQdrantTimeout),
	}

	cfg.embedder = EmbedderConfig{
		url:          e.Embedder.URL,
		openAIAPIKey: e.Embedder.OpenAIAPIKey,
		openAIModel:  e.Embedder.OpenAIModel,
		timeout:      secondsOrDefault(e.Embedder.Timeout, DefaultEmbedderTimeout),
		dimension:    e.Embedder.Dimension,
	}
	if cfg.embedder.dimension <= 0 {
		cfg.embedder.dimension = DefaultEmbeddingDim
	}

	return cfg
}

func secondsOrDefault(seconds float64, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds * float64(time.Second))
}
