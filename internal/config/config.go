package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the archon service configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Database    DatabaseConfig    `yaml:"database"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Search      SearchConfig      `yaml:"search"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error (default: encoding default)
	Encoding string `yaml:"encoding"` // json, console (default: json)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// VectorStoreConfig holds vector store connection settings.
type VectorStoreConfig struct {
	Driver           string       `yaml:"driver"` // qdrant, redis (default: qdrant)
	Qdrant           QdrantConfig `yaml:"qdrant"`
	Redis            RedisConfig  `yaml:"redis"`
	ReadinessTimeout int          `yaml:"readiness_timeout_sec"`
}

// QdrantConfig holds Qdrant HTTP API settings.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RedisConfig holds Redis/Valkey connection settings.
type RedisConfig struct {
	Addrs     []string `yaml:"addrs"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db"`
	KeyPrefix string   `yaml:"key_prefix"`
}

// DatabaseConfig holds the embedded SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`
	Model            string `yaml:"model"`
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	CacheTTLSec      int    `yaml:"cache_ttl_sec"` // 0 = cache entries never expire
}

// SearchConfig holds retrieval settings.
type SearchConfig struct {
	// CollectionAliases extends the built-in alias table. Keys are the
	// aliases callers pass, values are store collection names.
	CollectionAliases map[string]string `yaml:"collection_aliases"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.VectorStore.Driver == "" {
		c.VectorStore.Driver = "qdrant"
	}
	if c.VectorStore.ReadinessTimeout <= 0 {
		c.VectorStore.ReadinessTimeout = 10
	}
	if c.VectorStore.Qdrant.TimeoutSec <= 0 {
		c.VectorStore.Qdrant.TimeoutSec = 30
	}
	if c.VectorStore.Redis.KeyPrefix == "" {
		c.VectorStore.Redis.KeyPrefix = "archon:"
	}
	if c.Database.Path == "" {
		c.Database.Path = "archon.db"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = "json"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.VectorStore.Driver {
	case "qdrant":
		if c.VectorStore.Qdrant.URL == "" {
			return fmt.Errorf("vector_store.qdrant.url is required")
		}
	case "redis":
		if len(c.VectorStore.Redis.Addrs) == 0 {
			return fmt.Errorf("vector_store.redis.addrs is required")
		}
	default:
		return fmt.Errorf(
			"vector_store.driver must be \"qdrant\" or \"redis\", got %q",
			c.VectorStore.Driver,
		)
	}
	switch c.Logging.Encoding {
	case "", "json", "console":
		// ok
	default:
		return fmt.Errorf(
			"logging.encoding must be \"json\" or \"console\", got %q",
			c.Logging.Encoding,
		)
	}
	for alias, collection := range c.Search.CollectionAliases {
		if strings.TrimSpace(alias) == "" || strings.TrimSpace(collection) == "" {
			return fmt.Errorf("search.collection_aliases[%q] must name a collection, got %q", alias, collection)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
