// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.counsel/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - Generation: Gemini API key, model, temperature, max tokens, timeout
//   - Retrieval: top-K per corpus, minimum relevance floor, context budget
//   - Scoring: relevance term weights (see scoring.go)
//   - Storage: PostgreSQL connection
//
// Security: sensitive data (API key, password) is never logged; the config
// directory uses 0750 permissions.
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidTimeout indicates the generation timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid generation timeout")

	// ErrInvalidTopK indicates a top-K value is out of range.
	ErrInvalidTopK = errors.New("invalid top-k")

	// ErrInvalidMinScore indicates the relevance floor is out of range.
	ErrInvalidMinScore = errors.New("invalid minimum score")

	// ErrInvalidContextBudget indicates the context character budget is out of range.
	ErrInvalidContextBudget = errors.New("invalid context budget")

	// ErrInvalidWeight indicates a scoring weight is out of range.
	ErrInvalidWeight = errors.New("invalid scoring weight")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")
)

const (
	// DefaultModelName is the default Gemini generation model.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultGenerationTimeout bounds a single generation call, in seconds.
	DefaultGenerationTimeout = 30

	// DefaultTopKKnowledge is how many knowledge entries a retrieval returns.
	DefaultTopKKnowledge = 3

	// DefaultTopKArticles is how many articles a retrieval returns.
	DefaultTopKArticles = 2

	// DefaultMaxContextChars bounds the assembled context payload.
	DefaultMaxContextChars = 4000

	// MaxPageSize is the absolute maximum history page size.
	MaxPageSize = 200
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (passwords, API keys), update MarshalJSON.
type Config struct {
	// Generation configuration
	GeminiAPIKey      string  `mapstructure:"gemini_api_key" json:"gemini_api_key"` // SENSITIVE: masked in MarshalJSON; empty = degraded template answers
	ModelName         string  `mapstructure:"model_name" json:"model_name"`
	Temperature       float32 `mapstructure:"temperature" json:"temperature"`
	MaxTokens         int     `mapstructure:"max_tokens" json:"max_tokens"`
	GenerationTimeout int     `mapstructure:"generation_timeout" json:"generation_timeout"` // seconds

	// Retrieval configuration
	TopKKnowledge   int     `mapstructure:"top_k_knowledge" json:"top_k_knowledge"`
	TopKArticles    int     `mapstructure:"top_k_articles" json:"top_k_articles"`
	MinScore        float64 `mapstructure:"min_score" json:"min_score"` // relevance floor; 0 = no floor, > 0 recommended in production
	MaxContextChars int     `mapstructure:"max_context_chars" json:"max_context_chars"`

	// Scoring weights (see scoring.go)
	Scoring ScoringConfig `mapstructure:"scoring" json:"scoring"`

	// Storage configuration
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".counsel")

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	// Generation defaults
	viper.SetDefault("model_name", DefaultModelName)
	viper.SetDefault("temperature", 0.7)
	viper.SetDefault("max_tokens", 1024)
	viper.SetDefault("generation_timeout", DefaultGenerationTimeout)

	// Retrieval defaults
	viper.SetDefault("top_k_knowledge", DefaultTopKKnowledge)
	viper.SetDefault("top_k_articles", DefaultTopKArticles)
	viper.SetDefault("min_score", 0.0)
	viper.SetDefault("max_context_chars", DefaultMaxContextChars)

	setScoringDefaults()

	// PostgreSQL defaults (matching docker-compose.yml)
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "counsel")
	viper.SetDefault("postgres_password", "counsel_dev_password")
	viper.SetDefault("postgres_db_name", "counsel")
	viper.SetDefault("postgres_ssl_mode", "disable")
}

// bindEnvVariables binds environment variables explicitly.
func bindEnvVariables() {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	// Generation secret. Absence is not an error: the engine degrades to
	// deterministic template answers.
	mustBind("gemini_api_key", "GEMINI_API_KEY")

	// Runtime overrides
	mustBind("model_name", "COUNSEL_MODEL_NAME")
	mustBind("min_score", "COUNSEL_MIN_SCORE")

	// Storage
	mustBind("postgres_host", "COUNSEL_POSTGRES_HOST")
	mustBind("postgres_port", "COUNSEL_POSTGRES_PORT")
	mustBind("postgres_user", "COUNSEL_POSTGRES_USER")
	mustBind("postgres_password", "COUNSEL_POSTGRES_PASSWORD")
	mustBind("postgres_db_name", "COUNSEL_POSTGRES_DB_NAME")
	mustBind("postgres_ssl_mode", "COUNSEL_POSTGRES_SSL_MODE")
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks avoid accidental substring matches against real secrets.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Secrets of 8 chars or fewer are fully masked; longer secrets show the
// first and last 2 characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
//
// Sensitive fields masked:
//   - GeminiAPIKey
//   - PostgresPassword
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.GeminiAPIKey = maskSecret(a.GeminiAPIKey)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// PostgresDSN returns the connection string for pgx.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort,
		c.PostgresDBName, c.PostgresSSLMode)
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
