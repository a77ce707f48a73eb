package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Artifacts      ArtifactsConfig      `mapstructure:"artifacts"`
	Interactions   InteractionsConfig   `mapstructure:"interactions"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Auth           AuthConfig           `mapstructure:"auth"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	Security       SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ArtifactsConfig locates the model snapshot. Relative paths are resolved
// against Dir.
type ArtifactsConfig struct {
	Dir          string `mapstructure:"dir"`
	Mappings     string `mapstructure:"mappings"`
	UserFactors  string `mapstructure:"user_factors"`
	ItemFactors  string `mapstructure:"item_factors"`
	UserContent  string `mapstructure:"user_content"`
	ItemContent  string `mapstructure:"item_content"`
	Items        string `mapstructure:"items"`
	Interactions string `mapstructure:"interactions"`
}

// Path resolves an artifact path against Dir.
func (a ArtifactsConfig) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || a.Dir == "" {
		return p
	}
	return filepath.Join(a.Dir, p)
}

type InteractionsConfig struct {
	// Source is "csv" or "postgres".
	Source string `mapstructure:"source"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	PoolSize int           `mapstructure:"pool_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		Impressions string `mapstructure:"impressions"`
	} `mapstructure:"topics"`
}

type RecommendationConfig struct {
	DefaultLimit int           `mapstructure:"default_limit"`
	MaxLimit     int           `mapstructure:"max_limit"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// Set defaults
	SetDefaults(v)

	// Environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns the configuration with every default applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)

	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "development")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Artifact defaults
	v.SetDefault("artifacts.dir", ".")
	v.SetDefault("artifacts.mappings", "artifacts/mappings.json")
	v.SetDefault("artifacts.user_factors", "artifacts/user_factors.csv")
	v.SetDefault("artifacts.item_factors", "artifacts/item_factors.csv")
	v.SetDefault("artifacts.user_content", "artifacts/user_content.csv")
	v.SetDefault("artifacts.item_content", "artifacts/item_content.csv")
	v.SetDefault("artifacts.items", "data/items.csv")
	v.SetDefault("artifacts.interactions", "data/interactions.csv")
	v.SetDefault("interactions.source", "csv")

	// Database defaults (only used by the postgres interaction source)
	v.SetDefault("database.url", "")
	v.SetDefault("database.connect_timeout", "10s")

	// Redis defaults, empty URL disables caching and rate limiting
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.timeout", "500ms")

	// Kafka defaults, no brokers disables impression events
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topics.impressions", "recommendation-impressions")

	// Recommendation defaults
	v.SetDefault("recommendation.default_limit", 5)
	v.SetDefault("recommendation.max_limit", 100)
	v.SetDefault("recommendation.cache_ttl", "10m")

	// Auth defaults
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt_secret", "")

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests", 600)
	v.SetDefault("rate_limit.window", "1m")

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"*"})
}
