package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)

var ErrMissingMongoURI = errors.New("MDB_URL (or MONGODB_URI) is required for the mongo backend")

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	Store     StoreConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Prefix   string
}

// Addr returns host:port.
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// StoreConfig selects the document store and how queries run against it.
type StoreConfig struct {
	Backend           string
	LookupConcurrency int
	NativeAggregation bool
	FetchRPS          float64
	FetchBurst        int
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "cocktails")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PREFIX", "cocktails:")
	viper.SetDefault("MINIO_BUCKET", "cocktails")
	viper.SetDefault("STORE_BACKEND", BackendMongo)
	viper.SetDefault("LOOKUP_CONCURRENCY", 1)
	viper.SetDefault("NATIVE_AGGREGATION", false)
	viper.SetDefault("FETCH_RPS", 0)
	viper.SetDefault("FETCH_BURST", 10)
	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("LOG_LEVEL", "info")

	uri := viper.GetString("MDB_URL")
	if uri == "" {
		uri = viper.GetString("MONGODB_URI")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      uri,
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			Prefix:   viper.GetString("REDIS_PREFIX"),
		},
		MinIO: MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		Store: StoreConfig{
			Backend:           strings.ToLower(strings.TrimSpace(viper.GetString("STORE_BACKEND"))),
			LookupConcurrency: viper.GetInt("LOOKUP_CONCURRENCY"),
			NativeAggregation: viper.GetBool("NATIVE_AGGREGATION"),
			FetchRPS:          viper.GetFloat64("FETCH_RPS"),
			FetchBurst:        viper.GetInt("FETCH_BURST"),
		},
		RateLimit: RateLimitConfig{
			RPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst: viper.GetInt("RATE_LIMIT_BURST"),
		},
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	case BackendMongo:
		if c.MongoDB.URI == "" {
			return ErrMissingMongoURI
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want memory, mongo or redis)", c.Store.Backend)
	}
	if c.Store.LookupConcurrency < 1 {
		return fmt.Errorf("LOOKUP_CONCURRENCY must be at least 1, got %d", c.Store.LookupConcurrency)
	}
	return nil
}
