package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MDB_URL", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "cocktails_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("LOOKUP_CONCURRENCY", "4")
	t.Setenv("NATIVE_AGGREGATION", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	require.Equal(t, "cocktails_test", cfg.MongoDB.Database)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, "localhost:6380", cfg.Redis.Addr())
	require.Equal(t, BackendMongo, cfg.Store.Backend)
	require.Equal(t, 4, cfg.Store.LookupConcurrency)
	require.True(t, cfg.Store.NativeAggregation)
}

func TestLoadConfig_FallsBackToMongoDBURI(t *testing.T) {
	t.Setenv("MDB_URL", "")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "mongodb://db:27017", cfg.MongoDB.URI)
	require.Equal(t, "cocktails", cfg.MongoDB.Database)
}

func TestLoadConfig_MongoRequiresURI(t *testing.T) {
	t.Setenv("MDB_URL", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("STORE_BACKEND", "mongo")
	_, err := LoadConfig()
	require.ErrorIs(t, err, ErrMissingMongoURI)

	t.Setenv("STORE_BACKEND", "Memory")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, BackendMemory, cfg.Store.Backend)
}

func TestLoadConfig_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	_, err := LoadConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "postgres")
}
