package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogotex/cocktails/internal/config"
)

func TestNewMinIOStorage_RequiresEndpointAndBucket(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.MinIOConfig{Bucket: "cocktails"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "MINIO_ENDPOINT")

	_, err = NewMinIOStorage(context.Background(), config.MinIOConfig{Endpoint: "localhost:9000"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "MINIO_BUCKET")
}
