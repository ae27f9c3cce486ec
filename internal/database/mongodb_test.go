package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConnectMongo_RejectsEmptyURI(t *testing.T) {
	_, err := ConnectMongo(context.Background(), "", time.Second)
	require.Error(t, err)
}

func TestConnectMongo_BadScheme(t *testing.T) {
	_, err := ConnectMongo(context.Background(), "postgres://localhost", time.Second)
	require.Error(t, err)
	require.Contains(t, err.Error(), "mongo connect")
}
