package db_test

import (
	"context"
	"gato/Gato-Game/internal/db"
	"gato/Gato-Game/internal/db/dbtest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := db.NewRedisClient(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}

func TestNewRedisClient_Container(t *testing.T) {
	client := dbtest.NewRedisClient(t)
	require.NoError(t, client.Set(context.Background(), "k", "v", time.Minute).Err())

	got, err := client.Get(context.Background(), "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
