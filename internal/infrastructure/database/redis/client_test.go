package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
)

func TestNewClient_Standalone(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(&Config{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	_, err := NewClient(&Config{Addr: "127.0.0.1:1"}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestClient_CommandsAfterClose(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(&Config{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, client.Close())
	assert.NoError(t, client.Close(), "double close is a no-op")

	ctx := context.Background()
	assert.ErrorIs(t, client.Ping(ctx), ErrClientClosed)
	assert.ErrorIs(t, client.Get(ctx, "k").Err(), ErrClientClosed)
	assert.ErrorIs(t, client.Set(ctx, "k", "v", 0).Err(), ErrClientClosed)
	assert.ErrorIs(t, client.Del(ctx, "k").Err(), ErrClientClosed)
}

func TestClient_SetGetRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(&Config{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "greeting", "hello", 0).Err())

	val, err := client.Get(ctx, "greeting").Result()
	require.NoError(t, err)
	assert.Equal(t, "hello", val)
}
