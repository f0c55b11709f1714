package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Addr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "localhost:6379", Config{}.Addr())
	assert.Equal(t, "cache:6380", Config{Host: "cache", Port: "6380"}.Addr())
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6390")
	t.Setenv("REDIS_PASSWORD", "pw")
	t.Setenv("REDIS_DB", "2")

	cfg := LoadConfig()

	assert.Equal(t, Config{Host: "redis", Port: "6390", Password: "pw", DB: 2}, cfg)
}

func TestNewRedisClient_Success(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := Config{Host: mr.Host(), Port: mr.Port()}
	rdb, err := NewRedisClient(context.Background(), cfg)

	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	assert.NoError(t, rdb.Ping(context.Background()).Err())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	rdb, err := NewRedisClient(context.Background(), Config{Host: host, Port: port})

	assert.Error(t, err)
	assert.Nil(t, rdb)
}
