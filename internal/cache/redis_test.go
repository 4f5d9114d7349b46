package cache

import (
	"testing"

	"quiz-grader/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	t.Run("EmptyAddress", func(t *testing.T) {
		_, err := NewRedisClient(config.RedisConfig{})
		assert.Error(t, err)
	})

	t.Run("Reachable", func(t *testing.T) {
		srv := miniredis.RunT(t)
		client, err := NewRedisClient(config.RedisConfig{Address: srv.Addr()})
		require.NoError(t, err)
		defer client.Close()
	})

	t.Run("Unreachable", func(t *testing.T) {
		srv := miniredis.RunT(t)
		addr := srv.Addr()
		srv.Close()
		_, err := NewRedisClient(config.RedisConfig{Address: addr})
		assert.Error(t, err)
	})
}
