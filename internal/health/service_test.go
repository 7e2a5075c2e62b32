package health

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect_NoDependencies(t *testing.T) {
	s := &Service{StartedAt: time.Now()}
	result := s.Collect(context.Background())
	assert.Equal(t, "degraded", result.Status)
	assert.False(t, result.Dependencies["database"].Connected)
	assert.False(t, result.Dependencies["redis"].Connected)
	assert.NotEmpty(t, result.Runtime.GoVersion)
}

func TestCollect_WithMiniredis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := &Service{Rdb: rdb, StartedAt: time.Now()}
	result := s.Collect(context.Background())
	assert.True(t, result.Dependencies["redis"].Connected)
	assert.False(t, result.Dependencies["database"].Connected)
	assert.Equal(t, "degraded", result.Status)
}

type okPinger struct{}

func (okPinger) Ping() error { return nil }

func TestCollect_AllConnected(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := &Service{DB: okPinger{}, Rdb: rdb, StartedAt: time.Now()}
	result := s.Collect(context.Background())
	assert.Equal(t, "ok", result.Status)
}
