package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedisAndJSONRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, InitRedis(mr.Addr(), "", ""))
	t.Cleanup(func() { _ = Rdb.Close() })

	ctx := context.Background()
	require.NoError(t, SetJSON(ctx, Rdb, "k", []string{"a", "b"}, time.Minute))

	var got []string
	found, err := GetJSON(ctx, Rdb, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got)

	mr.FastForward(2 * time.Minute)
	found, err = GetJSON(ctx, Rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInitRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	assert.Error(t, InitRedis(addr, "", ""))
}
