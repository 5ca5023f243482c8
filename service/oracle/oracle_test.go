package oracle

import (
	"context"
	"testing"
	"time"

	"lending/core"
	"lending/internal/clock"
	"lending/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOracle(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	c := clock.NewManual(now)

	feed := NewStaticFeed()
	feed.Set("ETH", number.Decimal("2000"), now)
	feed.Set("USDC", number.Decimal("1"), now)

	o := New(feed, c, Config{
		Heartbeat:  time.Hour,
		Heartbeats: map[string]time.Duration{"USDC": 24 * time.Hour},
		Decimals:   map[string]uint8{"USDC": 6},
	})

	t.Run("value", func(t *testing.T) {
		v, err := o.Value(ctx, "ETH", number.MustParse("1.5"))
		require.Nil(t, err)
		assert.Equal(t, number.MustParse("3000").Dec(), v.Dec())

		v, err = o.Value(ctx, "USDC", number.Wad().SetUint64(2_500_000))
		require.Nil(t, err)
		assert.Equal(t, number.MustParse("2.5").Dec(), v.Dec())
	})

	t.Run("amount for value", func(t *testing.T) {
		a, err := o.AmountForValue(ctx, "ETH", number.MustParse("1000"))
		require.Nil(t, err)
		assert.Equal(t, number.MustParse("0.5").Dec(), a.Dec())

		a, err = o.AmountForValue(ctx, "USDC", number.MustParse("3"))
		require.Nil(t, err)
		assert.Equal(t, uint64(3_000_000), a.Uint64())
	})

	t.Run("heartbeat", func(t *testing.T) {
		stale, err := o.IsStale(ctx, "ETH")
		require.Nil(t, err)
		assert.False(t, stale)

		c.Advance(2 * time.Hour)
		stale, err = o.IsStale(ctx, "ETH")
		require.Nil(t, err)
		assert.True(t, stale)

		stale, err = o.IsStale(ctx, "USDC")
		require.Nil(t, err)
		assert.False(t, stale, "per token heartbeat")
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := o.Value(ctx, "BTC", number.Wad())
		assert.ErrorIs(t, err, core.ErrStalePrice)
	})
}

func TestOracleCache(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	feed := NewStaticFeed()
	feed.Set("ETH", number.Decimal("2000"), now)

	o := New(feed, clock.NewManual(now), Config{CacheTTL: time.Minute})
	o.Warm(ctx, []string{"ETH", "BTC"})

	feed.Set("ETH", number.Decimal("1000"), now)
	v, err := o.Value(ctx, "ETH", number.Wad())
	require.Nil(t, err)
	assert.Equal(t, number.MustParse("2000").Dec(), v.Dec(), "served from cache")
}
