package billing

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newCacheClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestFineRuleStoreServesCachedPercentage(t *testing.T) {
	mr, client := newCacheClient(t)
	require.NoError(t, mr.Set(fineRuleCacheKey, "12.5"))

	store := NewFineRuleStore(nil, client, time.Minute, slog.Default())
	rule, err := store.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12.5, rule.Percentage)
}

func TestFineRulePercentageFailsOpen(t *testing.T) {
	_, client := newCacheClient(t)

	// No cache entry and no database: the fine must default to zero
	// rather than block payments.
	store := NewFineRuleStore(nil, client, time.Minute, slog.Default())
	require.Equal(t, 0.0, store.PercentageFailOpen(context.Background()))
}

func TestFineRuleUpdateRejectsOutOfRange(t *testing.T) {
	store := NewFineRuleStore(nil, nil, time.Minute, slog.Default())
	_, err := store.Update(context.Background(), 150)
	require.Error(t, err)
	_, err = store.Update(context.Background(), -1)
	require.Error(t, err)
}
