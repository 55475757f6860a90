package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructSnap/internal/domain/models"
	"StructSnap/pkg/cache"
)

func TestLatestStoreRoundTrip(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewRedisLatestStore(mc)
	ctx := context.Background()

	payload := []byte(`{"symbol":"BTCUSDT","fingerprint":"abc"}`)
	require.NoError(t, store.SetLatest(ctx, "BTCUSDT", models.VariantSwing, payload))

	got, err := store.GetLatest(ctx, "BTCUSDT", models.VariantSwing)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// variants are independent keys
	_, err = store.GetLatest(ctx, "BTCUSDT", models.VariantFull)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestLatestStoreMiss(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewRedisLatestStore(mc)

	_, err := store.GetLatest(context.Background(), "ETHUSDT", models.VariantSwing)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestLatestStoreOverwrite(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewRedisLatestStore(mc)
	ctx := context.Background()

	require.NoError(t, store.SetLatest(ctx, "BTCUSDT", models.VariantSwing, []byte("one")))
	require.NoError(t, store.SetLatest(ctx, "BTCUSDT", models.VariantSwing, []byte("two")))

	got, err := store.GetLatest(ctx, "BTCUSDT", models.VariantSwing)
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func TestReportRoundTrip(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewRedisLatestStore(mc)
	ctx := context.Background()

	require.NoError(t, store.SetReport(ctx, "BTCUSDT", "# BTCUSDT zone report"))
	got, err := store.GetReport(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "# BTCUSDT zone report", got)

	_, err = store.GetReport(ctx, "ETHUSDT")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}
