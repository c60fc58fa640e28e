package store_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-subscription-bot/internal/store"
	"github.com/i474232898/weather-subscription-bot/internal/store/db/sqlite"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	driver, err := sqlite.NewDB(filepath.Join(t.TempDir(), "weather.db"))
	require.NoError(t, err)

	st := store.New(driver)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestUpsertIsIdempotentPerKey(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.UpsertSubscription(ctx, &store.Subscription{ChatID: 1, Location: "Paris", Date: "2030-01-01", Forecast: "clear, 10°C"}))
	require.NoError(t, st.UpsertSubscription(ctx, &store.Subscription{ChatID: 1, Location: "Paris", Date: "2030-01-01", Forecast: "rain, 9°C"}))

	list, err := st.ListChatSubscriptions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, store.Subscription{ChatID: 1, Location: "Paris", Date: "2030-01-01", Forecast: "rain, 9°C"}, *list[0])
}

func TestListSubscriptionsByChat(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	for _, s := range []*store.Subscription{
		{ChatID: 1, Location: "Paris", Date: "2030-01-02", Forecast: "a"},
		{ChatID: 1, Location: "Berlin", Date: "2030-01-01", Forecast: "b"},
		{ChatID: 2, Location: "Paris", Date: "2030-01-02", Forecast: "c"},
	} {
		require.NoError(t, st.UpsertSubscription(ctx, s))
	}

	all, err := st.ListSubscriptions(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := st.ListChatSubscriptions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Berlin", mine[0].Location)
	assert.Equal(t, "Paris", mine[1].Location)

	none, err := st.ListChatSubscriptions(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteSubscription(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.UpsertSubscription(ctx, &store.Subscription{ChatID: 1, Location: "Paris", Date: "2030-01-01", Forecast: "x"}))

	// Absent key: no error, nothing removed.
	require.NoError(t, st.DeleteSubscription(ctx, store.SubscriptionKey{ChatID: 1, Location: "Paris", Date: "2030-01-02"}))
	all, err := st.ListSubscriptions(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, st.DeleteSubscription(ctx, store.SubscriptionKey{ChatID: 1, Location: "Paris", Date: "2030-01-01"}))
	_, err = st.GetSubscription(ctx, store.SubscriptionKey{ChatID: 1, Location: "Paris", Date: "2030-01-01"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateSubscriptionForecast(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	key := store.SubscriptionKey{ChatID: 7, Location: "Oslo", Date: "2030-05-05"}

	// Absent key is silently ignored and does not create a row.
	require.NoError(t, st.UpdateSubscriptionForecast(ctx, key, "snow, -1°C"))
	all, err := st.ListSubscriptions(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, st.UpsertSubscription(ctx, &store.Subscription{ChatID: 7, Location: "Oslo", Date: "2030-05-05", Forecast: "clear, 3°C"}))
	require.NoError(t, st.UpdateSubscriptionForecast(ctx, key, "snow, -1°C"))

	got, err := st.GetSubscription(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "snow, -1°C", got.Forecast)
}

func TestLocationIsStoredVerbatim(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.UpsertSubscription(ctx, &store.Subscription{ChatID: 1, Location: "  new york ", Date: "2030-01-01"}))
	require.NoError(t, st.UpsertSubscription(ctx, &store.Subscription{ChatID: 1, Location: "New York", Date: "2030-01-01"}))

	list, err := st.ListChatSubscriptions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUpsertRejectsInvalidSubscriptions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	tests := []struct {
		name string
		sub  store.Subscription
	}{
		{name: "missing chat", sub: store.Subscription{Location: "Paris", Date: "2030-01-01"}},
		{name: "missing location", sub: store.Subscription{ChatID: 1, Date: "2030-01-01"}},
		{name: "location too long", sub: store.Subscription{ChatID: 1, Location: strings.Repeat("a", store.MaxLocationLength+1), Date: "2030-01-01"}},
		{name: "impossible date", sub: store.Subscription{ChatID: 1, Location: "Paris", Date: "2024-02-30"}},
		{name: "wrong layout", sub: store.Subscription{ChatID: 1, Location: "Paris", Date: "01.01.2030"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := tt.sub
			err := st.UpsertSubscription(ctx, &sub)
			require.ErrorIs(t, err, store.ErrInvalidSubscription)
		})
	}

	all, err := st.ListSubscriptions(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubscriptionsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "weather.db")

	driver, err := sqlite.NewDB(path)
	require.NoError(t, err)
	st := store.New(driver)
	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.UpsertSubscription(ctx, &store.Subscription{ChatID: 1, Location: "Paris", Date: "2030-01-01", Forecast: "x"}))
	require.NoError(t, st.Close())

	driver, err = sqlite.NewDB(path)
	require.NoError(t, err)
	st = store.New(driver)
	defer st.Close()
	require.NoError(t, st.Migrate(ctx))

	list, err := st.ListSubscriptions(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
