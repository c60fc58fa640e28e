package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/i474232898/weather-subscription-bot/internal/store"
)

func TestPostgresDriver(t *testing.T) {
	if os.Getenv("WEATHERBOT_DOCKER_TESTS") != "1" {
		t.Skip("set WEATHERBOT_DOCKER_TESTS=1 to run container-backed tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("weather"),
		tcpostgres.WithUsername("weather"),
		tcpostgres.WithPassword("weather"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	driver, err := NewDB(dsn)
	require.NoError(t, err)
	st := store.New(driver)
	defer st.Close()
	require.NoError(t, st.Migrate(ctx))

	key := store.SubscriptionKey{ChatID: 1, Location: "Paris", Date: "2030-01-01"}
	require.NoError(t, st.UpsertSubscription(ctx, &store.Subscription{ChatID: 1, Location: "Paris", Date: "2030-01-01", Forecast: "clear, 10°C"}))
	require.NoError(t, st.UpsertSubscription(ctx, &store.Subscription{ChatID: 1, Location: "Paris", Date: "2030-01-01", Forecast: "rain, 9°C"}))

	list, err := st.ListChatSubscriptions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "rain, 9°C", list[0].Forecast)

	require.NoError(t, st.UpdateSubscriptionForecast(ctx, key, "snow, 0°C"))
	got, err := st.GetSubscription(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "snow, 0°C", got.Forecast)

	require.NoError(t, st.DeleteSubscription(ctx, key))
	require.NoError(t, st.DeleteSubscription(ctx, key))
	_, err = st.GetSubscription(ctx, key)
	require.ErrorIs(t, err, store.ErrNotFound)
}
