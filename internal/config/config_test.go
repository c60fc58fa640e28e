package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("WEATHER_API_KEY", "owm-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Equal(t, "owm-key", cfg.WeatherAPIKey)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "weather.db", cfg.DBPath)
	assert.Equal(t, "en", cfg.WeatherLang)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 6*time.Hour, cfg.RecheckInterval)
	assert.Empty(t, cfg.RecheckCron)
	assert.Equal(t, 1.0, cfg.WeatherRPS)
	assert.Equal(t, 5, cfg.WeatherBurst)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.AdminAddr)
}

func TestLoadAdminAddr(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_ADDR", "0.0.0.0")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.AdminAddr)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("WEATHER_BOT_DB", "/tmp/subs.db")
	t.Setenv("WEATHER_LANG", "ru")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("RECHECK_INTERVAL", "30m")
	t.Setenv("RECHECK_CRON", "0 8 * * *")
	t.Setenv("PORT", "off")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/subs.db", cfg.DBPath)
	assert.Equal(t, "ru", cfg.WeatherLang)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 30*time.Minute, cfg.RecheckInterval)
	assert.Equal(t, "0 8 * * *", cfg.RecheckCron)
	assert.Empty(t, cfg.Port)
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("WEATHER_BOT_DB", "/tmp/env.db")

	v := viper.New()
	v.Set(KeyDBPath, "/tmp/flag.db")
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/flag.db", cfg.DBPath)
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Run("token", func(t *testing.T) {
		t.Setenv("TELEGRAM_TOKEN", "")
		t.Setenv("WEATHER_API_KEY", "owm-key")
		_, err := Load(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TelegramToken")
	})
	t.Run("api key", func(t *testing.T) {
		t.Setenv("TELEGRAM_TOKEN", "123:abc")
		t.Setenv("WEATHER_API_KEY", "")
		_, err := Load(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "WeatherAPIKey")
	})
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "cron", key: "RECHECK_CRON", val: "every day"},
		{name: "driver", key: "WEATHER_BOT_DB_DRIVER", val: "oracle"},
		{name: "dsn missing", key: "WEATHER_BOT_DB_DRIVER", val: "postgres"},
		{name: "timeout", key: "HTTP_TIMEOUT", val: "soon"},
		{name: "admin addr", key: "ADMIN_ADDR", val: "not a host!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load(viper.New())
			require.Error(t, err)
		})
	}
}
