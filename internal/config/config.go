package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Keys double as environment variable names (upper-cased by viper).
const (
	KeyTelegramToken   = "telegram_token"
	KeyWeatherAPIKey   = "weather_api_key"
	KeyDBPath          = "weather_bot_db"
	KeyDBDriver        = "weather_bot_db_driver"
	KeyDBDSN           = "weather_bot_dsn"
	KeyWeatherLang     = "weather_lang"
	KeyHTTPTimeout     = "http_timeout"
	KeyRecheckInterval = "recheck_interval"
	KeyRecheckCron     = "recheck_cron"
	KeyWeatherRPS      = "weather_rps"
	KeyWeatherBurst    = "weather_burst"
	KeyPort            = "port"
	KeyAdminAddr       = "admin_addr"
)

var validate = validator.New()

type AppConfig struct {
	TelegramToken string `validate:"required"`
	WeatherAPIKey string `validate:"required"`

	// Persistence.
	DBDriver string `validate:"oneof=sqlite postgres mysql"`
	DBPath   string `validate:"required_if=DBDriver sqlite"`
	DBDSN    string `validate:"required_unless=DBDriver sqlite"`

	// Forecast provider.
	WeatherLang  string
	HTTPTimeout  time.Duration `validate:"gt=0"`
	WeatherRPS   float64       `validate:"gte=0"`
	WeatherBurst int           `validate:"gte=0"`

	// RecheckInterval controls how often all subscriptions are reconciled;
	// RecheckCron overrides it when set.
	RecheckInterval time.Duration `validate:"gt=0"`
	RecheckCron     string

	// Port of the admin API; empty disables it.
	Port string
	// AdminAddr is the interface the admin API binds to. The API has no
	// authentication, so it stays on loopback unless configured otherwise.
	AdminAddr string `validate:"omitempty,ip|hostname"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDBPath, "weather.db")
	v.SetDefault(KeyDBDriver, "sqlite")
	v.SetDefault(KeyWeatherLang, "en")
	v.SetDefault(KeyHTTPTimeout, "10s")
	v.SetDefault(KeyRecheckInterval, "6h")
	v.SetDefault(KeyWeatherRPS, 1.0)
	v.SetDefault(KeyWeatherBurst, 5)
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyAdminAddr, "127.0.0.1")
}

// Load reads configuration from a .env file, the environment and any flags
// bound to v. Missing credentials are reported as an error.
func Load(v *viper.Viper) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &AppConfig{
		TelegramToken:   strings.TrimSpace(v.GetString(KeyTelegramToken)),
		WeatherAPIKey:   strings.TrimSpace(v.GetString(KeyWeatherAPIKey)),
		DBDriver:        strings.ToLower(v.GetString(KeyDBDriver)),
		DBPath:          v.GetString(KeyDBPath),
		DBDSN:           v.GetString(KeyDBDSN),
		WeatherLang:     v.GetString(KeyWeatherLang),
		HTTPTimeout:     v.GetDuration(KeyHTTPTimeout),
		WeatherRPS:      v.GetFloat64(KeyWeatherRPS),
		WeatherBurst:    v.GetInt(KeyWeatherBurst),
		RecheckInterval: v.GetDuration(KeyRecheckInterval),
		RecheckCron:     strings.TrimSpace(v.GetString(KeyRecheckCron)),
		Port:            v.GetString(KeyPort),
		AdminAddr:       strings.TrimSpace(v.GetString(KeyAdminAddr)),
	}
	if cfg.Port == "0" || strings.EqualFold(cfg.Port, "off") {
		cfg.Port = ""
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.RecheckCron != "" {
		if _, err := cron.ParseStandard(cfg.RecheckCron); err != nil {
			return nil, fmt.Errorf("invalid RECHECK_CRON: %w", err)
		}
	}

	return cfg, nil
}
