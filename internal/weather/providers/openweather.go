package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-subscription-bot/internal/weather"
)

const openWeatherForecastURL = "https://api.openweathermap.org/data/2.5/forecast"

var errEmptyForecast = errors.New("forecast list is empty")

// OpenWeatherProvider implements weather.Provider on the OpenWeatherMap
// 5 day / 3 hour forecast endpoint.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	lang    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// OpenWeatherOption customizes an OpenWeatherProvider.
type OpenWeatherOption func(*OpenWeatherProvider)

// WithBaseURL points the provider at another endpoint (tests, proxies).
func WithBaseURL(u string) OpenWeatherOption {
	return func(p *OpenWeatherProvider) { p.baseURL = u }
}

// WithLanguage sets the language of weather descriptions.
func WithLanguage(lang string) OpenWeatherOption {
	return func(p *OpenWeatherProvider) { p.lang = lang }
}

// WithRateLimit caps outbound requests per second with the given burst.
func WithRateLimit(rps float64, burst int) OpenWeatherOption {
	return func(p *OpenWeatherProvider) {
		if rps <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		p.httpCfg.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...OpenWeatherOption) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		lang:    "en",
		baseURL: openWeatherForecastURL,
		httpCfg: HTTPClientConfig{
			Client: client,
		},
		circuit: newCircuitBreaker("openweather"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmForecastEntry struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

type owmForecastPayload struct {
	// empty when the field is absent; a literal null is kept as "null"
	List json.RawMessage `json:"list"`
}

func (p *OpenWeatherProvider) Forecast(ctx context.Context, location string) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", location)
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		if p.lang != "" {
			values.Set("lang", p.lang)
		}

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Snapshot{}, err
	}
	defer resp.Body.Close()

	var payload owmForecastPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("decode forecast: %w", err)
	}

	return snapshotFromPayload(location, payload)
}

func snapshotFromPayload(location string, payload owmForecastPayload) (weather.Snapshot, error) {
	if len(payload.List) == 0 {
		return weather.Snapshot{Location: location}, nil
	}

	var entries []owmForecastEntry
	if err := json.Unmarshal(payload.List, &entries); err != nil {
		return weather.Snapshot{}, fmt.Errorf("decode forecast list: %w", err)
	}
	// Both [] and null land here.
	if len(entries) == 0 {
		return weather.Snapshot{}, errEmptyForecast
	}
	first := entries[0]
	if len(first.Weather) == 0 {
		return weather.Snapshot{}, fmt.Errorf("forecast entry has no weather description")
	}

	return weather.Snapshot{
		Location:     location,
		Description:  first.Weather[0].Description,
		TemperatureC: first.Main.Temp,
		Available:    true,
	}, nil
}
