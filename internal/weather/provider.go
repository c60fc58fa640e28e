package weather

import (
	"context"
)

// Provider abstracts a forecast source (OpenWeatherMap today).
type Provider interface {
	Name() string
	Forecast(ctx context.Context, location string) (Snapshot, error)
}
