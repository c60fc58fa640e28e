package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// DefaultTimeout bounds a single forecast lookup.
const DefaultTimeout = 10 * time.Second

var errNoProvider = errors.New("no weather provider configured")

// Service fronts the configured provider and renders forecasts for chat use.
type Service struct {
	provider Provider
	timeout  time.Duration
}

// NewService creates a new Service. A non-positive timeout falls back to DefaultTimeout.
func NewService(provider Provider, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		provider: provider,
		timeout:  timeout,
	}
}

// Forecast fetches the current forecast snapshot for a free-text location.
// The location is passed through verbatim.
func (s *Service) Forecast(ctx context.Context, location string) (Snapshot, error) {
	if s.provider == nil {
		return Snapshot{}, errNoProvider
	}

	// Use a bounded context for the outbound provider call.
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := s.provider.Forecast(ctx, location)
	if err != nil {
		log.Printf("provider %s forecast failed for %q: %v", s.provider.Name(), location, err)
		return Snapshot{}, fmt.Errorf("forecast for %q: %w", location, err)
	}
	if !snap.Available {
		log.Printf("INFO: provider %s returned no forecast list for %q", s.provider.Name(), location)
	}
	return snap, nil
}

// ForecastText fetches and renders the forecast for location.
func (s *Service) ForecastText(ctx context.Context, location string) (string, error) {
	snap, err := s.Forecast(ctx, location)
	if err != nil {
		return "", err
	}
	return snap.Render(), nil
}
