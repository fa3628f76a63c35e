// Package weather serves current weather per location, consulting a TTL cache
// before calling the remote API.
package weather

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/ferry-services/internal/adapter/openweather"
	"github.com/couchcryptid/ferry-services/internal/cache"
	"github.com/couchcryptid/ferry-services/internal/domain"
	"github.com/couchcryptid/ferry-services/internal/observability"
	"github.com/sourcegraph/conc/pool"
)

// Source fetches current weather for a coordinate pair.
type Source interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (domain.Weather, error)
}

// Cache stores fetched weather by request key.
type Cache = cache.TTL[string, domain.Weather]

// Service fetches weather for locations. Concurrent calls for the same
// location are not coalesced; each misses the cache independently and the
// last successful write wins.
type Service struct {
	source  Source
	cache   *Cache
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService creates a weather service. The cache may be shared between services.
func NewService(source Source, c *Cache, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		source:  source,
		cache:   c,
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns the weather at loc. It returns domain.ErrInvalidLocation
// without a request when loc lacks a coordinate, and a *domain.FetchError for
// every other failure. A cached value younger than the cache TTL is returned
// without a network call.
func (s *Service) Fetch(ctx context.Context, loc domain.Location) (domain.Weather, error) {
	lat, lon, ok := loc.Coordinates()
	if !ok {
		s.metrics.WeatherRequests.WithLabelValues("invalid").Inc()
		return domain.Weather{}, domain.ErrInvalidLocation
	}

	key := openweather.RequestKey(lat, lon)
	if e, ok := s.cache.Get(key); ok {
		s.metrics.WeatherCache.WithLabelValues("hit").Inc()
		s.metrics.WeatherRequests.WithLabelValues("success").Inc()
		return e.Value, nil
	}
	s.metrics.WeatherCache.WithLabelValues("miss").Inc()

	w, err := s.source.CurrentWeather(ctx, lat, lon)
	if err != nil {
		s.metrics.WeatherRequests.WithLabelValues("error").Inc()
		s.logger.Warn("weather fetch failed",
			"location", loc.Name,
			"lat", lat,
			"lon", lon,
			"error", err,
		)
		return domain.Weather{}, &domain.FetchError{Cause: err}
	}

	s.cache.Put(key, w)
	s.metrics.WeatherRequests.WithLabelValues("success").Inc()
	return w, nil
}

// WarmUp fetches weather for every mappable location with at most
// maxConcurrent requests in flight and returns how many succeeded.
// Failures are logged by Fetch and otherwise ignored.
func (s *Service) WarmUp(ctx context.Context, locations []domain.Location, maxConcurrent int) int {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	p := pool.NewWithResults[bool]().WithMaxGoroutines(maxConcurrent)
	for _, loc := range locations {
		if !loc.Mappable() {
			continue
		}
		p.Go(func() bool {
			_, err := s.Fetch(ctx, loc)
			return err == nil
		})
	}

	warmed := 0
	for _, ok := range p.Wait() {
		if ok {
			warmed++
		}
	}
	return warmed
}

// Disabled is a Source used when no API key is configured. Every call fails,
// so weather rows render their error state.
type Disabled struct{}

var errDisabled = errors.New("weather lookups are disabled")

func (Disabled) CurrentWeather(context.Context, float64, float64) (domain.Weather, error) {
	return domain.Weather{}, errDisabled
}
