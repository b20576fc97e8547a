// Package weather fetches, combines, and caches per-location forecast and
// air-quality data, and reduces the hourly series to representative 2PM
// samples.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tareqmahmud/travel-advisor/internal/cache"
	"github.com/tareqmahmud/travel-advisor/internal/district"
	"github.com/tareqmahmud/travel-advisor/internal/fetch"
	"github.com/tareqmahmud/travel-advisor/internal/models"
	"github.com/tareqmahmud/travel-advisor/internal/observability"
)

// ErrUnavailable signals that neither the forecast nor the air-quality fetch
// produced data for a location. Nothing is cached in that case.
var ErrUnavailable = errors.New("weather data unavailable")

const (
	weatherKeyPrefix   = "weather:"
	defaultConcurrency = 8
)

// Aggregator is the weather fetch/cache layer. A snapshot is built even when
// one of the two sub-fetches failed; only a double failure is treated as
// unavailable.
type Aggregator struct {
	fetcher       fetch.Client
	cache         cache.Cache
	forecastURL   string
	airQualityURL string
	timezone      string
	forecastDays  int
	ttl           time.Duration
	concurrency   int
	logger        *zap.Logger
}

// NewAggregator creates an Aggregator. concurrency bounds the batch fan-out
// and defaults to 8 when non-positive.
func NewAggregator(fetcher fetch.Client, cacheSvc cache.Cache, forecastURL, airQualityURL, timezone string, forecastDays int, ttl time.Duration, concurrency int, logger *zap.Logger) *Aggregator {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if forecastDays <= 0 {
		forecastDays = 7
	}
	return &Aggregator{
		fetcher:       fetcher,
		cache:         cacheSvc,
		forecastURL:   forecastURL,
		airQualityURL: airQualityURL,
		timezone:      timezone,
		forecastDays:  forecastDays,
		ttl:           ttl,
		concurrency:   concurrency,
		logger:        logger,
	}
}

// ForLocation returns the snapshot for a named location, from cache when
// fresh. On a miss it issues the forecast and air-quality fetches, caches the
// combined snapshot, and returns it. Returns ErrUnavailable when both
// sub-fetches failed.
func (a *Aggregator) ForLocation(ctx context.Context, name string, lat, lon float64) (models.WeatherSnapshot, error) {
	logger := a.log(ctx)
	key := weatherKeyPrefix + district.NormalizeName(name)

	raw, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get").Inc()
		logger.Warn("weather cache get failed", zap.String("location", name), zap.Error(err))
	} else if ok {
		var snap models.WeatherSnapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			observability.CacheHitsTotal.WithLabelValues("weather").Inc()
			logger.Debug("weather cache hit", zap.String("location", name))
			return snap, nil
		}
		logger.Warn("malformed weather cache entry, refetching", zap.String("location", name), zap.Error(err))
	}
	observability.CacheMissesTotal.WithLabelValues("weather").Inc()

	snap, err := a.buildSnapshot(ctx, name, lat, lon)
	if err != nil {
		return models.WeatherSnapshot{}, err
	}

	if encoded, err := json.Marshal(snap); err == nil {
		if err := a.cache.Set(ctx, key, encoded, a.ttl); err != nil {
			observability.CacheErrorsTotal.WithLabelValues("set").Inc()
			logger.Warn("weather cache set failed", zap.String("location", name), zap.Error(err))
		}
	}

	logger.Debug("weather cached", zap.String("location", name))
	return snap, nil
}

// Live fetches a snapshot for ad-hoc coordinates without touching the cache.
// Used for the caller's current position, which must never be served from or
// written to the named-district cache.
func (a *Aggregator) Live(ctx context.Context, name string, lat, lon float64) (models.WeatherSnapshot, error) {
	return a.buildSnapshot(ctx, name, lat, lon)
}

func (a *Aggregator) buildSnapshot(ctx context.Context, name string, lat, lon float64) (models.WeatherSnapshot, error) {
	logger := a.log(ctx)

	forecast := a.fetchForecast(ctx, name, lat, lon)
	airQuality := a.fetchAirQuality(ctx, name, lat, lon)

	if forecast == nil && airQuality == nil {
		logger.Warn("no weather data fetched", zap.String("location", name))
		return models.WeatherSnapshot{}, ErrUnavailable
	}

	return models.WeatherSnapshot{
		LocationName: name,
		Forecast:     forecast,
		AirQuality:   airQuality,
	}, nil
}

// fetchForecast returns nil when the fetch fails; the missing piece is
// represented as absence, never as an error aborting the whole snapshot.
func (a *Aggregator) fetchForecast(ctx context.Context, name string, lat, lon float64) *models.ForecastData {
	logger := a.log(ctx)

	params := a.locationParams(lat, lon)
	params.Set("hourly", "temperature_2m")

	result := a.fetcher.Get(ctx, a.forecastURL, params)
	if !result.OK() {
		logger.Error("failed fetching forecast", zap.String("location", name), zap.Int("status_code", result.StatusCode))
		return nil
	}

	var data models.ForecastData
	if err := result.DecodeJSON(&data); err != nil {
		logger.Error("malformed forecast response", zap.String("location", name), zap.Error(err))
		return nil
	}
	return &data
}

func (a *Aggregator) fetchAirQuality(ctx context.Context, name string, lat, lon float64) *models.AirQualityData {
	logger := a.log(ctx)

	params := a.locationParams(lat, lon)
	params.Set("hourly", "pm2_5,pm10")

	result := a.fetcher.Get(ctx, a.airQualityURL, params)
	if !result.OK() {
		logger.Error("failed fetching air quality", zap.String("location", name), zap.Int("status_code", result.StatusCode))
		return nil
	}

	var data models.AirQualityData
	if err := result.DecodeJSON(&data); err != nil {
		logger.Error("malformed air quality response", zap.String("location", name), zap.Error(err))
		return nil
	}
	return &data
}

func (a *Aggregator) locationParams(lat, lon float64) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("timezone", a.timezone)
	params.Set("forecast_days", strconv.Itoa(a.forecastDays))
	return params
}

// Batch fans the per-location fetch out across a bounded worker pool and
// returns the successful snapshots. Order is not guaranteed. One location's
// failure is logged and excluded, never propagated to its siblings.
func (a *Aggregator) Batch(ctx context.Context, districts []models.District) []models.WeatherSnapshot {
	logger := a.log(ctx)
	start := time.Now()

	results := make(chan *models.WeatherSnapshot, len(districts))
	semaphore := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup

	for _, d := range districts {
		wg.Add(1)
		go func(d models.District) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			snap, err := a.ForLocation(ctx, d.Name, d.Lat, d.Lon)
			if err != nil {
				observability.BatchFetchExcludedTotal.Inc()
				logger.Warn("batch fetch: location excluded", zap.String("district", d.Name), zap.Error(err))
				results <- nil
				return
			}
			results <- &snap
		}(d)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	snapshots := make([]models.WeatherSnapshot, 0, len(districts))
	for snap := range results {
		if snap != nil {
			snapshots = append(snapshots, *snap)
		}
	}

	observability.BatchFetchDurationSeconds.Observe(time.Since(start).Seconds())
	logger.Info("batch weather fetch completed",
		zap.Int("total", len(districts)),
		zap.Int("successful", len(snapshots)))
	return snapshots
}

func (a *Aggregator) log(ctx context.Context) *zap.Logger {
	if l := observability.LoggerFromContext(ctx); l != nil {
		return l
	}
	if a.logger != nil {
		return a.logger
	}
	return zap.NewNop()
}
