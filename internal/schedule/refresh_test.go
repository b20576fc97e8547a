package schedule

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tareqmahmud/travel-advisor/internal/cache"
	"github.com/tareqmahmud/travel-advisor/internal/district"
	"github.com/tareqmahmud/travel-advisor/internal/fetch"
	"github.com/tareqmahmud/travel-advisor/internal/weather"
)

const (
	testDistrictsURL  = "https://districts.example.com/districts.json"
	testForecastURL   = "https://forecast.example.com/v1/forecast"
	testAirQualityURL = "https://air.example.com/v1/air-quality"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeFetcher) Get(ctx context.Context, rawURL string, params url.Values) fetch.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[rawURL]++

	switch rawURL {
	case testDistrictsURL:
		return fetch.Result{StatusCode: http.StatusOK, Body: []byte(`{"districts":[
			{"name":"Dhaka","lat":"23.71","long":"90.41"},
			{"name":"Sylhet","lat":"24.89","long":"91.87"}
		]}`)}
	case testForecastURL:
		return fetch.Result{StatusCode: http.StatusOK, Body: []byte(`{"hourly":{"time":["2025-09-01T14:00"],"temperature_2m":[30.5]}}`)}
	case testAirQualityURL:
		return fetch.Result{StatusCode: http.StatusOK, Body: []byte(`{"hourly":{"time":["2025-09-01T14:00"],"pm2_5":[48.2]}}`)}
	}
	return fetch.Result{StatusCode: http.StatusNotFound, ErrDetail: "no fixture"}
}

func (f *fakeFetcher) count(rawURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[rawURL]
}

// TestRefresher_Warm verifies one warm run resolves districts and fills the
// weather cache for each of them.
func TestRefresher_Warm(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := cache.NewInMemoryCache()
	dir := district.NewDirectory(fetcher, c, testDistrictsURL, time.Minute, nil)
	agg := weather.NewAggregator(fetcher, c, testForecastURL, testAirQualityURL, "Asia/Dhaka", 7, time.Minute, 4, nil)

	r, err := NewRefresher(dir, agg, time.Hour, time.Minute, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRefresher() error = %v", err)
	}

	ctx := context.Background()
	r.Warm(ctx)

	if got := fetcher.count(testDistrictsURL); got != 1 {
		t.Errorf("district fetches = %d, want 1", got)
	}
	if got := fetcher.count(testForecastURL); got != 2 {
		t.Errorf("forecast fetches = %d, want 2 (one per district)", got)
	}
	if got := fetcher.count(testAirQualityURL); got != 2 {
		t.Errorf("air quality fetches = %d, want 2 (one per district)", got)
	}

	for _, key := range []string{"weather:dhaka", "weather:sylhet"} {
		if _, ok, _ := c.Get(ctx, key); !ok {
			t.Errorf("cache missing %s after warm run", key)
		}
	}
}

// TestRefresher_Warm_ServesFollowingRequests verifies requests after a warm
// run are answered from cache without new provider traffic.
func TestRefresher_Warm_ServesFollowingRequests(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := cache.NewInMemoryCache()
	dir := district.NewDirectory(fetcher, c, testDistrictsURL, time.Minute, nil)
	agg := weather.NewAggregator(fetcher, c, testForecastURL, testAirQualityURL, "Asia/Dhaka", 7, time.Minute, 4, nil)

	r, err := NewRefresher(dir, agg, time.Hour, time.Minute, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRefresher() error = %v", err)
	}

	ctx := context.Background()
	r.Warm(ctx)
	before := fetcher.count(testForecastURL)

	if _, err := agg.ForLocation(ctx, "Dhaka", 23.71, 90.41); err != nil {
		t.Fatalf("ForLocation() after warm error = %v", err)
	}
	if after := fetcher.count(testForecastURL); after != before {
		t.Errorf("forecast fetches grew from %d to %d, want cache hit", before, after)
	}
}

// TestRefresher_StartStop verifies scheduler lifecycle without waiting for a
// tick.
func TestRefresher_StartStop(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := cache.NewInMemoryCache()
	dir := district.NewDirectory(fetcher, c, testDistrictsURL, time.Minute, nil)
	agg := weather.NewAggregator(fetcher, c, testForecastURL, testAirQualityURL, "Asia/Dhaka", 7, time.Minute, 4, nil)

	r, err := NewRefresher(dir, agg, time.Hour, time.Minute, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRefresher() error = %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}
