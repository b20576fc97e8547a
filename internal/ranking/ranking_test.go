package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

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

// districtFixture carries per-district series for the fake provider, keyed by
// latitude since weather fetches carry coordinates rather than names.
type districtFixture struct {
	name  string
	lat   float64
	temps []float64
	pm25s []float64
}

type fakeFetcher struct {
	mu       sync.Mutex
	fixtures []districtFixture
}

func (f *fakeFetcher) Get(ctx context.Context, rawURL string, params url.Values) fetch.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rawURL == testDistrictsURL {
		return fetch.Result{StatusCode: http.StatusOK, Body: f.districtsBody()}
	}

	lat := params.Get("latitude")
	for _, fx := range f.fixtures {
		if fmt.Sprintf("%g", fx.lat) != lat {
			continue
		}
		switch rawURL {
		case testForecastURL:
			if fx.temps == nil {
				return fetch.Result{StatusCode: fetch.StatusTimeout, ErrDetail: "timeout"}
			}
			return fetch.Result{StatusCode: http.StatusOK, Body: seriesBody("temperature_2m", fx.temps)}
		case testAirQualityURL:
			if fx.pm25s == nil {
				return fetch.Result{StatusCode: fetch.StatusTimeout, ErrDetail: "timeout"}
			}
			return fetch.Result{StatusCode: http.StatusOK, Body: seriesBody("pm2_5", fx.pm25s)}
		}
	}
	return fetch.Result{StatusCode: http.StatusNotFound, ErrDetail: "no fixture"}
}

func (f *fakeFetcher) districtsBody() []byte {
	type raw struct {
		Name string `json:"name"`
		Lat  string `json:"lat"`
		Long string `json:"long"`
	}
	var out struct {
		Districts []raw `json:"districts"`
	}
	for _, fx := range f.fixtures {
		out.Districts = append(out.Districts, raw{
			Name: fx.name,
			Lat:  fmt.Sprintf("%g", fx.lat),
			Long: "90.0",
		})
	}
	body, _ := json.Marshal(out)
	return body
}

func seriesBody(field string, values []float64) []byte {
	hourly := map[string]any{}
	var times []string
	var ptrs []*float64
	for i := range values {
		v := values[i]
		times = append(times, fmt.Sprintf("2025-09-%02dT14:00", i+1))
		ptrs = append(ptrs, &v)
	}
	hourly["time"] = times
	hourly[field] = ptrs
	body, _ := json.Marshal(map[string]any{"hourly": hourly})
	return body
}

func newTestRanker(fixtures []districtFixture) *Ranker {
	fetcher := &fakeFetcher{fixtures: fixtures}
	c := cache.NewInMemoryCache()
	dir := district.NewDirectory(fetcher, c, testDistrictsURL, time.Minute, nil)
	agg := weather.NewAggregator(fetcher, c, testForecastURL, testAirQualityURL, "Asia/Dhaka", 7, time.Minute, 4, nil)
	return NewRanker(dir, agg, nil)
}

// TestBestDistricts_SortOrder verifies the ascending (avg_temp, avg_pm25)
// ordering with air quality breaking temperature ties.
func TestBestDistricts_SortOrder(t *testing.T) {
	r := newTestRanker([]districtFixture{
		{name: "Hotland", lat: 1, temps: []float64{30}, pm25s: []float64{20}},
		{name: "Coolsmog", lat: 2, temps: []float64{25}, pm25s: []float64{80}},
		{name: "Coolclean", lat: 3, temps: []float64{25}, pm25s: []float64{30}},
	})

	entries := r.BestDistricts(context.Background(), 10)
	if len(entries) != 3 {
		t.Fatalf("BestDistricts() returned %d entries, want 3", len(entries))
	}

	want := []string{"Coolclean", "Coolsmog", "Hotland"}
	for i, name := range want {
		if entries[i].District != name {
			t.Errorf("entries[%d].District = %q, want %q", i, entries[i].District, name)
		}
	}
}

// TestBestDistricts_Limit verifies truncation to the requested limit and the
// fallback to the default for out-of-range values.
func TestBestDistricts_Limit(t *testing.T) {
	var fixtures []districtFixture
	for i := 0; i < 15; i++ {
		fixtures = append(fixtures, districtFixture{
			name:  fmt.Sprintf("District%02d", i),
			lat:   float64(i + 1),
			temps: []float64{20 + float64(i)},
			pm25s: []float64{10},
		})
	}
	r := newTestRanker(fixtures)
	ctx := context.Background()

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "explicit limit", limit: 2, want: 2},
		{name: "zero falls back to default", limit: 0, want: 10},
		{name: "above max falls back to default", limit: 100, want: 10},
		{name: "limit above population", limit: 50, want: 15},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			entries := r.BestDistricts(ctx, tc.limit)
			if len(entries) != tc.want {
				t.Errorf("BestDistricts(%d) returned %d entries, want %d", tc.limit, len(entries), tc.want)
			}
		})
	}
}

// TestBestDistricts_DropsIncomplete verifies districts missing either metric
// are excluded from the ranking instead of appearing with placeholders.
func TestBestDistricts_DropsIncomplete(t *testing.T) {
	r := newTestRanker([]districtFixture{
		{name: "Complete", lat: 1, temps: []float64{25}, pm25s: []float64{30}},
		{name: "NoAir", lat: 2, temps: []float64{20}, pm25s: nil},
		{name: "NoTemp", lat: 3, temps: nil, pm25s: []float64{5}},
	})

	entries := r.BestDistricts(context.Background(), 10)
	if len(entries) != 1 {
		t.Fatalf("BestDistricts() returned %d entries, want 1", len(entries))
	}
	if entries[0].District != "Complete" {
		t.Errorf("entries[0].District = %q, want Complete", entries[0].District)
	}
}

// TestBestDistricts_RoundsOutput verifies averages are rounded to two
// decimals in the response entries.
func TestBestDistricts_RoundsOutput(t *testing.T) {
	r := newTestRanker([]districtFixture{
		{name: "Dhaka", lat: 1, temps: []float64{30.124, 30.131}, pm25s: []float64{55.556}},
	})

	entries := r.BestDistricts(context.Background(), 10)
	if len(entries) != 1 {
		t.Fatalf("BestDistricts() returned %d entries, want 1", len(entries))
	}
	if entries[0].AvgTemp != 30.13 {
		t.Errorf("AvgTemp = %v, want 30.13", entries[0].AvgTemp)
	}
	if entries[0].AvgPM25 != 55.56 {
		t.Errorf("AvgPM25 = %v, want 55.56", entries[0].AvgPM25)
	}
}

// TestBestDistricts_EmptyDirectory verifies an unavailable directory yields
// an empty ranking.
func TestBestDistricts_EmptyDirectory(t *testing.T) {
	r := newTestRanker(nil)

	entries := r.BestDistricts(context.Background(), 10)
	if len(entries) != 0 {
		t.Errorf("BestDistricts() returned %d entries, want 0", len(entries))
	}
}
