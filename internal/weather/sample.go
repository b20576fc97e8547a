package weather

import (
	"time"

	"github.com/tareqmahmud/travel-advisor/internal/models"
)

// twoPMSuffix matches the time-of-day component of provider timestamps
// ("2025-09-03T14:00"). 2PM is the representative daily reading for both
// temperature and PM2.5.
const twoPMSuffix = "T14:00"

// AvgAt2PM selects every value whose timestamp falls at 14:00 local time,
// skips null values, and returns the arithmetic mean. ok=false when zero
// qualifying samples exist. Null entries count in neither the numerator nor
// the denominator.
func AvgAt2PM(times []string, values []*float64) (avg float64, ok bool) {
	var sum float64
	var n int
	for i, ts := range times {
		if !isTwoPM(ts) || i >= len(values) {
			continue
		}
		if v := values[i]; v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// ValueAt2PMOn returns the unique non-null sample at exactly 14:00 on the
// given calendar date. ok=false when absent.
func ValueAt2PMOn(times []string, values []*float64, day time.Time) (float64, bool) {
	target := day.Format("2006-01-02") + twoPMSuffix
	for i, ts := range times {
		if ts != target || i >= len(values) {
			continue
		}
		if v := values[i]; v != nil {
			return *v, true
		}
	}
	return 0, false
}

func isTwoPM(ts string) bool {
	return len(ts) >= len(twoPMSuffix) && ts[len(ts)-len(twoPMSuffix):] == twoPMSuffix
}

// DailyAverages reduces a snapshot to its multi-day 2PM averages. ok=false
// when either series yields no data; partial records never surface.
func DailyAverages(snap models.WeatherSnapshot) (models.DailyMetric, bool) {
	if snap.Forecast == nil || snap.AirQuality == nil {
		return models.DailyMetric{}, false
	}

	avgTemp, ok := AvgAt2PM(snap.Forecast.Hourly.Time, snap.Forecast.Hourly.Temperature2M)
	if !ok {
		return models.DailyMetric{}, false
	}
	avgPM25, ok := AvgAt2PM(snap.AirQuality.Hourly.Time, snap.AirQuality.Hourly.PM25)
	if !ok {
		return models.DailyMetric{}, false
	}

	return models.DailyMetric{Temperature: avgTemp, PM25: avgPM25}, true
}

// MetricsOn reduces a snapshot to its exact 2PM readings on one calendar
// date. ok=false when either reading is absent.
func MetricsOn(snap models.WeatherSnapshot, day time.Time) (models.DailyMetric, bool) {
	if snap.Forecast == nil || snap.AirQuality == nil {
		return models.DailyMetric{}, false
	}

	temp, ok := ValueAt2PMOn(snap.Forecast.Hourly.Time, snap.Forecast.Hourly.Temperature2M, day)
	if !ok {
		return models.DailyMetric{}, false
	}
	pm25, ok := ValueAt2PMOn(snap.AirQuality.Hourly.Time, snap.AirQuality.Hourly.PM25, day)
	if !ok {
		return models.DailyMetric{}, false
	}

	return models.DailyMetric{Temperature: temp, PM25: pm25}, true
}
