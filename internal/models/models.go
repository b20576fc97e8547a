package models

// District is a named administrative region with fixed coordinates.
// Immutable once fetched; identified by its trimmed, case-folded name.
type District struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"long"`
}

// HourlyForecast is the hourly temperature series returned by the forecast
// provider. Times[i] corresponds to Temperature2M[i]; a nil value means the
// provider had no reading for that hour and must be skipped, never read as zero.
type HourlyForecast struct {
	Time          []string   `json:"time"`
	Temperature2M []*float64 `json:"temperature_2m"`
}

// HourlyAirQuality is the hourly particulate series returned by the
// air-quality provider. Same cadence rules as HourlyForecast.
type HourlyAirQuality struct {
	Time []string   `json:"time"`
	PM25 []*float64 `json:"pm2_5"`
	PM10 []*float64 `json:"pm10,omitempty"`
}

// ForecastData wraps the forecast provider response body.
type ForecastData struct {
	Hourly HourlyForecast `json:"hourly"`
}

// AirQualityData wraps the air-quality provider response body.
type AirQualityData struct {
	Hourly HourlyAirQuality `json:"hourly"`
}

// WeatherSnapshot is the combined forecast and air-quality payload for one
// location, produced by a single fetch cycle and cached as a unit. Either
// sub-series may be absent when its fetch failed; a snapshot with both absent
// is never built.
type WeatherSnapshot struct {
	LocationName string          `json:"location_name"`
	Forecast     *ForecastData   `json:"forecast,omitempty"`
	AirQuality   *AirQualityData `json:"air_quality,omitempty"`
}

// DailyMetric is the representative 2PM reading pair for one location.
// Derived on demand from a WeatherSnapshot, never stored.
type DailyMetric struct {
	Temperature float64 `json:"temperature"`
	PM25        float64 `json:"pm25"`
}

// RankedEntry is one row of the best-districts ranking. Metric values are
// rounded to two decimals for output; ordering happens at full precision.
type RankedEntry struct {
	District string  `json:"district"`
	AvgTemp  float64 `json:"avg_temp"`
	AvgPM25  float64 `json:"avg_pm25"`
}

// LocationMetrics is the rounded metric breakdown included in a recommendation.
type LocationMetrics struct {
	Temperature float64 `json:"temperature"`
	PM25        float64 `json:"pm25"`
}

// DestinationMetrics is LocationMetrics plus the resolved destination name.
type DestinationMetrics struct {
	Name        string  `json:"name"`
	Temperature float64 `json:"temperature"`
	PM25        float64 `json:"pm25"`
}

// Recommendation is the verdict returned for one travel comparison. The
// metric breakdowns are present only when computation reached that point.
type Recommendation struct {
	Recommendation  string              `json:"recommendation"`
	Reason          string              `json:"reason"`
	TravelDate      string              `json:"travel_date,omitempty"`
	CurrentLocation *LocationMetrics    `json:"current_location,omitempty"`
	Destination     *DestinationMetrics `json:"destination,omitempty"`
}
