// Package recommend compares a traveler's current position against one
// destination district on a specific date and emits a verdict.
package recommend

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/tareqmahmud/travel-advisor/internal/district"
	"github.com/tareqmahmud/travel-advisor/internal/models"
	"github.com/tareqmahmud/travel-advisor/internal/observability"
	"github.com/tareqmahmud/travel-advisor/internal/weather"
)

// Verdict strings returned in RecommendationResult.
const (
	VerdictRecommended    = "Recommended"
	VerdictNotRecommended = "Not Recommended"
)

// currentLocationName labels the traveler's live position in logs and
// snapshots. It is never used as a cache key.
const currentLocationName = "Current Location"

// Recommender produces travel recommendations. travelDate must already be
// validated by the boundary layer as within [today, today+7 days].
type Recommender struct {
	directory  *district.Directory
	aggregator *weather.Aggregator
	logger     *zap.Logger
}

// NewRecommender creates a Recommender.
func NewRecommender(directory *district.Directory, aggregator *weather.Aggregator, logger *zap.Logger) *Recommender {
	return &Recommender{
		directory:  directory,
		aggregator: aggregator,
		logger:     logger,
	}
}

// Recommend compares the current coordinates against the named destination
// for travelDate. Expected failure modes (unknown destination, missing data)
// come back as Not Recommended results, never as errors.
func (r *Recommender) Recommend(ctx context.Context, currentLat, currentLon float64, destinationName string, travelDate time.Time) models.Recommendation {
	logger := r.log(ctx)
	logger.Info("recommendation request started",
		zap.String("destination", destinationName),
		zap.String("travel_date", travelDate.Format("2006-01-02")))

	dest, ok := r.directory.ByName(ctx, destinationName)
	if !ok {
		return models.Recommendation{
			Recommendation: VerdictNotRecommended,
			Reason:         fmt.Sprintf("Destination '%s' not found in our database.", destinationName),
		}
	}

	// The traveler's position is an ad-hoc location: always a live fetch,
	// never served from the named-district cache.
	current, ok := r.metricsForDate(ctx, currentLocationName, currentLat, currentLon, travelDate, true)
	if !ok {
		return models.Recommendation{
			Recommendation: VerdictNotRecommended,
			Reason:         fmt.Sprintf("Weather data unavailable for your current location on %s.", travelDate.Format("January 2, 2006")),
		}
	}

	destMetrics, ok := r.metricsForDate(ctx, dest.Name, dest.Lat, dest.Lon, travelDate, false)
	if !ok {
		return models.Recommendation{
			Recommendation: VerdictNotRecommended,
			Reason:         fmt.Sprintf("Weather data unavailable for %s on %s.", destinationName, travelDate.Format("January 2, 2006")),
		}
	}

	tempDiff := destMetrics.Temperature - current.Temperature
	pm25Diff := destMetrics.PM25 - current.PM25

	logger.Info("recommendation metrics computed",
		zap.String("destination", dest.Name),
		zap.Float64("temp_diff", tempDiff),
		zap.Float64("pm25_diff", pm25Diff))

	verdict, reason := decide(tempDiff, pm25Diff, destMetrics.PM25, current.PM25)

	logger.Info("recommendation completed",
		zap.String("destination", dest.Name),
		zap.String("recommendation", verdict))

	return models.Recommendation{
		Recommendation: verdict,
		Reason:         reason,
		TravelDate:     travelDate.Format("2006-01-02"),
		CurrentLocation: &models.LocationMetrics{
			Temperature: current.Temperature,
			PM25:        current.PM25,
		},
		Destination: &models.DestinationMetrics{
			Name:        dest.Name,
			Temperature: destMetrics.Temperature,
			PM25:        destMetrics.PM25,
		},
	}
}

// metricsForDate fetches the snapshot for one location and reduces it to the
// exact 2PM readings on travelDate, rounded to one decimal. live bypasses the
// shared weather cache.
func (r *Recommender) metricsForDate(ctx context.Context, name string, lat, lon float64, travelDate time.Time, live bool) (models.DailyMetric, bool) {
	logger := r.log(ctx)

	var snap models.WeatherSnapshot
	var err error
	if live {
		snap, err = r.aggregator.Live(ctx, name, lat, lon)
	} else {
		snap, err = r.aggregator.ForLocation(ctx, name, lat, lon)
	}
	if err != nil {
		logger.Warn("weather data unavailable", zap.String("location", name))
		return models.DailyMetric{}, false
	}

	metric, ok := weather.MetricsOn(snap, travelDate)
	if !ok {
		logger.Warn("incomplete weather data for date",
			zap.String("location", name),
			zap.String("date", travelDate.Format("2006-01-02")))
		return models.DailyMetric{}, false
	}

	return models.DailyMetric{
		Temperature: round1(metric.Temperature),
		PM25:        round1(metric.PM25),
	}, true
}

// decide applies the product decision table. When temperature and pollution
// disagree, air quality is the deciding factor.
func decide(tempDiff, pm25Diff, destPM25, currentPM25 float64) (verdict, reason string) {
	isCooler := tempDiff < 0
	isCleaner := pm25Diff < 0

	switch {
	case isCooler && isCleaner:
		reason = fmt.Sprintf(
			"Your destination is %.1f°C cooler and has significantly better air quality (PM2.5: %.1f vs %.1f). Enjoy your trip!",
			math.Abs(tempDiff), destPM25, currentPM25,
		)
		return VerdictRecommended, reason

	case !isCooler && !isCleaner:
		tempStr := "same temperature"
		if tempDiff > 0 {
			tempStr = fmt.Sprintf("%.1f°C hotter", tempDiff)
		}
		reason = fmt.Sprintf(
			"Your destination is %s and has worse air quality than your current location. It's better to stay where you are.",
			tempStr,
		)
		return VerdictNotRecommended, reason

	default:
		var tempStr, airStr string
		if isCooler {
			tempStr = fmt.Sprintf("%.1f°C cooler", math.Abs(tempDiff))
			airStr = fmt.Sprintf("worse air quality (PM2.5: %.1f vs %.1f)", destPM25, currentPM25)
		} else {
			tempStr = "similar temperature"
			if tempDiff > 0 {
				tempStr = fmt.Sprintf("%.1f°C hotter", tempDiff)
			}
			airStr = fmt.Sprintf("better air quality (PM2.5: %.1f vs %.1f)", destPM25, currentPM25)
		}
		reason = fmt.Sprintf("Your destination is %s but has %s. Consider your priorities when deciding.", tempStr, airStr)
		if isCleaner {
			return VerdictRecommended, reason
		}
		return VerdictNotRecommended, reason
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (r *Recommender) log(ctx context.Context) *zap.Logger {
	if l := observability.LoggerFromContext(ctx); l != nil {
		return l
	}
	if r.logger != nil {
		return r.logger
	}
	return zap.NewNop()
}
