// Package ranking orders districts from best to worst by comfort: cooler is
// better, and among equally cool options cleaner air wins.
package ranking

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/tareqmahmud/travel-advisor/internal/district"
	"github.com/tareqmahmud/travel-advisor/internal/models"
	"github.com/tareqmahmud/travel-advisor/internal/observability"
	"github.com/tareqmahmud/travel-advisor/internal/weather"
)

// Limit bounds for BestDistricts.
const (
	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 64
)

// Ranker computes the best-districts ordering from the directory and the
// weather aggregator.
type Ranker struct {
	directory  *district.Directory
	aggregator *weather.Aggregator
	logger     *zap.Logger
}

// NewRanker creates a Ranker.
func NewRanker(directory *district.Directory, aggregator *weather.Aggregator, logger *zap.Logger) *Ranker {
	return &Ranker{
		directory:  directory,
		aggregator: aggregator,
		logger:     logger,
	}
}

// rankedMetric pairs a district name with full-precision averages; rounding
// happens only when building the output entries.
type rankedMetric struct {
	name    string
	avgTemp float64
	avgPM25 float64
}

// BestDistricts fetches weather for every known district and returns up to
// limit entries sorted ascending by (avg_temp, avg_pm25). Districts missing
// either metric are dropped entirely; they never appear with placeholders.
func (r *Ranker) BestDistricts(ctx context.Context, limit int) []models.RankedEntry {
	if limit < MinLimit || limit > MaxLimit {
		limit = DefaultLimit
	}

	districts := r.directory.All(ctx)
	snapshots := r.aggregator.Batch(ctx, districts)

	metrics := make([]rankedMetric, 0, len(snapshots))
	for _, snap := range snapshots {
		daily, ok := weather.DailyAverages(snap)
		if !ok {
			continue
		}
		metrics = append(metrics, rankedMetric{
			name:    snap.LocationName,
			avgTemp: daily.Temperature,
			avgPM25: daily.PM25,
		})
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].avgTemp != metrics[j].avgTemp {
			return metrics[i].avgTemp < metrics[j].avgTemp
		}
		return metrics[i].avgPM25 < metrics[j].avgPM25
	})

	if len(metrics) > limit {
		metrics = metrics[:limit]
	}

	entries := make([]models.RankedEntry, 0, len(metrics))
	for _, m := range metrics {
		entries = append(entries, models.RankedEntry{
			District: m.name,
			AvgTemp:  round2(m.avgTemp),
			AvgPM25:  round2(m.avgPM25),
		})
	}

	r.log(ctx).Info("best districts computed", zap.Int("total", len(entries)))
	return entries
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (r *Ranker) log(ctx context.Context) *zap.Logger {
	if l := observability.LoggerFromContext(ctx); l != nil {
		return l
	}
	if r.logger != nil {
		return r.logger
	}
	return zap.NewNop()
}
