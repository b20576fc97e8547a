// Package schedule keeps the district and weather caches warm with a
// periodic background refresh.
package schedule

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/tareqmahmud/travel-advisor/internal/district"
	"github.com/tareqmahmud/travel-advisor/internal/weather"
)

// Refresher periodically re-resolves the district index and batch-fetches
// weather for every district, so user-facing requests mostly hit warm cache.
type Refresher struct {
	scheduler  gocron.Scheduler
	directory  *district.Directory
	aggregator *weather.Aggregator
	interval   time.Duration
	timeout    time.Duration
	logger     *zap.Logger
}

// NewRefresher creates a Refresher that runs every interval. Each run is
// bounded by timeout.
func NewRefresher(directory *district.Directory, aggregator *weather.Aggregator, interval, timeout time.Duration, logger *zap.Logger) (*Refresher, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Refresher{
		scheduler:  scheduler,
		directory:  directory,
		aggregator: aggregator,
		interval:   interval,
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// Start registers the refresh job and starts the scheduler.
func (r *Refresher) Start() error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.refresh),
	)
	if err != nil {
		return err
	}
	r.scheduler.Start()
	r.logger.Info("cache refresher started", zap.Duration("interval", r.interval))
	return nil
}

// Stop shuts the scheduler down. In-flight refreshes finish on their own timeout.
func (r *Refresher) Stop() error {
	return r.scheduler.Shutdown()
}

// Warm runs one refresh immediately. Used at boot before serving traffic.
func (r *Refresher) Warm(ctx context.Context) {
	r.runOnce(ctx)
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	r.runOnce(ctx)
}

func (r *Refresher) runOnce(ctx context.Context) {
	start := time.Now()
	districts := r.directory.All(ctx)
	if len(districts) == 0 {
		r.logger.Warn("cache refresh: no districts resolved")
		return
	}

	snapshots := r.aggregator.Batch(ctx, districts)
	r.logger.Info("cache refresh completed",
		zap.Int("districts", len(districts)),
		zap.Int("weather_updated", len(snapshots)),
		zap.Duration("duration", time.Since(start)))
}
