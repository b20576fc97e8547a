package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tareqmahmud/travel-advisor/internal/cache"
	"github.com/tareqmahmud/travel-advisor/internal/config"
	"github.com/tareqmahmud/travel-advisor/internal/district"
	"github.com/tareqmahmud/travel-advisor/internal/fetch"
	httphandler "github.com/tareqmahmud/travel-advisor/internal/http"
	"github.com/tareqmahmud/travel-advisor/internal/observability"
	"github.com/tareqmahmud/travel-advisor/internal/ranking"
	"github.com/tareqmahmud/travel-advisor/internal/recommend"
	"github.com/tareqmahmud/travel-advisor/internal/schedule"
	"github.com/tareqmahmud/travel-advisor/internal/upstream"
	"github.com/tareqmahmud/travel-advisor/internal/weather"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	timezone, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal("timezone", zap.String("name", cfg.Timezone), zap.Error(err))
	}

	var cacheSvc cache.Cache
	var cachePing func() error
	var cacheClose func() error
	switch cfg.CacheBackend {
	case "redis":
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cacheSvc = rc
		cachePing = rc.Ping
		cacheClose = rc.Close
		logger.Info("cache backend: redis", zap.String("addr", cfg.RedisAddr))
	case "memcached":
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached cache", zap.Error(err))
		}
		cacheSvc = mc
		cachePing = mc.Ping
		cacheClose = mc.Close
		logger.Info("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	default:
		cacheSvc = cache.NewInMemoryCache()
		logger.Info("cache backend: in_memory")
	}

	tracker := upstream.NewTracker()
	fetcher := fetch.NewHTTPClient(cfg.FetchTimeout, logger, tracker)

	directory := district.NewDirectory(fetcher, cacheSvc, cfg.DistrictsURL, cfg.DistrictCacheTTL, logger)
	aggregator := weather.NewAggregator(
		fetcher,
		cacheSvc,
		cfg.ForecastURL,
		cfg.AirQualityURL,
		cfg.Timezone,
		cfg.ForecastDays,
		cfg.WeatherCacheTTL,
		cfg.BatchConcurrency,
		logger,
	)
	ranker := ranking.NewRanker(directory, aggregator, logger)
	recommender := recommend.NewRecommender(directory, aggregator, logger)

	healthConfig := &httphandler.HealthConfig{
		DegradedWindow:   cfg.DegradedWindow,
		DegradedErrorPct: cfg.DegradedErrorPct,
		Tracker:          tracker,
		CachePing:        cachePing,
	}
	handler := httphandler.NewHandler(directory, ranker, recommender, healthConfig, timezone, logger)

	var refresher *schedule.Refresher
	if cfg.WarmCacheOnBoot || cfg.RefreshInterval > 0 {
		refresher, err = schedule.NewRefresher(directory, aggregator, cfg.RefreshInterval, 2*cfg.RequestTimeout, logger)
		if err != nil {
			logger.Fatal("refresher", zap.Error(err))
		}
	}
	if cfg.WarmCacheOnBoot {
		warmCtx, warmCancel := context.WithTimeout(context.Background(), 2*cfg.RequestTimeout)
		refresher.Warm(warmCtx)
		warmCancel()
	}
	if cfg.RefreshInterval > 0 {
		if err := refresher.Start(); err != nil {
			logger.Fatal("refresher start", zap.Error(err))
		}
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(httphandler.RateLimitMiddleware(limiter))
	api.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	api.HandleFunc("/districts", handler.ListDistricts).Methods("GET")
	api.HandleFunc("/districts/{name}", handler.GetDistrict).Methods("GET")
	api.HandleFunc("/best-districts", handler.GetBestDistricts).Methods("GET")
	api.HandleFunc("/recommend", handler.GetRecommendation).Methods("GET")

	var h http.Handler = router
	h = handlers.RecoveryHandler()(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET"}),
	)(h)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if refresher != nil {
		if err := refresher.Stop(); err != nil {
			logger.Error("refresher shutdown", zap.Error(err))
		}
	}
	if cacheClose != nil {
		if err := cacheClose(); err != nil {
			logger.Error("cache close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
