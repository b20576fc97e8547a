// Package district resolves the static list of districts from the external
// provider and serves lookups from a TTL-cached name index.
package district

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tareqmahmud/travel-advisor/internal/cache"
	"github.com/tareqmahmud/travel-advisor/internal/fetch"
	"github.com/tareqmahmud/travel-advisor/internal/models"
	"github.com/tareqmahmud/travel-advisor/internal/observability"
)

const indexCacheKey = "districts"

// Directory mediates between the cached district index and the external
// district provider. A directory request never fails hard: provider failures
// yield an empty result, which callers must treat as "temporarily
// unavailable" rather than "no districts exist".
type Directory struct {
	fetcher fetch.Client
	cache   cache.Cache
	url     string
	ttl     time.Duration
	logger  *zap.Logger
}

// NewDirectory creates a Directory against the configured districts endpoint.
func NewDirectory(fetcher fetch.Client, cacheSvc cache.Cache, url string, ttl time.Duration, logger *zap.Logger) *Directory {
	return &Directory{
		fetcher: fetcher,
		cache:   cacheSvc,
		url:     url,
		ttl:     ttl,
		logger:  logger,
	}
}

// coord accepts both JSON numbers and numeric strings; the provider encodes
// coordinates as strings.
type coord float64

func (c *coord) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*c = coord(f)
	return nil
}

type rawDistrict struct {
	Name string `json:"name"`
	Lat  coord  `json:"lat"`
	Long coord  `json:"long"`
}

type districtsResponse struct {
	Districts []rawDistrict `json:"districts"`
}

// All returns every known district. The slice is empty when the provider is
// unreachable and nothing is cached.
func (d *Directory) All(ctx context.Context) []models.District {
	index := d.indexedDistricts(ctx)
	out := make([]models.District, 0, len(index))
	for _, district := range index {
		out = append(out, district)
	}
	return out
}

// ByName looks up a district by its normalized name. ok=false means the name
// is not in the directory, which is distinct from an empty directory.
func (d *Directory) ByName(ctx context.Context, name string) (models.District, bool) {
	normalized := NormalizeName(name)
	index := d.indexedDistricts(ctx)

	district, ok := index[normalized]
	if !ok {
		d.log(ctx).Warn("district not found", zap.String("name", normalized))
		return models.District{}, false
	}
	return district, true
}

// indexedDistricts returns the normalized-name index, from cache when fresh,
// otherwise rebuilt from one bulk provider fetch. Returns an empty map on
// provider failure; failures are never raised to the caller.
func (d *Directory) indexedDistricts(ctx context.Context) map[string]models.District {
	logger := d.log(ctx)

	raw, ok, err := d.cache.Get(ctx, indexCacheKey)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get").Inc()
		logger.Warn("district cache get failed", zap.Error(err))
	} else if ok {
		var index map[string]models.District
		if err := json.Unmarshal(raw, &index); err == nil {
			observability.CacheHitsTotal.WithLabelValues("districts").Inc()
			logger.Debug("district cache hit", zap.Int("count", len(index)))
			return index
		}
		logger.Warn("malformed district cache entry, refetching", zap.Error(err))
	}
	observability.CacheMissesTotal.WithLabelValues("districts").Inc()

	logger.Info("fetching districts from provider", zap.String("url", d.url))
	result := d.fetcher.Get(ctx, d.url, nil)
	if !result.OK() {
		logger.Error("failed fetching districts",
			zap.String("url", d.url),
			zap.Int("status_code", result.StatusCode),
			zap.String("error", result.ErrDetail))
		return map[string]models.District{}
	}

	var resp districtsResponse
	if err := result.DecodeJSON(&resp); err != nil {
		logger.Error("malformed districts response", zap.Error(err))
		return map[string]models.District{}
	}

	index := indexDistricts(resp.Districts)

	if encoded, err := json.Marshal(index); err == nil {
		if err := d.cache.Set(ctx, indexCacheKey, encoded, d.ttl); err != nil {
			observability.CacheErrorsTotal.WithLabelValues("set").Inc()
			logger.Warn("district cache set failed", zap.Error(err))
		}
	}

	logger.Info("districts cached", zap.Int("count", len(index)))
	return index
}

// indexDistricts builds the normalized-name index, discarding entries with a
// blank name.
func indexDistricts(raw []rawDistrict) map[string]models.District {
	index := make(map[string]models.District, len(raw))
	for _, r := range raw {
		name := NormalizeName(r.Name)
		if name == "" {
			continue
		}
		index[name] = models.District{
			Name: strings.TrimSpace(r.Name),
			Lat:  float64(r.Lat),
			Lon:  float64(r.Long),
		}
	}
	return index
}

// NormalizeName trims and case-folds a district name for use as a lookup key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (d *Directory) log(ctx context.Context) *zap.Logger {
	if l := observability.LoggerFromContext(ctx); l != nil {
		return l
	}
	if d.logger != nil {
		return d.logger
	}
	return zap.NewNop()
}
