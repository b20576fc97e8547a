package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/tareqmahmud/travel-advisor/internal/observability"
	"github.com/tareqmahmud/travel-advisor/internal/upstream"
)

// Sentinel status codes stamped onto Results for failures that never produced
// an HTTP response. Callers branch on StatusCode only, never on error type.
const (
	StatusTimeout        = http.StatusGatewayTimeout // 504: per-call timeout elapsed
	StatusTransportError = http.StatusBadGateway     // 502: connection or other transport failure
)

// Result is the uniform outcome of one outbound GET. A Result either carries
// a response body (OK) or a status code and error detail (failed); no fetch
// failure is ever surfaced as a Go error to callers.
type Result struct {
	StatusCode int
	Body       []byte
	ErrDetail  string
}

// OK reports whether the fetch completed with a 2xx status.
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DecodeJSON unmarshals the response body into v.
func (r Result) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Client performs outbound GET calls against data providers.
type Client interface {
	Get(ctx context.Context, rawURL string, params url.Values) Result
}

// HTTPClient is the production Client. It applies a per-call timeout, maps
// transport failures to sentinel status codes, records provider metrics and
// outcomes, and logs one structured record per call with sensitive query
// values redacted. No retries happen at this layer; failures propagate
// immediately and retry policy lives upstream.
type HTTPClient struct {
	client  *http.Client
	logger  *zap.Logger
	tracker *upstream.Tracker
	timeout time.Duration
}

// NewHTTPClient creates an HTTPClient. tracker may be nil when outcome
// tracking is not wanted (tests).
func NewHTTPClient(timeout time.Duration, logger *zap.Logger, tracker *upstream.Tracker) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:  logger,
		tracker: tracker,
		timeout: timeout,
	}
}

// Get issues one GET against rawURL with the given query parameters.
func (c *HTTPClient) Get(ctx context.Context, rawURL string, params url.Values) Result {
	start := time.Now()

	result := c.doGet(ctx, rawURL, params)

	provider := providerLabel(rawURL)
	duration := time.Since(start)
	outcome := "success"
	if !result.OK() {
		outcome = "failure"
	}
	observability.UpstreamFetchesTotal.WithLabelValues(provider, outcome).Inc()
	observability.UpstreamFetchDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if c.tracker != nil {
		if result.OK() {
			c.tracker.RecordSuccess()
		} else {
			c.tracker.RecordError()
		}
	}

	if c.logger != nil {
		fields := []zap.Field{
			zap.String("method", "GET"),
			zap.String("url", rawURL),
			zap.Any("params", RedactParams(params)),
			zap.Int("status_code", result.StatusCode),
			zap.Duration("duration", duration),
		}
		if result.OK() {
			c.logger.Info("external fetch", fields...)
		} else {
			c.logger.Warn("external fetch failed", append(fields, zap.String("error", result.ErrDetail))...)
		}
	}

	return result
}

func (c *HTTPClient) doGet(ctx context.Context, rawURL string, params url.Values) Result {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target, err := url.Parse(rawURL)
	if err != nil {
		return Result{StatusCode: StatusTransportError, ErrDetail: fmt.Sprintf("invalid url: %v", err)}
	}
	if len(params) > 0 {
		target.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Result{StatusCode: StatusTransportError, ErrDetail: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "travel-advisor/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return Result{StatusCode: StatusTimeout, ErrDetail: err.Error()}
		}
		return Result{StatusCode: StatusTransportError, ErrDetail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{StatusCode: StatusTransportError, ErrDetail: fmt.Sprintf("read response body: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{StatusCode: resp.StatusCode, Body: body, ErrDetail: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	return Result{StatusCode: resp.StatusCode, Body: body}
}

// isTimeout reports whether err is a network timeout (client timeout surfaces
// as *url.Error with Timeout() true rather than context.DeadlineExceeded).
func isTimeout(err error) bool {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Timeout()
	}
	return false
}

// providerLabel returns the host portion of rawURL for metric labels.
func providerLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
