package usgs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/quake-data-viewer/internal/domain"
	"github.com/couchcryptid/quake-data-viewer/internal/observability"
)

// Client implements domain.EventSource using the USGS FDSN event API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a USGS event API client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Query fetches the GeoJSON event collection for the date range.
func (c *Client) Query(ctx context.Context, r domain.DateRange) (domain.FeatureCollection, error) {
	params := url.Values{
		"format":    {"geojson"},
		"starttime": {r.StartTime()},
		"endtime":   {r.EndTime()},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.FeatureCollection{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return domain.FeatureCollection{}, &domain.UpstreamError{Err: fmt.Errorf("event query: %w", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		// FDSN services answer 204 when the range holds no events.
		c.metrics.UpstreamRequests.WithLabelValues("success").Inc()
		return domain.FeatureCollection{}, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.UpstreamRequests.WithLabelValues("status").Inc()
		c.logger.Warn("usgs query rejected",
			"status", resp.StatusCode,
			"range", r.String(),
			"body", string(body),
		)
		return domain.FeatureCollection{}, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("usgs API error: status %d: %s", resp.StatusCode, body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return domain.FeatureCollection{}, &domain.UpstreamError{Err: fmt.Errorf("read response: %w", err)}
	}
	fc, err := domain.DecodeFeatureCollection(body)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return domain.FeatureCollection{}, &domain.UpstreamError{Err: fmt.Errorf("decode response: %w", err)}
	}

	c.metrics.UpstreamRequests.WithLabelValues("success").Inc()
	c.logger.Debug("usgs query complete", "range", r.String(), "features", len(fc.Features))
	return fc, nil
}
