package accuweather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/forecast-report-service/internal/domain"
	"github.com/couchcryptid/forecast-report-service/internal/observability"
)

const (
	defaultBaseURL = "https://dataservice.accuweather.com"
	maxErrorBody   = 512
)

// Client implements domain.Forecaster using the AccuWeather 5-day daily
// forecast API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an AccuWeather forecast client. An empty baseURL selects
// the public API host.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// DailyForecasts fetches and parses the 5-day forecast for a location key.
func (c *Client) DailyForecasts(ctx context.Context, locationKey string) ([]domain.DailyForecast, error) {
	u := fmt.Sprintf("%s/forecasts/v1/daily/5day/%s", c.baseURL, url.PathEscape(locationKey))
	params := url.Values{
		"apikey":  {c.apiKey},
		"details": {"true"},
	}

	body, err := c.get(ctx, u+"?"+params.Encode())
	if err != nil {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	forecasts, err := domain.ParseForecastDocument(body)
	if err != nil {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("location %s: %w", locationKey, err)
	}
	if len(forecasts) == 0 {
		c.metrics.ForecastRequests.WithLabelValues("empty").Inc()
		return nil, nil
	}

	c.metrics.ForecastRequests.WithLabelValues("success").Inc()
	c.logger.Debug("forecast fetched", "location_key", locationKey, "day_count", len(forecasts))
	return forecasts, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ForecastAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("accuweather API error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
