// Package openweather implements domain.WeatherSource against the
// OpenWeather current-conditions API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aerowatch/air-traffic-monitor/internal/domain"
	"github.com/aerowatch/air-traffic-monitor/internal/observability"
)

// Client fetches current conditions for a coordinate in metric units.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeather client. Construct one only when an API
// key is configured; an unconfigured provider is represented by a nil
// domain.WeatherSource upstream.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Current fetches the current observation for the coordinate.
func (c *Client) Current(ctx context.Context, lat, lon float64) (domain.WeatherObservation, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', 4, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', 4, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherObservation{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherObservation{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.WeatherObservation{}, fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	var owResp response
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherObservation{}, fmt.Errorf("decode weather response: %w", err)
	}

	c.metrics.WeatherRequests.WithLabelValues("success").Inc()

	obs := domain.WeatherObservation{
		TempC:       owResp.Main.Temp,
		WindSpeedMs: owResp.Wind.Speed,
	}
	if len(owResp.Weather) > 0 {
		obs.Condition = owResp.Weather[0].Main
		obs.Description = owResp.Weather[0].Description
	}
	return obs, nil
}

// OpenWeather API response types.

type response struct {
	Weather []condition `json:"weather"`
	Wind    wind        `json:"wind"`
	Main    mainBlock   `json:"main"`
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type wind struct {
	Speed float64 `json:"speed"`
}

type mainBlock struct {
	Temp float64 `json:"temp"`
}
