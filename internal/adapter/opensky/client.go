// Package opensky fetches live state vectors from the OpenSky Network API.
package opensky

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aerowatch/air-traffic-monitor/internal/domain"
)

// Client fetches the /states/all snapshot. Timeouts live here, not in the
// core; a fetch that exceeds the configured timeout fails before any data
// reaches the parser.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an OpenSky client. Username and password are optional;
// anonymous access works with tighter upstream rate limits.
func NewClient(baseURL, username, password string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchStates retrieves the current global state-vector snapshot.
func (c *Client) FetchStates(ctx context.Context) (domain.StateFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/states/all", nil)
	if err != nil {
		return domain.StateFeed{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.StateFeed{}, fmt.Errorf("fetch states: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.StateFeed{}, fmt.Errorf("opensky API error: status %d: %s", resp.StatusCode, body)
	}

	var feed domain.StateFeed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return domain.StateFeed{}, fmt.Errorf("decode states response: %w", err)
	}

	return feed, nil
}
