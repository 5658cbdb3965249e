// Package directions is a RouteProvider backed by a Google Directions style HTTP API.
package directions

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dispatch/config"
	"dispatch/internal/domain/service"
	"dispatch/internal/errors"

	"github.com/paulmach/orb"
)

const (
	// DefaultBaseURL is the Google Directions JSON endpoint
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/directions/json"

	maxResponseBytes = 4 << 20
)

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Duration *struct {
				Value float64 `json:"value"`
			} `json:"duration"`
			Distance *struct {
				Value float64 `json:"value"`
			} `json:"distance"`
		} `json:"legs"`
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
	} `json:"routes"`
}

// Client calls the directions API once per lookup
type Client struct {
	baseURL    string
	apiKey     string
	mode       string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewRouteProvider returns a directions client, or nil when routing is disabled
// so that every lookup takes the haversine fallback.
func NewRouteProvider(cfg *config.Config, logger *slog.Logger) service.RouteProvider {
	if cfg.Routing == nil || !cfg.Routing.Enabled {
		logger.Info("External routing disabled, ETAs use the haversine estimate")

		return nil
	}

	return NewClient(cfg.Routing, logger)
}

// NewClient creates a directions client from routing config
func NewClient(cfg *config.RoutingConfig, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	mode := cfg.Mode
	if mode == "" {
		mode = "driving"
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		mode:    mode,
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Route looks up the first route's first leg between origin and destination
func (c *Client) Route(ctx context.Context, origin, destination orb.Point) (*service.Route, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(origin, destination), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build directions request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "directions request")
	}
	defer resp.Body.Close()

	c.logger.Debug("Directions lookup finished",
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("directions returned non-success status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read directions response")
	}

	return parseRoute(body)
}

func (c *Client) requestURL(origin, destination orb.Point) string {
	params := url.Values{}
	params.Set("origin", formatLatLng(origin))
	params.Set("destination", formatLatLng(destination))
	params.Set("mode", c.mode)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	separator := "?"
	if strings.Contains(c.baseURL, "?") {
		separator = "&"
	}

	return c.baseURL + separator + params.Encode()
}

func parseRoute(body []byte) (*service.Route, error) {
	var parsed directionsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(service.ErrMalformedRoute, err.Error())
	}

	if parsed.Status == "ZERO_RESULTS" || parsed.Status == "NOT_FOUND" {
		return nil, service.ErrRouteNotFound
	}
	if parsed.Status != "" && parsed.Status != "OK" {
		return nil, errors.Errorf("directions returned status %s", parsed.Status)
	}

	if len(parsed.Routes) == 0 || len(parsed.Routes[0].Legs) == 0 {
		return nil, service.ErrRouteNotFound
	}

	route := parsed.Routes[0]
	leg := route.Legs[0]
	if leg.Duration == nil || leg.Distance == nil {
		return nil, service.ErrMalformedRoute
	}

	return &service.Route{
		DurationSeconds: leg.Duration.Value,
		DistanceMeters:  leg.Distance.Value,
		Polyline:        route.OverviewPolyline.Points,
	}, nil
}

// formatLatLng renders an orb point as "lat,lng"
func formatLatLng(p orb.Point) string {
	return strconv.FormatFloat(p.Lat(), 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon(), 'f', -1, 64)
}
