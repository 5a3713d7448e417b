package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/tokyo-flow-dashboard/internal/domain"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/observability"
)

const defaultBaseURL = "https://api.mapbox.com"

// ErrInvalidToken is returned by VerifyToken when Mapbox rejects the token.
var ErrInvalidToken = errors.New("mapbox token rejected")

// Client talks to the Mapbox Tokens and Geocoding APIs. It implements
// domain.Geocoder.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// VerifyToken checks the access token against the Tokens API. A token the
// API reports as anything other than valid yields ErrInvalidToken.
func (c *Client) VerifyToken(ctx context.Context) error {
	params := url.Values{"access_token": {c.token}}
	fullURL := c.baseURL + "/tokens/v2?" + params.Encode()

	var body tokenResponse
	status, err := c.getJSON(ctx, fullURL, "tokens", &body)
	if err != nil {
		return err
	}
	if body.Code != "TokenValid" {
		c.metrics.MapboxRequests.WithLabelValues("tokens", "error").Inc()
		return fmt.Errorf("%w: status %d: %s", ErrInvalidToken, status, body.Code)
	}
	c.metrics.MapboxRequests.WithLabelValues("tokens", "success").Inc()
	c.logger.Info("mapbox token verified", "usage", body.Token.Usage, "user", body.Token.User)
	return nil
}

// ForwardGeocode converts an area name within region (e.g. "東京都") to
// coordinates. No match yields a zero result and no error.
func (c *Client) ForwardGeocode(ctx context.Context, name, region string) (domain.GeocodingResult, error) {
	query := name
	if region != "" {
		query = fmt.Sprintf("%s, %s", name, region)
	}

	u := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json", c.baseURL, url.PathEscape(query))
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"country":      {"jp"},
		"language":     {"ja"},
		"types":        {"district,place,locality"},
	}

	var body geocodeResponse
	status, err := c.getJSON(ctx, u+"?"+params.Encode(), "forward", &body)
	if err != nil {
		return domain.GeocodingResult{}, err
	}
	if status != http.StatusOK {
		c.metrics.MapboxRequests.WithLabelValues("forward", "error").Inc()
		return domain.GeocodingResult{}, fmt.Errorf("mapbox API error: status %d: %s", status, body.Message)
	}
	if len(body.Features) == 0 {
		c.metrics.MapboxRequests.WithLabelValues("forward", "empty").Inc()
		return domain.GeocodingResult{}, nil
	}
	c.metrics.MapboxRequests.WithLabelValues("forward", "success").Inc()

	f := body.Features[0]
	result := domain.GeocodingResult{
		FormattedAddress: f.PlaceName,
		PlaceName:        f.Text,
		Confidence:       f.Relevance,
	}
	if len(f.Center) == 2 {
		result.Lon = f.Center[0]
		result.Lat = f.Center[1]
	}
	return result, nil
}

// getJSON performs a GET and decodes the body into v regardless of status,
// since Mapbox reports token and query errors as JSON.
func (c *Client) getJSON(ctx context.Context, fullURL, method string, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.MapboxDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.MapboxRequests.WithLabelValues(method, "error").Inc()
		return 0, fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.MapboxRequests.WithLabelValues(method, "error").Inc()
		return resp.StatusCode, fmt.Errorf("read %s response: %w", method, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.metrics.MapboxRequests.WithLabelValues(method, "error").Inc()
		return resp.StatusCode, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, data)
	}
	return resp.StatusCode, nil
}

// Mapbox API response types.

type tokenResponse struct {
	Code  string `json:"code"`
	Token struct {
		Usage string `json:"usage"`
		User  string `json:"user"`
	} `json:"token"`
}

type geocodeResponse struct {
	Message  string    `json:"message"`
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}
