// Package latlong looks up nearby landmarks through the LatLong API.
package latlong

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samirrijal/safepath/internal/core/domain"
)

// DefaultURL is the LatLong landmark endpoint.
const DefaultURL = "https://apihub.latlong.ai/v4/landmark.json"

// Client implements ports.LandmarkProvider.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new LatLong client.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether a usable API key is set. Template placeholders
// such as "your_actual_key_here" count as unset.
func (c *Client) Configured() bool {
	return c.apiKey != "" && !strings.Contains(strings.ToLower(c.apiKey), "your_actual")
}

type landmarkResponse struct {
	Landmarks []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"landmarks"`
}

// Nearby returns the landmarks LatLong reports around p.
func (c *Client) Nearby(ctx context.Context, p domain.GeoPoint) domain.Fetch[domain.RawLandmark] {
	if !c.Configured() {
		return domain.NotConfigured[domain.RawLandmark]()
	}
	items, err := c.fetch(ctx, p)
	if err != nil {
		return domain.FetchFailure[domain.RawLandmark](err)
	}
	return domain.Fetched(items)
}

func (c *Client) fetch(ctx context.Context, p domain.GeoPoint) ([]domain.RawLandmark, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.6f", p.Lat))
	params.Set("lon", fmt.Sprintf("%.6f", p.Lon))
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("latlong request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("latlong rejected api key (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("latlong status %d: %s", resp.StatusCode, string(body))
	}

	var out landmarkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode latlong response: %w", err)
	}

	items := make([]domain.RawLandmark, 0, len(out.Landmarks))
	for _, l := range out.Landmarks {
		items = append(items, domain.RawLandmark{Name: l.Name, Type: l.Type})
	}
	return items, nil
}
