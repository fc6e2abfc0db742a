// Package osrm fetches walking route candidates from an OSRM-compatible router.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samirrijal/safepath/internal/core/domain"
)

// Client implements ports.RouteProvider against the OSRM route service.
type Client struct {
	baseURL    string
	profile    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a new OSRM client. profile is usually "walking".
func NewClient(baseURL, profile, userAgent string, timeout time.Duration) *Client {
	if profile == "" {
		profile = "walking"
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		profile:   profile,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry string  `json:"geometry"`
		Distance float64 `json:"distance"`
	} `json:"routes"`
}

// Routes returns every alternative the router proposes. A router-side
// NoRoute answer is reported as empty, transport problems as failed.
func (c *Client) Routes(ctx context.Context, start, end domain.GeoPoint) domain.Fetch[domain.RouteCandidate] {
	routes, err := c.fetch(ctx, start, end)
	if err != nil {
		return domain.FetchFailure[domain.RouteCandidate](err)
	}
	return domain.Fetched(routes)
}

// RouteURL builds the OSRM request URL. OSRM takes lon,lat pairs.
func (c *Client) RouteURL(start, end domain.GeoPoint) string {
	return fmt.Sprintf("%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f?overview=full&alternatives=true&geometries=polyline",
		c.baseURL, c.profile, start.Lon, start.Lat, end.Lon, end.Lat)
}

func (c *Client) fetch(ctx context.Context, start, end domain.GeoPoint) ([]domain.RouteCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RouteURL(start, end), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osrm request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read osrm response: %w", err)
	}

	var out routeResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && (out.Code == "NoRoute" || out.Code == "NoSegment") {
			return nil, nil
		}
		return nil, fmt.Errorf("osrm status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode osrm response: %w", decodeErr)
	}

	candidates := make([]domain.RouteCandidate, 0, len(out.Routes))
	for i, r := range out.Routes {
		candidates = append(candidates, domain.RouteCandidate{
			ID:             i,
			Geometry:       r.Geometry,
			DistanceMeters: r.Distance,
		})
	}
	return candidates, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
