// Package overpass derives nearby landmarks from OpenStreetMap via the
// Overpass API.
package overpass

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/serjvanilla/go-overpass"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/pkg/geospatial"
)

// DefaultEndpoint is the public Overpass interpreter.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

const amenityFilter = "police|hospital|clinic|pharmacy|bank|atm|school|university|townhall|bar|pub|nightclub|casino|waste_disposal"

// Client implements ports.LandmarkProvider on top of go-overpass.
type Client struct {
	client  *overpass.Client
	radius  int
	timeout time.Duration
}

// NewClient creates a new Overpass client searching radiusMeters around each point.
func NewClient(endpoint string, radiusMeters int, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if radiusMeters <= 0 {
		radiusMeters = 150
	}
	httpClient := &http.Client{
		Timeout: timeout,
	}
	client := overpass.NewWithSettings(endpoint, 2, httpClient)
	return &Client{
		client:  &client,
		radius:  radiusMeters,
		timeout: timeout,
	}
}

// Query builds the Overpass QL request for landmarks in the box enclosing
// the search circle around p.
func (c *Client) Query(p domain.GeoPoint) string {
	b := geospatial.BoundingBox(p.Lat, p.Lon, float64(c.radius))
	around := fmt.Sprintf("(%.6f,%.6f,%.6f,%.6f)", b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon())
	return fmt.Sprintf(`
		[out:json][timeout:%d];
		(
			node["amenity"~"%s"]%s;
			way["amenity"~"%s"]%s;
			node["shop"="alcohol"]%s;
			node["office"="government"]%s;
			node["railway"="station"]["station"="subway"]%s;
			way["landuse"="industrial"]%s;
		);
		out body;
		>;
		out skel qt;
	`,
		max(1, int(c.timeout.Seconds())),
		amenityFilter, around,
		amenityFilter, around,
		around, around, around, around)
}

// Nearby returns tagged OSM features around p as landmarks.
func (c *Client) Nearby(ctx context.Context, p domain.GeoPoint) domain.Fetch[domain.RawLandmark] {
	result, err := c.execute(ctx, c.Query(p))
	if err != nil {
		return domain.FetchFailure[domain.RawLandmark](err)
	}
	return domain.Fetched(landmarks(result, p, float64(c.radius)))
}

// execute runs the query, giving up when ctx ends. go-overpass has no
// context support; the HTTP client timeout bounds the abandoned request.
func (c *Client) execute(ctx context.Context, query string) (*overpass.Result, error) {
	type outcome struct {
		res overpass.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := c.client.Query(query)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("overpass query: %w", ctx.Err())
	case o := <-done:
		if o.err != nil {
			return nil, fmt.Errorf("overpass query failed: %w", o.err)
		}
		return &o.res, nil
	}
}

// landmarks converts tagged nodes and ways within radius of p, ordered by
// OSM ID. Ways are placed at the centroid of their resolved nodes.
func landmarks(result *overpass.Result, p domain.GeoPoint, radius float64) []domain.RawLandmark {
	type tagged struct {
		id   int64
		tags map[string]string
	}
	within := func(lat, lon float64) bool {
		return geospatial.Haversine(p.Lat, p.Lon, lat, lon) <= radius
	}

	var elems []tagged
	for _, n := range result.Nodes {
		if len(n.Tags) > 0 && within(n.Lat, n.Lon) {
			elems = append(elems, tagged{n.ID, n.Tags})
		}
	}
	for _, w := range result.Ways {
		if len(w.Tags) == 0 {
			continue
		}
		if lat, lon, ok := centroid(w); ok && !within(lat, lon) {
			continue
		}
		elems = append(elems, tagged{w.ID, w.Tags})
	}
	slices.SortFunc(elems, func(a, b tagged) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		}
		return 0
	})

	out := make([]domain.RawLandmark, 0, len(elems))
	for _, e := range elems {
		typ := TypeOf(e.tags)
		if typ == "" {
			continue
		}
		out = append(out, domain.RawLandmark{Name: e.tags["name"], Type: typ})
	}
	return out
}

// centroid averages the way's nodes that came back with coordinates.
func centroid(w *overpass.Way) (lat, lon float64, ok bool) {
	var n int
	for _, node := range w.Nodes {
		if node == nil || (node.Lat == 0 && node.Lon == 0) {
			continue
		}
		lat += node.Lat
		lon += node.Lon
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	return lat / float64(n), lon / float64(n), true
}

// TypeOf maps OSM tags to a landmark type string.
func TypeOf(tags map[string]string) string {
	switch {
	case tags["railway"] == "station" && tags["station"] == "subway":
		return "metro_station"
	case tags["office"] == "government", tags["amenity"] == "townhall":
		return "government"
	case tags["shop"] == "alcohol":
		return "liquor_store"
	case tags["landuse"] == "industrial":
		return "industrial"
	case tags["amenity"] == "pub":
		return "bar"
	case tags["amenity"] != "":
		return tags["amenity"]
	}
	return ""
}
