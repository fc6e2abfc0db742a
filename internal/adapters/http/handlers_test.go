package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"

	handler "github.com/samirrijal/safepath/internal/adapters/http"
	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/core/safety"
	"github.com/samirrijal/safepath/internal/core/usecases"
	"github.com/samirrijal/safepath/internal/pkg/geospatial"
)

// ---- Mock providers ----

type mockRoutes struct {
	routesFn func(ctx context.Context, start, end domain.GeoPoint) domain.Fetch[domain.RouteCandidate]
}

func (m *mockRoutes) Routes(ctx context.Context, start, end domain.GeoPoint) domain.Fetch[domain.RouteCandidate] {
	if m.routesFn != nil {
		return m.routesFn(ctx, start, end)
	}
	return domain.Fetched[domain.RouteCandidate](nil)
}

type mockLandmarks struct {
	nearbyFn func(ctx context.Context, p domain.GeoPoint) domain.Fetch[domain.RawLandmark]
}

func (m *mockLandmarks) Nearby(ctx context.Context, p domain.GeoPoint) domain.Fetch[domain.RawLandmark] {
	if m.nearbyFn != nil {
		return m.nearbyFn(ctx, p)
	}
	return domain.Fetched[domain.RawLandmark](nil)
}

type mockAnalysisRepo struct {
	getByIDFn    func(ctx context.Context, id string) (*domain.Analysis, error)
	listRecentFn func(ctx context.Context, limit int) ([]domain.Analysis, error)
}

func (m *mockAnalysisRepo) Insert(ctx context.Context, a *domain.Analysis) error { return nil }
func (m *mockAnalysisRepo) GetByID(ctx context.Context, id string) (*domain.Analysis, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockAnalysisRepo) ListRecent(ctx context.Context, limit int) ([]domain.Analysis, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return nil, nil
}

type mockScheduler struct {
	scheduleFn func(ctx context.Context, req domain.AnalysisRequest) (string, error)
}

func (m *mockScheduler) Schedule(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	if m.scheduleFn != nil {
		return m.scheduleFn(ctx, req)
	}
	return "", errors.New("not implemented")
}

// ---- Fixtures ----

// crimeZone covers 77.20..77.21 E, 28.60..28.61 N with crime 0.8 and poor lighting.
func crimeZone(id string) domain.RiskZone {
	ring := orb.Ring{{77.20, 28.60}, {77.21, 28.60}, {77.21, 28.61}, {77.20, 28.61}, {77.20, 28.60}}
	return domain.RiskZone{
		ID:        id,
		Name:      "Zone " + id,
		CrimeRate: 0.8,
		Lighting:  domain.LightingPoor,
		Area:      orb.MultiPolygon{{ring}},
	}
}

func throughZone() string {
	return geospatial.EncodePolyline([]orb.Point{{77.203, 28.603}, {77.205, 28.605}, {77.207, 28.607}})
}

func pastPolice() string {
	return geospatial.EncodePolyline([]orb.Point{{77.23, 28.63}, {77.232, 28.632}, {77.234, 28.634}})
}

func twoCandidates() *mockRoutes {
	return &mockRoutes{routesFn: func(context.Context, domain.GeoPoint, domain.GeoPoint) domain.Fetch[domain.RouteCandidate] {
		return domain.Fetched([]domain.RouteCandidate{
			{ID: 0, Geometry: throughZone(), DistanceMeters: 1400},
			{ID: 1, Geometry: pastPolice(), DistanceMeters: 2800},
		})
	}}
}

func policeEastOfZone() *mockLandmarks {
	return &mockLandmarks{nearbyFn: func(_ context.Context, p domain.GeoPoint) domain.Fetch[domain.RawLandmark] {
		if p.Lon > 77.22 {
			return domain.Fetched([]domain.RawLandmark{{Name: "Station", Type: "police"}})
		}
		return domain.Fetched[domain.RawLandmark](nil)
	}}
}

func safetyService(routes *mockRoutes, landmarks *mockLandmarks, zones ...domain.RiskZone) *usecases.SafetyService {
	scorer := safety.NewScorer(safety.NewZoneIndex(zones), landmarks)
	return usecases.NewSafetyService(routes, scorer, nil)
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	d := &handler.Dependencies{
		Safety: safetyService(twoCandidates(), policeEastOfZone(), crimeZone("z1")),
		Zones:  usecases.NewZoneService(safety.NewZoneIndex([]domain.RiskZone{crimeZone("z1")})),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func newJSONRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func decodeError(t *testing.T, body io.Reader) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.NewDecoder(body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return apiErr
}

// ---- Safest route ----

func TestSafestRoute_RanksCandidates(t *testing.T) {
	app := setupApp(makeDeps())

	body := `{"start":{"lat":28.603,"lon":77.203},"end":{"lat":28.634,"lon":77.234}}`
	resp, err := app.Test(newJSONRequest("POST", "/v1/routes/safest", body), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var a domain.Analysis
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		t.Fatal(err)
	}
	if len(a.Routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(a.Routes))
	}
	if a.BestRouteID == nil || *a.BestRouteID != 1 {
		t.Errorf("expected safest route 1, got %v", a.BestRouteID)
	}
	if a.Routes[0].SafetyScore != 100 || a.Routes[1].SafetyScore != 37 {
		t.Errorf("unexpected scores %d, %d", a.Routes[0].SafetyScore, a.Routes[1].SafetyScore)
	}
	if a.ID == "" {
		t.Error("expected analysis id")
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store, got %q", cc)
	}
}

func TestSafestRoute_MissingEnd(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(newJSONRequest("POST", "/v1/routes/safest", `{"start":{"lat":28.6,"lon":77.2}}`), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request, got %q", apiErr.Code)
	}
}

func TestSafestRoute_InvalidHour(t *testing.T) {
	app := setupApp(makeDeps())

	body := `{"start":{"lat":28.6,"lon":77.2},"end":{"lat":28.61,"lon":77.21},"hour":25}`
	resp, _ := app.Test(newJSONRequest("POST", "/v1/routes/safest", body), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSafestRoute_OutOfRangeCoordinate(t *testing.T) {
	app := setupApp(makeDeps())

	body := `{"start":{"lat":91,"lon":77.2},"end":{"lat":28.61,"lon":77.21}}`
	resp, _ := app.Test(newJSONRequest("POST", "/v1/routes/safest", body), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSafestRoute_RoutingOutageIsEmpty(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Safety = safetyService(&mockRoutes{routesFn: func(context.Context, domain.GeoPoint, domain.GeoPoint) domain.Fetch[domain.RouteCandidate] {
			return domain.FetchFailure[domain.RouteCandidate](errors.New("connection refused"))
		}}, &mockLandmarks{})
	})
	app := setupApp(deps)

	body := `{"start":{"lat":28.6,"lon":77.2},"end":{"lat":28.61,"lon":77.21}}`
	resp, _ := app.Test(newJSONRequest("POST", "/v1/routes/safest", body), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["safest_route_id"]) != "null" {
		t.Errorf("expected null safest_route_id, got %s", raw["safest_route_id"])
	}
	if string(raw["routes"]) != "[]" {
		t.Errorf("expected empty routes, got %s", raw["routes"])
	}
}

// ---- Legacy endpoint ----

func TestLegacySafestPath_ResponseShape(t *testing.T) {
	app := setupApp(makeDeps())

	body := `{"start_lat":28.603,"start_lon":77.203,"dest_lat":28.634,"dest_lon":77.234,"hour":14}`
	resp, err := app.Test(newJSONRequest("POST", "/get_safest_path", body), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header")
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, "/v1/routes/safest") {
		t.Errorf("expected successor link, got %q", link)
	}

	var result struct {
		Routes []struct {
			ID          int     `json:"id"`
			Geometry    string  `json:"geometry"`
			Duration    float64 `json:"duration"`
			Distance    float64 `json:"distance"`
			SafetyScore int     `json:"safety_score"`
		} `json:"routes"`
		SafestRouteID *int `json:"safest_route_id"`
		Landmarks     []struct {
			Name   string  `json:"name"`
			Type   string  `json:"type"`
			Lat    float64 `json:"lat"`
			Lon    float64 `json:"lon"`
			IsSafe bool    `json:"is_safe"`
		} `json:"landmarks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Routes) != 2 || result.Routes[0].ID != 1 {
		t.Fatalf("unexpected routes: %+v", result.Routes)
	}
	if result.SafestRouteID == nil || *result.SafestRouteID != 1 {
		t.Errorf("expected safest_route_id 1")
	}
	if math.Abs(result.Routes[0].Duration-2000) > 1e-9 {
		t.Errorf("expected duration 2000, got %v", result.Routes[0].Duration)
	}
	if len(result.Landmarks) != 3 {
		t.Fatalf("expected 3 landmarks, got %d", len(result.Landmarks))
	}
	if !result.Landmarks[0].IsSafe || result.Landmarks[0].Type != "police" {
		t.Errorf("unexpected landmark %+v", result.Landmarks[0])
	}
}

func TestLegacySafestPath_NoRoutes(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Safety = safetyService(&mockRoutes{}, &mockLandmarks{})
	})
	app := setupApp(deps)

	body := `{"start_lat":28.6,"start_lon":77.2,"dest_lat":28.61,"dest_lon":77.21}`
	resp, _ := app.Test(newJSONRequest("POST", "/get_safest_path", body), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	got := strings.TrimSpace(string(readBody(t, resp.Body)))
	if got != `{"error":"No walking routes found."}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestLegacySafestPath_MissingFields(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(newJSONRequest("POST", "/get_safest_path", `{"start_lat":28.6}`), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Zones ----

func TestListZones_Pagination(t *testing.T) {
	zones := make([]domain.RiskZone, 3)
	for i := range zones {
		zones[i] = crimeZone(fmt.Sprintf("z%d", i))
	}
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Zones = usecases.NewZoneService(safety.NewZoneIndex(zones))
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/zones?offset=1&limit=2", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.RiskZone `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 3 || len(result.Data) != 2 {
		t.Errorf("unexpected page: total=%d len=%d", result.Pagination.Total, len(result.Data))
	}
	if result.Data[0].ID != "z1" {
		t.Errorf("expected z1 first, got %s", result.Data[0].ID)
	}
	if result.Data[0].Bounds.MaxLon != 77.21 {
		t.Errorf("expected bounds to be filled, got %+v", result.Data[0].Bounds)
	}

	link := resp.Header.Get("Link")
	if !strings.Contains(link, `rel="prev"`) || strings.Contains(link, `rel="next"`) {
		t.Errorf("unexpected Link header %q", link)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
}

func TestZoneLookup_Inside(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/zones/lookup?lat=28.605&lon=77.205&hour=12", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var lookup usecases.ZoneLookup
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		t.Fatal(err)
	}
	if lookup.Penalty != -21 {
		t.Errorf("expected penalty -21, got %v", lookup.Penalty)
	}
	if len(lookup.Zones) != 1 || lookup.Zones[0].ID != "z1" {
		t.Errorf("expected zone z1, got %+v", lookup.Zones)
	}
}

func TestZoneLookup_BadParams(t *testing.T) {
	app := setupApp(makeDeps())

	for _, path := range []string{
		"/v1/zones/lookup?lon=77.2",
		"/v1/zones/lookup?lat=abc&lon=77.2",
		"/v1/zones/lookup?lat=95&lon=77.2",
		"/v1/zones/lookup?lat=28.6&lon=77.2&hour=24",
	} {
		resp, _ := app.Test(httptest.NewRequest("GET", path, nil), -1)
		if resp.StatusCode != 400 {
			t.Errorf("%s: expected 400, got %d", path, resp.StatusCode)
		}
	}
}

// ---- Analyses ----

func TestAnalyses_ArchiveDisabled(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/analyses/8f14e45f-ceea-467f-a0e6-4b2c3f1c6b1e", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestGetAnalysis(t *testing.T) {
	id := "8f14e45f-ceea-467f-a0e6-4b2c3f1c6b1e"
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Archive = usecases.NewArchiveService(&mockAnalysisRepo{
			getByIDFn: func(_ context.Context, got string) (*domain.Analysis, error) {
				if got == id {
					return &domain.Analysis{ID: id, Hour: 21, IsNight: true}, nil
				}
				return nil, domain.ErrNotFound
			},
		})
	})
	app := setupApp(deps)

	tests := []struct {
		path   string
		status int
	}{
		{"/v1/analyses/" + id, 200},
		{"/v1/analyses/00000000-0000-0000-0000-000000000000", 404},
		{"/v1/analyses/not-a-uuid", 400},
	}
	for _, tt := range tests {
		resp, _ := app.Test(httptest.NewRequest("GET", tt.path, nil), -1)
		if resp.StatusCode != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.status, resp.StatusCode)
		}
	}
}

func TestListAnalyses(t *testing.T) {
	var gotLimit int
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Archive = usecases.NewArchiveService(&mockAnalysisRepo{
			listRecentFn: func(_ context.Context, limit int) ([]domain.Analysis, error) {
				gotLimit = limit
				return []domain.Analysis{{ID: "a"}, {ID: "b"}}, nil
			},
		})
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/analyses?limit=5", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Data []domain.Analysis `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Data) != 2 || gotLimit != 5 {
		t.Errorf("unexpected result len=%d limit=%d", len(result.Data), gotLimit)
	}
}

func TestListAnalyses_StorageErrorIsGeneric(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Archive = usecases.NewArchiveService(&mockAnalysisRepo{
			listRecentFn: func(context.Context, int) ([]domain.Analysis, error) {
				return nil, errors.New(`ERROR: relation "route_analyses" does not exist (SQLSTATE 42P01)`)
			},
		})
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/analyses", nil), -1)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	apiErr := decodeError(t, resp.Body)
	if apiErr.Code != "internal_error" || apiErr.Message != "internal server error" {
		t.Errorf("expected generic internal error, got %+v", apiErr)
	}
}

func TestScheduleAnalysis(t *testing.T) {
	var got domain.AnalysisRequest
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Scheduler = &mockScheduler{scheduleFn: func(_ context.Context, req domain.AnalysisRequest) (string, error) {
			got = req
			return "8f14e45f-ceea-467f-a0e6-4b2c3f1c6b1e", nil
		}}
	})
	app := setupApp(deps)

	body := `{"start":{"lat":28.6,"lon":77.2},"end":{"lat":28.61,"lon":77.21},"hour":22}`
	resp, _ := app.Test(newJSONRequest("POST", "/v1/analyses", body), -1)
	if resp.StatusCode != 202 {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/analyses/8f14e45f-ceea-467f-a0e6-4b2c3f1c6b1e" {
		t.Errorf("unexpected Location %q", loc)
	}
	if got.Hour == nil || *got.Hour != 22 || got.End.Lon != 77.21 {
		t.Errorf("request not forwarded: %+v", got)
	}
}

func TestScheduleAnalysis_Errors(t *testing.T) {
	body := `{"start":{"lat":28.6,"lon":77.2},"end":{"lat":28.61,"lon":77.21}}`

	app := setupApp(makeDeps())
	resp, _ := app.Test(newJSONRequest("POST", "/v1/analyses", body), -1)
	if resp.StatusCode != 503 {
		t.Errorf("expected 503 without scheduler, got %d", resp.StatusCode)
	}

	app = setupApp(makeDeps(func(d *handler.Dependencies) {
		d.Scheduler = &mockScheduler{scheduleFn: func(context.Context, domain.AnalysisRequest) (string, error) {
			return "", fmt.Errorf("%w: hour must be 0-23", domain.ErrInvalidRequest)
		}}
	}))
	resp, _ = app.Test(newJSONRequest("POST", "/v1/analyses", body), -1)
	if resp.StatusCode != 400 {
		t.Errorf("expected 400 for invalid request, got %d", resp.StatusCode)
	}

	app = setupApp(makeDeps(func(d *handler.Dependencies) {
		d.Scheduler = &mockScheduler{}
	}))
	resp, _ = app.Test(newJSONRequest("POST", "/v1/analyses", body), -1)
	if resp.StatusCode != 500 {
		t.Errorf("expected 500 for scheduler failure, got %d", resp.StatusCode)
	}
}

// ---- GraphQL ----

func TestGraphQL_SafestPath(t *testing.T) {
	app := setupApp(makeDeps())

	query := `{"query":"{ safestPath(startLat: 28.603, startLon: 77.203, endLat: 28.634, endLon: 77.234, hour: 12) { safest_route_id routes { id safety_score } } }"}`
	resp, err := app.Test(newJSONRequest("POST", "/graphql", query), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			SafestPath struct {
				SafestRouteID int `json:"safest_route_id"`
				Routes        []struct {
					ID          int `json:"id"`
					SafetyScore int `json:"safety_score"`
				} `json:"routes"`
			} `json:"safestPath"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Data.SafestPath.SafestRouteID != 1 || len(result.Data.SafestPath.Routes) != 2 {
		t.Errorf("unexpected result %+v", result.Data.SafestPath)
	}
}

func TestGraphQL_Zones(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(newJSONRequest("POST", "/graphql", `{"query":"{ zones { id crime_rate lighting } }"}`), -1)
	var result struct {
		Data struct {
			Zones []struct {
				ID        string  `json:"id"`
				CrimeRate float64 `json:"crime_rate"`
				Lighting  string  `json:"lighting"`
			} `json:"zones"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Data.Zones) != 1 || result.Data.Zones[0].CrimeRate != 0.8 || result.Data.Zones[0].Lighting != "poor" {
		t.Errorf("unexpected zones %+v", result.Data.Zones)
	}
}

// ---- Health ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps())

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-API-Version") != "1.0.0" {
		t.Error("expected X-API-Version header")
	}
}

func TestReady_ZonesOnly(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Status      string            `json:"status"`
		Checks      map[string]string `json:"checks"`
		ZonesLoaded int               `json:"zones_loaded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.ZonesLoaded != 1 || result.Checks["database"] != "not configured" {
		t.Errorf("unexpected readiness %+v", result)
	}
}

func TestReady_NoZones(t *testing.T) {
	app := setupApp(makeDeps(func(d *handler.Dependencies) { d.Zones = nil }))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestETag_NotModified(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/zones", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag")
	}

	req := httptest.NewRequest("GET", "/v1/zones", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}
