package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/safepath/internal/core/domain"
)

// routeRequest is the body of POST /v1/routes/safest and POST /v1/analyses.
type routeRequest struct {
	Start *domain.GeoPoint `json:"start"`
	End   *domain.GeoPoint `json:"end"`
	Hour  *int             `json:"hour"`
}

func (r routeRequest) toDomain() (domain.AnalysisRequest, bool) {
	if r.Start == nil || r.End == nil {
		return domain.AnalysisRequest{}, false
	}
	return domain.AnalysisRequest{Start: *r.Start, End: *r.End, Hour: r.Hour}, true
}

// parseRouteRequest decodes the body and checks both endpoints are present.
// A non-empty problem is the message for a 400 response.
func parseRouteRequest(c *fiber.Ctx) (req domain.AnalysisRequest, problem string) {
	var body routeRequest
	if err := c.BodyParser(&body); err != nil {
		return req, "invalid request body"
	}
	req, ok := body.toDomain()
	if !ok {
		return req, "start and end are required"
	}
	return req, ""
}

// SafestRouteHandler scores every walking route between two points and
// returns them ranked safest first.
func SafestRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, problem := parseRouteRequest(c)
		if problem != "" {
			return errBadRequest(c, problem)
		}

		analysis, err := deps.Safety.Analyze(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}

		return c.JSON(analysis)
	}
}

// ---- Legacy endpoint ----

type legacyRequest struct {
	StartLat *float64 `json:"start_lat"`
	StartLon *float64 `json:"start_lon"`
	DestLat  *float64 `json:"dest_lat"`
	DestLon  *float64 `json:"dest_lon"`
	Hour     *int     `json:"hour"`
}

type legacyRoute struct {
	ID          int     `json:"id"`
	Geometry    string  `json:"geometry"`
	Duration    float64 `json:"duration"`
	Distance    float64 `json:"distance"`
	SafetyScore int     `json:"safety_score"`
}

type legacyLandmark struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	IsSafe bool    `json:"is_safe"`
}

type legacyResponse struct {
	Routes        []legacyRoute    `json:"routes"`
	SafestRouteID *int             `json:"safest_route_id"`
	Landmarks     []legacyLandmark `json:"landmarks"`
}

// LegacySafestPathHandler serves the flat request and response shape used
// by the first web client. It reports "no routes" as a 200 with an error key.
func LegacySafestPathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body legacyRequest
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if body.StartLat == nil || body.StartLon == nil || body.DestLat == nil || body.DestLon == nil {
			return errBadRequest(c, "start_lat, start_lon, dest_lat and dest_lon are required")
		}

		analysis, err := deps.Safety.Analyze(c.UserContext(), domain.AnalysisRequest{
			Start: domain.GeoPoint{Lat: *body.StartLat, Lon: *body.StartLon},
			End:   domain.GeoPoint{Lat: *body.DestLat, Lon: *body.DestLon},
			Hour:  body.Hour,
		})
		if err != nil {
			return errFromDomain(c, err)
		}

		if len(analysis.Routes) == 0 {
			return c.JSON(fiber.Map{"error": "No walking routes found."})
		}

		return c.JSON(toLegacy(analysis))
	}
}

func toLegacy(a *domain.Analysis) legacyResponse {
	resp := legacyResponse{
		Routes:        make([]legacyRoute, 0, len(a.Routes)),
		SafestRouteID: a.BestRouteID,
		Landmarks:     make([]legacyLandmark, 0, len(a.POIs)),
	}
	for _, r := range a.Routes {
		resp.Routes = append(resp.Routes, legacyRoute{
			ID:          r.ID,
			Geometry:    r.Geometry,
			Duration:    r.DurationSeconds,
			Distance:    r.DistanceMeters,
			SafetyScore: r.SafetyScore,
		})
	}
	for _, p := range a.POIs {
		resp.Landmarks = append(resp.Landmarks, legacyLandmark{
			Name:   p.Name,
			Type:   p.Type,
			Lat:    p.Location.Lat,
			Lon:    p.Location.Lon,
			IsSafe: p.IsProtective,
		})
	}
	return resp
}

// ---- Zones ----

// ListZonesHandler returns the loaded risk zones, paginated.
func ListZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 100, 500)

		zones, total := deps.Zones.List(offset, limit)

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: zones, Pagination: pg})
	}
}

// ZoneLookupHandler reports which zones contain a point and the penalty
// a route sample there would receive.
func ZoneLookupHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
		if errLat != nil || errLon != nil {
			return errBadRequest(c, "lat and lon are required")
		}
		hour := c.QueryInt("hour", domain.DefaultHour)

		lookup, err := deps.Zones.Lookup(domain.GeoPoint{Lat: lat, Lon: lon}, hour)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(lookup)
	}
}

// ---- Analyses ----

// ScheduleAnalysisHandler starts an analysis in the background and returns
// the ID under which the result will be archived.
func ScheduleAnalysisHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Scheduler == nil {
			return errUnavailable(c, "background analyses are not enabled")
		}

		req, problem := parseRouteRequest(c)
		if problem != "" {
			return errBadRequest(c, problem)
		}

		id, err := deps.Scheduler.Schedule(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}

		location := "/v1/analyses/" + id
		c.Set(fiber.HeaderLocation, location)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"id":       id,
			"status":   "scheduled",
			"location": location,
		})
	}
}

// GetAnalysisHandler returns an archived analysis.
func GetAnalysisHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Archive == nil {
			return errUnavailable(c, "analysis archive is not enabled")
		}

		analysis, err := deps.Archive.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(analysis)
	}
}

// ListAnalysesHandler returns the most recently archived analyses.
func ListAnalysesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Archive == nil {
			return errUnavailable(c, "analysis archive is not enabled")
		}

		analyses, err := deps.Archive.Recent(c.UserContext(), c.QueryInt("limit", 20))
		if err != nil {
			return errFromDomain(c, err)
		}
		if analyses == nil {
			analyses = []domain.Analysis{}
		}
		return c.JSON(fiber.Map{"data": analyses})
	}
}
