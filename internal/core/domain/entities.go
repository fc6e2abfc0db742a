package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// WalkingSpeedMPS is the pedestrian speed used to derive route durations.
const WalkingSpeedMPS = 1.4

// LightingPoor is the only lighting value that carries a penalty.
const LightingPoor = "poor"

// DefaultCrimeRate applies when a zone record carries no crime_rate.
const DefaultCrimeRate = 0.5

// RiskZone is a polygonal area tagged with crime and lighting attributes.
// Area holds one or more polygons; the first ring of each is the outer
// boundary and any further rings are holes.
type RiskZone struct {
	ID        string           `json:"id"`
	Name      string           `json:"name,omitempty"`
	CrimeRate float64          `json:"crime_rate"`
	Lighting  string           `json:"lighting,omitempty"`
	Area      orb.MultiPolygon `json:"-"`
	Bounds    Bounds           `json:"bounds"`
	CreatedAt time.Time        `json:"created_at,omitempty"`
}

// PoorLighting reports whether the zone's lighting attribute is "poor".
func (z RiskZone) PoorLighting() bool {
	return z.Lighting == LightingPoor
}

// RouteCandidate is one path proposed by the routing provider.
// ID is the candidate's index in the provider response.
type RouteCandidate struct {
	ID             int     `json:"id"`
	Geometry       string  `json:"geometry"`
	DistanceMeters float64 `json:"distance"`
}

// DurationSeconds derives the walking time from the distance.
func (r RouteCandidate) DurationSeconds() float64 {
	return r.DistanceMeters / WalkingSpeedMPS
}

// RawLandmark is a record as returned by a landmark provider.
type RawLandmark struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// POIClass is the safety classification of a landmark.
type POIClass string

const (
	POIProtective POIClass = "protective"
	POIHazardous  POIClass = "hazardous"
	POINeutral    POIClass = "neutral"
)

// POI is a landmark observed while scoring a route. Location is the
// sample point the lookup was made for, not the landmark's own position.
type POI struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Location     GeoPoint `json:"location"`
	IsProtective bool     `json:"is_safe"`
	Class        POIClass `json:"class"`
}

// Fallback reasons reported on a scored route.
const (
	FallbackNone              = ""
	FallbackMalformedGeometry = "malformed_geometry"
	FallbackNoSignal          = "no_signal"
)

// ScoredRoute is a candidate enriched with its safety assessment.
type ScoredRoute struct {
	ID              int     `json:"id"`
	Geometry        string  `json:"geometry"`
	DistanceMeters  float64 `json:"distance"`
	DurationSeconds float64 `json:"duration"`
	SafetyScore     int     `json:"safety_score"`
	HasSignal       bool    `json:"has_signal"`
	Fallback        string  `json:"fallback,omitempty"`
	SampleCount     int     `json:"sample_count"`
	POIs            []POI   `json:"pois"`
}

// ScoringContext is computed once per request and applied to every sample.
type ScoringContext struct {
	Hour    int  `json:"hour"`
	IsNight bool `json:"is_night"`
}

// NewScoringContext derives the night flag from the travel hour.
func NewScoringContext(hour int) ScoringContext {
	return ScoringContext{Hour: hour, IsNight: hour < 6 || hour > 19}
}

// DefaultHour is used when a request does not specify a travel hour.
const DefaultHour = 12

// AnalysisRequest is the input of a safest-path analysis.
type AnalysisRequest struct {
	Start GeoPoint `json:"start"`
	End   GeoPoint `json:"end"`
	Hour  *int     `json:"hour,omitempty"`
}

// HourOrDefault returns the requested hour, or DefaultHour when unset.
func (r AnalysisRequest) HourOrDefault() int {
	if r.Hour == nil {
		return DefaultHour
	}
	return *r.Hour
}

// Analysis is the ranked outcome of scoring every candidate between two points.
// BestRouteID is nil exactly when Routes is empty.
type Analysis struct {
	ID          string        `json:"id"`
	Start       GeoPoint      `json:"start"`
	End         GeoPoint      `json:"end"`
	Hour        int           `json:"hour"`
	IsNight     bool          `json:"is_night"`
	Routes      []ScoredRoute `json:"routes"`
	BestRouteID *int          `json:"safest_route_id"`
	POIs        []POI         `json:"landmarks"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Best returns the top-ranked route, if any.
func (a *Analysis) Best() (ScoredRoute, bool) {
	if len(a.Routes) == 0 {
		return ScoredRoute{}, false
	}
	return a.Routes[0], true
}
