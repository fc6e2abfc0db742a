package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/safepath/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
// Field names follow the JSON tags of the domain types, which graphql-go's
// default resolver reads.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	zoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RiskZone",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"crime_rate": &graphql.Field{Type: graphql.Float},
			"lighting":   &graphql.Field{Type: graphql.String},
			"bounds":     &graphql.Field{Type: boundsType},
		},
	})

	poiType := graphql.NewObject(graphql.ObjectConfig{
		Name: "POI",
		Fields: graphql.Fields{
			"name":     &graphql.Field{Type: graphql.String},
			"type":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"is_safe":  &graphql.Field{Type: graphql.Boolean},
			"class":    &graphql.Field{Type: graphql.String},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ScoredRoute",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.Int},
			"geometry":     &graphql.Field{Type: graphql.String},
			"distance":     &graphql.Field{Type: graphql.Float},
			"duration":     &graphql.Field{Type: graphql.Float},
			"safety_score": &graphql.Field{Type: graphql.Int},
			"has_signal":   &graphql.Field{Type: graphql.Boolean},
			"fallback":     &graphql.Field{Type: graphql.String},
			"sample_count": &graphql.Field{Type: graphql.Int},
			"pois":         &graphql.Field{Type: graphql.NewList(poiType)},
		},
	})

	analysisType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Analysis",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"start":           &graphql.Field{Type: geoPointType},
			"end":             &graphql.Field{Type: geoPointType},
			"hour":            &graphql.Field{Type: graphql.Int},
			"is_night":        &graphql.Field{Type: graphql.Boolean},
			"routes":          &graphql.Field{Type: graphql.NewList(routeType)},
			"safest_route_id": &graphql.Field{Type: graphql.Int},
			"landmarks":       &graphql.Field{Type: graphql.NewList(poiType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"safestPath": &graphql.Field{
				Type:        analysisType,
				Description: "Score walking routes between two points, safest first",
				Args: graphql.FieldConfigArgument{
					"startLat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"startLon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"endLat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"endLon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"hour":     &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req := domain.AnalysisRequest{
						Start: domain.GeoPoint{Lat: p.Args["startLat"].(float64), Lon: p.Args["startLon"].(float64)},
						End:   domain.GeoPoint{Lat: p.Args["endLat"].(float64), Lon: p.Args["endLon"].(float64)},
					}
					if h, ok := p.Args["hour"].(int); ok {
						req.Hour = &h
					}
					return deps.Safety.Analyze(p.Context, req)
				},
			},
			"zones": &graphql.Field{
				Type:        graphql.NewList(zoneType),
				Description: "List loaded risk zones",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					zones, _ := deps.Zones.List(p.Args["offset"].(int), p.Args["limit"].(int))
					return zones, nil
				},
			},
			"zonesAt": &graphql.Field{
				Type:        graphql.NewList(zoneType),
				Description: "Risk zones containing a point",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lookup, err := deps.Zones.Lookup(domain.GeoPoint{
						Lat: p.Args["lat"].(float64),
						Lon: p.Args["lon"].(float64),
					}, domain.DefaultHour)
					if err != nil {
						return nil, err
					}
					return lookup.Zones, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic(fmt.Sprintf("graphql schema build: %v", err))
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
