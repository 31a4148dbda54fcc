package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/tripplanner/internal/core/domain"
	"github.com/samirrijal/tripplanner/internal/core/planner"
)

// stringList converts a GraphQL list argument into []string.
func stringList(v interface{}) []string {
	raw, _ := v.([]interface{})
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.String},
			"name":               &graphql.Field{Type: graphql.String},
			"type":               &graphql.Field{Type: graphql.String},
			"visit_type":         &graphql.Field{Type: graphql.String},
			"location":           &graphql.Field{Type: geoPointType},
			"ticket":             &graphql.Field{Type: graphql.Float},
			"avg_price":          &graphql.Field{Type: graphql.Float},
			"suggested_duration": &graphql.Field{Type: graphql.Int},
			"open_time":          &graphql.Field{Type: graphql.String},
			"close_time":         &graphql.Field{Type: graphql.String},
			"tags":               &graphql.Field{Type: graphql.NewList(graphql.String)},
			"area":               &graphql.Field{Type: graphql.String},
			"indoor":             &graphql.Field{Type: graphql.Boolean},
		},
	})

	costType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Cost",
		Fields: graphql.Fields{
			"ticket":    &graphql.Field{Type: graphql.Float},
			"food":      &graphql.Field{Type: graphql.Float},
			"other":     &graphql.Field{Type: graphql.Float},
			"transport": &graphql.Field{Type: graphql.Float},
			"total": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c, _ := p.Source.(domain.Cost)
					return c.Total(), nil
				},
			},
		},
	})

	legType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TransportLeg",
		Fields: graphql.Fields{
			"mode":             &graphql.Field{Type: graphql.String},
			"provider":         &graphql.Field{Type: graphql.String},
			"distance_km":      &graphql.Field{Type: graphql.Float},
			"duration_minutes": &graphql.Field{Type: graphql.Int},
			"cost":             &graphql.Field{Type: graphql.Float},
			"from":             &graphql.Field{Type: graphql.String},
			"to":               &graphql.Field{Type: graphql.String},
			"suggestion":       &graphql.Field{Type: graphql.String},
		},
	})

	itemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ItineraryItem",
		Fields: graphql.Fields{
			"type":             &graphql.Field{Type: graphql.String},
			"start_time":       &graphql.Field{Type: graphql.String},
			"end_time":         &graphql.Field{Type: graphql.String},
			"title":            &graphql.Field{Type: graphql.String},
			"description":      &graphql.Field{Type: graphql.String},
			"location":         &graphql.Field{Type: locationType},
			"cost":             &graphql.Field{Type: costType},
			"duration_minutes": &graphql.Field{Type: graphql.Int},
			"transport":        &graphql.Field{Type: legType},
		},
	})

	dayType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Day",
		Fields: graphql.Fields{
			"day_number": &graphql.Field{Type: graphql.Int},
			"date":       &graphql.Field{Type: graphql.String},
			"items":      &graphql.Field{Type: graphql.NewList(itemType)},
			"cost": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					d, _ := p.Source.(domain.Day)
					return d.Cost(), nil
				},
			},
		},
	})

	breakdownType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BudgetBreakdown",
		Fields: graphql.Fields{
			"stay":       &graphql.Field{Type: graphql.Float},
			"food":       &graphql.Field{Type: graphql.Float},
			"transport":  &graphql.Field{Type: graphql.Float},
			"activities": &graphql.Field{Type: graphql.Float},
			"buffer":     &graphql.Field{Type: graphql.Float},
			"total":      &graphql.Field{Type: graphql.Float},
		},
	})

	itineraryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Itinerary",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.String},
			"total_cost":         &graphql.Field{Type: graphql.Float},
			"budget_status":      &graphql.Field{Type: graphql.String},
			"breakdown":          &graphql.Field{Type: breakdownType},
			"accommodation":      &graphql.Field{Type: locationType},
			"accommodation_cost": &graphql.Field{Type: graphql.Float},
			"days":               &graphql.Field{Type: graphql.NewList(dayType)},
			"budget": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					it, _ := p.Source.(*domain.Itinerary)
					if it == nil {
						return nil, nil
					}
					return it.Request.Budget, nil
				},
			},
			"travelers": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					it, _ := p.Source.(*domain.Itinerary)
					if it == nil {
						return nil, nil
					}
					return it.Request.Travelers, nil
				},
			},
			"created_at": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					it, _ := p.Source.(*domain.Itinerary)
					if it == nil {
						return nil, nil
					}
					return it.CreatedAt.Format(time.RFC3339), nil
				},
			},
		},
	})

	quoteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TransportQuote",
		Fields: graphql.Fields{
			"mode":             &graphql.Field{Type: graphql.String},
			"provider":         &graphql.Field{Type: graphql.String},
			"distance_km":      &graphql.Field{Type: graphql.Float},
			"cost":             &graphql.Field{Type: graphql.Float},
			"duration_minutes": &graphql.Field{Type: graphql.Int},
			"suggestion":       &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"locations": &graphql.Field{
				Type:        graphql.NewList(locationType),
				Description: "List catalog locations, optionally filtered",
				Args: graphql.FieldConfigArgument{
					"type":       &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"visit_type": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"search":     &graphql.ArgumentConfig{Type: graphql.String},
					"indoor":     &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter := domain.LocationFilter{
						Types:      stringList(p.Args["type"]),
						VisitTypes: stringList(p.Args["visit_type"]),
					}
					if s, ok := p.Args["search"].(string); ok {
						filter.Search = s
					}
					if b, ok := p.Args["indoor"].(bool); ok {
						filter.Indoor = &b
					}
					return deps.Locations.List(p.Context, filter)
				},
			},
			"location": &graphql.Field{
				Type:        locationType,
				Description: "Get a location by id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Locations.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"itinerary": &graphql.Field{
				Type:        itineraryType,
				Description: "Get a stored itinerary by id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Itineraries.Get(p.Context, p.Args["id"].(string))
				},
			},
			"budget": &graphql.Field{
				Type:        breakdownType,
				Description: "Split a total budget across spending categories",
				Args: graphql.FieldConfigArgument{
					"total": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"tier":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					tier, _ := p.Args["tier"].(string)
					return deps.Itineraries.AllocateBudget(p.Args["total"].(float64), domain.AccommodationTier(tier))
				},
			},
			"transportQuote": &graphql.Field{
				Type:        quoteType,
				Description: "Price one leg between two locations, or for a distance",
				Args: graphql.FieldConfigArgument{
					"from":        &graphql.ArgumentConfig{Type: graphql.String},
					"to":          &graphql.ArgumentConfig{Type: graphql.String},
					"distance_km": &graphql.ArgumentConfig{Type: graphql.Float},
					"mode":        &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.TransportMotorbike)},
					"people":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					mode := domain.TransportMode(p.Args["mode"].(string))
					people := p.Args["people"].(int)
					from, _ := p.Args["from"].(string)
					to, _ := p.Args["to"].(string)
					if from != "" && to != "" {
						return deps.Locations.QuoteBetween(p.Context, from, to, mode, people)
					}
					km, ok := p.Args["distance_km"].(float64)
					if !ok || km < 0 {
						return nil, errors.New("give from and to, or a non-negative distance_km")
					}
					if !mode.Valid() {
						return nil, errors.New("unknown transport mode " + string(mode))
					}
					return planner.QuoteTransport(km, mode, people), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"generateItinerary": &graphql.Field{
				Type:        itineraryType,
				Description: "Generate and store an itinerary",
				Args: graphql.FieldConfigArgument{
					"budget":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"travelers":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"arrival":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"departure":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"transport":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"accommodation": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"preferences":   &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					accommodation, _ := p.Args["accommodation"].(string)
					body := tripRequestBody{
						Budget:        p.Args["budget"].(float64),
						Travelers:     p.Args["travelers"].(int),
						Arrival:       p.Args["arrival"].(string),
						Departure:     p.Args["departure"].(string),
						Transport:     p.Args["transport"].(string),
						Accommodation: accommodation,
						Preferences:   stringList(p.Args["preferences"]),
					}
					req, msg := body.toDomain()
					if msg != "" {
						return nil, errors.New(msg)
					}
					return deps.Itineraries.Generate(p.Context, req)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
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
